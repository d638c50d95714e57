package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/commentprep/pkg/commentprep"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
	"github.com/cognicore/commentprep/pkg/commentprep/sentiment"
	"github.com/cognicore/commentprep/pkg/commentprep/store/sqlite"
)

func readFixture(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Open("../../testdata/comments.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRunWithConfig(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	var out bytes.Buffer
	rep, err := run(ctx, options{
		configPath: "../../testdata/commentprep.yaml",
		field:      "text",
		dbPath:     dbPath,
	}, readFixture(t), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if rep.Rows != 6 || rep.Errors != 2 {
		t.Errorf("report = %+v, want 6 rows and 2 errors", rep)
	}
	if len(rep.Keywords) == 0 || rep.Keywords[0].Token != "battery" {
		t.Errorf("keywords = %v, want battery first", rep.Keywords)
	}

	rows, err := record.ReadJSONL(&out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("output rows = %d, want 6", len(rows))
	}
	if v, _ := rows[0].Get(commentprep.FieldPreprocessedText); v != "check loving amazing" {
		t.Errorf("row 0 preprocessed_text = %v", v)
	}
	if v, _ := rows[1].Get(commentprep.FieldPreprocessedText); v != "battery life great thanks highly recommend" {
		t.Errorf("row 1 preprocessed_text = %v", v)
	}
	if v, _ := rows[3].Get(commentprep.FieldError); v == nil {
		t.Error("row 3 should carry preprocess_error")
	}
	if names := rows[0].Names(); names[0] != "id" || names[1] != "author" || names[2] != "text" {
		t.Errorf("original fields reordered: %v", names)
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	saved, err := st.GetRun(ctx, rep.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(saved.Rows) != 6 || len(saved.Errors) != 2 {
		t.Errorf("saved run = %d rows, %d errors", len(saved.Rows), len(saved.Errors))
	}
	var opts map[string]any
	if err := json.Unmarshal([]byte(saved.Options), &opts); err != nil {
		t.Fatalf("saved options: %v", err)
	}
	if opts["expand_contractions"] != true {
		t.Errorf("saved options = %v", opts)
	}
}

func TestRunFlagOverrides(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`{"body":"great great screen"}` + "\n")

	rep, err := run(context.Background(), options{field: "body", keywords: 1, workers: 2}, in, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Keywords) != 1 || rep.Keywords[0].Token != "great" || rep.Keywords[0].Count != 2 {
		t.Errorf("keywords = %v", rep.Keywords)
	}
	if !strings.Contains(out.String(), `"keywords":["great"]`) {
		t.Errorf("output = %s", out.String())
	}
}

func TestRunWithClassifier(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("{\"text\":\"awful\"}\n{\"text\":[1]}\n")
	classifier := sentiment.ClassifierFunc(func(ctx context.Context, texts []string) ([]sentiment.Score, error) {
		scores := make([]sentiment.Score, len(texts))
		for i := range texts {
			scores[i] = sentiment.Score{Label: sentiment.Negative, NegativeScore: 0.85, PositiveScore: 0.1}
		}
		return scores, nil
	})

	if _, err := run(context.Background(), options{field: "text", classifier: classifier}, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output lines = %d", len(lines))
	}
	if !strings.Contains(lines[0], `"sentiment_label":"NEGATIVE","negative_score":0.85,"positive_score":0.1`) {
		t.Errorf("row 0 = %s", lines[0])
	}
	if strings.Contains(lines[1], "sentiment_label") {
		t.Errorf("failed row annotated: %s", lines[1])
	}
}

func TestRunBadConfig(t *testing.T) {
	var out bytes.Buffer
	_, err := run(context.Background(), options{configPath: "/nonexistent.yaml", field: "text"}, strings.NewReader(""), &out)
	if err == nil {
		t.Error("run should fail with a missing config")
	}
}

func TestRunStoplistOverride(t *testing.T) {
	var out bytes.Buffer
	_, err := run(context.Background(), options{
		configPath:   "../../testdata/commentprep.yaml",
		stoplistPath: "../../testdata/stoplist.yaml",
		field:        "text",
	}, readFixture(t), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	rows, err := record.ReadJSONL(&out)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]string{
		0: "check out i am loving amazing",
		4: "keeps crashing battery drains soo fast",
	}
	for i, text := range want {
		if v, _ := rows[i].Get(commentprep.FieldPreprocessedText); v != text {
			t.Errorf("row %d preprocessed_text = %v, want %q", i, v, text)
		}
	}
}
