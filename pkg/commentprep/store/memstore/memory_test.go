package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
	"github.com/cognicore/commentprep/pkg/commentprep/store"
)

func testRun(id string, at time.Time) store.Run {
	return store.Run{
		ID:        id,
		CreatedAt: at,
		TextField: "text",
		Options:   `{}`,
		Rows: []record.Record{
			record.New(record.Field{Name: "text", Value: "ok"}),
			record.New(record.Field{Name: "text", Value: nil}),
		},
		Errors:   []store.RowError{{Index: 1, Message: "bad"}},
		Keywords: []keywords.Keyword{{Token: "ok", Count: 3}, {Token: "fine", Count: 1}},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	run := testRun("r1", time.Now())
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Rows) != 2 || len(got.Errors) != 1 || len(got.Keywords) != 2 {
		t.Errorf("GetRun = %+v", got)
	}

	// Mutating the returned copy must not reach the store.
	got.Keywords[0].Count = 99
	again, _ := s.GetRun(ctx, "r1")
	if again.Keywords[0].Count != 3 {
		t.Error("GetRun returned shared state")
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetRun error = %v, want ErrNotFound", err)
	}
	if _, err := s.RowErrors(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("RowErrors error = %v, want ErrNotFound", err)
	}
	if _, err := s.TopKeywords(ctx, "missing", 3); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("TopKeywords error = %v, want ErrNotFound", err)
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	if err := New().SaveRun(context.Background(), store.Run{}); !errors.Is(err, internalerr.ErrInvalidArgument) {
		t.Errorf("SaveRun error = %v, want ErrInvalidArgument", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("ListRuns = %+v, want c, b", runs)
	}
	if runs[0].RowCount != 2 || runs[0].ErrorCount != 1 {
		t.Errorf("summary counts = %+v", runs[0])
	}
}

func TestTopKeywords(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.SaveRun(ctx, testRun("r1", time.Now())); err != nil {
		t.Fatal(err)
	}

	kws, err := s.TopKeywords(ctx, "r1", 1)
	if err != nil {
		t.Fatalf("TopKeywords: %v", err)
	}
	if len(kws) != 1 || kws[0].Token != "ok" {
		t.Errorf("TopKeywords = %v", kws)
	}
	if _, err := s.TopKeywords(ctx, "r1", 0); !errors.Is(err, internalerr.ErrInvalidArgument) {
		t.Errorf("TopKeywords(0) error = %v, want ErrInvalidArgument", err)
	}
}
