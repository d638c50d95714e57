package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
)

func TestLexiconNew(t *testing.T) {
	lex := New()
	if lex == nil {
		t.Fatal("New() returned nil")
	}
	if stats := lex.Stats(); stats.Groups != 0 {
		t.Errorf("New lexicon should have 0 groups, got %d", stats.Groups)
	}
}

func TestLexiconAddGroup(t *testing.T) {
	lex := New()
	if err := lex.AddGroup("great", []string{"gr8", "GRT", "gr8"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"gr8", "great"},
		{"GR8", "great"},
		{"grt", "great"},
		{"great", "great"},
		{"unknown", "unknown"},
		{"Unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := lex.Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	variants := lex.Variants("grt")
	if len(variants) != 3 || variants[0] != "great" {
		t.Errorf("Variants('grt') = %v, want canonical first and duplicates dropped", variants)
	}
	if !lex.Known("GRT") || lex.Known("good") {
		t.Error("Known should reflect group membership")
	}
}

func TestLexiconReplaceGroup(t *testing.T) {
	lex := New()
	lex.AddGroup("thanks", []string{"thx", "ty"})
	lex.AddGroup("thanks", []string{"thnx"})

	if got := lex.Normalize("thx"); got != "thx" {
		t.Errorf("old variant should be dropped after replace, got %q", got)
	}
	if got := lex.Normalize("thnx"); got != "thanks" {
		t.Errorf("Normalize('thnx') = %q, want 'thanks'", got)
	}
	if stats := lex.Stats(); stats.Groups != 1 || stats.Variants != 2 {
		t.Errorf("Stats = %+v, want 1 group with 2 variants", stats)
	}
}

func TestLexiconRejectsMultiWord(t *testing.T) {
	lex := New()
	err := lex.AddGroup("to be honest", []string{"tbh"})
	if !errors.Is(err, internalerr.ErrInvalidArgument) {
		t.Errorf("AddGroup error = %v, want ErrInvalidArgument", err)
	}
	if err := lex.AddGroup("honestly", []string{""}); err == nil {
		t.Error("empty variant should be rejected")
	}
}

func TestLoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lexicon.yaml")
	content := `
groups:
  - canonical: great
    variants: [gr8, grt]
  - canonical: thanks
    variants: [thx, ty]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if got := lex.Normalize("thx"); got != "thanks" {
		t.Errorf("Normalize('thx') = %q, want 'thanks'", got)
	}
	if stats := lex.Stats(); stats.Groups != 2 || stats.Variants != 6 {
		t.Errorf("Stats = %+v, want 2 groups / 6 variants", stats)
	}
}

func TestLoadFromYAMLErrors(t *testing.T) {
	if _, err := LoadFromYAML("/nonexistent/lexicon.yaml"); err == nil {
		t.Error("Should error on nonexistent file")
	}

	tmpDir := t.TempDir()
	bad := filepath.Join(tmpDir, "bad.yaml")
	os.WriteFile(bad, []byte("groups: [unclosed\n"), 0644)
	if _, err := LoadFromYAML(bad); err == nil {
		t.Error("Should error on malformed YAML")
	}

	multi := filepath.Join(tmpDir, "multi.yaml")
	os.WriteFile(multi, []byte("groups:\n  - canonical: in my opinion\n    variants: [imo]\n"), 0644)
	if _, err := LoadFromYAML(multi); !errors.Is(err, internalerr.ErrInvalidArgument) {
		t.Errorf("multi-word canonical error = %v, want ErrInvalidArgument", err)
	}
}
