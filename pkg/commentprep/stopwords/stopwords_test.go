package stopwords

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
)

func TestSetBasic(t *testing.T) {
	s := MustNew("the", "a", "and")

	if !s.Contains("the") {
		t.Error("'the' should be a stopword")
	}
	if s.Contains("hello") {
		t.Error("'hello' should not be a stopword")
	}
	if s.Len() != 3 {
		t.Errorf("Expected 3 stopwords, got %d", s.Len())
	}
}

func TestSetCaseInsensitive(t *testing.T) {
	s := MustNew("THE", "Product")

	for _, w := range []string{"the", "The", "THE", "product", "PRODUCT"} {
		if !s.Contains(w) {
			t.Errorf("Contains(%q) = false, want true", w)
		}
	}
}

func TestZeroSetIsEmpty(t *testing.T) {
	var s Set
	if s.Contains("the") {
		t.Error("zero Set should contain nothing")
	}
	if len(s.Words()) != 0 {
		t.Error("zero Set should have no words")
	}
}

func TestWithWithoutDoNotMutate(t *testing.T) {
	base := MustNew("the")

	added, err := base.With("product", "Item")
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if !added.Contains("item") || !added.Contains("the") {
		t.Error("With should keep old words and add new ones")
	}
	if base.Contains("product") {
		t.Error("With must not mutate the receiver")
	}

	removed := added.Without("THE")
	if removed.Contains("the") {
		t.Error("Without should drop 'the'")
	}
	if !added.Contains("the") {
		t.Error("Without must not mutate the receiver")
	}
}

func TestUnion(t *testing.T) {
	u := MustNew("a").Union(MustNew("b"), MustNew("a", "c"))
	want := []string{"a", "b", "c"}
	got := u.Words()
	if len(got) != len(want) {
		t.Fatalf("Words() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Words()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "   ", "two words", "tab\tword"} {
		_, err := New("ok", bad)
		if !errors.Is(err, internalerr.ErrInvalidArgument) {
			t.Errorf("New(%q) error = %v, want ErrInvalidArgument", bad, err)
		}
	}
}

func TestFromMap(t *testing.T) {
	s, err := FromMap(map[string]bool{"product": true, "Item": true, "keep": false})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if !s.Contains("product") || !s.Contains("item") {
		t.Error("true entries should be stopwords")
	}
	if s.Contains("keep") {
		t.Error("false entries should be skipped")
	}

	if _, err := FromMap(map[string]bool{"bad word": true}); err == nil {
		t.Error("multi-word key should be rejected")
	}
}

func TestEnglish(t *testing.T) {
	en := English()
	for _, w := range []string{"i", "am", "this", "the", "is", "a"} {
		if !en.Contains(w) {
			t.Errorf("English() missing %q", w)
		}
	}
	for _, w := range []string{"loving", "amazing", "terrible"} {
		if en.Contains(w) {
			t.Errorf("English() should not contain %q", w)
		}
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "stoplist.yaml")
	if err := os.WriteFile(path, []byte("terms:\n  - game\n  - Steam\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !s.Contains("game") || !s.Contains("steam") {
		t.Errorf("loaded set = %v", s.Words())
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile("/nonexistent/stoplist.yaml"); err == nil {
		t.Error("Should error on nonexistent stoplist")
	}

	tmpDir := t.TempDir()
	bad := filepath.Join(tmpDir, "bad.yaml")
	os.WriteFile(bad, []byte("terms: [unclosed\n"), 0644)
	if _, err := LoadFile(bad); err == nil {
		t.Error("Should error on malformed YAML")
	}
}
