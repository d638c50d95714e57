package stopwords

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
)

// Set is an immutable, case-insensitive set of stopwords. The zero value is
// an empty set. Methods that "modify" a set return a new one, so a Set can be
// shared between goroutines without locking.
type Set struct {
	words map[string]struct{}
}

// New builds a set from the given words after validating them.
func New(words ...string) (Set, error) {
	s := Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		norm, err := normalize(w)
		if err != nil {
			return Set{}, err
		}
		s.words[norm] = struct{}{}
	}
	return s, nil
}

// MustNew is New for static word lists; it panics on invalid input.
func MustNew(words ...string) Set {
	s, err := New(words...)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMap builds a set from a word -> "is a stopword" mapping, the shape
// used in configuration files. Entries mapped to false are skipped.
func FromMap(m map[string]bool) (Set, error) {
	words := make([]string, 0, len(m))
	for w, stop := range m {
		if stop {
			words = append(words, w)
		}
	}
	return New(words...)
}

// normalize lowercases a stopword and rejects empty or multi-word entries.
func normalize(w string) (string, error) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return "", fmt.Errorf("stopword is empty: %w", internalerr.ErrInvalidArgument)
	}
	if strings.IndexFunc(w, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("stopword %q contains whitespace: %w", w, internalerr.ErrInvalidArgument)
	}
	return w, nil
}

// Contains reports whether word is in the set, ignoring case.
func (s Set) Contains(word string) bool {
	if len(s.words) == 0 {
		return false
	}
	if _, ok := s.words[word]; ok {
		return true
	}
	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of words in the set.
func (s Set) Len() int {
	return len(s.words)
}

// Union returns a set containing the words of s and every other set.
func (s Set) Union(others ...Set) Set {
	size := len(s.words)
	for _, o := range others {
		size += len(o.words)
	}
	out := Set{words: make(map[string]struct{}, size)}
	for w := range s.words {
		out.words[w] = struct{}{}
	}
	for _, o := range others {
		for w := range o.words {
			out.words[w] = struct{}{}
		}
	}
	return out
}

// With returns a copy of s with the given words added.
func (s Set) With(words ...string) (Set, error) {
	extra, err := New(words...)
	if err != nil {
		return Set{}, err
	}
	return s.Union(extra), nil
}

// Without returns a copy of s with the given words removed.
func (s Set) Without(words ...string) Set {
	out := s.Union()
	for _, w := range words {
		delete(out.words, strings.ToLower(strings.TrimSpace(w)))
	}
	return out
}

// Words returns the words in sorted order.
func (s Set) Words() []string {
	result := make([]string, 0, len(s.words))
	for w := range s.words {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// File is the on-disk stoplist format.
type File struct {
	Terms []string `yaml:"terms"`
}

// LoadFile reads a stoplist YAML file with a top-level "terms" list.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Set{}, fmt.Errorf("parse stoplist %s: %w", path, err)
	}
	return New(f.Terms...)
}
