package lexicon

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
)

// Lexicon maps informal spellings found in comments to a canonical token:
// slang ("gr8" -> "great"), abbreviations ("thx" -> "thanks") and common
// misspellings ("recieve" -> "receive").
//
// A lexicon is filled once with AddGroup or LoadFromYAML and then shared
// read-only; AddGroup must not race with Normalize.
type Lexicon struct {
	// canonical -> all variants, canonical first
	groups map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:       make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads variant groups from a YAML file.
//
// Expected format:
//
//	groups:
//	  - canonical: great
//	    variants: [gr8, grt, greaaat]
//	  - canonical: thanks
//	    variants: [thx, thnx, ty]
//
// Entries are lowercased. Canonical forms and variants must be single
// tokens.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Groups []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	lex := New()
	for _, g := range file.Groups {
		if err := lex.AddGroup(g.Canonical, g.Variants); err != nil {
			return nil, fmt.Errorf("lexicon %s: %w", path, err)
		}
	}
	return lex, nil
}

// AddGroup registers variants of a canonical token. If the canonical form
// already exists its old variants are replaced.
func (l *Lexicon) AddGroup(canonical string, variants []string) error {
	canonical, err := normalizeEntry(canonical)
	if err != nil {
		return err
	}

	if old, exists := l.groups[canonical]; exists {
		for _, v := range old {
			delete(l.reverseIndex, v)
		}
	}

	group := make([]string, 0, len(variants)+1)
	group = append(group, canonical)
	seen := map[string]bool{canonical: true}
	for _, v := range variants {
		v, err := normalizeEntry(v)
		if err != nil {
			return err
		}
		if !seen[v] {
			group = append(group, v)
			seen[v] = true
		}
	}

	l.groups[canonical] = group
	for _, v := range group {
		l.reverseIndex[v] = canonical
	}
	return nil
}

func normalizeEntry(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("lexicon entry %q must be a single token: %w", s, internalerr.ErrInvalidArgument)
	}
	return s, nil
}

// Normalize returns the canonical form of token, or token lowercased when
// it is unknown.
func (l *Lexicon) Normalize(token string) string {
	token = strings.ToLower(token)
	if canonical, ok := l.reverseIndex[token]; ok {
		return canonical
	}
	return token
}

// Known reports whether token belongs to any group.
func (l *Lexicon) Known(token string) bool {
	_, ok := l.reverseIndex[strings.ToLower(token)]
	return ok
}

// Variants returns every spelling in token's group, canonical first. An
// unknown token returns a slice holding only itself.
func (l *Lexicon) Variants(token string) []string {
	token = strings.ToLower(token)
	if canonical, ok := l.reverseIndex[token]; ok {
		return l.groups[canonical]
	}
	return []string{token}
}

// Stats holds counts of lexicon contents.
type Stats struct {
	Groups   int
	Variants int
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, g := range l.groups {
		total += len(g)
	}
	return Stats{Groups: len(l.groups), Variants: total}
}
