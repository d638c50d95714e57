// Package contractions expands English contractions ("don't" -> "do not").
//
// Ambiguous forms map to a single expansion: "it's" is always "it is" and
// "he'd" is always "he would", even where "it has" or "he had" was meant.
package contractions

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
)

// Dictionary maps contracted forms to their expansions. It is read-only
// after construction and safe for concurrent use.
type Dictionary struct {
	forms   map[string]string
	pattern *regexp.Regexp
}

// NewDictionary builds a dictionary from lowercase contracted forms to
// expansions. Every key must contain an apostrophe. Keys are matched as whole
// words, ignoring case, with either a straight or a typographic apostrophe.
func NewDictionary(forms map[string]string) (*Dictionary, error) {
	if len(forms) == 0 {
		return nil, fmt.Errorf("contractions: empty dictionary: %w", internalerr.ErrInvalidArgument)
	}

	d := &Dictionary{forms: make(map[string]string, len(forms))}
	keys := make([]string, 0, len(forms))
	for k, v := range forms {
		k = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(k, "’", "'")))
		v = strings.TrimSpace(v)
		if !strings.Contains(k, "'") || v == "" {
			return nil, fmt.Errorf("contractions: entry %q -> %q: %w", k, v, internalerr.ErrInvalidArgument)
		}
		if _, dup := d.forms[k]; !dup {
			keys = append(keys, k)
		}
		d.forms[k] = v
	}

	// Longest first so "can't've" wins over "can't".
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	alts := make([]string, len(keys))
	for i, k := range keys {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(k), "'", "['’]")
	}
	d.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
	return d, nil
}

// Len returns the number of contracted forms.
func (d *Dictionary) Len() int {
	return len(d.forms)
}

// Lookup returns the expansion for a single contracted word.
func (d *Dictionary) Lookup(word string) (string, bool) {
	exp, ok := d.forms[strings.ToLower(strings.ReplaceAll(word, "’", "'"))]
	return exp, ok
}

// Expand replaces every known contraction in text. Unknown words pass
// through unchanged. A capitalized contraction yields a capitalized
// expansion ("I'm" -> "I am", "DON'T" -> "DO NOT").
func (d *Dictionary) Expand(text string) string {
	if !strings.ContainsAny(text, "'’") {
		return text
	}
	return d.pattern.ReplaceAllStringFunc(text, func(match string) string {
		exp, ok := d.Lookup(match)
		if !ok {
			return match
		}
		return matchCase(match, exp)
	})
}

func matchCase(match, exp string) string {
	first, _ := utf8.DecodeRuneInString(match)
	if !unicode.IsUpper(first) {
		return exp
	}
	if isUpper(match) && utf8.RuneCountInString(strings.Map(keepLetter, match)) > 1 {
		return strings.ToUpper(exp)
	}
	r, size := utf8.DecodeRuneInString(exp)
	return string(unicode.ToUpper(r)) + exp[size:]
}

func keepLetter(r rune) rune {
	if unicode.IsLetter(r) {
		return r
	}
	return -1
}

func isUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

var defaultDict *Dictionary

func init() {
	d, err := NewDictionary(english)
	if err != nil {
		panic(err)
	}
	defaultDict = d
}

// Default returns the built-in English dictionary.
func Default() *Dictionary {
	return defaultDict
}

// Expand expands contractions using the built-in dictionary.
func Expand(text string) string {
	return defaultDict.Expand(text)
}
