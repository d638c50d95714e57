package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"

	"github.com/cognicore/commentprep/pkg/commentprep/contractions"
	"github.com/cognicore/commentprep/pkg/commentprep/lexicon"
	"github.com/cognicore/commentprep/pkg/commentprep/stopwords"
)

// Options configures a Tokenizer. The zero value gives the built-in English
// stopwords, the built-in contraction dictionary and no token filtering.
type Options struct {
	Stopwords    *stopwords.Set
	Contractions *contractions.Dictionary

	// Lexicon, when set, rewrites known variants to their canonical form.
	Lexicon *lexicon.Lexicon

	// MinLength drops tokens with fewer runes. Values <= 1 keep everything.
	MinLength int

	// KeepApostrophes keeps an apostrophe that sits between two letters
	// inside the token when the result is a known contraction ("don't").
	// Other words are still split on it ("john's" gives "john", "s").
	KeepApostrophes bool

	// Stem reduces tokens to their Snowball English stem. Stems are
	// lowercase.
	Stem bool
}

// Tokenizer splits text into word tokens and normalizes them. Its tables
// are fixed at construction, so one Tokenizer can serve many goroutines.
type Tokenizer struct {
	stopwords       stopwords.Set
	contractions    *contractions.Dictionary
	lexicon         *lexicon.Lexicon
	minLength       int
	keepApostrophes bool
	stem            bool
}

// NewTokenizer creates a tokenizer with the given options.
func NewTokenizer(opts Options) *Tokenizer {
	t := &Tokenizer{
		stopwords:       stopwords.English(),
		contractions:    contractions.Default(),
		lexicon:         opts.Lexicon,
		minLength:       opts.MinLength,
		keepApostrophes: opts.KeepApostrophes,
		stem:            opts.Stem,
	}
	if opts.Stopwords != nil {
		t.stopwords = *opts.Stopwords
	}
	if opts.Contractions != nil {
		t.contractions = opts.Contractions
	}
	return t
}

// Stopwords returns the tokenizer's base stopword set.
func (t *Tokenizer) Stopwords() stopwords.Set {
	return t.stopwords
}

// ExpandContractions expands contracted forms using the tokenizer's
// dictionary. Unknown words pass through unchanged.
func (t *Tokenizer) ExpandContractions(text string) string {
	return t.contractions.Expand(text)
}

// Tokenize splits text on every rune that is not a letter or digit and
// returns the tokens in reading order. Empty or whitespace-only text gives
// an empty (nil) slice.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case isWordRune(r):
			current.WriteRune(r)
		case t.keepApostrophes && isApostrophe(r) && current.Len() > 0 &&
			i+1 < len(runes) && isWordRune(runes[i+1]):
			current.WriteRune('\'')
		default:
			if current.Len() > 0 {
				tokens = t.appendToken(tokens, current.String())
				current.Reset()
			}
		}
	}

	// Don't forget the last token
	if current.Len() > 0 {
		tokens = t.appendToken(tokens, current.String())
	}

	return tokens
}

// appendToken processes word and appends what survives. A word holding an
// apostrophe that the contraction dictionary does not know is split into
// its parts first.
func (t *Tokenizer) appendToken(tokens []string, word string) []string {
	parts := []string{word}
	if strings.Contains(word, "'") {
		if _, known := t.contractions.Lookup(word); !known {
			parts = strings.Split(word, "'")
		}
	}
	for _, part := range parts {
		if part = t.processToken(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// processToken applies lexicon normalization, stemming and the length
// filter. An empty result drops the token.
func (t *Tokenizer) processToken(word string) string {
	if t.lexicon != nil && t.lexicon.Known(word) {
		word = t.lexicon.Normalize(word)
	}
	if t.stem {
		word = english.Stem(word, false)
	}
	if t.minLength > 1 && utf8.RuneCountInString(word) < t.minLength {
		return ""
	}
	return word
}

// RemoveStopwords returns the tokens that are in neither the tokenizer's
// stopword set nor any of the custom sets. Comparison ignores case; order
// is preserved and the input is not modified.
func (t *Tokenizer) RemoveStopwords(tokens []string, custom ...stopwords.Set) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if t.isStopword(tok, custom) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (t *Tokenizer) isStopword(tok string, custom []stopwords.Set) bool {
	if t.stopwords.Contains(tok) {
		return true
	}
	for _, s := range custom {
		if s.Contains(tok) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}
