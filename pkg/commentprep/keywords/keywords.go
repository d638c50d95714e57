package keywords

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/stopwords"
)

// DefaultTopN is the keyword count used when none is configured.
const DefaultTopN = 10

// Keyword is a token with its frequency.
type Keyword struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Options controls which tokens are counted.
type Options struct {
	// Stopwords is the base exclusion set. Nil means the built-in English
	// set.
	Stopwords *stopwords.Set

	// KeepStopwords disables the base exclusion set.
	KeepStopwords bool

	// Exclude holds extra tokens to skip, e.g. the product name.
	Exclude stopwords.Set

	// MinLength skips tokens with fewer runes. Values <= 1 count everything.
	MinLength int
}

// Counter accumulates token frequencies over one or more token sequences
// and remembers the order in which tokens were first seen. It is not safe
// for concurrent use.
type Counter struct {
	opts   Options
	base   stopwords.Set
	counts map[string]int
	order  []string
}

// NewCounter creates an empty counter.
func NewCounter(opts Options) *Counter {
	c := &Counter{
		opts:   opts,
		counts: make(map[string]int),
	}
	switch {
	case opts.KeepStopwords:
	case opts.Stopwords != nil:
		c.base = *opts.Stopwords
	default:
		c.base = stopwords.English()
	}
	return c
}

// Add counts the tokens of one sequence.
func (c *Counter) Add(tokens []string) {
	for _, tok := range tokens {
		if c.skip(tok) {
			continue
		}
		if _, seen := c.counts[tok]; !seen {
			c.order = append(c.order, tok)
		}
		c.counts[tok]++
	}
}

func (c *Counter) skip(tok string) bool {
	if tok == "" {
		return true
	}
	if c.opts.MinLength > 1 && utf8.RuneCountInString(tok) < c.opts.MinLength {
		return true
	}
	return c.base.Contains(tok) || c.opts.Exclude.Contains(tok)
}

// Distinct returns the number of distinct counted tokens.
func (c *Counter) Distinct() int {
	return len(c.order)
}

// Ranked returns every counted token, most frequent first. Equal counts
// keep first-occurrence order.
func (c *Counter) Ranked() []Keyword {
	ranked := make([]Keyword, len(c.order))
	for i, tok := range c.order {
		ranked[i] = Keyword{Token: tok, Count: c.counts[tok]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// Top returns at most n keywords from Ranked. n must be positive.
func (c *Counter) Top(n int) ([]Keyword, error) {
	if n <= 0 {
		return nil, fmt.Errorf("keywords: top n %d: %w", n, internalerr.ErrInvalidArgument)
	}
	ranked := c.Ranked()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Extract ranks tokens across all sequences by frequency and returns at
// most topN of them. Ties are broken by first occurrence across the input,
// so the result is reproducible for a given input order.
func Extract(sequences [][]string, topN int, opts Options) ([]Keyword, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("keywords: top n %d: %w", topN, internalerr.ErrInvalidArgument)
	}
	c := NewCounter(opts)
	for _, seq := range sequences {
		c.Add(seq)
	}
	return c.Top(topN)
}

// Frequencies returns the full ranking across all sequences.
func Frequencies(sequences [][]string, opts Options) []Keyword {
	c := NewCounter(opts)
	for _, seq := range sequences {
		c.Add(seq)
	}
	return c.Ranked()
}

// Tokens returns just the tokens of a ranking.
func Tokens(kws []Keyword) []string {
	out := make([]string, len(kws))
	for i, kw := range kws {
		out[i] = kw.Token
	}
	return out
}
