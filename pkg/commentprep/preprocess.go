package commentprep

import (
	"fmt"
	"strings"

	"github.com/cognicore/commentprep/pkg/commentprep/clean"
	"github.com/cognicore/commentprep/pkg/commentprep/contractions"
	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/lexicon"
	"github.com/cognicore/commentprep/pkg/commentprep/stopwords"
	"github.com/cognicore/commentprep/pkg/commentprep/tokenize"
)

// Options configures a Preprocessor.
type Options struct {
	Clean clean.Config

	ExpandContractions bool
	RemoveStopwords    bool

	// CustomStopwords is unioned with the base set for stopword removal
	// and keyword exclusion.
	CustomStopwords stopwords.Set

	// Stopwords replaces the built-in English set when non-nil.
	Stopwords *stopwords.Set

	// Contractions replaces the built-in dictionary when non-nil.
	Contractions *contractions.Dictionary

	Lexicon *lexicon.Lexicon

	MinTokenLength int
	Stem           bool

	ExtractKeywords  bool
	TopNKeywords     int
	KeywordMinLength int

	// Workers bounds concurrent row processing in ProcessBatch. Values <= 1
	// process rows one after another.
	Workers int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Clean:            clean.DefaultConfig(),
		MinTokenLength:   1,
		TopNKeywords:     keywords.DefaultTopN,
		KeywordMinLength: 1,
		Workers:          1,
	}
}

// Validate reports option values the pipeline cannot honour.
func (o Options) Validate() error {
	if err := o.Clean.Validate(); err != nil {
		return err
	}
	if o.MinTokenLength < 0 {
		return fmt.Errorf("min token length %d: %w", o.MinTokenLength, internalerr.ErrInvalidArgument)
	}
	if o.TopNKeywords < 0 {
		return fmt.Errorf("top n keywords %d: %w", o.TopNKeywords, internalerr.ErrInvalidArgument)
	}
	if o.KeywordMinLength < 0 {
		return fmt.Errorf("keyword min length %d: %w", o.KeywordMinLength, internalerr.ErrInvalidArgument)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers %d: %w", o.Workers, internalerr.ErrInvalidArgument)
	}
	return nil
}

// Result is the outcome of preprocessing one text.
type Result struct {
	// Text is the cleaned text, with contractions expanded when enabled.
	Text   string
	Tokens []string

	// Keywords is set only when keyword extraction is enabled.
	Keywords []keywords.Keyword
}

// Preprocessor composes the cleaner, the tokenizer and the keyword
// extractor. Its configuration is fixed at construction and it holds no
// per-call state, so one Preprocessor can serve many goroutines.
type Preprocessor struct {
	opts      Options
	cleaner   *clean.Cleaner
	tokenizer *tokenize.Tokenizer
	kwOpts    keywords.Options
	ids       *idSource
}

// New creates a preprocessor. A zero TopNKeywords means the default.
func New(opts Options) (*Preprocessor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.TopNKeywords == 0 {
		opts.TopNKeywords = keywords.DefaultTopN
	}

	cleaner, err := clean.New(opts.Clean)
	if err != nil {
		return nil, err
	}
	tokenizer := tokenize.NewTokenizer(tokenize.Options{
		Stopwords:       opts.Stopwords,
		Contractions:    opts.Contractions,
		Lexicon:         opts.Lexicon,
		MinLength:       opts.MinTokenLength,
		KeepApostrophes: opts.ExpandContractions,
		Stem:            opts.Stem,
	})
	base := tokenizer.Stopwords()

	return &Preprocessor{
		opts:      opts,
		cleaner:   cleaner,
		tokenizer: tokenizer,
		kwOpts: keywords.Options{
			Stopwords: &base,
			Exclude:   opts.CustomStopwords,
			MinLength: opts.KeywordMinLength,
		},
		ids: newIDSource(),
	}, nil
}

// Preprocess runs text through a pipeline built from opts.
func Preprocess(text string, opts Options) (Result, error) {
	p, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	return p.Process(text), nil
}

// Options returns the effective options.
func (p *Preprocessor) Options() Options {
	return p.opts
}

// Tokenizer returns the tokenizer the pipeline uses.
func (p *Preprocessor) Tokenizer() *tokenize.Tokenizer {
	return p.tokenizer
}

// Process cleans text, expands contractions, tokenizes and removes
// stopwords as configured. Empty or whitespace-only text gives an empty
// result.
func (p *Preprocessor) Process(text string) Result {
	cleaned := p.cleaner.Clean(text)
	if p.opts.ExpandContractions {
		cleaned = p.tokenizer.ExpandContractions(cleaned)
	}

	tokens := p.tokenizer.Tokenize(cleaned)
	if p.opts.RemoveStopwords {
		tokens = p.tokenizer.RemoveStopwords(tokens, p.opts.CustomStopwords)
	}

	res := Result{Text: cleaned, Tokens: tokens}
	if p.opts.ExtractKeywords {
		// TopNKeywords is positive after New, so Extract cannot fail.
		res.Keywords, _ = keywords.Extract([][]string{tokens}, p.opts.TopNKeywords, p.kwOpts)
	}
	return res
}

// ProcessValue coerces a loosely typed value to text and processes it.
func (p *Preprocessor) ProcessValue(v any) (Result, error) {
	text, err := TextValue(v)
	if err != nil {
		return Result{}, err
	}
	return p.Process(text), nil
}

// ExtractKeywords processes every text and ranks tokens across all of
// them. Ties keep first-occurrence order across texts.
func (p *Preprocessor) ExtractKeywords(texts []string) ([]keywords.Keyword, error) {
	c := keywords.NewCounter(p.kwOpts)
	for _, text := range texts {
		c.Add(p.Process(text).Tokens)
	}
	return c.Top(p.opts.TopNKeywords)
}

// TextValue converts a record value to text. Nil is empty text; any value
// that is not a string is rejected.
func TextValue(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("text value of type %T: %w", v, internalerr.ErrInvalidInputKind)
	}
}

// JoinTokens renders a token sequence as space-separated text.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
