package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/commentprep/pkg/commentprep"
	"github.com/cognicore/commentprep/pkg/commentprep/clean"
	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/stopwords"
)

// File is the on-disk pipeline configuration. Every recognized option is
// listed here; unknown keys are rejected when decoding.
type File struct {
	RemoveURLs         bool `yaml:"remove_urls" json:"remove_urls"`
	RemoveHTML         bool `yaml:"remove_html" json:"remove_html"`
	RemoveEmails       bool `yaml:"remove_emails" json:"remove_emails"`
	RemoveMentions     bool `yaml:"remove_mentions" json:"remove_mentions"`
	RemoveHashtags     bool `yaml:"remove_hashtags" json:"remove_hashtags"`
	RemoveEmoji        bool `yaml:"remove_emoji" json:"remove_emoji"`
	Lowercase          bool `yaml:"lowercase" json:"lowercase"`
	CollapseRepeats    bool `yaml:"collapse_repeats" json:"collapse_repeats"`
	CollapseWhitespace bool `yaml:"collapse_whitespace" json:"collapse_whitespace"`
	NormalizeUnicode   bool `yaml:"normalize_unicode" json:"normalize_unicode"`
	RemoveNumbers      bool `yaml:"remove_numbers" json:"remove_numbers"`
	RemoveSpecialChars bool `yaml:"remove_special_chars" json:"remove_special_chars"`
	RemovePunctuation  bool `yaml:"remove_punctuation" json:"remove_punctuation"`
	MaxRepeat          int  `yaml:"max_repeat" json:"max_repeat"`
	MinTextLength      int  `yaml:"min_text_length" json:"min_text_length"`
	MaxTextLength      int  `yaml:"max_text_length" json:"max_text_length"`

	ExpandContractions bool            `yaml:"expand_contractions" json:"expand_contractions"`
	RemoveStopwords    bool            `yaml:"remove_stopwords" json:"remove_stopwords"`
	CustomStopwords    map[string]bool `yaml:"custom_stopwords" json:"custom_stopwords,omitempty"`
	MinTokenLength     int             `yaml:"min_token_length" json:"min_token_length"`
	Stem               bool            `yaml:"stem" json:"stem"`

	ExtractKeywords  bool `yaml:"extract_keywords" json:"extract_keywords"`
	TopNKeywords     int  `yaml:"top_n_keywords" json:"top_n_keywords"`
	KeywordMinLength int  `yaml:"keyword_min_length" json:"keyword_min_length"`

	Workers int `yaml:"workers" json:"workers"`

	// Paths are resolved relative to the configuration file.
	StoplistFile string `yaml:"stoplist_file" json:"stoplist_file,omitempty"`
	LexiconFile  string `yaml:"lexicon_file" json:"lexicon_file,omitempty"`
}

// Default returns a File holding the documented defaults.
func Default() File {
	c := clean.DefaultConfig()
	return File{
		RemoveURLs:         c.RemoveURLs,
		RemoveHTML:         c.RemoveHTML,
		RemoveEmails:       c.RemoveEmails,
		RemoveMentions:     c.RemoveMentions,
		RemoveHashtags:     c.RemoveHashtags,
		RemoveEmoji:        c.RemoveEmoji,
		Lowercase:          c.Lowercase,
		CollapseRepeats:    c.CollapseRepeats,
		CollapseWhitespace: c.CollapseWhitespace,
		MaxRepeat:          c.MaxRepeat,
		MinTokenLength:     1,
		TopNKeywords:       keywords.DefaultTopN,
		KeywordMinLength:   1,
		Workers:            1,
	}
}

// Load reads a YAML configuration file. Options missing from the file keep
// their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// Decode reads YAML configuration from r on top of the defaults. An empty
// document yields the defaults.
func Decode(r io.Reader) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks option values without building anything.
func (f File) Validate() error {
	switch {
	case f.MaxRepeat < 1:
		return fmt.Errorf("%w: max_repeat must be at least 1, got %d", internalerr.ErrInvalidConfig, f.MaxRepeat)
	case f.MinTokenLength < 0:
		return fmt.Errorf("%w: min_token_length must not be negative, got %d", internalerr.ErrInvalidConfig, f.MinTokenLength)
	case f.TopNKeywords < 1:
		return fmt.Errorf("%w: top_n_keywords must be positive, got %d", internalerr.ErrInvalidConfig, f.TopNKeywords)
	case f.KeywordMinLength < 0:
		return fmt.Errorf("%w: keyword_min_length must not be negative, got %d", internalerr.ErrInvalidConfig, f.KeywordMinLength)
	case f.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", internalerr.ErrInvalidConfig, f.Workers)
	case f.MinTextLength < 0:
		return fmt.Errorf("%w: min_text_length must not be negative, got %d", internalerr.ErrInvalidConfig, f.MinTextLength)
	case f.MaxTextLength < 0:
		return fmt.Errorf("%w: max_text_length must not be negative, got %d", internalerr.ErrInvalidConfig, f.MaxTextLength)
	case f.MaxTextLength > 0 && f.MaxTextLength < f.MinTextLength:
		return fmt.Errorf("%w: max_text_length %d is below min_text_length %d", internalerr.ErrInvalidConfig, f.MaxTextLength, f.MinTextLength)
	}
	if _, err := stopwords.FromMap(f.CustomStopwords); err != nil {
		return fmt.Errorf("%w: custom_stopwords: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// Options converts the file to preprocessor options. Stoplist and lexicon
// files are not read here; Loader does that.
func (f File) Options() (commentprep.Options, error) {
	custom, err := stopwords.FromMap(f.CustomStopwords)
	if err != nil {
		return commentprep.Options{}, fmt.Errorf("custom_stopwords: %w", err)
	}
	return commentprep.Options{
		Clean: clean.Config{
			RemoveHTML:         f.RemoveHTML,
			RemoveURLs:         f.RemoveURLs,
			RemoveEmails:       f.RemoveEmails,
			RemoveMentions:     f.RemoveMentions,
			RemoveHashtags:     f.RemoveHashtags,
			RemoveEmoji:        f.RemoveEmoji,
			CollapseRepeats:    f.CollapseRepeats,
			Lowercase:          f.Lowercase,
			CollapseWhitespace: f.CollapseWhitespace,
			NormalizeUnicode:   f.NormalizeUnicode,
			RemoveNumbers:      f.RemoveNumbers,
			RemoveSpecialChars: f.RemoveSpecialChars,
			RemovePunctuation:  f.RemovePunctuation,
			MaxRepeat:          f.MaxRepeat,
			MinLength:          f.MinTextLength,
			MaxLength:          f.MaxTextLength,
		},
		ExpandContractions: f.ExpandContractions,
		RemoveStopwords:    f.RemoveStopwords,
		CustomStopwords:    custom,
		MinTokenLength:     f.MinTokenLength,
		Stem:               f.Stem,
		ExtractKeywords:    f.ExtractKeywords,
		TopNKeywords:       f.TopNKeywords,
		KeywordMinLength:   f.KeywordMinLength,
		Workers:            f.Workers,
	}, nil
}
