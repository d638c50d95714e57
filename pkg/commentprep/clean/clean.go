package clean

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
)

// DefaultMaxRepeat is the number of identical consecutive characters kept
// when repetition collapsing is enabled ("sooo" -> "soo").
const DefaultMaxRepeat = 2

// maxStalls bounds the passes in Clean that change text without
// shortening it.
const maxStalls = 4

var (
	urlPattern     = regexp.MustCompile(`(?i)(?:https?://|\bwww\.)\S+`)
	emailPattern   = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	mentionPattern = regexp.MustCompile(`\B@[\p{L}\p{N}_]+`)
	hashtagPattern = regexp.MustCompile(`\B#+([\p{L}\p{N}_]+)`)
	numberPattern  = regexp.MustCompile(`\p{Nd}+`)
	specialPattern = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;:'"’\-]`)
	punctPattern   = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]`)
)

// Config selects which cleaning steps run. Every option is independent.
type Config struct {
	RemoveHTML      bool
	RemoveURLs      bool
	RemoveEmails    bool
	RemoveMentions  bool
	RemoveHashtags  bool // de-mark "#word" to "word"
	RemoveEmoji     bool
	CollapseRepeats bool
	Lowercase       bool

	// CollapseWhitespace folds whitespace runs to one space. Leading and
	// trailing whitespace is trimmed either way.
	CollapseWhitespace bool

	NormalizeUnicode   bool // NFKC before anything else
	RemoveNumbers      bool
	RemoveSpecialChars bool // keeps letters, digits, whitespace and .,!?;:'"-

	// RemovePunctuation is the strict form of RemoveSpecialChars: only
	// letters, digits, underscores and whitespace survive. Apostrophes go
	// too, so contractions are split before they can be expanded.
	RemovePunctuation bool

	// MinLength empties text shorter than this many characters and
	// MaxLength truncates longer text. Both are measured in runes after
	// every other step. Zero disables either bound.
	MinLength int
	MaxLength int

	// MaxRepeat is the collapse target for repeated characters. Zero means
	// DefaultMaxRepeat.
	MaxRepeat int
}

// DefaultConfig returns the documented defaults: all structural removal on
// except hashtags, repetition collapsing and case folding on.
func DefaultConfig() Config {
	return Config{
		RemoveHTML:         true,
		RemoveURLs:         true,
		RemoveEmails:       true,
		RemoveMentions:     true,
		RemoveHashtags:     false,
		RemoveEmoji:        true,
		CollapseRepeats:    true,
		Lowercase:          true,
		CollapseWhitespace: true,
		MaxRepeat:          DefaultMaxRepeat,
	}
}

// Validate reports option values the cleaner cannot honour.
func (c Config) Validate() error {
	if c.MaxRepeat < 0 {
		return fmt.Errorf("clean: max repeat %d: %w", c.MaxRepeat, internalerr.ErrInvalidArgument)
	}
	if c.MinLength < 0 {
		return fmt.Errorf("clean: min length %d: %w", c.MinLength, internalerr.ErrInvalidArgument)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("clean: max length %d: %w", c.MaxLength, internalerr.ErrInvalidArgument)
	}
	if c.MaxLength > 0 && c.MaxLength < c.MinLength {
		return fmt.Errorf("clean: max length %d below min length %d: %w", c.MaxLength, c.MinLength, internalerr.ErrInvalidArgument)
	}
	return nil
}

// Cleaner applies a fixed sequence of normalization steps to raw text.
// It holds no mutable state and is safe for concurrent use.
type Cleaner struct {
	cfg Config
}

// New creates a cleaner for the given configuration.
func New(cfg Config) (*Cleaner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxRepeat == 0 {
		cfg.MaxRepeat = DefaultMaxRepeat
	}
	return &Cleaner{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (c *Cleaner) Config() Config {
	return c.cfg
}

// Clean is a convenience wrapper for one-off calls. An invalid config
// returns the error from New.
func Clean(text string, cfg Config) (string, error) {
	c, err := New(cfg)
	if err != nil {
		return "", err
	}
	return c.Clean(text), nil
}

// Clean normalizes text. Empty input yields empty output.
//
// Later steps can expose patterns that earlier steps would have removed
// ("AaA" becoming "aaa" after case folding, "&llt;" becoming an entity after
// collapsing), so the pass is repeated until the output stops changing. This
// makes Clean a projection: Clean(Clean(x)) == Clean(x).
func (c *Cleaner) Clean(text string) string {
	out := c.pass(text)
	for stalls := 0; stalls < maxStalls; {
		next := c.pass(out)
		if next == out {
			break
		}
		if utf8.RuneCountInString(next) >= utf8.RuneCountInString(out) {
			stalls++
		}
		out = next
	}
	return out
}

func (c *Cleaner) pass(text string) string {
	if text == "" {
		return ""
	}
	cfg := c.cfg

	if cfg.NormalizeUnicode {
		text = norm.NFKC.String(text)
	}
	if cfg.RemoveHTML {
		text = stripHTML(text)
	}
	if cfg.RemoveURLs {
		text = urlPattern.ReplaceAllString(text, " ")
	}
	if cfg.RemoveEmails {
		text = emailPattern.ReplaceAllString(text, " ")
	}
	if cfg.RemoveMentions {
		text = mentionPattern.ReplaceAllString(text, " ")
	}
	if cfg.RemoveHashtags {
		text = hashtagPattern.ReplaceAllString(text, "${1}")
	}
	if cfg.RemoveEmoji {
		text = removeEmoji(text)
	}
	if cfg.RemoveNumbers {
		text = numberPattern.ReplaceAllString(text, " ")
	}
	if cfg.RemoveSpecialChars {
		text = specialPattern.ReplaceAllString(text, " ")
	}
	if cfg.RemovePunctuation {
		text = punctPattern.ReplaceAllString(text, " ")
	}
	if cfg.CollapseRepeats {
		text = CollapseRepeats(text, cfg.MaxRepeat)
	}
	if cfg.CollapseWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	} else {
		text = strings.TrimSpace(text)
	}
	if cfg.Lowercase {
		text = strings.ToLower(text)
	}
	return boundLength(text, cfg.MinLength, cfg.MaxLength)
}

func boundLength(text string, min, max int) string {
	if max > 0 && utf8.RuneCountInString(text) > max {
		i, n := 0, 0
		for i = range text {
			if n == max {
				break
			}
			n++
		}
		text = strings.TrimSpace(text[:i])
	}
	if min > 0 && utf8.RuneCountInString(text) < min {
		return ""
	}
	return text
}

// CollapseRepeats bounds every run of an identical character to max
// occurrences. Runs of max or fewer are left alone. A max below 1 is
// treated as DefaultMaxRepeat.
func CollapseRepeats(text string, max int) string {
	if max < 1 {
		max = DefaultMaxRepeat
	}
	var b strings.Builder
	b.Grow(len(text))

	var prev rune
	run := 0
	for i, r := range text {
		if i > 0 && r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run <= max {
			b.WriteRune(r)
		}
	}
	return b.String()
}
