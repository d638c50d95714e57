package commentprep

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
)

// Derived field names appended to every batch row. A failed row gets null
// derived values plus FieldError, except when the row already uses one of
// these names: it is then passed through with no FieldError marker and its
// failure shows only in Batch.Errors.
const (
	FieldCleanText        = "clean_text"
	FieldTokenCount       = "token_count"
	FieldPreprocessedText = "preprocessed_text"
	FieldKeywords         = "keywords" // only with keyword extraction
	FieldError            = "preprocess_error"
)

// RowError records why one batch row could not be processed.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Batch is the result of ProcessBatch. Records has exactly one entry per
// input row, in input order.
type Batch struct {
	ID        ulid.ULID
	CreatedAt time.Time
	TextField string
	Records   []record.Record
	Errors    []*RowError

	// Keywords ranks tokens across every successful row. Empty unless
	// keyword extraction is enabled.
	Keywords []keywords.Keyword
}

// Failed reports whether row i has an error.
func (b *Batch) Failed(i int) bool {
	for _, e := range b.Errors {
		if e.Index == i {
			return true
		}
	}
	return false
}

type idSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDSource() *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (s *idSource) next(t time.Time) ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy)
}

type rowResult struct {
	rec    record.Record
	tokens []string
	err    *RowError
}

// ProcessBatch runs the pipeline over the textField of every record. A
// failing row never aborts the batch: it gets null derived values plus a
// preprocess_error field, and its error is listed in Batch.Errors. A row
// that already carries a derived field name is returned unchanged.
//
// Input records are not modified. The only batch-level errors are an empty
// textField and a cancelled context.
func (p *Preprocessor) ProcessBatch(ctx context.Context, records []record.Record, textField string) (*Batch, error) {
	if textField == "" {
		return nil, fmt.Errorf("batch text field: %w", internalerr.ErrInvalidArgument)
	}

	results := make([]rowResult, len(records))
	if p.opts.Workers > 1 && len(records) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.Workers)
		for i := range records {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = p.processRow(i, records[i], textField)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("process batch: %w", err)
		}
	} else {
		for i := range records {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("process batch: %w", err)
			}
			results[i] = p.processRow(i, records[i], textField)
		}
	}

	now := time.Now().UTC()
	b := &Batch{
		ID:        p.ids.next(now),
		CreatedAt: now,
		TextField: textField,
		Records:   make([]record.Record, len(records)),
	}
	var counter *keywords.Counter
	if p.opts.ExtractKeywords {
		counter = keywords.NewCounter(p.kwOpts)
	}
	for i, r := range results {
		b.Records[i] = r.rec
		if r.err != nil {
			b.Errors = append(b.Errors, r.err)
			continue
		}
		if counter != nil {
			counter.Add(r.tokens)
		}
	}
	if counter != nil {
		kws, err := counter.Top(p.opts.TopNKeywords)
		if err != nil {
			return nil, err
		}
		b.Keywords = kws
	}
	return b, nil
}

func (p *Preprocessor) processRow(i int, rec record.Record, textField string) rowResult {
	fail := func(cause error) *RowError {
		return &RowError{Index: i, Err: fmt.Errorf("%w: %w", internalerr.ErrRowProcessing, cause)}
	}

	value, ok := rec.Get(textField)
	if !ok {
		return p.failRow(rec, fail(fmt.Errorf("text field %q missing", textField)))
	}
	text, err := TextValue(value)
	if err != nil {
		return p.failRow(rec, fail(err))
	}

	res := p.Process(text)
	fields := []record.Field{
		{Name: FieldCleanText, Value: res.Text},
		{Name: FieldTokenCount, Value: len(res.Tokens)},
		{Name: FieldPreprocessedText, Value: JoinTokens(res.Tokens)},
	}
	if p.opts.ExtractKeywords {
		fields = append(fields, record.Field{Name: FieldKeywords, Value: keywords.Tokens(res.Keywords)})
	}
	out, err := rec.Append(fields...)
	if err != nil {
		return rowResult{rec: rec, err: fail(err)}
	}
	return rowResult{rec: out, tokens: res.Tokens}
}

// failRow appends null derived values and the error message. If the row
// already uses one of those names it is passed through as is.
func (p *Preprocessor) failRow(rec record.Record, rowErr *RowError) rowResult {
	fields := []record.Field{
		{Name: FieldCleanText, Value: nil},
		{Name: FieldTokenCount, Value: nil},
		{Name: FieldPreprocessedText, Value: nil},
	}
	if p.opts.ExtractKeywords {
		fields = append(fields, record.Field{Name: FieldKeywords, Value: nil})
	}
	fields = append(fields, record.Field{Name: FieldError, Value: rowErr.Err.Error()})

	out, err := rec.Append(fields...)
	if err != nil {
		rowErr.Err = errors.Join(rowErr.Err, err)
		return rowResult{rec: rec, err: rowErr}
	}
	return rowResult{rec: out, err: rowErr}
}
