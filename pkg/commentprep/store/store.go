package store

import (
	"context"
	"time"

	"github.com/cognicore/commentprep/pkg/commentprep"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
)

// DefaultListLimit is used by ListRuns when no positive limit is given.
const DefaultListLimit = 20

// Store persists processed batches. GetRun, RowErrors and TopKeywords
// return an error wrapping internalerr.ErrNotFound for unknown run IDs.
type Store interface {
	Close() error

	// SaveRun stores a run, replacing any run with the same ID.
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)

	// ListRuns returns summaries, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	RowErrors(ctx context.Context, id string) ([]RowError, error)
	TopKeywords(ctx context.Context, id string, k int) ([]keywords.Keyword, error)
}

// Run is one processed batch.
type Run struct {
	ID        string
	CreatedAt time.Time
	TextField string
	Options   string // JSON-encoded pipeline options
	Rows      []record.Record
	Errors    []RowError
	Keywords  []keywords.Keyword
}

// RowError is a stored per-row failure.
type RowError struct {
	Index   int
	Message string
}

// RunSummary describes a run without its rows.
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	TextField  string
	RowCount   int
	ErrorCount int
}

// FromBatch converts a processed batch into a Run. options is stored
// verbatim.
func FromBatch(b *commentprep.Batch, options string) Run {
	r := Run{
		ID:        b.ID.String(),
		CreatedAt: b.CreatedAt,
		TextField: b.TextField,
		Options:   options,
		Rows:      b.Records,
		Keywords:  b.Keywords,
	}
	for _, e := range b.Errors {
		r.Errors = append(r.Errors, RowError{Index: e.Index, Message: e.Err.Error()})
	}
	return r
}

// Summary returns the run's summary.
func (r Run) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		TextField:  r.TextField,
		RowCount:   len(r.Rows),
		ErrorCount: len(r.Errors),
	}
}
