// Package sentiment defines the boundary toward an external sentiment
// classifier. It does not classify anything itself and applies no
// thresholds to the scores it receives.
package sentiment

import (
	"context"
	"fmt"

	"github.com/cognicore/commentprep/pkg/commentprep"
	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
)

// Label is a classifier verdict.
type Label string

const (
	Negative Label = "NEGATIVE"
	Positive Label = "POSITIVE"
)

// Field names appended by Annotate.
const (
	FieldLabel         = "sentiment_label"
	FieldNegativeScore = "negative_score"
	FieldPositiveScore = "positive_score"
)

// Score is the classifier output for one text. The two scores are
// independent confidences.
type Score struct {
	Label         Label   `json:"label"`
	NegativeScore float64 `json:"negative_score"`
	PositiveScore float64 `json:"positive_score"`
}

// Validate checks the label and that both scores lie in [0,1].
func (s Score) Validate() error {
	if s.Label != Negative && s.Label != Positive {
		return fmt.Errorf("sentiment label %q: %w", s.Label, internalerr.ErrInvalidArgument)
	}
	if s.NegativeScore < 0 || s.NegativeScore > 1 {
		return fmt.Errorf("negative score %v: %w", s.NegativeScore, internalerr.ErrInvalidArgument)
	}
	if s.PositiveScore < 0 || s.PositiveScore > 1 {
		return fmt.Errorf("positive score %v: %w", s.PositiveScore, internalerr.ErrInvalidArgument)
	}
	return nil
}

// Classifier scores cleaned texts. It must return one Score per text, in
// order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Score, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, texts []string) ([]Score, error)

func (f ClassifierFunc) Classify(ctx context.Context, texts []string) ([]Score, error) {
	return f(ctx, texts)
}

// Annotate sends the clean text of every successful row of b to c and
// appends the label and scores to those rows. Failed rows are left alone.
// b.Records is replaced only when every score is valid.
func Annotate(ctx context.Context, c Classifier, b *commentprep.Batch) error {
	var (
		texts []string
		rows  []int
	)
	for i, rec := range b.Records {
		if b.Failed(i) {
			continue
		}
		text, err := commentprep.TextValue(fieldValue(rec, commentprep.FieldCleanText))
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		texts = append(texts, text)
		rows = append(rows, i)
	}
	if len(texts) == 0 {
		return nil
	}

	scores, err := c.Classify(ctx, texts)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if len(scores) != len(texts) {
		return fmt.Errorf("classify: got %d scores for %d texts: %w", len(scores), len(texts), internalerr.ErrInvalidArgument)
	}

	out := append([]record.Record(nil), b.Records...)
	for j, s := range scores {
		i := rows[j]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		rec, err := out[i].Append(
			record.Field{Name: FieldLabel, Value: string(s.Label)},
			record.Field{Name: FieldNegativeScore, Value: s.NegativeScore},
			record.Field{Name: FieldPositiveScore, Value: s.PositiveScore},
		)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = rec
	}
	b.Records = out
	return nil
}

func fieldValue(rec record.Record, name string) any {
	v, _ := rec.Get(name)
	return v
}
