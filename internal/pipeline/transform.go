package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/harbinger/internal/domain"
)

// Triager builds an incident from a report.
type Triager interface {
	Triage(ctx context.Context, report domain.Report) (domain.Incident, error)
}

// ReportTransformer implements Transformer by decoding report messages and
// handing them to a Triager.
type ReportTransformer struct {
	triager Triager
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(t Triager) *ReportTransformer {
	return &ReportTransformer{triager: t}
}

func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Incident, error) {
	report, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Incident{}, err
	}
	return t.triager.Triage(ctx, report)
}

// MultiLoader fans a batch out to several loaders in order. The first
// failure stops the fan-out; loaders must tolerate seeing a batch again
// when it is retried.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, incidents []domain.Incident) error {
	for i, l := range m {
		if err := l.LoadBatch(ctx, incidents); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
