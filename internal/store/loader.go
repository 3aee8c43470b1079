package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/observability"
)

// Loader adapts a Store to the pipeline's batch loader stage.
type Loader struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a pipeline loader that persists incidents to s.
func NewLoader(s Store, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{store: s, logger: logger, metrics: metrics}
}

// LoadBatch saves each incident. Incidents already stored are skipped. The
// first error aborts the batch so the caller can retry it.
func (l *Loader) LoadBatch(ctx context.Context, incidents []domain.Incident) error {
	for _, inc := range incidents {
		if _, err := l.Save(ctx, inc); err != nil {
			return err
		}
	}
	return nil
}

// Save stores one incident and counts it when it is new.
func (l *Loader) Save(ctx context.Context, inc domain.Incident) (bool, error) {
	created, err := l.store.Save(ctx, inc)
	if err != nil {
		return false, fmt.Errorf("store incident %s: %w", inc.ID, err)
	}
	if !created {
		l.logger.Debug("incident already stored", "id", inc.ID)
		return false, nil
	}
	l.metrics.IncidentsStored.WithLabelValues(strconv.Itoa(inc.OceanHazardLevel)).Inc()
	return true, nil
}
