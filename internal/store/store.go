// Package store persists triaged incidents and their action log.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/harbinger/internal/domain"
)

// ErrNotFound is returned when no incident has the requested ID.
var ErrNotFound = errors.New("incident not found")

// Filter narrows List results.
type Filter struct {
	// Unverified keeps only incidents whose status is not verified.
	Unverified bool
	// Limit caps the result count; zero means no limit.
	Limit int
}

// Store is an incident repository. Save is idempotent on the incident ID:
// the first write wins, so redelivered reports never reset workflow state.
type Store interface {
	Save(ctx context.Context, inc domain.Incident) (created bool, err error)
	Get(ctx context.Context, id string) (domain.Incident, error)
	// List returns incidents in responder queue order.
	List(ctx context.Context, f Filter) ([]domain.Incident, error)
	Verify(ctx context.Context, id string, decision domain.Decision, by, notes string) (domain.Incident, error)
	Assign(ctx context.Context, id, volunteer string) (domain.Incident, error)
	Actions(ctx context.Context, id string) ([]domain.Action, error)
	CheckReadiness(ctx context.Context) error
	Close() error
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func reportedAction(inc domain.Incident) domain.Action {
	return domain.Action{
		IncidentID: inc.ID,
		Kind:       domain.ActionReported,
		Actor:      inc.Reporter,
		Details:    fmt.Sprintf("priority=%d ocean_hazard_level=%d", inc.Priority, inc.OceanHazardLevel),
		At:         inc.CreatedAt,
	}
}

func (f Filter) match(inc domain.Incident) bool {
	return !f.Unverified || inc.Status != domain.StatusVerified
}
