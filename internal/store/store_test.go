package store_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/couchcryptid/harbinger/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func backends(t *testing.T) map[string]func(t *testing.T) store.Store {
	t.Helper()
	return map[string]func(t *testing.T) store.Store{
		"memory": func(*testing.T) store.Store { return store.NewMemory() },
		"sqlite": func(t *testing.T) store.Store {
			s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "harbinger.db"), false)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	clk := clockwork.NewFakeClockAt(base.Add(time.Hour))
	domain.SetClock(clk)
	t.Cleanup(func() { domain.SetClock(nil) })
	return clk
}

func incident(id string, level, priority int, createdOffset time.Duration) domain.Incident {
	created := base.Add(createdOffset)
	return domain.Incident{
		ID:               id,
		CreatedAt:        created,
		UpdatedAt:        created,
		Reporter:         "fisher",
		Location:         "Kochi",
		Geo:              domain.Geo{Lat: 9.9312, Lon: 76.2673},
		Priority:         priority,
		OceanHazardLevel: level,
		Status:           domain.StatusPending,
	}
}

func ids(incidents []domain.Incident) []string {
	out := make([]string, len(incidents))
	for i, inc := range incidents {
		out[i] = inc.ID
	}
	return out
}

func TestStore_SaveAndGet(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			inc := incident("inc-a", 2, 70, 0)

			created, err := s.Save(ctx, inc)
			require.NoError(t, err)
			assert.True(t, created)

			got, err := s.Get(ctx, "inc-a")
			require.NoError(t, err)
			assert.Equal(t, inc, got)
		})
	}
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	freezeClock(t)
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			inc := incident("inc-a", 0, 40, 0)

			_, err := s.Save(ctx, inc)
			require.NoError(t, err)
			_, err = s.Verify(ctx, "inc-a", domain.DecisionConfirmed, "officer", "")
			require.NoError(t, err)

			created, err := s.Save(ctx, inc)
			require.NoError(t, err)
			assert.False(t, created)

			got, err := s.Get(ctx, "inc-a")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusVerified, got.Status, "redelivery must not reset workflow state")

			actions, err := s.Actions(ctx, "inc-a")
			require.NoError(t, err)
			require.Len(t, actions, 2)
			assert.Equal(t, domain.ActionReported, actions[0].Kind)
			assert.Equal(t, "priority=40 ocean_hazard_level=0", actions[0].Details)
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			_, err := s.Get(context.Background(), "inc-missing")
			require.ErrorIs(t, err, store.ErrNotFound)

			_, err = s.Actions(context.Background(), "inc-missing")
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestStore_ListQueueOrder(t *testing.T) {
	freezeClock(t)
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			for _, inc := range []domain.Incident{
				incident("inc-flood", 0, 80, 0),
				incident("inc-tsunami", 3, 90, time.Minute),
				incident("inc-surge-late", 2, 40, 2*time.Minute),
				incident("inc-surge-early", 2, 40, time.Minute),
				incident("inc-tie-b", 0, 95, 0),
				incident("inc-tie-a", 0, 95, 0),
			} {
				_, err := s.Save(ctx, inc)
				require.NoError(t, err)
			}

			all, err := s.List(ctx, store.Filter{})
			require.NoError(t, err)
			want := []string{"inc-tsunami", "inc-surge-early", "inc-surge-late", "inc-tie-a", "inc-tie-b", "inc-flood"}
			if diff := cmp.Diff(want, ids(all)); diff != "" {
				t.Errorf("queue order mismatch (-want +got):\n%s", diff)
			}

			top, err := s.List(ctx, store.Filter{Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, []string{"inc-tsunami", "inc-surge-early"}, ids(top))

			_, err = s.Verify(ctx, "inc-tsunami", domain.DecisionConfirmed, "officer", "")
			require.NoError(t, err)
			_, err = s.Verify(ctx, "inc-flood", domain.DecisionRejected, "officer", "")
			require.NoError(t, err)

			pending, err := s.List(ctx, store.Filter{Unverified: true})
			require.NoError(t, err)
			assert.Equal(t, []string{"inc-surge-early", "inc-surge-late", "inc-tie-a", "inc-tie-b", "inc-flood"}, ids(pending))
		})
	}
}

func TestStore_Verify(t *testing.T) {
	clk := freezeClock(t)
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			_, err := s.Save(ctx, incident("inc-a", 3, 90, 0))
			require.NoError(t, err)

			got, err := s.Verify(ctx, "inc-a", domain.DecisionOceanReview, "coast guard", "checking buoys")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusUnderReview, got.Status)
			assert.Equal(t, "coast guard", got.VerifiedBy)
			require.NotNil(t, got.VerifiedAt)
			assert.True(t, got.VerifiedAt.Equal(clk.Now()))

			stored, err := s.Get(ctx, "inc-a")
			require.NoError(t, err)
			assert.Equal(t, got, stored)

			actions, err := s.Actions(ctx, "inc-a")
			require.NoError(t, err)
			require.Len(t, actions, 2)
			assert.Equal(t, domain.ActionVerified, actions[1].Kind)
			assert.Equal(t, "coast guard", actions[1].Actor)
			assert.Equal(t, "decision=ocean_review method=AI-assisted with ocean protocol", actions[1].Details)
			assert.Greater(t, actions[1].ID, actions[0].ID)
		})
	}
}

func TestStore_VerifyErrors(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			_, err := s.Save(ctx, incident("inc-a", 0, 50, 0))
			require.NoError(t, err)

			_, err = s.Verify(ctx, "inc-missing", domain.DecisionConfirmed, "officer", "")
			require.ErrorIs(t, err, store.ErrNotFound)

			_, err = s.Verify(ctx, "inc-a", "maybe", "officer", "")
			require.ErrorIs(t, err, domain.ErrInvalidDecision)

			got, err := s.Get(ctx, "inc-a")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusPending, got.Status)

			actions, err := s.Actions(ctx, "inc-a")
			require.NoError(t, err)
			assert.Len(t, actions, 1, "failed changes write no action")
		})
	}
}

func TestStore_AssignOnce(t *testing.T) {
	freezeClock(t)
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			_, err := s.Save(ctx, incident("inc-a", 1, 55, 0))
			require.NoError(t, err)

			got, err := s.Assign(ctx, "inc-a", "asha")
			require.NoError(t, err)
			assert.Equal(t, "asha", got.Volunteer)
			require.NotNil(t, got.AssignedAt)

			_, err = s.Assign(ctx, "inc-a", "ravi")
			require.ErrorIs(t, err, domain.ErrAlreadyAssigned)

			stored, err := s.Get(ctx, "inc-a")
			require.NoError(t, err)
			assert.Equal(t, "asha", stored.Volunteer)

			actions, err := s.Actions(ctx, "inc-a")
			require.NoError(t, err)
			require.Len(t, actions, 2)
			assert.Equal(t, domain.ActionAssigned, actions[1].Kind)
		})
	}
}

func TestStore_CheckReadiness(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, open(t).CheckReadiness(context.Background()))
		})
	}
}

func TestSQLStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harbinger.db")
	ctx := context.Background()

	s, err := store.Open(ctx, path, false)
	require.NoError(t, err)
	_, err = s.Save(ctx, incident("inc-a", 0, 50, 0))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.Open(ctx, path, false)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "inc-a")
	require.NoError(t, err)
	assert.Equal(t, "Kochi", got.Location)
}

// --- Loader ---

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Save(context.Context, domain.Incident) (bool, error) { return false, f.err }

func TestLoader_LoadBatch(t *testing.T) {
	m := observability.NewMetricsForTesting()
	s := store.NewMemory()
	l := store.NewLoader(s, slog.New(slog.NewTextHandler(io.Discard, nil)), m)

	batch := []domain.Incident{
		incident("inc-a", 3, 90, 0),
		incident("inc-b", 0, 40, 0),
		incident("inc-a", 3, 90, 0),
	}
	require.NoError(t, l.LoadBatch(context.Background(), batch))

	all, err := s.List(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IncidentsStored.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IncidentsStored.WithLabelValues("0")))
}

func TestLoader_LoadBatchError(t *testing.T) {
	boom := errors.New("disk full")
	l := store.NewLoader(failingStore{err: boom}, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	err := l.LoadBatch(context.Background(), []domain.Incident{incident("inc-a", 0, 10, 0)})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "inc-a")
}
