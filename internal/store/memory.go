package store

import (
	"context"
	"sync"

	"github.com/couchcryptid/harbinger/internal/domain"
)

// Memory is an in-process Store used by tests and the CLI.
type Memory struct {
	mu        sync.RWMutex
	incidents map[string]domain.Incident
	actions   []domain.Action
	nextID    int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{incidents: make(map[string]domain.Incident)}
}

func (m *Memory) Save(_ context.Context, inc domain.Incident) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incidents[inc.ID]; ok {
		return false, nil
	}
	m.incidents[inc.ID] = inc
	m.appendAction(reportedAction(inc))
	return true, nil
}

func (m *Memory) Get(_ context.Context, id string) (domain.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inc, ok := m.incidents[id]
	if !ok {
		return domain.Incident{}, notFound(id)
	}
	return inc, nil
}

func (m *Memory) List(_ context.Context, f Filter) ([]domain.Incident, error) {
	m.mu.RLock()
	out := make([]domain.Incident, 0, len(m.incidents))
	for _, inc := range m.incidents {
		if f.match(inc) {
			out = append(out, inc)
		}
	}
	m.mu.RUnlock()

	domain.SortQueue(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) Verify(_ context.Context, id string, decision domain.Decision, by, notes string) (domain.Incident, error) {
	return m.update(id, func(inc *domain.Incident) (domain.Action, error) {
		return inc.Verify(decision, by, notes, domain.Now())
	})
}

func (m *Memory) Assign(_ context.Context, id, volunteer string) (domain.Incident, error) {
	return m.update(id, func(inc *domain.Incident) (domain.Action, error) {
		return inc.Assign(volunteer, domain.Now())
	})
}

func (m *Memory) update(id string, fn func(*domain.Incident) (domain.Action, error)) (domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return domain.Incident{}, notFound(id)
	}
	action, err := fn(&inc)
	if err != nil {
		return domain.Incident{}, err
	}
	m.incidents[id] = inc
	m.appendAction(action)
	return inc, nil
}

func (m *Memory) Actions(_ context.Context, id string) ([]domain.Action, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.incidents[id]; !ok {
		return nil, notFound(id)
	}
	var out []domain.Action
	for _, a := range m.actions {
		if a.IncidentID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

// CheckReadiness always succeeds.
func (m *Memory) CheckReadiness(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) appendAction(a domain.Action) {
	m.nextID++
	a.ID = m.nextID
	m.actions = append(m.actions, a)
}
