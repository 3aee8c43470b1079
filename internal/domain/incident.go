package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	// ErrAlreadyAssigned is returned when a volunteer is assigned to an
	// incident that already has one.
	ErrAlreadyAssigned = errors.New("incident already has a volunteer")
	// ErrInvalidDecision is returned for an unrecognized verification decision.
	ErrInvalidDecision = errors.New("invalid verification decision")
	// ErrMissingActor is returned when a workflow change names no actor.
	ErrMissingActor = errors.New("actor is required")
)

// Decision is a responder's verification outcome.
type Decision string

const (
	DecisionConfirmed   Decision = "confirmed"
	DecisionRejected    Decision = "rejected"
	DecisionInvestigate Decision = "investigate"
	DecisionOceanReview Decision = "ocean_review"
)

func (d Decision) status() (Status, bool) {
	switch d {
	case DecisionConfirmed:
		return StatusVerified, true
	case DecisionRejected:
		return StatusRejected, true
	case DecisionInvestigate, DecisionOceanReview:
		return StatusUnderReview, true
	default:
		return "", false
	}
}

// Verify records a verification decision. Decisions may be revised; each
// call returns the action log entry to persist.
func (i *Incident) Verify(decision Decision, by, notes string, at time.Time) (Action, error) {
	status, ok := decision.status()
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	by = strings.TrimSpace(by)
	if by == "" {
		return Action{}, ErrMissingActor
	}

	at = at.UTC()
	i.Status = status
	i.VerifiedBy = by
	i.VerificationNotes = strings.TrimSpace(notes)
	i.VerifiedAt = &at
	i.UpdatedAt = at

	method := "AI-assisted"
	if i.OceanHazardLevel > 0 {
		method = "AI-assisted with ocean protocol"
	}
	return Action{
		IncidentID: i.ID,
		Kind:       ActionVerified,
		Actor:      by,
		Details:    fmt.Sprintf("decision=%s method=%s", decision, method),
		At:         at,
	}, nil
}

// Assign gives the incident to a volunteer. An incident is assigned at most
// once.
func (i *Incident) Assign(volunteer string, at time.Time) (Action, error) {
	volunteer = strings.TrimSpace(volunteer)
	if volunteer == "" {
		return Action{}, ErrMissingActor
	}
	if i.Volunteer != "" {
		return Action{}, fmt.Errorf("%w: %s", ErrAlreadyAssigned, i.Volunteer)
	}

	at = at.UTC()
	i.Volunteer = volunteer
	i.AssignedAt = &at
	i.UpdatedAt = at

	return Action{
		IncidentID: i.ID,
		Kind:       ActionAssigned,
		Actor:      volunteer,
		Details:    fmt.Sprintf("volunteer %s assigned to incident %s", volunteer, i.ID),
		At:         at,
	}, nil
}

// QueueKey is the responder queue rank: ocean hazards dominate, then
// priority.
func QueueKey(inc Incident) int {
	return inc.OceanHazardLevel*30 + inc.Priority
}

// SortQueue orders incidents for responders: highest QueueKey first, then
// oldest first, then by ID.
func SortQueue(incidents []Incident) {
	slices.SortStableFunc(incidents, func(a, b Incident) int {
		if ka, kb := QueueKey(a), QueueKey(b); ka != kb {
			return kb - ka
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
