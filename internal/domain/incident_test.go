package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workflowTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestIncident_Verify(t *testing.T) {
	tests := []struct {
		decision Decision
		want     Status
	}{
		{DecisionConfirmed, StatusVerified},
		{DecisionRejected, StatusRejected},
		{DecisionInvestigate, StatusUnderReview},
		{DecisionOceanReview, StatusUnderReview},
	}
	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			inc := Incident{ID: "inc-1", Status: StatusPending}
			action, err := inc.Verify(tt.decision, " officer ", " cross-checked ", workflowTime)
			require.NoError(t, err)

			assert.Equal(t, tt.want, inc.Status)
			assert.Equal(t, "officer", inc.VerifiedBy)
			assert.Equal(t, "cross-checked", inc.VerificationNotes)
			require.NotNil(t, inc.VerifiedAt)
			assert.Equal(t, workflowTime, *inc.VerifiedAt)
			assert.Equal(t, workflowTime, inc.UpdatedAt)
			assert.Equal(t, ActionVerified, action.Kind)
			assert.Equal(t, "inc-1", action.IncidentID)
		})
	}
}

func TestIncident_Verify_OceanProtocolNoted(t *testing.T) {
	inc := Incident{ID: "inc-1", OceanHazardLevel: 3}
	action, err := inc.Verify(DecisionConfirmed, "officer", "", workflowTime)
	require.NoError(t, err)
	assert.Equal(t, "decision=confirmed method=AI-assisted with ocean protocol", action.Details)
}

func TestIncident_Verify_Invalid(t *testing.T) {
	inc := Incident{ID: "inc-1", Status: StatusPending}

	_, err := inc.Verify("maybe", "officer", "", workflowTime)
	require.ErrorIs(t, err, ErrInvalidDecision)

	_, err = inc.Verify(DecisionConfirmed, "  ", "", workflowTime)
	require.ErrorIs(t, err, ErrMissingActor)

	assert.Equal(t, StatusPending, inc.Status, "failed calls leave the incident untouched")
}

func TestIncident_AssignOnce(t *testing.T) {
	inc := Incident{ID: "inc-9"}

	action, err := inc.Assign("vol-a", workflowTime)
	require.NoError(t, err)
	assert.Equal(t, "vol-a", inc.Volunteer)
	require.NotNil(t, inc.AssignedAt)
	assert.Equal(t, ActionAssigned, action.Kind)
	assert.Equal(t, "vol-a", action.Actor)

	_, err = inc.Assign("vol-b", workflowTime.Add(time.Minute))
	require.ErrorIs(t, err, ErrAlreadyAssigned)
	assert.Equal(t, "vol-a", inc.Volunteer)
	assert.Equal(t, workflowTime, *inc.AssignedAt)

	_, err = (&Incident{}).Assign("", workflowTime)
	require.ErrorIs(t, err, ErrMissingActor)
}

func TestQueueKey(t *testing.T) {
	assert.Equal(t, 0, QueueKey(Incident{}))
	assert.Equal(t, 150, QueueKey(Incident{OceanHazardLevel: 3, Priority: 60}))
}

func TestSortQueue(t *testing.T) {
	t0 := workflowTime
	incidents := []Incident{
		{ID: "land-high", Priority: 80, CreatedAt: t0},
		{ID: "hab", Priority: 55, OceanHazardLevel: 1, CreatedAt: t0},
		{ID: "tsunami", Priority: 40, OceanHazardLevel: 3, CreatedAt: t0},
		{ID: "land-tie-late", Priority: 90, CreatedAt: t0.Add(time.Hour)},
		{ID: "land-tie-early", Priority: 90, CreatedAt: t0},
		{ID: "b-same", Priority: 10, CreatedAt: t0},
		{ID: "a-same", Priority: 10, CreatedAt: t0},
	}

	SortQueue(incidents)

	got := make([]string, len(incidents))
	for i, inc := range incidents {
		got[i] = inc.ID
	}
	want := []string{"tsunami", "land-tie-early", "land-tie-late", "hab", "land-high", "a-same", "b-same"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("queue order mismatch (-want +got):\n%s", diff)
	}
}
