package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to AssignmentStatus
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusSkipped, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusSkipped, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusSkipped, false},
		{StatusSkipped, StatusCompleted, false},
		{StatusSkipped, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
