package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatherly/pkg/domain"
)

func capOf(n int) *int { return &n }

func TestProjectStatus(t *testing.T) {
	tests := []struct {
		name      string
		confirmed int
		capacity  *int
		want      Status
	}{
		{"uncapped is always open", 5000, nil, StatusOpen},
		{"under threshold is open", 50, capOf(100), StatusOpen},
		{"at 80 percent is nearly full", 80, capOf(100), StatusNearlyFull},
		{"just under 80 percent is open", 79, capOf(100), StatusOpen},
		{"at capacity is full", 100, capOf(100), StatusFull},
		{"over capacity is full", 101, capOf(100), StatusFull},
		{"small event rounds against the member", 2, capOf(2), StatusFull},
		{"one of two seats taken is open", 1, capOf(2), StatusOpen},
		{"zero confirmed is open", 0, capOf(10), StatusOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectStatus(tt.confirmed, tt.capacity))
		})
	}
}

func TestSeatTransitions(t *testing.T) {
	now := time.Now().UTC()

	newEvent := func(capacity *int) *Event {
		e, err := NewEvent(id.NewEventID(), "Spring Gala", capacity, nil, now)
		require.NoError(t, err)
		return e
	}

	t.Run("taking the last seat flips status to full", func(t *testing.T) {
		e := newEvent(capOf(2))
		e.ApplySeatTaken(now)
		assert.Equal(t, StatusOpen, e.Status)
		e.ApplySeatTaken(now)
		assert.Equal(t, StatusFull, e.Status)
		assert.Equal(t, 2, e.ConfirmedCount)
	})

	t.Run("freeing a seat reopens the event", func(t *testing.T) {
		e := newEvent(capOf(2))
		e.ApplySeatTaken(now)
		e.ApplySeatTaken(now)
		e.ApplySeatFreed(now)
		assert.Equal(t, StatusOpen, e.Status)
		assert.Equal(t, 1, e.ConfirmedCount)
	})

	t.Run("freeing floors at zero", func(t *testing.T) {
		e := newEvent(capOf(2))
		e.ApplySeatFreed(now)
		assert.Equal(t, 0, e.ConfirmedCount)
	})

	t.Run("terminal status survives projection", func(t *testing.T) {
		e := newEvent(capOf(2))
		e.Status = StatusCancelled
		e.ApplySeatFreed(now)
		assert.Equal(t, StatusCancelled, e.Status)
	})
}

func TestNewEventInvariants(t *testing.T) {
	now := time.Now().UTC()

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewEvent(id.NewEventID(), "  ", nil, nil, now)
		require.Error(t, err)
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		_, err := NewEvent(id.NewEventID(), "Gala", capOf(0), nil, now)
		require.Error(t, err)
	})

	t.Run("nil capacity means unlimited", func(t *testing.T) {
		e, err := NewEvent(id.NewEventID(), "Gala", nil, nil, now)
		require.NoError(t, err)
		assert.False(t, e.AtCapacity())
	})
}

func TestAcceptingRegistrations(t *testing.T) {
	now := time.Now().UTC()
	e, err := NewEvent(id.NewEventID(), "Gala", capOf(1), nil, now)
	require.NoError(t, err)

	assert.True(t, e.AcceptingRegistrations())
	e.ApplySeatTaken(now)
	assert.True(t, e.AcceptingRegistrations(), "full events still waitlist")

	e.Status = StatusCompleted
	assert.False(t, e.AcceptingRegistrations())
}
