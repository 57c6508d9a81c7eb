package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeConflict, "already registered")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("register: %w", New(CodeNotFound, "event not found"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("uncoded error matches nothing", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("preserves cause", func(t *testing.T) {
		cause := errors.New("pq: connection refused")
		err := Wrap(cause, CodeInternal, "failed to create registration")
		require.ErrorIs(t, err, cause)
		assert.True(t, HasCode(err, CodeInternal))
		assert.Contains(t, err.Error(), "failed to create registration")
	})

	t.Run("nil cause yields nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})
}

func TestCodeAndMessageExtraction(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		err := New(CodeConflict, "event is full")
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.Equal(t, "event is full", MessageOf(err))
	})

	t.Run("uncoded error defaults to internal", func(t *testing.T) {
		err := errors.New("pq: deadlock detected")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Equal(t, "internal error", MessageOf(err))
	})
}
