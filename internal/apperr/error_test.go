package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		err := NotFound("Order", "o-1")
		assert.Equal(t, `not found: Order "o-1": no Order with this id`, err.Error())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Validation without id", func(t *testing.T) {
		err := Validation("User", "", "email is required")
		assert.Equal(t, "validation failed: User: email is required", err.Error())
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("MissingRef", func(t *testing.T) {
		err := MissingRef("Order", "", "menuItemId", "m-9")
		assert.Contains(t, err.Error(), `menuItemId "m-9" does not exist`)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestTerminalStateMatchesInvalidTransition(t *testing.T) {
	err := TerminalState("Order", "o-1", "CANCELLED")

	assert.ErrorIs(t, err, ErrAlreadyInTerminalState)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.NotErrorIs(t, err, ErrNotFound)

	plain := InvalidTransition("Order", "o-1", "PLACED", "DELIVERED")
	assert.ErrorIs(t, plain, ErrInvalidStateTransition)
	assert.NotErrorIs(t, plain, ErrAlreadyInTerminalState)
}

func TestRateUnavailableHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:443: connection refused")
	err := RateUnavailable("EUR", "USD", cause)

	assert.ErrorIs(t, err, ErrRateSourceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "10.0.0.1")
}

func TestIsTaxonomy(t *testing.T) {
	assert.True(t, IsTaxonomy(HasDependents("User", "u-1", "wallets", 2)))
	assert.True(t, IsTaxonomy(fmt.Errorf("wrapped: %w", NotFound("User", "u-1"))))
	assert.False(t, IsTaxonomy(errors.New("boom")))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "ok", Code(nil))
	assert.Equal(t, "already_in_terminal_state", Code(TerminalState("Order", "o-1", "DELIVERED")))
	assert.Equal(t, "invalid_state_transition", Code(InvalidTransition("Order", "o-1", "PLACED", "DELIVERED")))
	assert.Equal(t, "has_dependents", Code(HasDependents("User", "u-1", "orders", 1)))
	assert.Equal(t, "internal", Code(errors.New("boom")))
}
