package food

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-graph/internal/apperr"
)

func TestCanMoveTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     error
	}{
		{StatusPlaced, StatusPreparing, nil},
		{StatusPlaced, StatusCancelled, nil},
		{StatusPreparing, StatusOutForDelivery, nil},
		{StatusPreparing, StatusCancelled, nil},
		{StatusOutForDelivery, StatusDelivered, nil},
		{StatusPlaced, StatusOutForDelivery, apperr.ErrInvalidStateTransition},
		{StatusPlaced, StatusDelivered, apperr.ErrInvalidStateTransition},
		{StatusPlaced, StatusPlaced, apperr.ErrInvalidStateTransition},
		{StatusOutForDelivery, StatusCancelled, apperr.ErrInvalidStateTransition},
		{StatusPreparing, StatusPlaced, apperr.ErrInvalidStateTransition},
		{StatusDelivered, StatusCancelled, apperr.ErrAlreadyInTerminalState},
		{StatusCancelled, StatusCancelled, apperr.ErrAlreadyInTerminalState},
		{StatusCancelled, StatusPreparing, apperr.ErrAlreadyInTerminalState},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.CanMoveTo("o1", tt.to)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), `Order "o1"`)
		})
	}
}

func TestTerminalAlsoCountsAsInvalidTransition(t *testing.T) {
	err := StatusDelivered.CanMoveTo("o1", StatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
	assert.Equal(t, "already_in_terminal_state", apperr.Code(err))
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus(" out_for_delivery ")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, s)

	_, err = ParseOrderStatus("LOST")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
}
