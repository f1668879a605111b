package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_Error(t *testing.T) {
	assert.Equal(t, "boom", (&ProviderError{Message: "boom"}).Error())
	assert.Equal(t,
		"Amount must be at least $0.50 usd (type=invalid_request_error code=amount_too_small)",
		(&ProviderError{
			Type:    "invalid_request_error",
			Code:    "amount_too_small",
			Message: "Amount must be at least $0.50 usd",
		}).Error(),
	)
}

func TestAsProviderError(t *testing.T) {
	t.Run("wrapped provider error keeps details", func(t *testing.T) {
		original := &ProviderError{Type: "card_error", Code: "card_declined", Message: "declined"}
		got := AsProviderError(fmt.Errorf("create intent: %w", original))

		assert.Same(t, original, got)
	})

	t.Run("plain error has no type or code", func(t *testing.T) {
		cause := errors.New("dial tcp: i/o timeout")
		got := AsProviderError(cause)

		assert.Empty(t, got.Type)
		assert.Empty(t, got.Code)
		assert.Equal(t, "dial tcp: i/o timeout", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}
