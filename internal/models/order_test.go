package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"PREPARING", "READY", "COMPLETED"} {
		status, err := ParseOrderStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, OrderStatus(valid), status)
	}

	for _, invalid := range []string{"", "preparing", "CANCELLED", "DONE"} {
		_, err := ParseOrderStatus(invalid)
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for _, valid := range []string{"CARD", "FPX"} {
		method, err := ParsePaymentMethod(valid)
		assert.NoError(t, err)
		assert.Equal(t, PaymentMethod(valid), method)
	}

	for _, invalid := range []string{"", "card", "CASH"} {
		_, err := ParsePaymentMethod(invalid)
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	}
}
