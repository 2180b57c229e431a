package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderDue(t *testing.T) {
	o := &Order{Total: 500, AmountPaid: 120}
	assert.Equal(t, 380.0, o.Due())

	// Overpaid orders never report negative due.
	o = &Order{Total: 500, AmountPaid: 600}
	assert.Equal(t, 0.0, o.Due())
}

func TestStatusForPaid(t *testing.T) {
	assert.Equal(t, PaymentUnpaid, StatusForPaid(500, 0))
	assert.Equal(t, PaymentPartial, StatusForPaid(500, 1))
	assert.Equal(t, PaymentPartial, StatusForPaid(500, 499.99))
	assert.Equal(t, PaymentPaid, StatusForPaid(500, 500))
	assert.Equal(t, PaymentPaid, StatusForPaid(500, 500.01))

	// Zero-total orders are paid immediately on any non-negative payment.
	assert.Equal(t, PaymentPaid, StatusForPaid(0, 0.01))
}

func TestPaymentStatusRank(t *testing.T) {
	// payment_status only moves forward; rank encodes that order.
	assert.Less(t, PaymentUnpaid.Rank(), PaymentPartial.Rank())
	assert.Less(t, PaymentPartial.Rank(), PaymentPaid.Rank())
	assert.Equal(t, -1, PaymentStatus("bogus").Rank())
}

func TestDeliveryStatusIsTerminal(t *testing.T) {
	assert.True(t, DeliveryDelivered.IsTerminal())
	assert.True(t, DeliveryFailed.IsTerminal())
	assert.False(t, DeliveryAssigned.IsTerminal())
	assert.False(t, DeliveryInTransit.IsTerminal())
	assert.False(t, DeliveryArrived.IsTerminal())
}
