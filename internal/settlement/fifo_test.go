package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distro-backend/internal/models"
)

func unpaidOrder(id int, total float64, createdAt time.Time) models.Order {
	return models.Order{
		ID:            id,
		CustomerID:    1,
		Total:         total,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     createdAt,
	}
}

func TestApplyFIFOOldestFirst(t *testing.T) {
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		unpaidOrder(11, 5000, base),
		unpaidOrder(12, 3000, base.Add(24*time.Hour)),
		unpaidOrder(13, 2000, base.Add(48*time.Hour)),
	}

	updates, applications, remaining := ApplyFIFO(orders, 6000)

	require.Len(t, updates, 2)
	assert.Zero(t, remaining)

	assert.Equal(t, 11, updates[0].OrderID)
	assert.Equal(t, 5000.0, updates[0].Applied)
	assert.Equal(t, models.PaymentPaid, updates[0].NewStatus)

	assert.Equal(t, 12, updates[1].OrderID)
	assert.Equal(t, 1000.0, updates[1].Applied)
	assert.Equal(t, models.PaymentPartial, updates[1].NewStatus)

	// Order 13 untouched: no funds reach a newer order while an older
	// one still has due.
	for _, app := range applications {
		assert.NotEqual(t, 13, app.OrderID)
	}
}

func TestApplyFIFOSortsInput(t *testing.T) {
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		unpaidOrder(13, 2000, base.Add(48*time.Hour)),
		unpaidOrder(11, 5000, base),
		unpaidOrder(12, 3000, base.Add(24*time.Hour)),
	}

	updates, _, _ := ApplyFIFO(orders, 5500)
	require.Len(t, updates, 2)
	assert.Equal(t, 11, updates[0].OrderID)
	assert.Equal(t, 12, updates[1].OrderID)
}

func TestApplyFIFOTieBreakByID(t *testing.T) {
	at := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		unpaidOrder(22, 100, at),
		unpaidOrder(21, 100, at),
	}

	updates, _, _ := ApplyFIFO(orders, 150)
	require.Len(t, updates, 2)
	assert.Equal(t, 21, updates[0].OrderID)
	assert.Equal(t, 100.0, updates[0].Applied)
	assert.Equal(t, 22, updates[1].OrderID)
	assert.Equal(t, 50.0, updates[1].Applied)
}

func TestApplyFIFOSkipsSettledOrders(t *testing.T) {
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	paid := unpaidOrder(31, 1000, base)
	paid.AmountPaid = 1000
	paid.PaymentStatus = models.PaymentPaid

	updates, _, remaining := ApplyFIFO([]models.Order{paid, unpaidOrder(32, 400, base.Add(time.Hour))}, 500)
	require.Len(t, updates, 1)
	assert.Equal(t, 32, updates[0].OrderID)
	assert.Equal(t, 400.0, updates[0].Applied)
	assert.Equal(t, 100.0, remaining)
}

func TestApplyFIFOPartialOrderTopUp(t *testing.T) {
	o := unpaidOrder(41, 900, time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC))
	o.AmountPaid = 300
	o.PaymentStatus = models.PaymentPartial

	updates, _, remaining := ApplyFIFO([]models.Order{o}, 600)
	require.Len(t, updates, 1)
	assert.Equal(t, 900.0, updates[0].NewAmountPaid)
	assert.Equal(t, models.PaymentPaid, updates[0].NewStatus)
	assert.Zero(t, remaining)
}
