package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
)

func planFixture(due, debt float64) (*models.Delivery, *models.Order, *models.Customer) {
	order := &models.Order{
		ID:            100,
		CustomerID:    7,
		Total:         due,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC),
	}
	delivery := &models.Delivery{ID: 55, OrderID: order.ID, DelivererID: 3, Status: models.DeliveryArrived}
	customer := &models.Customer{ID: 7, Name: "Ramesh Traders", CurrentDebt: debt}
	return delivery, order, customer
}

// debtBackedOrders fabricates unpaid orders whose dues sum to debt.
func debtBackedOrders(debt float64) []models.Order {
	if debt == 0 {
		return nil
	}
	return []models.Order{{
		ID:            90,
		CustomerID:    7,
		Total:         debt,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     time.Date(2026, time.March, 20, 9, 0, 0, 0, time.UTC),
	}}
}

func TestPlanCompleteDeliveryScenarios(t *testing.T) {
	tests := []struct {
		name            string
		due, debt       float64
		collected       float64
		wantOrder       float64
		wantDebtApplied float64
		wantNewDebt     float64
		wantDebtAfter   float64
	}{
		{"full payment no debt", 500, 0, 500, 500, 0, 0, 0},
		{"full payment leaves debt alone", 500, 1000, 500, 500, 0, 0, 1000},
		{"overpayment reduces debt", 500, 1000, 1200, 500, 700, 0, 300},
		{"short payment creates debt", 500, 0, 300, 300, 0, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delivery, order, customer := planFixture(tt.due, tt.debt)
			plan, err := PlanCompleteDelivery(delivery, order, customer, debtBackedOrders(tt.debt), tt.collected)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOrder, plan.Allocation.AppliedToOrder)
			assert.Equal(t, tt.wantDebtApplied, plan.Allocation.AppliedToDebt)
			assert.Equal(t, tt.wantNewDebt, plan.Allocation.NewDebtCreated)
			assert.Equal(t, tt.wantDebtAfter, plan.DebtAfter)

			// Debt equation.
			assert.Equal(t, plan.DebtBefore-plan.Allocation.AppliedToDebt+plan.Allocation.NewDebtCreated, plan.DebtAfter)

			// Ledger increments mirror the settlement.
			assert.Equal(t, tt.collected, plan.LedgerDelta.ActualCollection)
			assert.Equal(t, tt.wantNewDebt, plan.LedgerDelta.NewDebtCreated)
			assert.Equal(t, 1, plan.LedgerDelta.DeliveriesCompleted)

			require.NotNil(t, plan.OrderUpdate)
			assert.Equal(t, models.StatusForPaid(order.Total, order.AmountPaid+tt.wantOrder), plan.OrderUpdate.NewStatus)
		})
	}
}

func TestPlanCompleteDeliveryFIFOReachesOldestFirst(t *testing.T) {
	delivery, order, customer := planFixture(500, 800)
	older := models.Order{ID: 80, CustomerID: 7, Total: 500, PaymentStatus: models.PaymentUnpaid,
		CreatedAt: time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)}
	newer := models.Order{ID: 81, CustomerID: 7, Total: 300, PaymentStatus: models.PaymentUnpaid,
		CreatedAt: time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)}

	plan, err := PlanCompleteDelivery(delivery, order, customer, []models.Order{newer, older}, 1100)
	require.NoError(t, err)
	require.Len(t, plan.FifoApplications, 2)
	assert.Equal(t, 80, plan.FifoApplications[0].OrderID)
	assert.Equal(t, 500.0, plan.FifoApplications[0].Amount)
	assert.Equal(t, 81, plan.FifoApplications[1].OrderID)
	assert.Equal(t, 100.0, plan.FifoApplications[1].Amount)
}

func TestPlanCompleteDeliveryRejectsExcess(t *testing.T) {
	delivery, order, customer := planFixture(500, 200)
	_, err := PlanCompleteDelivery(delivery, order, customer, debtBackedOrders(200), 800)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOverCollection, apperrors.CodeOf(err))
}

func TestPlanCompleteDeliveryDetectsDriftedDebt(t *testing.T) {
	// currentDebt says 1000 but no unpaid order backs it.
	delivery, order, customer := planFixture(500, 1000)
	_, err := PlanCompleteDelivery(delivery, order, customer, nil, 1200)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePersistenceFailure, apperrors.CodeOf(err))
}

func TestPlanCompleteDeliveryCreditAlert(t *testing.T) {
	delivery, order, customer := planFixture(500, 400)
	customer.CreditLimitEnabled = true
	customer.CreditLimit = 500

	plan, err := PlanCompleteDelivery(delivery, order, customer, debtBackedOrders(400), 200)
	require.NoError(t, err)
	require.NotNil(t, plan.Alert)
	assert.Equal(t, 700.0, plan.Alert.DebtAfter)
	assert.Equal(t, 200.0, plan.Alert.Excess)
	require.NotNil(t, plan.Alert.DeliveryID)
	assert.Equal(t, delivery.ID, *plan.Alert.DeliveryID)
}

func TestPlanCompleteDeliveryNoAlertWhenLimitDisabled(t *testing.T) {
	delivery, order, customer := planFixture(500, 400)
	customer.CreditLimit = 500 // enabled flag left off

	plan, err := PlanCompleteDelivery(delivery, order, customer, debtBackedOrders(400), 200)
	require.NoError(t, err)
	assert.Nil(t, plan.Alert)
}

func TestPlanCollectDebt(t *testing.T) {
	customer := &models.Customer{ID: 7, CurrentDebt: 10000}
	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: 1, CustomerID: 7, Total: 5000, PaymentStatus: models.PaymentUnpaid, CreatedAt: base},
		{ID: 2, CustomerID: 7, Total: 3000, PaymentStatus: models.PaymentUnpaid, CreatedAt: base.Add(time.Hour)},
		{ID: 3, CustomerID: 7, Total: 2000, PaymentStatus: models.PaymentUnpaid, CreatedAt: base.Add(2 * time.Hour)},
	}

	plan, err := PlanCollectDebt(customer, orders, 6000)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, plan.DebtAfter)
	assert.Equal(t, 1, plan.LedgerDelta.DebtCollections)
	assert.Equal(t, 6000.0, plan.LedgerDelta.ActualCollection)
	assert.Zero(t, plan.LedgerDelta.NewDebtCreated)

	require.Len(t, plan.FifoApplications, 2)
	assert.Equal(t, models.FifoApplication{OrderID: 1, Amount: 5000}, plan.FifoApplications[0])
	assert.Equal(t, models.FifoApplication{OrderID: 2, Amount: 1000}, plan.FifoApplications[1])
}

// Collecting exactly the standing debt must succeed even when the backing
// orders' dues don't sum bit-exactly in float64 (0.70 + 0.10 vs 0.80).
func TestPlanCollectDebtExactPayoffCentAmounts(t *testing.T) {
	customer := &models.Customer{ID: 7, CurrentDebt: 0.80}
	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: 1, CustomerID: 7, Total: 0.70, PaymentStatus: models.PaymentUnpaid, CreatedAt: base},
		{ID: 2, CustomerID: 7, Total: 0.10, PaymentStatus: models.PaymentUnpaid, CreatedAt: base.Add(time.Hour)},
	}

	plan, err := PlanCollectDebt(customer, orders, 0.80)
	require.NoError(t, err)
	assert.Zero(t, plan.DebtAfter)

	require.Len(t, plan.FifoApplications, 2)
	assert.Equal(t, models.FifoApplication{OrderID: 1, Amount: 0.70}, plan.FifoApplications[0])
	assert.Equal(t, models.FifoApplication{OrderID: 2, Amount: 0.10}, plan.FifoApplications[1])
	for _, u := range plan.FifoUpdates {
		assert.Equal(t, models.PaymentPaid, u.NewStatus)
	}
}

func TestPlanCompleteDeliveryExactPayoffCentAmounts(t *testing.T) {
	delivery, order, customer := planFixture(0.10, 0.70)
	plan, err := PlanCompleteDelivery(delivery, order, customer, debtBackedOrders(0.70), 0.80)
	require.NoError(t, err)
	assert.Equal(t, 0.10, plan.Allocation.AppliedToOrder)
	assert.Equal(t, 0.70, plan.Allocation.AppliedToDebt)
	assert.Zero(t, plan.DebtAfter)
}

func TestPlanCollectDebtRejectsOvercollection(t *testing.T) {
	customer := &models.Customer{ID: 7, CurrentDebt: 1500}
	_, err := PlanCollectDebt(customer, debtBackedOrders(1500), 1501)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOverCollection, apperrors.CodeOf(err))
}

func TestPlanCollectDebtRejectsNonPositive(t *testing.T) {
	customer := &models.Customer{ID: 7, CurrentDebt: 1500}
	for _, amount := range []float64{0, -20} {
		_, err := PlanCollectDebt(customer, nil, amount)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidAmount, apperrors.CodeOf(err))
	}
}

func TestPlanFailDelivery(t *testing.T) {
	plan := PlanFailDelivery()
	assert.Equal(t, 1, plan.LedgerDelta.DeliveriesFailed)
	assert.Zero(t, plan.LedgerDelta.ActualCollection)
	assert.Nil(t, plan.OrderUpdate)
}
