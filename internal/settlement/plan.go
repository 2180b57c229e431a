package settlement

import (
	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
)

// LedgerDelta is the compound increment a plan applies to the agent's
// daily cash ledger row. The repository turns it into a single
// UPDATE ... SET x = x + $n so concurrent settlements never lose counts.
type LedgerDelta struct {
	ActualCollection    float64
	NewDebtCreated      float64
	DeliveriesCompleted int
	DeliveriesFailed    int
	DebtCollections     int
}

// Plan is the full outcome of a settlement, computed against state loaded
// under row locks and applied verbatim by the services layer.
type Plan struct {
	Allocation models.Allocation
	DebtBefore float64
	DebtAfter  float64

	// Current-order mutation; zero OrderID means no order was involved.
	OrderUpdate *OrderUpdate

	// Oldest-first applications across the customer's other unpaid orders.
	FifoUpdates      []OrderUpdate
	FifoApplications []models.FifoApplication

	LedgerDelta LedgerDelta
	Alert       *models.CreditAlert
}

// PlanCompleteDelivery computes everything a completed delivery changes.
// unpaidOrders are the customer's other orders still carrying due (the
// delivered order excluded), which together back the customer's debt.
func PlanCompleteDelivery(delivery *models.Delivery, order *models.Order, customer *models.Customer, unpaidOrders []models.Order, collected float64) (*Plan, error) {
	alloc, err := Allocate(collected, order.Due(), customer.CurrentDebt)
	if err != nil {
		return nil, err
	}

	newPaid := round2(order.AmountPaid + alloc.AppliedToOrder)
	newStatus := models.StatusForPaid(order.Total, newPaid)
	if newStatus.Rank() < order.PaymentStatus.Rank() {
		// Cannot happen while amountPaid only grows; guard the invariant anyway.
		newStatus = order.PaymentStatus
	}

	plan := &Plan{
		Allocation: alloc,
		DebtBefore: customer.CurrentDebt,
		DebtAfter:  round2(customer.CurrentDebt - alloc.AppliedToDebt + alloc.NewDebtCreated),
		OrderUpdate: &OrderUpdate{
			OrderID:       order.ID,
			Applied:       alloc.AppliedToOrder,
			NewAmountPaid: newPaid,
			NewStatus:     newStatus,
		},
		LedgerDelta: LedgerDelta{
			ActualCollection:    collected,
			NewDebtCreated:      alloc.NewDebtCreated,
			DeliveriesCompleted: 1,
		},
	}

	if alloc.AppliedToDebt > 0 {
		updates, applications, remaining := ApplyFIFO(unpaidOrders, alloc.AppliedToDebt)
		if remaining > centEpsilon {
			// Customer debt said there was room but the orders disagree:
			// the running balance has drifted from its backing rows.
			return nil, apperrors.Newf(apperrors.CodePersistenceFailure,
				"customer %d debt %.2f not backed by unpaid orders (%.2f unapplied)",
				customer.ID, customer.CurrentDebt, remaining)
		}
		plan.FifoUpdates = updates
		plan.FifoApplications = applications
	}

	deliveryID := delivery.ID
	plan.Alert = CheckCreditLimit(customer, alloc, plan.DebtAfter, &deliveryID)
	return plan, nil
}

// PlanCollectDebt computes a standalone debt collection. Overcollection
// here is a hard error: there is no order to absorb the excess, only a
// cash handover that should have been counted correctly.
func PlanCollectDebt(customer *models.Customer, unpaidOrders []models.Order, amount float64) (*Plan, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidAmount, "collection amount must be positive")
	}
	if amount > customer.CurrentDebt+centEpsilon {
		return nil, apperrors.Newf(apperrors.CodeOverCollection,
			"amount %.2f exceeds current debt %.2f", amount, customer.CurrentDebt)
	}

	updates, applications, remaining := ApplyFIFO(unpaidOrders, amount)
	if remaining > centEpsilon {
		return nil, apperrors.Newf(apperrors.CodePersistenceFailure,
			"customer %d debt %.2f not backed by unpaid orders (%.2f unapplied)",
			customer.ID, customer.CurrentDebt, remaining)
	}

	return &Plan{
		Allocation:       models.Allocation{AppliedToDebt: amount},
		DebtBefore:       customer.CurrentDebt,
		DebtAfter:        round2(customer.CurrentDebt - amount),
		FifoUpdates:      updates,
		FifoApplications: applications,
		LedgerDelta: LedgerDelta{
			ActualCollection: amount,
			DebtCollections:  1,
		},
	}, nil
}

// PlanFailDelivery moves no money; it only counts the failed attempt.
func PlanFailDelivery() *Plan {
	return &Plan{LedgerDelta: LedgerDelta{DeliveriesFailed: 1}}
}
