package settlement

import "distro-backend/internal/models"

// CheckCreditLimit is the soft credit check that runs after a settlement.
// It returns an advisory alert when new debt pushed the customer past an
// enabled limit, and nil otherwise. Unlike the hard check at order
// creation (owned by the ordering service), this never blocks anything:
// the goods are delivered and the cash is counted by the time it runs.
func CheckCreditLimit(c *models.Customer, alloc models.Allocation, debtAfter float64, deliveryID *int) *models.CreditAlert {
	if alloc.NewDebtCreated <= 0 || !c.CreditLimitEnabled {
		return nil
	}
	if debtAfter <= c.CreditLimit {
		return nil
	}
	return &models.CreditAlert{
		CustomerID:  c.ID,
		DebtAfter:   debtAfter,
		CreditLimit: c.CreditLimit,
		Excess:      debtAfter - c.CreditLimit,
		DeliveryID:  deliveryID,
	}
}
