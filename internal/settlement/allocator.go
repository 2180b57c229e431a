// Package settlement holds the pure money arithmetic of the engine:
// the allocator, the FIFO debt applier, the credit-limit guard, and the
// planners that turn loaded state into a set of row updates. Nothing in
// this package touches the database; the services layer executes plans
// inside a single transaction.
package settlement

import (
	"math"

	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
)

// Allocate splits a collected amount between the current order's due and
// the customer's existing debt:
//
//	appliedToOrder = min(collected, orderDue)
//	newDebtCreated = orderDue - appliedToOrder
//	appliedToDebt  = min(collected - appliedToOrder, existingDebt)
//
// Collecting more than orderDue + existingDebt is rejected outright.
// The legacy system computed the remainder and silently dropped it; money
// that belongs to nobody must never enter the ledger.
func Allocate(collected, orderDue, existingDebt float64) (models.Allocation, error) {
	if err := ValidateAmount(collected); err != nil {
		return models.Allocation{}, err
	}
	if orderDue < 0 || existingDebt < 0 {
		return models.Allocation{}, apperrors.New(apperrors.CodeInvalidAmount, "order due and existing debt must be non-negative")
	}
	// Sums of NUMERIC(12,2) values carry sub-cent float residue; only an
	// excess of at least a cent is real over-collection.
	if collected > orderDue+existingDebt+centEpsilon {
		return models.Allocation{}, apperrors.Newf(apperrors.CodeOverCollection,
			"collected %.2f exceeds order due %.2f plus existing debt %.2f", collected, orderDue, existingDebt)
	}

	appliedToOrder := round2(math.Min(collected, orderDue))
	remainder := collected - appliedToOrder

	return models.Allocation{
		AppliedToOrder: appliedToOrder,
		AppliedToDebt:  round2(math.Min(remainder, existingDebt)),
		NewDebtCreated: round2(orderDue - appliedToOrder),
	}, nil
}

// ValidateAmount rejects negative and non-finite money values.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperrors.New(apperrors.CodeInvalidAmount, "amount must be finite")
	}
	if amount < 0 {
		return apperrors.New(apperrors.CodeInvalidAmount, "amount must not be negative")
	}
	return nil
}
