package settlement

import (
	"sort"

	"distro-backend/internal/models"
)

// OrderUpdate is one order mutation produced by a plan. NewAmountPaid is
// absolute (not a delta) so the repository write is a plain UPDATE.
type OrderUpdate struct {
	OrderID       int
	Applied       float64
	NewAmountPaid float64
	NewStatus     models.PaymentStatus
}

// ApplyFIFO distributes amount across the customer's unpaid orders,
// oldest first, ties broken by order id. It returns the per-order
// updates, the matching audit list, and whatever could not be applied
// because every order was already covered.
//
// Orders are re-sorted here even though the repository already orders
// its SELECT; determinism of the split must not depend on a query.
func ApplyFIFO(orders []models.Order, amount float64) ([]OrderUpdate, []models.FifoApplication, float64) {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var updates []OrderUpdate
	var applications []models.FifoApplication
	remaining := amount

	for _, o := range sorted {
		// Sub-cent remainders are float residue, not money left to apply.
		if remaining <= centEpsilon {
			break
		}
		due := round2(o.Due())
		if due <= 0 {
			continue
		}
		applied := due
		if remaining < due {
			applied = round2(remaining)
		}
		newPaid := round2(o.AmountPaid + applied)
		updates = append(updates, OrderUpdate{
			OrderID:       o.ID,
			Applied:       applied,
			NewAmountPaid: newPaid,
			NewStatus:     models.StatusForPaid(o.Total, newPaid),
		})
		applications = append(applications, models.FifoApplication{OrderID: o.ID, Amount: applied})
		remaining -= applied
	}

	if remaining <= centEpsilon {
		remaining = 0
	}
	return updates, applications, remaining
}
