package settlement

import (
	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
)

// CheckDeliverySettleable guards both delivery entry points: only the
// assigned agent may act on a delivery, and a terminal delivery absorbs
// any repeat attempt. The AlreadyFinalized code is the idempotency
// signal offline-sync replays rely on to report duplicates.
func CheckDeliverySettleable(d *models.Delivery, callerID int) error {
	if d.DelivererID != callerID {
		return apperrors.Newf(apperrors.CodeForbidden, "delivery %d is not assigned to caller", d.ID)
	}
	if d.Status.IsTerminal() {
		return apperrors.Newf(apperrors.CodeAlreadyFinalized, "delivery %d is already %s", d.ID, d.Status)
	}
	return nil
}
