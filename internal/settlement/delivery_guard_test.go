package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
)

func TestCheckDeliverySettleable(t *testing.T) {
	d := &models.Delivery{ID: 55, DelivererID: 3, Status: models.DeliveryArrived}
	assert.NoError(t, CheckDeliverySettleable(d, 3))
}

func TestCheckDeliverySettleableRejectsOtherAgent(t *testing.T) {
	d := &models.Delivery{ID: 55, DelivererID: 3, Status: models.DeliveryArrived}
	err := CheckDeliverySettleable(d, 4)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

// A repeated completion or failure of a settled delivery must surface
// AlreadyFinalized so retries and offline replays settle exactly once.
func TestCheckDeliverySettleableTerminalIsFinal(t *testing.T) {
	for _, status := range []models.DeliveryStatus{models.DeliveryDelivered, models.DeliveryFailed} {
		d := &models.Delivery{ID: 55, DelivererID: 3, Status: status}
		err := CheckDeliverySettleable(d, 3)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeAlreadyFinalized, apperrors.CodeOf(err))
	}
}
