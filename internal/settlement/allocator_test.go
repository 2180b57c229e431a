package settlement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distro-backend/internal/apperrors"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name                 string
		collected, due, debt float64
		wantOrder, wantDebt  float64
		wantNewDebt          float64
	}{
		{"exact payment, no debt", 500, 500, 0, 500, 0, 0},
		{"exact payment, debt untouched", 500, 500, 1000, 500, 0, 0},
		{"overpayment clears part of debt", 1200, 500, 1000, 500, 700, 0},
		{"underpayment creates debt", 300, 500, 0, 300, 0, 200},
		{"zero collected", 0, 500, 200, 0, 0, 500},
		{"no order due, pays down debt", 400, 0, 1000, 0, 400, 0},
		{"clears order and all debt", 1500, 500, 1000, 500, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := Allocate(tt.collected, tt.due, tt.debt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrder, alloc.AppliedToOrder, "appliedToOrder")
			assert.Equal(t, tt.wantDebt, alloc.AppliedToDebt, "appliedToDebt")
			assert.Equal(t, tt.wantNewDebt, alloc.NewDebtCreated, "newDebtCreated")

			// Money conservation holds for every valid input.
			assert.Equal(t, tt.due, alloc.AppliedToOrder+alloc.NewDebtCreated)
			assert.LessOrEqual(t, alloc.AppliedToOrder+alloc.AppliedToDebt, tt.collected)
		})
	}
}

// Cent-level amounts whose binary float sum lands just below the decimal
// total must still settle: 0.10 + 0.70 < 0.80 in float64.
func TestAllocateExactPayoffCentAmounts(t *testing.T) {
	tests := []struct {
		name                 string
		collected, due, debt float64
		wantOrder, wantDebt  float64
	}{
		{"clears order and debt exactly", 0.80, 0.10, 0.70, 0.10, 0.70},
		{"residue on the debt side", 0.80, 0.70, 0.10, 0.70, 0.10},
		{"rupee scale with paise", 1000.30, 999.95, 0.35, 999.95, 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := Allocate(tt.collected, tt.due, tt.debt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrder, alloc.AppliedToOrder)
			assert.Equal(t, tt.wantDebt, alloc.AppliedToDebt)
			assert.Zero(t, alloc.NewDebtCreated)
		})
	}
}

func TestAllocateStillRejectsRealCentExcess(t *testing.T) {
	// One whole paisa over is money that belongs to nobody.
	_, err := Allocate(0.81, 0.10, 0.70)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOverCollection, apperrors.CodeOf(err))
}

func TestAllocateRejectsExcess(t *testing.T) {
	_, err := Allocate(1600, 500, 1000)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOverCollection, apperrors.CodeOf(err))
}

func TestAllocateRejectsBadAmounts(t *testing.T) {
	for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := Allocate(amount, 500, 0)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidAmount, apperrors.CodeOf(err))
	}

	_, err := Allocate(100, -5, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidAmount, apperrors.CodeOf(err))
}
