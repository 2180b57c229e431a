package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"distro-backend/internal/models"
)

func TestCanTransitionLedger(t *testing.T) {
	tests := []struct {
		name string
		from models.LedgerStatus
		to   models.LedgerStatus
		want bool
	}{
		{"open closes", models.LedgerOpen, models.LedgerClosed, true},
		{"closed remits", models.LedgerClosed, models.LedgerRemitted, true},
		{"remitted confirms", models.LedgerRemitted, models.LedgerConfirmed, true},
		{"open cannot remit", models.LedgerOpen, models.LedgerRemitted, false},
		{"open cannot confirm", models.LedgerOpen, models.LedgerConfirmed, false},
		{"closed cannot close again", models.LedgerClosed, models.LedgerClosed, false},
		{"closed cannot reopen", models.LedgerClosed, models.LedgerOpen, false},
		{"remitted cannot close", models.LedgerRemitted, models.LedgerClosed, false},
		{"confirmed is final", models.LedgerConfirmed, models.LedgerOpen, false},
		{"confirmed cannot confirm again", models.LedgerConfirmed, models.LedgerConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canTransitionLedger(tt.from, tt.to))
		})
	}
}

func TestCloseVariance(t *testing.T) {
	tests := []struct {
		name                         string
		declaredCash, declaredChecks float64
		expenses, actual             float64
		want                         float64
	}{
		{"exact handover", 4500, 500, 0, 5000, 0},
		{"expenses reduce what is owed", 4800, 0, 200, 5000, 0},
		{"shortfall is negative", 4900, 0, 0, 5000, -100},
		{"surplus is positive", 5100, 0, 0, 5000, 100},
		{"checks count toward the handover", 3000, 2000, 0, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, closeVariance(tt.declaredCash, tt.declaredChecks, tt.expenses, tt.actual))
		})
	}
}
