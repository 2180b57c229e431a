package services

import "distro-backend/internal/models"

// ledgerSuccessor is the only legal next status per current status. The
// lifecycle is strictly linear: open -> closed -> remitted -> confirmed,
// with no skips and no way back.
var ledgerSuccessor = map[models.LedgerStatus]models.LedgerStatus{
	models.LedgerOpen:     models.LedgerClosed,
	models.LedgerClosed:   models.LedgerRemitted,
	models.LedgerRemitted: models.LedgerConfirmed,
}

func canTransitionLedger(from, to models.LedgerStatus) bool {
	return ledgerSuccessor[from] == to
}

// closeVariance is what the agent hands over minus what the ledger says
// they owe, net of expenses paid out of the day's cash. Positive means
// surplus, negative means the handover came up short.
func closeVariance(declaredCash, declaredChecks, expenses, actualCollection float64) float64 {
	return (declaredCash + declaredChecks) - (actualCollection - expenses)
}
