package models

import "time"

// LedgerStatus is the lifecycle of an agent's daily cash ledger.
// none -> open -> closed -> remitted -> confirmed
type LedgerStatus string

const (
	LedgerOpen      LedgerStatus = "open"
	LedgerClosed    LedgerStatus = "closed"
	LedgerRemitted  LedgerStatus = "remitted"
	LedgerConfirmed LedgerStatus = "confirmed"
)

// DailyCashLedger reconciles one agent's cash for one business day.
// Exactly one row exists per (agent_id, ledger_date).
type DailyCashLedger struct {
	ID                  int          `json:"id"`
	AgentID             int          `json:"agent_id"`
	AgentName           string       `json:"agent_name,omitempty"` // joined from users table
	LedgerDate          string       `json:"ledger_date"`          // YYYY-MM-DD in business time
	Status              LedgerStatus `json:"status"`
	OpeningBalance      float64      `json:"opening_balance"`
	ExpectedCollection  float64      `json:"expected_collection"`
	ActualCollection    float64      `json:"actual_collection"`
	NewDebtCreated      float64      `json:"new_debt_created"`
	DeliveriesCompleted int          `json:"deliveries_completed"`
	DeliveriesFailed    int          `json:"deliveries_failed"`
	DebtCollections     int          `json:"debt_collections"`
	DeclaredCash        float64      `json:"declared_cash"`
	DeclaredChecks      float64      `json:"declared_checks"`
	Expenses            float64      `json:"expenses"`
	Variance            float64      `json:"variance"`
	ClosedAt            *time.Time   `json:"closed_at,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// OpenLedgerRequest opens the day explicitly (a settlement also opens it lazily).
type OpenLedgerRequest struct {
	LedgerDate     string  `json:"ledger_date,omitempty"` // defaults to today
	OpeningBalance float64 `json:"opening_balance"`
}

type CloseLedgerRequest struct {
	DeclaredCash   float64 `json:"declared_cash"`
	DeclaredChecks float64 `json:"declared_checks"`
	Expenses       float64 `json:"expenses"`
}

type RemittanceStatus string

const (
	RemittancePending   RemittanceStatus = "pending"
	RemittanceConfirmed RemittanceStatus = "confirmed"
)

// CashRemittance is the handoff of a closed ledger's cash to an administrator.
type CashRemittance struct {
	ID            int              `json:"id"`
	LedgerID      int              `json:"ledger_id"`
	AgentID       int              `json:"agent_id"`
	Amount        float64          `json:"amount"`
	Status        RemittanceStatus `json:"status"`
	ConfirmedByID *int             `json:"confirmed_by_id,omitempty"`
	ConfirmedAt   *time.Time       `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
