package models

// Allocation is the split of one collected amount, computed before any
// row is touched and preserved verbatim on the payment record.
type Allocation struct {
	AppliedToOrder float64 `json:"applied_to_order"`
	AppliedToDebt  float64 `json:"applied_to_debt"`
	NewDebtCreated float64 `json:"new_debt_created"`
}

// SettlementResult is returned by the orchestrator entry points after commit.
type SettlementResult struct {
	PaymentRecordID  int               `json:"payment_record_id"`
	CustomerID       int               `json:"customer_id"`
	DeliveryID       *int              `json:"delivery_id,omitempty"`
	OrderID          *int              `json:"order_id,omitempty"`
	Amount           float64           `json:"amount"`
	Allocation       Allocation        `json:"allocation"`
	DebtBefore       float64           `json:"debt_before"`
	DebtAfter        float64           `json:"debt_after"`
	FifoApplications []FifoApplication `json:"fifo_applications,omitempty"`
	PaymentStatus    PaymentStatus     `json:"payment_status,omitempty"`
}
