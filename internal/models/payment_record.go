package models

import "time"

// PaymentRecord is the immutable audit row written for every money movement.
// Rows are append-only: the repository exposes no update or delete.
type PaymentRecord struct {
	ID               int              `json:"id"`
	CustomerID       int              `json:"customer_id"`
	OrderID          *int             `json:"order_id,omitempty"`
	DeliveryID       *int             `json:"delivery_id,omitempty"`
	Amount           float64          `json:"amount"`
	Mode             CollectionMode   `json:"mode"`
	DebtBefore       float64          `json:"debt_before"`
	DebtAfter        float64          `json:"debt_after"`
	AppliedToOrder   float64          `json:"applied_to_order"`
	AppliedToDebt    float64          `json:"applied_to_debt"`
	NewDebtCreated   float64          `json:"new_debt_created"`
	FifoApplications []FifoApplication `json:"fifo_applications,omitempty"`
	CollectedByID    int              `json:"collected_by_id"`
	CollectedByName  string           `json:"collected_by_name,omitempty"` // joined from users table
	CreatedAt        time.Time        `json:"created_at"`
}

// FifoApplication records how much of a debt payment landed on one
// historical order. Stored as JSONB on the payment record.
type FifoApplication struct {
	OrderID int     `json:"order_id"`
	Amount  float64 `json:"amount"`
}
