package models

import "time"

// CreditAlert is an advisory raised after a settlement pushed a customer
// past their credit limit. It never blocks the settlement that raised it:
// goods already moved and cash already changed hands.
type CreditAlert struct {
	ID           int       `json:"id"`
	CustomerID   int       `json:"customer_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	DebtAfter    float64   `json:"debt_after"`
	CreditLimit  float64   `json:"credit_limit"`
	Excess       float64   `json:"excess"`
	DeliveryID   *int      `json:"delivery_id,omitempty"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"`
}
