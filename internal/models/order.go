package models

import "time"

// PaymentStatus only ever moves forward: unpaid -> partial -> paid.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Rank orders payment statuses so monotonicity can be checked cheaply.
func (s PaymentStatus) Rank() int {
	switch s {
	case PaymentUnpaid:
		return 0
	case PaymentPartial:
		return 1
	case PaymentPaid:
		return 2
	}
	return -1
}

type OrderStatus string

const (
	OrderPlaced       OrderStatus = "placed"
	OrderAssigned     OrderStatus = "assigned"
	OrderFulfilled    OrderStatus = "fulfilled"
	OrderReassignable OrderStatus = "reassignable"
	OrderCancelled    OrderStatus = "cancelled"
)

type Order struct {
	ID            int           `json:"id"`
	CustomerID    int           `json:"customer_id"`
	Total         float64       `json:"total"`
	AmountPaid    float64       `json:"amount_paid"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Due returns the unpaid remainder of the order.
func (o *Order) Due() float64 {
	due := o.Total - o.AmountPaid
	if due < 0 {
		return 0
	}
	return due
}

// StatusForPaid returns the payment status an order should carry once
// amountPaid has been applied against its total.
func StatusForPaid(total, amountPaid float64) PaymentStatus {
	switch {
	case amountPaid <= 0:
		return PaymentUnpaid
	case amountPaid < total:
		return PaymentPartial
	default:
		return PaymentPaid
	}
}
