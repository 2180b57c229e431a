package models

import "time"

type Customer struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Village            string    `json:"village"`
	Address            string    `json:"address"`
	CurrentDebt        float64   `json:"current_debt"`
	CreditLimit        float64   `json:"credit_limit"`
	CreditLimitEnabled bool      `json:"credit_limit_enabled"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	Village            string  `json:"village"`
	Address            string  `json:"address"`
	CreditLimit        float64 `json:"credit_limit"`
	CreditLimitEnabled bool    `json:"credit_limit_enabled"`
}

// CustomerDebtSummary is the read model served to agent apps before a visit
type CustomerDebtSummary struct {
	CustomerID   int     `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	CurrentDebt  float64 `json:"current_debt"`
	UnpaidOrders int     `json:"unpaid_orders"`
	OldestUnpaid *string `json:"oldest_unpaid,omitempty"` // date of oldest order still carrying due
}
