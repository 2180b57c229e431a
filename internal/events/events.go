// Package events carries the domain events a settlement produces and the
// publisher that emits them after commit. The orchestrator returns events
// as plain values; nothing here can reach back into the transaction that
// produced them.
package events

import (
	"time"

	"distro-backend/internal/models"
)

type Type string

const (
	TypeDeliveryCompleted   Type = "delivery.completed"
	TypeDeliveryFailed      Type = "delivery.failed"
	TypePaymentReceived     Type = "payment.received"
	TypeCreditLimitExceeded Type = "credit.limit_exceeded"
)

type Event struct {
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	CustomerID int  `json:"customer_id,omitempty"`
	DeliveryID *int `json:"delivery_id,omitempty"`
	OrderID    *int `json:"order_id,omitempty"`
	AgentID    int  `json:"agent_id,omitempty"`

	Amount     float64            `json:"amount,omitempty"`
	Allocation *models.Allocation `json:"allocation,omitempty"`
	DebtAfter  float64            `json:"debt_after,omitempty"`
	Reason     string             `json:"reason,omitempty"`
}

func DeliveryCompleted(res *models.SettlementResult, agentID int, at time.Time) Event {
	return Event{
		Type:       TypeDeliveryCompleted,
		OccurredAt: at,
		CustomerID: res.CustomerID,
		DeliveryID: res.DeliveryID,
		OrderID:    res.OrderID,
		AgentID:    agentID,
		Amount:     res.Amount,
		Allocation: &res.Allocation,
		DebtAfter:  res.DebtAfter,
	}
}

func DeliveryFailed(deliveryID, orderID, agentID int, reason string, at time.Time) Event {
	return Event{
		Type:       TypeDeliveryFailed,
		OccurredAt: at,
		DeliveryID: &deliveryID,
		OrderID:    &orderID,
		AgentID:    agentID,
		Reason:     reason,
	}
}

func PaymentReceived(res *models.SettlementResult, agentID int, at time.Time) Event {
	return Event{
		Type:       TypePaymentReceived,
		OccurredAt: at,
		CustomerID: res.CustomerID,
		DeliveryID: res.DeliveryID,
		OrderID:    res.OrderID,
		AgentID:    agentID,
		Amount:     res.Amount,
		Allocation: &res.Allocation,
		DebtAfter:  res.DebtAfter,
	}
}

func CreditLimitExceeded(alert *models.CreditAlert, at time.Time) Event {
	return Event{
		Type:       TypeCreditLimitExceeded,
		OccurredAt: at,
		CustomerID: alert.CustomerID,
		DeliveryID: alert.DeliveryID,
		DebtAfter:  alert.DebtAfter,
		Amount:     alert.Excess,
	}
}
