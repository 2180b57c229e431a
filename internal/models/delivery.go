package models

import "time"

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryArrived   DeliveryStatus = "arrived"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// IsTerminal reports whether the delivery has reached a final state.
// Terminal deliveries are the idempotency boundary: they reject any
// further completion/failure attempt, including offline-sync replays.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryFailed
}

type CollectionMode string

const (
	CollectCash  CollectionMode = "cash"
	CollectCheck CollectionMode = "check"
	CollectNone  CollectionMode = "none"
)

type Delivery struct {
	ID              int            `json:"id"`
	OrderID         int            `json:"order_id"`
	DelivererID     int            `json:"deliverer_id"`
	Status          DeliveryStatus `json:"status"`
	ScheduledDate   time.Time      `json:"scheduled_date"`
	AmountCollected float64        `json:"amount_collected"`
	CollectionMode  CollectionMode `json:"collection_mode"`
	ProofKey        string         `json:"proof_key,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CompleteDeliveryRequest is the body posted by the agent app when goods
// were handed over and cash (possibly zero) was collected.
type CompleteDeliveryRequest struct {
	CollectedAmount float64        `json:"collected_amount"`
	Mode            CollectionMode `json:"mode"`
	ProofKey        string         `json:"proof_key,omitempty"`
}

type FailDeliveryRequest struct {
	Reason string `json:"reason"`
}
