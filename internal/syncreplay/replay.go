// Package syncreplay applies batches of events reported by agent devices
// that worked offline. Batches arrive late, duplicated, and out of order;
// the settlement engine's terminal-state guard decides what still counts.
package syncreplay

import (
	"context"
	"encoding/json"
	"time"

	"distro-backend/internal/apperrors"
	"distro-backend/internal/models"
	"distro-backend/internal/services"
)

type EventType string

const (
	EventDeliveryComplete EventType = "delivery_complete"
	EventDeliveryFail     EventType = "delivery_fail"
	EventDebtCollection   EventType = "debt_collection"
)

// Envelope is the wire form of one replayed event. Payload stays raw
// until the type tag selects exactly one variant to decode into; there
// is no any-typed body anywhere past this point.
type Envelope struct {
	ClientEventID string          `json:"client_event_id"`
	Type          EventType       `json:"type"`
	ReportedAt    time.Time       `json:"reported_at"`
	Payload       json.RawMessage `json:"payload"`
}

type DeliveryComplete struct {
	DeliveryID      int                   `json:"delivery_id"`
	CollectedAmount float64               `json:"collected_amount"`
	Mode            models.CollectionMode `json:"mode"`
	ProofKey        string                `json:"proof_key,omitempty"`
}

type DeliveryFail struct {
	DeliveryID int    `json:"delivery_id"`
	Reason     string `json:"reason"`
}

type DebtCollection struct {
	CustomerID int                   `json:"customer_id"`
	Amount     float64               `json:"amount"`
	Mode       models.CollectionMode `json:"mode"`
}

// Outcome of one replayed event. A replay of an already-settled delivery
// is reported as duplicate, not as a failure: the device did its job, the
// engine just refuses to apply it twice.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusDuplicate Status = "duplicate"
	StatusRejected  Status = "rejected"
)

type Result struct {
	ClientEventID string         `json:"client_event_id"`
	Status        Status         `json:"status"`
	Code          apperrors.Code `json:"code,omitempty"`
	Detail        string         `json:"detail,omitempty"`
}

// Replayer dispatches decoded events to the settlement orchestrator.
type Replayer struct {
	Settlements *services.SettlementService
}

func NewReplayer(settlements *services.SettlementService) *Replayer {
	return &Replayer{Settlements: settlements}
}

// Apply replays a batch for one agent, in reported order. Every event
// gets a result; one bad event never aborts the rest of the batch.
func (r *Replayer) Apply(ctx context.Context, agentID int, batch []Envelope) []Result {
	results := make([]Result, 0, len(batch))
	for _, env := range batch {
		results = append(results, r.applyOne(ctx, agentID, env))
	}
	return results
}

func (r *Replayer) applyOne(ctx context.Context, agentID int, env Envelope) Result {
	res := Result{ClientEventID: env.ClientEventID}

	var err error
	switch env.Type {
	case EventDeliveryComplete:
		var payload DeliveryComplete
		if err = decode(env.Payload, &payload); err == nil {
			_, err = r.Settlements.CompleteDelivery(ctx, payload.DeliveryID, agentID, &models.CompleteDeliveryRequest{
				CollectedAmount: payload.CollectedAmount,
				Mode:            payload.Mode,
				ProofKey:        payload.ProofKey,
			})
		}
	case EventDeliveryFail:
		var payload DeliveryFail
		if err = decode(env.Payload, &payload); err == nil {
			_, err = r.Settlements.FailDelivery(ctx, payload.DeliveryID, agentID, payload.Reason)
		}
	case EventDebtCollection:
		var payload DebtCollection
		if err = decode(env.Payload, &payload); err == nil {
			_, err = r.Settlements.CollectDebt(ctx, payload.CustomerID, agentID, payload.Amount, payload.Mode)
		}
	default:
		err = apperrors.Newf(apperrors.CodeInvalidRequest, "unknown sync event type %q", env.Type)
	}

	switch {
	case err == nil:
		res.Status = StatusApplied
	case apperrors.CodeOf(err) == apperrors.CodeAlreadyFinalized:
		res.Status = StatusDuplicate
		res.Code = apperrors.CodeAlreadyFinalized
	default:
		res.Status = StatusRejected
		res.Code = apperrors.CodeOf(err)
		res.Detail = err.Error()
	}
	return res
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return apperrors.New(apperrors.CodeInvalidRequest, "sync event has no payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, "malformed sync payload", err)
	}
	return nil
}
