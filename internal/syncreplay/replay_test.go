package syncreplay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distro-backend/internal/apperrors"
)

func TestEnvelopeDecoding(t *testing.T) {
	raw := `{
		"client_event_id": "dev42-0017",
		"type": "delivery_complete",
		"reported_at": "2026-03-10T18:45:00+05:30",
		"payload": {"delivery_id": 42, "collected_amount": 500, "mode": "cash"}
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, EventDeliveryComplete, env.Type)
	assert.Equal(t, "dev42-0017", env.ClientEventID)

	var payload DeliveryComplete
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, 42, payload.DeliveryID)
	assert.Equal(t, 500.0, payload.CollectedAmount)
}

func TestApplyRejectsUnknownType(t *testing.T) {
	r := NewReplayer(nil)

	results := r.Apply(context.Background(), 7, []Envelope{
		{ClientEventID: "e1", Type: "order_teleport", Payload: json.RawMessage(`{}`)},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "e1", results[0].ClientEventID)
	assert.Equal(t, StatusRejected, results[0].Status)
	assert.Equal(t, apperrors.CodeInvalidRequest, results[0].Code)
}

func TestApplyRejectsMissingPayload(t *testing.T) {
	r := NewReplayer(nil)

	results := r.Apply(context.Background(), 7, []Envelope{
		{ClientEventID: "e1", Type: EventDeliveryComplete},
	})

	require.Len(t, results, 1)
	assert.Equal(t, StatusRejected, results[0].Status)
	assert.Equal(t, apperrors.CodeInvalidRequest, results[0].Code)
	assert.NotEmpty(t, results[0].Detail)
}

func TestApplyRejectsMalformedPayload(t *testing.T) {
	r := NewReplayer(nil)

	results := r.Apply(context.Background(), 7, []Envelope{
		{ClientEventID: "e1", Type: EventDebtCollection, Payload: json.RawMessage(`{"amount": "lots"}`)},
	})

	require.Len(t, results, 1)
	assert.Equal(t, StatusRejected, results[0].Status)
	assert.Equal(t, apperrors.CodeInvalidRequest, results[0].Code)
}

func TestApplyKeepsBatchOrder(t *testing.T) {
	// One bad event never aborts the rest of the batch.
	r := NewReplayer(nil)

	results := r.Apply(context.Background(), 7, []Envelope{
		{ClientEventID: "a", Type: "bogus", Payload: json.RawMessage(`{}`)},
		{ClientEventID: "b", Type: EventDeliveryFail},
		{ClientEventID: "c", Type: "bogus", Payload: json.RawMessage(`{}`)},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ClientEventID)
	assert.Equal(t, "b", results[1].ClientEventID)
	assert.Equal(t, "c", results[2].ClientEventID)
	for _, res := range results {
		assert.Equal(t, StatusRejected, res.Status)
	}
}
