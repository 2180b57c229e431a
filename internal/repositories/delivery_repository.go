package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryRepository struct {
	DB *pgxpool.Pool
}

func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{DB: db}
}

const deliveryColumns = `id, order_id, deliverer_id, status, scheduled_date, amount_collected,
	collection_mode, COALESCE(proof_key, '') as proof_key, COALESCE(failure_reason, '') as failure_reason,
	completed_at, created_at, updated_at`

func scanDelivery(row pgx.Row) (*models.Delivery, error) {
	var d models.Delivery
	err := row.Scan(&d.ID, &d.OrderID, &d.DelivererID, &d.Status, &d.ScheduledDate, &d.AmountCollected,
		&d.CollectionMode, &d.ProofKey, &d.FailureReason, &d.CompletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeliveryRepository) Get(ctx context.Context, id int) (*models.Delivery, error) {
	return scanDelivery(r.DB.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id))
}

// GetForUpdate locks the delivery row for the duration of a settlement.
// The terminal-state check runs against this locked read, so a replayed
// completion can never interleave with the one that wins.
func (r *DeliveryRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.Delivery, error) {
	return scanDelivery(tx.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1 FOR UPDATE`, id))
}

// MarkDelivered performs the terminal transition. The WHERE clause
// re-checks non-terminality so the transition happens at most once even
// if a bug ever calls this without the FOR UPDATE read.
func (r *DeliveryRepository) MarkDelivered(ctx context.Context, tx pgx.Tx, id int, amount float64, mode models.CollectionMode, proofKey string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE deliveries
		 SET status = 'delivered', amount_collected = $1, collection_mode = $2,
		     proof_key = NULLIF($3, ''), completed_at = NOW(), updated_at = NOW()
		 WHERE id = $4 AND status NOT IN ('delivered','failed')`,
		amount, mode, proofKey, id)
	if err != nil {
		return fmt.Errorf("failed to mark delivery %d delivered: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d already finalized", id)
	}
	return nil
}

func (r *DeliveryRepository) MarkFailed(ctx context.Context, tx pgx.Tx, id int, reason string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE deliveries
		 SET status = 'failed', failure_reason = $1, completed_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status NOT IN ('delivered','failed')`,
		reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark delivery %d failed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d already finalized", id)
	}
	return nil
}

// SetProofKey attaches an uploaded proof-of-delivery object to a pending
// delivery. Terminal deliveries keep the proof they were completed with.
func (r *DeliveryRepository) SetProofKey(ctx context.Context, id int, key string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE deliveries SET proof_key = $1, updated_at = NOW()
		 WHERE id = $2 AND status NOT IN ('delivered','failed')`,
		key, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d already finalized", id)
	}
	return nil
}

func (r *DeliveryRepository) ListByAgentAndDate(ctx context.Context, agentID int, date string) ([]models.Delivery, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+deliveryColumns+`
		 FROM deliveries
		 WHERE deliverer_id = $1 AND scheduled_date::date = $2::date
		 ORDER BY created_at ASC`,
		agentID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *d)
	}
	return deliveries, rows.Err()
}
