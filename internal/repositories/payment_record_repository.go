package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRecordRepository is append-only. There is deliberately no
// Update or Delete: payment records exist for audit and dispute
// resolution and are never touched after insertion.
type PaymentRecordRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRecordRepository(db *pgxpool.Pool) *PaymentRecordRepository {
	return &PaymentRecordRepository{DB: db}
}

// Insert writes one payment record inside the settlement transaction.
func (r *PaymentRecordRepository) Insert(ctx context.Context, tx pgx.Tx, rec *models.PaymentRecord) error {
	var fifoJSON []byte
	if len(rec.FifoApplications) > 0 {
		var err error
		fifoJSON, err = json.Marshal(rec.FifoApplications)
		if err != nil {
			return fmt.Errorf("failed to encode fifo applications: %w", err)
		}
	}

	err := tx.QueryRow(ctx,
		`INSERT INTO payment_records(
			customer_id, order_id, delivery_id, amount, mode,
			debt_before, debt_after, applied_to_order, applied_to_debt, new_debt_created,
			fifo_applications, collected_by_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		rec.CustomerID, rec.OrderID, rec.DeliveryID, rec.Amount, rec.Mode,
		rec.DebtBefore, rec.DebtAfter, rec.AppliedToOrder, rec.AppliedToDebt, rec.NewDebtCreated,
		fifoJSON, rec.CollectedByID,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment record: %w", err)
	}
	return nil
}

const paymentRecordSelect = `
	SELECT p.id, p.customer_id, p.order_id, p.delivery_id, p.amount, p.mode,
		p.debt_before, p.debt_after, p.applied_to_order, p.applied_to_debt, p.new_debt_created,
		p.fifo_applications, p.collected_by_id, COALESCE(u.name, '') as collected_by_name, p.created_at
	FROM payment_records p
	LEFT JOIN users u ON p.collected_by_id = u.id`

func scanPaymentRecord(row pgx.Row) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	var fifoJSON []byte
	err := row.Scan(&rec.ID, &rec.CustomerID, &rec.OrderID, &rec.DeliveryID, &rec.Amount, &rec.Mode,
		&rec.DebtBefore, &rec.DebtAfter, &rec.AppliedToOrder, &rec.AppliedToDebt, &rec.NewDebtCreated,
		&fifoJSON, &rec.CollectedByID, &rec.CollectedByName, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(fifoJSON) > 0 {
		if err := json.Unmarshal(fifoJSON, &rec.FifoApplications); err != nil {
			return nil, fmt.Errorf("failed to decode fifo applications: %w", err)
		}
	}
	return &rec, nil
}

func (r *PaymentRecordRepository) Get(ctx context.Context, id int) (*models.PaymentRecord, error) {
	return scanPaymentRecord(r.DB.QueryRow(ctx, paymentRecordSelect+` WHERE p.id = $1`, id))
}

func (r *PaymentRecordRepository) ListByCustomer(ctx context.Context, customerID, limit, offset int) ([]models.PaymentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		paymentRecordSelect+`
		 WHERE p.customer_id = $1
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPaymentRecords(rows)
}

// ListByCollectorAndDate backs the agent's end-of-day review and the
// receipt printer.
func (r *PaymentRecordRepository) ListByCollectorAndDate(ctx context.Context, collectorID int, date string) ([]models.PaymentRecord, error) {
	rows, err := r.DB.Query(ctx,
		paymentRecordSelect+`
		 WHERE p.collected_by_id = $1 AND p.created_at::date = $2::date
		 ORDER BY p.created_at ASC`,
		collectorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPaymentRecords(rows)
}

func collectPaymentRecords(rows pgx.Rows) ([]models.PaymentRecord, error) {
	var records []models.PaymentRecord
	for rows.Next() {
		rec, err := scanPaymentRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
