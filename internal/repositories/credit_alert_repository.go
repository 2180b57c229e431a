package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CreditAlertRepository struct {
	DB *pgxpool.Pool
}

func NewCreditAlertRepository(db *pgxpool.Pool) *CreditAlertRepository {
	return &CreditAlertRepository{DB: db}
}

// Insert runs outside the settlement transaction: alerts are advisory
// and must never be able to roll a settlement back.
func (r *CreditAlertRepository) Insert(ctx context.Context, alert *models.CreditAlert) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO credit_alerts(customer_id, debt_after, credit_limit, excess, delivery_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		alert.CustomerID, alert.DebtAfter, alert.CreditLimit, alert.Excess, alert.DeliveryID,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credit alert: %w", err)
	}
	return nil
}

func (r *CreditAlertRepository) ListUnacknowledged(ctx context.Context, limit int) ([]models.CreditAlert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT a.id, a.customer_id, COALESCE(c.name, '') as customer_name,
			a.debt_after, a.credit_limit, a.excess, a.delivery_id, a.acknowledged, a.created_at
		 FROM credit_alerts a
		 LEFT JOIN customers c ON a.customer_id = c.id
		 WHERE NOT a.acknowledged
		 ORDER BY a.created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.CreditAlert
	for rows.Next() {
		var a models.CreditAlert
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.CustomerName,
			&a.DebtAfter, &a.CreditLimit, &a.Excess, &a.DeliveryID, &a.Acknowledged, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *CreditAlertRepository) Acknowledge(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE credit_alerts SET acknowledged = TRUE WHERE id = $1`, id)
	return err
}
