package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RemittanceRepository struct {
	DB *pgxpool.Pool
}

func NewRemittanceRepository(db *pgxpool.Pool) *RemittanceRepository {
	return &RemittanceRepository{DB: db}
}

const remittanceColumns = `id, ledger_id, agent_id, amount, status, confirmed_by_id, confirmed_at, created_at`

func scanRemittance(row pgx.Row) (*models.CashRemittance, error) {
	var rem models.CashRemittance
	err := row.Scan(&rem.ID, &rem.LedgerID, &rem.AgentID, &rem.Amount, &rem.Status,
		&rem.ConfirmedByID, &rem.ConfirmedAt, &rem.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *RemittanceRepository) Insert(ctx context.Context, tx pgx.Tx, rem *models.CashRemittance) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO cash_remittances(ledger_id, agent_id, amount, status)
		 VALUES ($1, $2, $3, 'pending')
		 RETURNING id, status, created_at`,
		rem.LedgerID, rem.AgentID, rem.Amount,
	).Scan(&rem.ID, &rem.Status, &rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert remittance: %w", err)
	}
	return nil
}

func (r *RemittanceRepository) Get(ctx context.Context, id int) (*models.CashRemittance, error) {
	return scanRemittance(r.DB.QueryRow(ctx,
		`SELECT `+remittanceColumns+` FROM cash_remittances WHERE id = $1`, id))
}

func (r *RemittanceRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.CashRemittance, error) {
	return scanRemittance(tx.QueryRow(ctx,
		`SELECT `+remittanceColumns+` FROM cash_remittances WHERE id = $1 FOR UPDATE`, id))
}

// Confirm records the administrator sign-off. pending -> confirmed only.
func (r *RemittanceRepository) Confirm(ctx context.Context, tx pgx.Tx, id, adminID int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE cash_remittances
		 SET status = 'confirmed', confirmed_by_id = $1, confirmed_at = NOW()
		 WHERE id = $2 AND status = 'pending'`,
		adminID, id)
	if err != nil {
		return fmt.Errorf("failed to confirm remittance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("remittance %d is not pending", id)
	}
	return nil
}

func (r *RemittanceRepository) ListPending(ctx context.Context) ([]models.CashRemittance, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+remittanceColumns+` FROM cash_remittances WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var remittances []models.CashRemittance
	for rows.Next() {
		rem, err := scanRemittance(rows)
		if err != nil {
			return nil, err
		}
		remittances = append(remittances, *rem)
	}
	return remittances, rows.Err()
}
