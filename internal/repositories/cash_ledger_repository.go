package repositories

import (
	"context"
	"errors"
	"fmt"

	"distro-backend/internal/models"
	"distro-backend/internal/settlement"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLedgerNotOpen is returned when a settlement lands on a day the
// agent has already closed out.
var ErrLedgerNotOpen = errors.New("daily cash ledger is not open")

// ErrLedgerExists is returned by an explicit open for a day that
// already has a ledger row.
var ErrLedgerExists = errors.New("daily cash ledger already exists for this date")

type CashLedgerRepository struct {
	DB *pgxpool.Pool
}

func NewCashLedgerRepository(db *pgxpool.Pool) *CashLedgerRepository {
	return &CashLedgerRepository{DB: db}
}

const ledgerColumns = `l.id, l.agent_id, COALESCE(u.name, '') as agent_name, TO_CHAR(l.ledger_date, 'YYYY-MM-DD'),
	l.status, l.opening_balance, l.expected_collection, l.actual_collection, l.new_debt_created,
	l.deliveries_completed, l.deliveries_failed, l.debt_collections,
	l.declared_cash, l.declared_checks, l.expenses, l.variance, l.closed_at, l.created_at, l.updated_at`

func scanLedger(row pgx.Row) (*models.DailyCashLedger, error) {
	var l models.DailyCashLedger
	err := row.Scan(&l.ID, &l.AgentID, &l.AgentName, &l.LedgerDate,
		&l.Status, &l.OpeningBalance, &l.ExpectedCollection, &l.ActualCollection, &l.NewDebtCreated,
		&l.DeliveriesCompleted, &l.DeliveriesFailed, &l.DebtCollections,
		&l.DeclaredCash, &l.DeclaredChecks, &l.Expenses, &l.Variance, &l.ClosedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// EnsureOpen lazily creates the (agent, date) row on the agent's first
// settlement of the day. The unique index makes the insert a no-op when
// the row already exists, whatever its status.
func (r *CashLedgerRepository) EnsureOpen(ctx context.Context, tx pgx.Tx, agentID int, date string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO daily_cash_ledgers(agent_id, ledger_date, status)
		 VALUES ($1, $2::date, 'open')
		 ON CONFLICT (agent_id, ledger_date) DO NOTHING`,
		agentID, date)
	if err != nil {
		return fmt.Errorf("failed to ensure cash ledger: %w", err)
	}
	return nil
}

// Open creates the row explicitly, with an opening balance. A second
// open for the same (agent, date) is a conflict, not an upsert.
func (r *CashLedgerRepository) Open(ctx context.Context, agentID int, date string, openingBalance float64) (*models.DailyCashLedger, error) {
	tag, err := r.DB.Exec(ctx,
		`INSERT INTO daily_cash_ledgers(agent_id, ledger_date, status, opening_balance)
		 VALUES ($1, $2::date, 'open', $3)
		 ON CONFLICT (agent_id, ledger_date) DO NOTHING`,
		agentID, date, openingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to open cash ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrLedgerExists
	}
	return r.GetByAgentAndDate(ctx, agentID, date)
}

// ApplyDelta folds a settlement into the day's totals as one compound
// UPDATE. Never read-modify-write: two agents' goroutines racing on the
// same row must both land their increments.
func (r *CashLedgerRepository) ApplyDelta(ctx context.Context, tx pgx.Tx, agentID int, date string, d settlement.LedgerDelta) error {
	tag, err := tx.Exec(ctx,
		`UPDATE daily_cash_ledgers
		 SET actual_collection = actual_collection + $1,
		     new_debt_created = new_debt_created + $2,
		     deliveries_completed = deliveries_completed + $3,
		     deliveries_failed = deliveries_failed + $4,
		     debt_collections = debt_collections + $5,
		     updated_at = NOW()
		 WHERE agent_id = $6 AND ledger_date = $7::date AND status = 'open'`,
		d.ActualCollection, d.NewDebtCreated, d.DeliveriesCompleted, d.DeliveriesFailed, d.DebtCollections,
		agentID, date)
	if err != nil {
		return fmt.Errorf("failed to update cash ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLedgerNotOpen
	}
	return nil
}

func (r *CashLedgerRepository) GetByAgentAndDate(ctx context.Context, agentID int, date string) (*models.DailyCashLedger, error) {
	return scanLedger(r.DB.QueryRow(ctx,
		`SELECT `+ledgerColumns+`
		 FROM daily_cash_ledgers l LEFT JOIN users u ON l.agent_id = u.id
		 WHERE l.agent_id = $1 AND l.ledger_date = $2::date`,
		agentID, date))
}

func (r *CashLedgerRepository) Get(ctx context.Context, id int) (*models.DailyCashLedger, error) {
	return scanLedger(r.DB.QueryRow(ctx,
		`SELECT `+ledgerColumns+`
		 FROM daily_cash_ledgers l LEFT JOIN users u ON l.agent_id = u.id
		 WHERE l.id = $1`, id))
}

func (r *CashLedgerRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.DailyCashLedger, error) {
	return scanLedger(tx.QueryRow(ctx,
		`SELECT `+ledgerColumns+`
		 FROM daily_cash_ledgers l LEFT JOIN users u ON l.agent_id = u.id
		 WHERE l.id = $1 FOR UPDATE OF l`, id))
}

// Close records the agent's declared cash and the computed variance.
// The status guard in the WHERE clause enforces open -> closed.
func (r *CashLedgerRepository) Close(ctx context.Context, tx pgx.Tx, id int, declaredCash, declaredChecks, expenses, variance float64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE daily_cash_ledgers
		 SET status = 'closed', declared_cash = $1, declared_checks = $2, expenses = $3,
		     variance = $4, expected_collection = actual_collection,
		     closed_at = NOW(), updated_at = NOW()
		 WHERE id = $5 AND status = 'open'`,
		declaredCash, declaredChecks, expenses, variance, id)
	if err != nil {
		return fmt.Errorf("failed to close cash ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLedgerNotOpen
	}
	return nil
}

// SetStatus performs the guarded remitted/confirmed transitions.
func (r *CashLedgerRepository) SetStatus(ctx context.Context, tx pgx.Tx, id int, from, to models.LedgerStatus) error {
	tag, err := tx.Exec(ctx,
		`UPDATE daily_cash_ledgers SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return fmt.Errorf("failed to move cash ledger to %s: %w", to, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cash ledger %d is not %s", id, from)
	}
	return nil
}

// ListByDate gives administrators the day's reconciliation across agents.
func (r *CashLedgerRepository) ListByDate(ctx context.Context, date string) ([]models.DailyCashLedger, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+ledgerColumns+`
		 FROM daily_cash_ledgers l LEFT JOIN users u ON l.agent_id = u.id
		 WHERE l.ledger_date = $1::date
		 ORDER BY u.name ASC, l.agent_id ASC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledgers []models.DailyCashLedger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, *l)
	}
	return ledgers, rows.Err()
}
