package repositories

import (
	"context"
	"errors"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, phone, COALESCE(village, '') as village, COALESCE(address, '') as address,
	current_debt, credit_limit, credit_limit_enabled, version, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Village, &c.Address,
		&c.CurrentDebt, &c.CreditLimit, &c.CreditLimitEnabled, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, phone, village, address, credit_limit, credit_limit_enabled)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING `+customerColumns,
		req.Name, req.Phone, req.Village, req.Address, req.CreditLimit, req.CreditLimitEnabled)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

// GetForUpdate loads a customer inside tx with its row locked. Every
// settlement for a customer serializes on this lock, which is what keeps
// current_debt consistent under concurrent agents.
func (r *CustomerRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.Customer, error) {
	return scanCustomer(tx.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id))
}

// SetDebt writes the post-settlement debt. The version check backs the
// row lock; a zero-row update means someone slipped past it.
func (r *CustomerRepository) SetDebt(ctx context.Context, tx pgx.Tx, id int, debt float64, expectedVersion int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE customers
		 SET current_debt = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND version = $3`,
		debt, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update customer debt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("customer version changed during settlement")
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// DebtSummary is the read model agents pull up before knocking on a door.
func (r *CustomerRepository) DebtSummary(ctx context.Context, id int) (*models.CustomerDebtSummary, error) {
	var s models.CustomerDebtSummary
	err := r.DB.QueryRow(ctx,
		`SELECT c.id, c.name, c.current_debt,
			COUNT(o.id) FILTER (WHERE o.payment_status IN ('unpaid','partial')),
			TO_CHAR(MIN(o.created_at) FILTER (WHERE o.payment_status IN ('unpaid','partial')), 'YYYY-MM-DD')
		 FROM customers c
		 LEFT JOIN orders o ON o.customer_id = c.id AND o.status <> 'cancelled'
		 WHERE c.id = $1
		 GROUP BY c.id, c.name, c.current_debt`, id,
	).Scan(&s.CustomerID, &s.CustomerName, &s.CurrentDebt, &s.UnpaidOrders, &s.OldestUnpaid)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
