package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"
	"distro-backend/internal/settlement"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

const orderColumns = `id, customer_id, total, amount_paid, payment_status, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Total, &o.AmountPaid, &o.PaymentStatus, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int) (*models.Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.Order, error) {
	return scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

// LockUnpaidByCustomer loads and locks the customer's orders that still
// carry due, oldest first (ties broken by id). excludeOrderID keeps the
// order being settled out of the FIFO set; pass 0 for debt collections.
func (r *OrderRepository) LockUnpaidByCustomer(ctx context.Context, tx pgx.Tx, customerID, excludeOrderID int) ([]models.Order, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE customer_id = $1
		   AND id <> $2
		   AND status <> 'cancelled'
		   AND payment_status IN ('unpaid','partial')
		 ORDER BY created_at ASC, id ASC
		 FOR UPDATE`,
		customerID, excludeOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ApplyPayment writes one planned order update. amount_paid is guarded
// against regression at the SQL level as well.
func (r *OrderRepository) ApplyPayment(ctx context.Context, tx pgx.Tx, u settlement.OrderUpdate) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders
		 SET amount_paid = $1, payment_status = $2, updated_at = NOW()
		 WHERE id = $3 AND amount_paid <= $1`,
		u.NewAmountPaid, u.NewStatus, u.OrderID)
	if err != nil {
		return fmt.Errorf("failed to apply payment to order %d: %w", u.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d amount_paid would regress", u.OrderID)
	}
	return nil
}

func (r *OrderRepository) SetStatus(ctx context.Context, tx pgx.Tx, id int, status models.OrderStatus) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
