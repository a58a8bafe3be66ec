package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dlex-orders/internal/apperr"
	"dlex-orders/internal/model"
)

const (
	pqUniqueViolation   = pq.ErrorCode("23505")
	pqDeadlockDetected  = pq.ErrorCode("40P01")
	pqSerializationFail = pq.ErrorCode("40001")
)

// OrderRepository stores orders keyed by order name.
type OrderRepository interface {
	List(ctx context.Context) ([]model.OrderRow, error)
	Create(ctx context.Context, row model.OrderRow) error
	// UpdateProducts sets product name and datetime of first, runs between,
	// then does the same for second, all inside one transaction. stamp is
	// called right before each update to produce its datetime.
	UpdateProducts(ctx context.Context, first, second model.OperationOrder, stamp func() string, between func(ctx context.Context) error) error
	DeleteAll(ctx context.Context) (int64, error)
}

type PostgresOrderRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresOrderRepository(db *sql.DB, timeout time.Duration) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, timeout: timeout}
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS orders (
		order_name    TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		product_name  TEXT NOT NULL,
		datetime      TEXT NOT NULL DEFAULT ''
	)
`

// EnsureSchema creates the orders table when it does not exist yet.
func (r *PostgresOrderRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) List(ctx context.Context) ([]model.OrderRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
		SELECT order_name, customer_name, product_name, datetime
		FROM orders
		ORDER BY order_name
	`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", mapPQError(err))
	}
	defer rows.Close()

	orders := make([]model.OrderRow, 0)
	for rows.Next() {
		var row model.OrderRow
		if err := rows.Scan(&row.OrderName, &row.CustomerName, &row.ProductName, &row.Datetime); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *PostgresOrderRepository) Create(ctx context.Context, row model.OrderRow) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
		INSERT INTO orders (order_name, customer_name, product_name, datetime)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, q, row.OrderName, row.CustomerName, row.ProductName, row.Datetime); err != nil {
		return fmt.Errorf("insert order name=%s: %w", row.OrderName, mapPQError(err))
	}
	return nil
}

func (r *PostgresOrderRepository) UpdateProducts(
	ctx context.Context,
	first, second model.OperationOrder,
	stamp func() string,
	between func(ctx context.Context) error,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin operation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.updateProduct(ctx, tx, first, stamp()); err != nil {
		return err
	}

	if between != nil {
		if err := between(ctx); err != nil {
			return fmt.Errorf("operation pause: %w", err)
		}
	}

	if err := r.updateProduct(ctx, tx, second, stamp()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit operation: %w", mapPQError(err))
	}
	return nil
}

func (r *PostgresOrderRepository) updateProduct(ctx context.Context, tx *sql.Tx, order model.OperationOrder, datetime string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
		UPDATE orders
		SET product_name = $2, datetime = $3
		WHERE order_name = $1
	`
	res, err := tx.ExecContext(ctx, q, order.OrderName, order.ProductName, datetime)
	if err != nil {
		return fmt.Errorf("update order name=%s: %w", order.OrderName, mapPQError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected name=%s: %w", order.OrderName, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("order name=%s: %w", order.OrderName, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", mapPQError(err))
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// mapPQError attaches an apperr sentinel to errors whose SQLSTATE has a
// meaning for callers. The original error stays in the chain.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqDeadlockDetected, pqSerializationFail:
		return fmt.Errorf("%w: %w", apperr.ErrDeadlock, err)
	case pqUniqueViolation:
		return fmt.Errorf("order already exists: %w: %w", apperr.ErrValidation, err)
	default:
		return err
	}
}
