package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dlex-orders/internal/apperr"
	"dlex-orders/internal/model"
)

// MemoryOrderRepository keeps orders in a map. Operations are serialized by
// a single lock, so it never deadlocks; use Postgres to observe deadlocks.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]model.OrderRow
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]model.OrderRow)}
}

func (r *MemoryOrderRepository) List(_ context.Context) ([]model.OrderRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]model.OrderRow, 0, len(r.orders))
	for _, row := range r.orders {
		orders = append(orders, row)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderName < orders[j].OrderName })

	return orders, nil
}

func (r *MemoryOrderRepository) Create(_ context.Context, row model.OrderRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[row.OrderName]; exists {
		return fmt.Errorf("order name=%s already exists: %w", row.OrderName, apperr.ErrValidation)
	}
	r.orders[row.OrderName] = row

	return nil
}

func (r *MemoryOrderRepository) UpdateProducts(
	ctx context.Context,
	first, second model.OperationOrder,
	stamp func() string,
	between func(ctx context.Context) error,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Work on a copy so a failure leaves the map untouched.
	staged := make(map[string]model.OrderRow, 2)

	if err := r.stage(staged, first, stamp()); err != nil {
		return err
	}
	if between != nil {
		if err := between(ctx); err != nil {
			return fmt.Errorf("operation pause: %w", err)
		}
	}
	if err := r.stage(staged, second, stamp()); err != nil {
		return err
	}

	for name, row := range staged {
		r.orders[name] = row
	}
	return nil
}

func (r *MemoryOrderRepository) stage(staged map[string]model.OrderRow, order model.OperationOrder, datetime string) error {
	row, ok := staged[order.OrderName]
	if !ok {
		row, ok = r.orders[order.OrderName]
	}
	if !ok {
		return fmt.Errorf("order name=%s: %w", order.OrderName, apperr.ErrNotFound)
	}

	row.ProductName = order.ProductName
	row.Datetime = datetime
	staged[order.OrderName] = row
	return nil
}

func (r *MemoryOrderRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.orders))
	r.orders = make(map[string]model.OrderRow)
	return deleted, nil
}
