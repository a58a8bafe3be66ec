package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlex-orders/internal/apperr"
	"dlex-orders/internal/model"
)

func seed(t *testing.T, repo *MemoryOrderRepository, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, repo.Create(context.Background(), model.OrderRow{
			OrderName:    name,
			CustomerName: "customer-" + name,
			ProductName:  "product-" + name,
		}))
	}
}

func TestMemoryRepository_ListSortedByName(t *testing.T) {
	repo := NewMemoryOrderRepository()
	seed(t, repo, "b", "c", "a")

	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].OrderName)
	assert.Equal(t, "b", rows[1].OrderName)
	assert.Equal(t, "c", rows[2].OrderName)
}

func TestMemoryRepository_CreateDuplicate(t *testing.T) {
	repo := NewMemoryOrderRepository()
	seed(t, repo, "a")

	err := repo.Create(context.Background(), model.OrderRow{OrderName: "a"})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}

func TestMemoryRepository_UpdateProducts(t *testing.T) {
	repo := NewMemoryOrderRepository()
	seed(t, repo, "a", "b")

	stamps := []string{"t1", "t2"}
	var calls []string
	stamp := func() string {
		s := stamps[len(calls)]
		calls = append(calls, s)
		return s
	}
	var paused bool
	between := func(context.Context) error {
		paused = true
		return nil
	}

	err := repo.UpdateProducts(context.Background(),
		model.OperationOrder{OrderName: "a", ProductName: "pa"},
		model.OperationOrder{OrderName: "b", ProductName: "pb"},
		stamp, between)
	require.NoError(t, err)
	assert.True(t, paused)

	rows, _ := repo.List(context.Background())
	assert.Equal(t, model.OrderRow{OrderName: "a", CustomerName: "customer-a", ProductName: "pa", Datetime: "t1"}, rows[0])
	assert.Equal(t, model.OrderRow{OrderName: "b", CustomerName: "customer-b", ProductName: "pb", Datetime: "t2"}, rows[1])
}

func TestMemoryRepository_UpdateProductsMissingLeavesDataUntouched(t *testing.T) {
	repo := NewMemoryOrderRepository()
	seed(t, repo, "a")

	err := repo.UpdateProducts(context.Background(),
		model.OperationOrder{OrderName: "a", ProductName: "changed"},
		model.OperationOrder{OrderName: "missing", ProductName: "x"},
		func() string { return "now" }, nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)

	rows, _ := repo.List(context.Background())
	assert.Equal(t, "product-a", rows[0].ProductName)
}

func TestMemoryRepository_PauseErrorAborts(t *testing.T) {
	repo := NewMemoryOrderRepository()
	seed(t, repo, "a", "b")

	err := repo.UpdateProducts(context.Background(),
		model.OperationOrder{OrderName: "a", ProductName: "pa"},
		model.OperationOrder{OrderName: "b", ProductName: "pb"},
		func() string { return "now" },
		func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)

	rows, _ := repo.List(context.Background())
	assert.Equal(t, "product-a", rows[0].ProductName)
}

func TestMemoryRepository_DeleteAll(t *testing.T) {
	repo := NewMemoryOrderRepository()
	seed(t, repo, "a", "b")

	deleted, err := repo.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	rows, _ := repo.List(context.Background())
	assert.Empty(t, rows)
}
