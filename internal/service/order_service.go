package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"dlex-orders/internal/apperr"
	"dlex-orders/internal/model"
	"dlex-orders/internal/repository"
)

type OrderService struct {
	repo     repository.OrderRepository
	validate *validator.Validate
	delayFn  func() time.Duration
	sleepFn  func(ctx context.Context, d time.Duration) error
	nowFn    func() time.Time
}

// NewOrderService builds the service. operationDelay is the pause between the
// two updates of an operation; while it runs the first row stays locked.
func NewOrderService(repo repository.OrderRepository, operationDelay time.Duration) *OrderService {
	return &OrderService{
		repo:     repo,
		validate: newValidator(),
		delayFn: func() time.Duration {
			return operationDelay
		},
		sleepFn: sleepWithContext,
		nowFn:   time.Now,
	}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]model.OrderRow, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) AddOrder(ctx context.Context, order model.Order) (model.OrderRow, error) {
	if err := s.check(order); err != nil {
		return model.OrderRow{}, err
	}

	row := model.OrderRow{
		OrderName:    order.OrderName,
		CustomerName: order.CustomerName,
		ProductName:  order.ProductName,
		Datetime:     model.FormatDatetime(s.nowFn()),
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return model.OrderRow{}, fmt.Errorf("add order: %w", err)
	}

	return row, nil
}

// Operation rewrites the product of both orders in one transaction, pausing
// between the two updates.
func (s *OrderService) Operation(ctx context.Context, orders []model.OperationOrder) error {
	if len(orders) != 2 {
		return fmt.Errorf("operation needs exactly 2 orders, got %d: %w", len(orders), apperr.ErrValidation)
	}
	for i := range orders {
		if err := s.check(orders[i]); err != nil {
			return fmt.Errorf("orders[%d]: %w", i, err)
		}
	}

	stamp := func() string { return model.FormatDatetime(s.nowFn()) }
	pause := func(ctx context.Context) error {
		return s.sleepFn(ctx, s.delayFn())
	}

	if err := s.repo.UpdateProducts(ctx, orders[0], orders[1], stamp, pause); err != nil {
		return fmt.Errorf("operation %s/%s: %w", orders[0].OrderName, orders[1].OrderName, err)
	}

	return nil
}

func (s *OrderService) DeleteOrders(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", err)
	}
	return deleted, nil
}

func (s *OrderService) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, ", "), apperr.ErrValidation)
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
