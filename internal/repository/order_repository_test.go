package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"dlex-orders/internal/apperr"
)

func TestMapPQError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: apperr.ErrDeadlock},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: apperr.ErrDeadlock},
		{name: "wrapped deadlock", err: fmt.Errorf("exec: %w", &pq.Error{Code: "40P01"}), want: apperr.ErrDeadlock},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: apperr.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapPQError(tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v in chain, got %v", tc.want, got)
			}
			var pqErr *pq.Error
			if !errors.As(got, &pqErr) {
				t.Fatalf("expected original *pq.Error to stay in chain, got %v", got)
			}
		})
	}
}

func TestMapPQError_PassThrough(t *testing.T) {
	plain := errors.New("connection refused")
	if got := mapPQError(plain); got != plain {
		t.Fatalf("expected plain error unchanged, got %v", got)
	}

	lockTimeout := &pq.Error{Code: "55P03"}
	if got := mapPQError(lockTimeout); errors.Is(got, apperr.ErrDeadlock) {
		t.Fatalf("expected lock timeout not to count as deadlock, got %v", got)
	}

	other := &pq.Error{Code: "42P01"}
	if got := mapPQError(other); got != error(other) {
		t.Fatalf("expected unmapped pq error unchanged, got %v", got)
	}
}
