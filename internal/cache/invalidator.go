// Package cache signals that cached transactions, stock or products are stale
// after a sale. Signals are fire-and-forget: a failed signal is logged and
// never fails the sale that caused it.
package cache

import "context"

type Scope string

const (
	ScopeTransactions Scope = "transactions"
	ScopeStock        Scope = "stock"
	ScopeProducts     Scope = "products"
)

type Invalidator interface {
	InvalidateTransactions(ctx context.Context)
	InvalidateStock(ctx context.Context)
	InvalidateProducts(ctx context.Context)
}

// Invalidate dispatches scope to the matching method of to.
func Invalidate(ctx context.Context, to Invalidator, scope Scope) {
	switch scope {
	case ScopeTransactions:
		to.InvalidateTransactions(ctx)
	case ScopeStock:
		to.InvalidateStock(ctx)
	case ScopeProducts:
		to.InvalidateProducts(ctx)
	}
}

// Funcs adapts plain functions; nil entries are skipped.
type Funcs struct {
	Transactions func(ctx context.Context)
	Stock        func(ctx context.Context)
	Products     func(ctx context.Context)
}

func (f Funcs) InvalidateTransactions(ctx context.Context) { call(ctx, f.Transactions) }
func (f Funcs) InvalidateStock(ctx context.Context)        { call(ctx, f.Stock) }
func (f Funcs) InvalidateProducts(ctx context.Context)     { call(ctx, f.Products) }

func call(ctx context.Context, fn func(context.Context)) {
	if fn != nil {
		fn(ctx)
	}
}

// Multi fans every signal out to each invalidator in order.
type Multi []Invalidator

func (m Multi) InvalidateTransactions(ctx context.Context) {
	for _, inv := range m {
		inv.InvalidateTransactions(ctx)
	}
}

func (m Multi) InvalidateStock(ctx context.Context) {
	for _, inv := range m {
		inv.InvalidateStock(ctx)
	}
}

func (m Multi) InvalidateProducts(ctx context.Context) {
	for _, inv := range m {
		inv.InvalidateProducts(ctx)
	}
}

// Nop ignores every signal.
type Nop struct{}

func (Nop) InvalidateTransactions(context.Context) {}
func (Nop) InvalidateStock(context.Context)        {}
func (Nop) InvalidateProducts(context.Context)     {}
