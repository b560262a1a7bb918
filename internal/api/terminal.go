package api

import (
	"context"
	"sync"
	"time"

	"kasir-pos/internal/cache"
	"kasir-pos/internal/cart"
	"kasir-pos/internal/checkout"
	"kasir-pos/internal/hold"
	"kasir-pos/internal/metrics"
	"kasir-pos/internal/notice"
	"kasir-pos/internal/product"
	"kasir-pos/internal/receipt"
	"kasir-pos/internal/settings"
	"kasir-pos/internal/transaction"
)

// ShortcutStore is the keyboard shortcut view the screen reads and edits.
type ShortcutStore interface {
	settings.Shortcuts
	All() []settings.Change
	Set(ctx context.Context, action settings.Action, key string) error
}

// Terminal is everything one cash register owns: its live sale, held sales,
// the current payment flow and the services those talk to.
type Terminal struct {
	ID       string
	OutletID string
	Cashier  string
	Location *time.Location
	Now      func() time.Time

	Ledger       *cart.Ledger
	Holds        hold.Service
	Catalog      product.Service
	Transactions transaction.Service
	Printer      receipt.Printer
	Invalidator  cache.Invalidator
	Shortcuts    ShortcutStore
	Notifier     notice.Notifier
	Latest       *product.Latest
	Stats        *metrics.Till

	mu      sync.Mutex
	session *checkout.Session
}

// fillDefaults sets the optional collaborators left nil.
func (t *Terminal) fillDefaults() {
	if t.Notifier == nil {
		t.Notifier = notice.Request{}
	}
	if t.Invalidator == nil {
		t.Invalidator = cache.Nop{}
	}
	if t.Printer == nil {
		t.Printer = receipt.LogPrinter{}
	}
	if t.Stats == nil {
		t.Stats = metrics.NewTill()
	}
	if t.Latest == nil {
		t.Latest = product.NewLatest()
	}
	if t.Shortcuts == nil {
		t.Shortcuts = settings.NewStore(nil)
	}
	if t.Location == nil {
		t.Location = time.Local
	}
	if t.Now == nil {
		t.Now = time.Now
	}
}

// OpenCheckout starts a fresh payment flow, replacing a finished or idle one.
func (t *Terminal) OpenCheckout(context.Context) (*checkout.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && busy(t.session.State()) {
		return nil, checkout.ErrSubmissionInFlight
	}
	t.session = checkout.NewSession(checkout.Deps{
		Ledger:       t.Ledger,
		Transactions: t.Transactions,
		Printer:      t.Printer,
		Invalidator:  t.Invalidator,
		Notifier:     t.Notifier,
		TerminalID:   t.ID,
		OutletID:     t.OutletID,
		Cashier:      t.Cashier,
		Location:     t.Location,
		Now:          t.Now,
	})
	return t.session, nil
}

// Checkout returns the current payment flow, if one is open.
func (t *Terminal) Checkout() (*checkout.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session, t.session != nil
}

// CloseCheckout ends the payment flow. A submission in flight cannot be
// abandoned.
func (t *Terminal) CloseCheckout(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && busy(t.session.State()) {
		return checkout.ErrSubmissionInFlight
	}
	t.session = nil
	return nil
}

func busy(s checkout.State) bool {
	return s == checkout.StateValidating || s == checkout.StateSubmitting
}
