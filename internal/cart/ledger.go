package cart

import (
	"context"
	"fmt"
	"sync"

	"kasir-pos/internal/logger"
	"kasir-pos/internal/notice"
	"kasir-pos/internal/pricing"
	"kasir-pos/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Options struct {
	// ClampDiscounts caps a line discount at the line's gross amount and
	// floors the grand total at zero. Off by default: the till historically
	// accepted discounts that push a sale negative.
	ClampDiscounts bool
}

// ClearHook runs after the live cart was emptied.
type ClearHook func(ctx context.Context)

// Ledger holds the in-progress sale of one terminal.
type Ledger struct {
	mu       sync.Mutex
	items    []*LineItem
	customer *Customer
	discount decimal.Decimal
	// revision is bumped by every mutation of the live sale.
	revision uint64

	opts     Options
	notifier notice.Notifier
	hooks    []ClearHook
}

func NewLedger(notifier notice.Notifier, opts Options) *Ledger {
	if notifier == nil {
		notifier = notice.Discard{}
	}
	return &Ledger{notifier: notifier, opts: opts}
}

// OnClear registers a hook called every time the live cart is emptied.
func (l *Ledger) OnClear(hook ClearHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook)
}

// AddItem puts qty units of p into the cart, merging with an existing line.
func (l *Ledger) AddItem(ctx context.Context, p product.Product, qty int) (LineItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "cart"),
		zap.String("method", "AddItem"),
		zap.Int64("product_id", p.ID),
		zap.Int("quantity", qty),
	)

	if qty <= 0 {
		notice.Warn(ctx, l.notifier, "Quantity must be at least 1")
		return LineItem{}, ErrInvalidQuantity
	}
	if !p.Active() {
		notice.Warn(ctx, l.notifier, fmt.Sprintf("%s is not available for sale", p.Name))
		return LineItem{}, ErrProductInactive
	}
	if p.StockQuantity <= 0 {
		notice.Warn(ctx, l.notifier, fmt.Sprintf("%s is out of stock", p.Name))
		return LineItem{}, ErrOutOfStock
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.find(p.ID)
	current := 0
	if existing != nil {
		current = existing.Quantity
	}
	if current+qty > p.StockQuantity {
		log.Debug("add rejected", zap.Int("in_cart", current), zap.Int("stock", p.StockQuantity))
		notice.Warn(ctx, l.notifier, fmt.Sprintf("Only %d %s in stock", p.StockQuantity, p.Name))
		return LineItem{}, ErrExceedsStock
	}

	if existing != nil {
		existing.Quantity += qty
		existing.Product = p.Clone()
		l.recompute(existing)
		l.revision++
		log.Debug("line incremented", zap.Int("new_quantity", existing.Quantity))
		return existing.Clone(), nil
	}

	item := &LineItem{
		Product:  p.Clone(),
		Quantity: qty,
		Discount: decimal.Zero,
	}
	l.recompute(item)
	l.items = append(l.items, item)
	l.revision++

	log.Debug("line created")
	return item.Clone(), nil
}

// RemoveItem deletes the line for productID; absent lines are ignored.
func (l *Ledger) RemoveItem(ctx context.Context, productID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(productID)
}

// UpdateQuantity sets the line quantity. Zero or less removes the line and a
// quantity above stock is clamped to the stock level.
func (l *Ledger) UpdateQuantity(ctx context.Context, productID int64, qty int) (LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if qty <= 0 {
		l.remove(productID)
		return LineItem{}, nil
	}

	item := l.find(productID)
	if item == nil {
		notice.Warn(ctx, l.notifier, "Item is no longer in the cart")
		return LineItem{}, ErrItemNotFound
	}

	if qty > item.Product.StockQuantity {
		notice.Warn(ctx, l.notifier, fmt.Sprintf("Only %d %s in stock, quantity adjusted",
			item.Product.StockQuantity, item.Product.Name))
		qty = item.Product.StockQuantity
	}

	item.Quantity = qty
	l.recompute(item)
	l.revision++
	return item.Clone(), nil
}

// UpdateDiscount sets the per-line discount.
func (l *Ledger) UpdateDiscount(ctx context.Context, productID int64, discount decimal.Decimal) (LineItem, error) {
	if discount.IsNegative() {
		notice.Warn(ctx, l.notifier, "Discount cannot be negative")
		return LineItem{}, ErrNegativeDiscount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.find(productID)
	if item == nil {
		notice.Warn(ctx, l.notifier, "Item is no longer in the cart")
		return LineItem{}, ErrItemNotFound
	}

	item.Discount = discount
	l.recompute(item)
	l.revision++
	return item.Clone(), nil
}

// TogglePriceMode flips the line between selling and wholesale pricing.
func (l *Ledger) TogglePriceMode(ctx context.Context, productID int64) (LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.find(productID)
	if item == nil {
		notice.Warn(ctx, l.notifier, "Item is no longer in the cart")
		return LineItem{}, ErrItemNotFound
	}

	if !item.UseWholesalePrice && !pricing.CanUseWholesale(item) {
		notice.Warn(ctx, l.notifier, fmt.Sprintf("%s has no wholesale price", item.Product.Name))
		return LineItem{}, ErrNoWholesalePrice
	}

	item.UseWholesalePrice = !item.UseWholesalePrice
	l.recompute(item)
	l.revision++
	return item.Clone(), nil
}

// RefreshStock applies a fresh stock level for a line, shrinking or dropping
// the line when the shelf no longer covers it.
func (l *Ledger) RefreshStock(ctx context.Context, productID int64, stock int) (LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.find(productID)
	if item == nil {
		return LineItem{}, ErrItemNotFound
	}

	item.Product.StockQuantity = stock
	l.revision++
	if stock <= 0 {
		l.remove(productID)
		notice.Warn(ctx, l.notifier, fmt.Sprintf("%s sold out and was removed", item.Product.Name))
		return LineItem{}, nil
	}
	if item.Quantity > stock {
		item.Quantity = stock
		notice.Warn(ctx, l.notifier, fmt.Sprintf("Only %d %s left, quantity adjusted", stock, item.Product.Name))
	}
	l.recompute(item)
	return item.Clone(), nil
}

func (l *Ledger) SetCustomer(_ context.Context, c *Customer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.customer = c.Clone()
	l.revision++
}

// SetTotalDiscount sets the sale-level discount.
func (l *Ledger) SetTotalDiscount(ctx context.Context, discount decimal.Decimal) error {
	if discount.IsNegative() {
		notice.Warn(ctx, l.notifier, "Discount cannot be negative")
		return ErrNegativeDiscount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.discount = discount
	l.revision++
	return nil
}

// Clear empties the cart, drops the customer and resets the sale discount.
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	l.reset()
	hooks := l.hooksCopy()
	l.mu.Unlock()

	runHooks(ctx, hooks)
}

// Checkpoint returns the live sale together with its revision.
func (l *Ledger) Checkpoint() (Snapshot, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(), l.revision
}

// ClearIf empties the cart only while it is still at revision. It reports
// false and leaves the cart alone when anything changed since the checkpoint.
func (l *Ledger) ClearIf(ctx context.Context, revision uint64) bool {
	l.mu.Lock()
	if l.revision != revision {
		l.mu.Unlock()
		return false
	}
	l.reset()
	hooks := l.hooksCopy()
	l.mu.Unlock()

	runHooks(ctx, hooks)
	return true
}

// Detach snapshots the live sale, hands it to fn and clears the cart only if
// fn succeeds. Nothing else can touch the ledger in between.
func (l *Ledger) Detach(ctx context.Context, fn func(Snapshot) error) error {
	l.mu.Lock()
	if len(l.items) == 0 {
		l.mu.Unlock()
		return ErrCartEmpty
	}

	if err := fn(l.snapshot()); err != nil {
		l.mu.Unlock()
		return err
	}

	l.reset()
	hooks := l.hooksCopy()
	l.mu.Unlock()

	runHooks(ctx, hooks)
	return nil
}

// Restore replaces whatever is live with s. Clearing and restoring happen
// under one lock.
func (l *Ledger) Restore(ctx context.Context, s Snapshot) {
	restored := s.Clone()

	l.mu.Lock()
	l.reset()
	hooks := l.hooksCopy()

	for i := range restored.Items {
		item := restored.Items[i]
		l.recompute(&item)
		l.items = append(l.items, &item)
	}
	l.customer = restored.Customer
	l.discount = restored.Discount
	l.mu.Unlock()

	runHooks(ctx, hooks)
}

// Snapshot returns a deep copy of the live sale with its totals.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Ledger) Items() []LineItem {
	return l.Snapshot().Items
}

func (l *Ledger) Customer() *Customer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.customer.Clone()
}

func (l *Ledger) TotalDiscount() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.discount
}

func (l *Ledger) Subtotal() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subtotal()
}

// Total is sum(line subtotal) - sale discount, derived on every call.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total()
}

func (l *Ledger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) == 0
}

func (l *Ledger) find(productID int64) *LineItem {
	for _, item := range l.items {
		if item.Product.ID == productID {
			return item
		}
	}
	return nil
}

func (l *Ledger) remove(productID int64) {
	for i, item := range l.items {
		if item.Product.ID == productID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.revision++
			return
		}
	}
}

// recompute re-derives the subtotal through the pricing resolver.
func (l *Ledger) recompute(item *LineItem) {
	unit := pricing.Resolve(item)
	if l.opts.ClampDiscounts {
		gross := pricing.LineTotal(unit, item.Quantity, decimal.Zero)
		if item.Discount.GreaterThan(gross) {
			item.Discount = gross
		}
	}
	item.Subtotal = pricing.LineTotal(unit, item.Quantity, item.Discount)
}

func (l *Ledger) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range l.items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

func (l *Ledger) total() decimal.Decimal {
	total := l.subtotal().Sub(l.discount)
	if l.opts.ClampDiscounts && total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (l *Ledger) snapshot() Snapshot {
	s := Snapshot{
		Items:    make([]LineItem, 0, len(l.items)),
		Customer: l.customer.Clone(),
		Discount: l.discount,
		Subtotal: l.subtotal(),
		Total:    l.total(),
	}
	for _, item := range l.items {
		s.Items = append(s.Items, item.Clone())
	}
	return s
}

func (l *Ledger) reset() {
	l.items = nil
	l.customer = nil
	l.discount = decimal.Zero
	l.revision++
}

func (l *Ledger) hooksCopy() []ClearHook {
	return append([]ClearHook(nil), l.hooks...)
}

func runHooks(ctx context.Context, hooks []ClearHook) {
	for _, hook := range hooks {
		hook(ctx)
	}
}
