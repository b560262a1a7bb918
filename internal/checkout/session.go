package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kasir-pos/internal/auth"
	"kasir-pos/internal/backend"
	"kasir-pos/internal/cache"
	"kasir-pos/internal/cart"
	"kasir-pos/internal/logger"
	"kasir-pos/internal/notice"
	"kasir-pos/internal/pricing"
	"kasir-pos/internal/receipt"
	"kasir-pos/internal/transaction"
	"kasir-pos/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Deps struct {
	Ledger       *cart.Ledger
	Transactions transaction.Service
	Printer      receipt.Printer
	Invalidator  cache.Invalidator
	Notifier     notice.Notifier

	TerminalID string
	OutletID   string
	// Cashier is printed when the request carries no cashier identity.
	Cashier  string
	Location *time.Location
	Now      func() time.Time
}

// Session is one payment flow. Once a transaction was created the session
// is latched and refuses to submit again; open a new session for the next
// sale.
type Session struct {
	deps Deps

	mu        sync.Mutex
	state     State
	completed bool
	reference string
	result    Result
}

func NewSession(deps Deps) *Session {
	if deps.Printer == nil {
		deps.Printer = receipt.LogPrinter{}
	}
	if deps.Invalidator == nil {
		deps.Invalidator = cache.Nop{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notice.Discard{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Session{
		deps:      deps,
		state:     StateIdle,
		reference: utils.GenerateReference(deps.TerminalID, deps.Now()),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result is the outcome of the completed payment.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.completed
}

// Pay validates the live sale, submits it once and runs the post-payment
// side effects. On any failure the cart is left as it was.
func (s *Session) Pay(ctx context.Context, req PaymentRequest) (Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("method", "Pay"),
		zap.String("payment_method", string(req.Method)),
	)

	s.mu.Lock()
	switch {
	case s.completed:
		s.mu.Unlock()
		log.Info("pay ignored, transaction already created")
		notice.Info(ctx, s.deps.Notifier, "This transaction was already saved")
		return Result{}, ErrAlreadyCompleted
	case s.state == StateValidating || s.state == StateSubmitting:
		s.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	s.state = StateValidating
	s.mu.Unlock()

	sale, revision := s.deps.Ledger.Checkpoint()
	sub, lines, err := s.prepare(ctx, sale, req)
	if err != nil {
		s.setState(StateIdle)
		log.Info("payment rejected", zap.Error(err))
		return Result{}, err
	}

	s.setState(StateSubmitting)
	log.Info("submitting transaction",
		zap.String("reference", sub.Reference),
		zap.String("total", sub.Total.String()),
		zap.Int("lines", len(sub.Items)),
	)

	trx, err := s.deps.Transactions.Create(ctx, sub)
	if err != nil {
		s.setState(StateIdle)
		log.Warn("transaction failed",
			zap.String("kind", string(backend.KindOf(err))),
			zap.Error(err),
		)
		notice.Error(ctx, s.deps.Notifier, backend.UserMessage(err))
		return Result{}, fmt.Errorf("submit payment: %w", err)
	}

	result := Result{
		TransactionNumber: trx.TransactionNumber,
		Transaction:       trx,
		Method:            req.Method,
		Total:             sub.Total,
		PaidAmount:        sub.PaidAmount,
		Change:            sub.Change,
		Lines:             lines,
		Receipt: receipt.Build(receipt.BuildInput{
			Sale:        sale,
			Submission:  sub,
			Transaction: trx,
			Cashier:     s.cashier(ctx),
			PrintedAt:   s.deps.Now().In(s.deps.Location),
		}),
	}

	s.mu.Lock()
	s.completed = true
	s.state = StateCompleted
	s.result = result
	s.mu.Unlock()

	msg := "Transaction " + trx.TransactionNumber + " saved"
	if req.Method == MethodCash && sub.Change.IsPositive() {
		msg += ", change " + sub.Change.StringFixed(0)
	}
	notice.Success(ctx, s.deps.Notifier, msg)

	result.Printed = s.print(ctx, result.Receipt)
	s.mu.Lock()
	s.result.Printed = result.Printed
	s.mu.Unlock()

	s.deps.Invalidator.InvalidateTransactions(ctx)
	s.deps.Invalidator.InvalidateStock(ctx)
	s.deps.Invalidator.InvalidateProducts(ctx)

	if !s.deps.Ledger.ClearIf(ctx, revision) {
		log.Warn("cart changed during payment, kept",
			zap.String("transaction_number", trx.TransactionNumber),
		)
		notice.Info(ctx, s.deps.Notifier, "Cart changed during payment and was kept")
	}

	log.Info("checkout completed",
		zap.String("transaction_number", trx.TransactionNumber),
		zap.Bool("printed", result.Printed),
	)
	return result, nil
}

// Reprint sends the stored receipt again. It never touches the backend.
func (s *Session) Reprint(ctx context.Context) error {
	s.mu.Lock()
	if !s.completed {
		s.mu.Unlock()
		return ErrNotCompleted
	}
	data := s.result.Receipt
	s.mu.Unlock()

	if !s.print(ctx, data) {
		return receipt.ErrPrinterRejected
	}

	s.mu.Lock()
	s.result.Printed = true
	s.mu.Unlock()
	return nil
}

func (s *Session) prepare(ctx context.Context, sale cart.Snapshot, req PaymentRequest) (transaction.Submission, []Line, error) {
	if sale.IsEmpty() {
		notice.Warn(ctx, s.deps.Notifier, "Cart is empty")
		return transaction.Submission{}, nil, ErrEmptyCart
	}

	outletID := req.OutletID
	if outletID == "" {
		outletID = s.deps.OutletID
	}
	if outletID == "" {
		notice.Warn(ctx, s.deps.Notifier, "Please select an outlet first")
		return transaction.Submission{}, nil, ErrOutletRequired
	}

	method, err := ParseMethod(string(req.Method))
	if err != nil {
		notice.Warn(ctx, s.deps.Notifier, "Please choose a payment method")
		return transaction.Submission{}, nil, err
	}

	total := sale.Total
	paid := req.PaidAmount
	change := decimal.Zero
	if method == MethodCash {
		if paid.LessThan(total) {
			notice.Warn(ctx, s.deps.Notifier, "Paid amount is less than the total")
			return transaction.Submission{}, nil, ErrInsufficientPayment
		}
		change = paid.Sub(total)
	} else {
		paid = total
	}

	lines := s.buildLines(ctx, sale)
	items := make([]transaction.LineSubmission, len(lines))
	for i, line := range lines {
		items[i] = line.LineSubmission
	}

	sub := transaction.Submission{
		Reference:       s.reference,
		OutletID:        outletID,
		PaymentMethod:   string(method),
		TransactionDate: utils.LocalTimestamp(s.deps.Now(), s.deps.Location),
		Subtotal:        sale.Subtotal,
		Discount:        sale.Discount,
		Total:           total,
		PaidAmount:      paid,
		Change:          change,
		Items:           items,
	}
	if sale.Customer != nil {
		id := sale.Customer.ID
		sub.CustomerID = &id
	}
	return sub, lines, nil
}

// buildLines prices every line through the resolver. The resolver already
// falls back to the selling price, so a non-positive unit price here is a
// catalog data problem: the line is submitted as priced and flagged.
func (s *Session) buildLines(ctx context.Context, sale cart.Snapshot) []Line {
	lines := make([]Line, 0, len(sale.Items))
	for _, item := range sale.Items {
		unit := item.UnitPrice()
		nonPositive := !unit.IsPositive()
		if nonPositive {
			logger.FromCtx(ctx).Warn("non-positive unit price",
				zap.String("layer", "checkout"),
				zap.Int64("product_id", item.Product.ID),
				zap.String("product", item.Product.Name),
				zap.Bool("wholesale", item.UseWholesalePrice),
			)
		}

		lines = append(lines, Line{
			LineSubmission: transaction.LineSubmission{
				ProductID:      item.Product.ID,
				Quantity:       item.Quantity,
				UnitPrice:      unit,
				DiscountAmount: item.Discount,
				TotalPrice:     pricing.LineTotal(unit, item.Quantity, item.Discount),
			},
			NonPositivePrice: nonPositive,
		})
	}
	return lines
}

// print is best effort; a failure only warns the cashier.
func (s *Session) print(ctx context.Context, data receipt.Data) bool {
	if err := s.deps.Printer.Print(ctx, data); err != nil {
		logger.FromCtx(ctx).Warn("receipt not printed",
			zap.String("layer", "checkout"),
			zap.String("transaction_number", data.TransactionNumber),
			zap.Error(err),
		)
		notice.Warn(ctx, s.deps.Notifier, "Transaction saved but the receipt could not be printed")
		return false
	}
	return true
}

func (s *Session) cashier(ctx context.Context) string {
	if c, ok := auth.CashierFrom(ctx); ok {
		return c.Name
	}
	return s.deps.Cashier
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
