package checkout

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"kasir-pos/internal/auth"
	"kasir-pos/internal/backend"
	"kasir-pos/internal/cart"
	"kasir-pos/internal/hold"
	"kasir-pos/internal/notice"
	"kasir-pos/internal/product"
	"kasir-pos/internal/receipt"
	"kasir-pos/internal/transaction"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, sub transaction.Submission) (transaction.Transaction, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) Refund(ctx context.Context, id int64, reason string) (transaction.Refund, error) {
	args := m.Called(ctx, id, reason)
	return args.Get(0).(transaction.Refund), args.Error(1)
}

type MockPrinter struct {
	mock.Mock
}

func (m *MockPrinter) Print(ctx context.Context, data receipt.Data) error {
	return m.Called(ctx, data).Error(0)
}

type countingInvalidator struct {
	transactions, stock, products int
}

func (c *countingInvalidator) InvalidateTransactions(context.Context) { c.transactions++ }
func (c *countingInvalidator) InvalidateStock(context.Context)        { c.stock++ }
func (c *countingInvalidator) InvalidateProducts(context.Context)     { c.products++ }

type fixture struct {
	ledger  *cart.Ledger
	trx     *MockTransactionService
	printer *MockPrinter
	inv     *countingInvalidator
	notices *notice.Collector
	session *Session
}

var (
	jakarta = time.FixedZone("WIB", 7*60*60)
	fixedAt = time.Date(2026, 10, 15, 2, 30, 0, 0, time.UTC)
)

func idr(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newFixture(t *testing.T) fixture {
	t.Helper()
	notices := notice.NewCollector()
	f := fixture{
		ledger:  cart.NewLedger(notices, cart.Options{}),
		trx:     new(MockTransactionService),
		printer: new(MockPrinter),
		inv:     &countingInvalidator{},
		notices: notices,
	}
	f.session = NewSession(Deps{
		Ledger:       f.ledger,
		Transactions: f.trx,
		Printer:      f.printer,
		Invalidator:  f.inv,
		Notifier:     notices,
		TerminalID:   "till-01",
		OutletID:     "1",
		Cashier:      "Till 1",
		Location:     jakarta,
		Now:          func() time.Time { return fixedAt },
	})
	return f
}

// fillCart builds 2 x 10,000 + 1 x 5,000 with a 3,000 sale discount: 22,000.
func (f fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.ledger.AddItem(ctx, product.Product{ID: 1, Name: "Kopi", SellingPrice: idr(10000), StockQuantity: 10}, 2)
	require.NoError(t, err)
	_, err = f.ledger.AddItem(ctx, product.Product{ID: 2, Name: "Roti", SellingPrice: idr(5000), StockQuantity: 10}, 1)
	require.NoError(t, err)
	require.NoError(t, f.ledger.SetTotalDiscount(ctx, idr(3000)))
	f.ledger.SetCustomer(ctx, &cart.Customer{ID: 9, Name: "Budi"})
	require.True(t, f.ledger.Total().Equal(idr(22000)))
	f.notices.Drain()
}

func hasLevel(notices []notice.Notice, level notice.Level) bool {
	for _, n := range notices {
		if n.Level == level {
			return true
		}
	}
	return false
}

func TestSession_Pay(t *testing.T) {
	t.Run("Cash Short Rejected Before Network", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)

		_, err := f.session.Pay(context.Background(), PaymentRequest{Method: MethodCash, PaidAmount: idr(20000)})

		assert.ErrorIs(t, err, ErrInsufficientPayment)
		f.trx.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, StateIdle, f.session.State())
		assert.Len(t, f.ledger.Items(), 2)
		assert.True(t, hasLevel(f.notices.Drain(), notice.LevelWarning))
	})

	t.Run("Cash Success", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()

		f.trx.On("Create", ctx, mock.MatchedBy(func(sub transaction.Submission) bool {
			return sub.PaymentMethod == "cash" &&
				sub.OutletID == "1" &&
				sub.TransactionDate == "2026-10-15 09:30:00" &&
				sub.CustomerID != nil && *sub.CustomerID == 9 &&
				sub.Subtotal.Equal(idr(25000)) &&
				sub.Discount.Equal(idr(3000)) &&
				sub.Total.Equal(idr(22000)) &&
				sub.PaidAmount.Equal(idr(50000)) &&
				sub.Change.Equal(idr(28000)) &&
				sub.Reference != "" &&
				len(sub.Items) == 2 &&
				sub.Items[0].UnitPrice.Equal(idr(10000)) &&
				sub.Items[0].TotalPrice.Equal(idr(20000))
		})).Return(transaction.Transaction{ID: 5, TransactionNumber: "TRX-5"}, nil).Once()
		f.printer.On("Print", ctx, mock.MatchedBy(func(d receipt.Data) bool {
			return d.TransactionNumber == "TRX-5" && d.Date == "15/10/2026" && d.Time == "09:30:00" &&
				d.CashierName == "Till 1" && d.CustomerName == "Budi"
		})).Return(nil).Once()

		result, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(50000)})
		require.NoError(t, err)

		assert.Equal(t, "TRX-5", result.TransactionNumber)
		assert.True(t, result.Change.Equal(idr(28000)))
		assert.True(t, result.Printed)
		assert.Equal(t, StateCompleted, f.session.State())
		assert.True(t, f.ledger.IsEmpty())
		assert.Nil(t, f.ledger.Customer())
		assert.Equal(t, countingInvalidator{1, 1, 1}, *f.inv)

		stored, ok := f.session.Result()
		assert.True(t, ok)
		assert.Equal(t, "TRX-5", stored.TransactionNumber)

		drained := f.notices.Drain()
		require.NotEmpty(t, drained)
		assert.Equal(t, notice.Notice{Level: notice.LevelSuccess, Message: "Transaction TRX-5 saved, change 28000"}, drained[0])

		f.trx.AssertExpectations(t)
		f.printer.AssertExpectations(t)
	})

	t.Run("Second Pay Makes No Network Call", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()

		f.trx.On("Create", ctx, mock.Anything).Return(transaction.Transaction{TransactionNumber: "TRX-6"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodQRIS})
		require.NoError(t, err)

		f.fillCart(t)
		_, err = f.session.Pay(ctx, PaymentRequest{Method: MethodQRIS})
		assert.ErrorIs(t, err, ErrAlreadyCompleted)

		f.trx.AssertNumberOfCalls(t, "Create", 1)
		assert.Len(t, f.ledger.Items(), 2)
	})

	t.Run("Non Cash Forces Exact Amount", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()

		f.trx.On("Create", ctx, mock.MatchedBy(func(sub transaction.Submission) bool {
			return sub.PaidAmount.Equal(idr(22000)) && sub.Change.IsZero()
		})).Return(transaction.Transaction{TransactionNumber: "TRX-7"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		result, err := f.session.Pay(ctx, PaymentRequest{Method: MethodDebit, PaidAmount: idr(1000)})
		require.NoError(t, err)
		assert.True(t, result.PaidAmount.Equal(idr(22000)))
		assert.True(t, result.Change.IsZero())
	})

	t.Run("Remote Failure Leaves Cart Untouched", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()
		before := f.ledger.Snapshot()

		var references []string
		apiErr := &backend.APIError{Status: http.StatusBadRequest, Kind: backend.KindInsufficientStock, Message: "Kopi"}
		f.trx.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			references = append(references, args.Get(1).(transaction.Submission).Reference)
		}).Return(transaction.Transaction{}, apiErr).Once()

		_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})

		assert.ErrorIs(t, err, apiErr)
		assert.Equal(t, StateIdle, f.session.State())
		assert.Equal(t, before, f.ledger.Snapshot())
		assert.Equal(t, countingInvalidator{}, *f.inv)
		assert.Contains(t, f.notices.Drain(), notice.Notice{Level: notice.LevelError, Message: "Insufficient stock: Kopi"})
		f.printer.AssertNotCalled(t, "Print", mock.Anything, mock.Anything)

		f.trx.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			references = append(references, args.Get(1).(transaction.Submission).Reference)
		}).Return(transaction.Transaction{TransactionNumber: "TRX-8"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		_, err = f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
		require.NoError(t, err)
		require.Len(t, references, 2)
		assert.Equal(t, references[0], references[1])
	})

	t.Run("Print Failure Only Warns", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()

		f.trx.On("Create", ctx, mock.Anything).Return(transaction.Transaction{TransactionNumber: "TRX-9"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(errors.New("paper out")).Once()

		result, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
		require.NoError(t, err)
		assert.False(t, result.Printed)
		assert.Equal(t, StateCompleted, f.session.State())
		assert.True(t, f.ledger.IsEmpty())
		assert.Equal(t, countingInvalidator{1, 1, 1}, *f.inv)
		assert.True(t, hasLevel(f.notices.Drain(), notice.LevelWarning))

		f.printer.On("Print", ctx, mock.Anything).Return(nil).Twice()
		require.NoError(t, f.session.Reprint(ctx))
		require.NoError(t, f.session.Reprint(ctx))

		stored, _ := f.session.Result()
		assert.True(t, stored.Printed)
		f.trx.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("Validation", func(t *testing.T) {
		ctx := context.Background()

		f := newFixture(t)
		_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(1)})
		assert.ErrorIs(t, err, ErrEmptyCart)

		f.fillCart(t)
		_, err = f.session.Pay(ctx, PaymentRequest{Method: "cheque", PaidAmount: idr(50000)})
		assert.ErrorIs(t, err, ErrUnknownPaymentMethod)

		noOutlet := NewSession(Deps{Ledger: f.ledger, Transactions: f.trx})
		_, err = noOutlet.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(50000)})
		assert.ErrorIs(t, err, ErrOutletRequired)

		f.trx.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, StateIdle, f.session.State())
	})

	t.Run("Outlet Override", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()

		f.trx.On("Create", ctx, mock.MatchedBy(func(sub transaction.Submission) bool {
			return sub.OutletID == "4"
		})).Return(transaction.Transaction{TransactionNumber: "TRX-10"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodTransfer, OutletID: "4"})
		require.NoError(t, err)
	})

	t.Run("Non Positive Price Flagged", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.ledger.AddItem(ctx, product.Product{ID: 3, Name: "Bonus", SellingPrice: decimal.Zero, StockQuantity: 1}, 1)
		require.NoError(t, err)

		f.trx.On("Create", ctx, mock.Anything).Return(transaction.Transaction{TransactionNumber: "TRX-11"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		result, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: decimal.Zero})
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.True(t, result.Lines[0].NonPositivePrice)
		assert.True(t, result.Lines[0].UnitPrice.IsZero())
		assert.True(t, result.Lines[0].TotalPrice.IsZero())
	})

	t.Run("Line Totals Follow Unit Price", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.ledger.AddItem(ctx, product.Product{ID: 4, Name: "Teh", SellingPrice: idr(4000), StockQuantity: 10}, 3)
		require.NoError(t, err)
		_, err = f.ledger.UpdateDiscount(ctx, 4, idr(1000))
		require.NoError(t, err)

		f.trx.On("Create", ctx, mock.Anything).Return(transaction.Transaction{TransactionNumber: "TRX-13"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		result, err := f.session.Pay(ctx, PaymentRequest{Method: MethodTransfer})
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		line := result.Lines[0]
		assert.False(t, line.NonPositivePrice)
		assert.True(t, idr(4000).Equal(line.UnitPrice))
		assert.True(t, idr(11000).Equal(line.TotalPrice))
		assert.True(t, line.UnitPrice.Mul(decimal.NewFromInt(3)).Sub(line.DiscountAmount).Equal(line.TotalPrice))
	})

	t.Run("Cashier From Request", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := auth.WithCashier(context.Background(), auth.Cashier{Name: "Rina"})

		f.trx.On("Create", ctx, mock.Anything).Return(transaction.Transaction{TransactionNumber: "TRX-12"}, nil).Once()
		f.printer.On("Print", ctx, mock.Anything).Return(nil)

		result, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
		require.NoError(t, err)
		assert.Equal(t, "Rina", result.Receipt.CashierName)
	})
}

func TestSession_PayInFlight(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	release := make(chan time.Time)
	f.trx.On("Create", ctx, mock.Anything).
		WaitUntil(release).
		Return(transaction.Transaction{TransactionNumber: "TRX-13"}, nil).Once()
	f.printer.On("Print", ctx, mock.Anything).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
		done <- err
	}()

	assert.Eventually(t, func() bool { return f.session.State() == StateSubmitting }, time.Second, 5*time.Millisecond)

	_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
	f.trx.AssertNumberOfCalls(t, "Create", 1)
}

// blockCreate holds Create open until release is closed and reports on
// started once the call is in progress.
func (f fixture) blockCreate(ctx context.Context, number string) (started, release chan struct{}) {
	started = make(chan struct{})
	release = make(chan struct{})
	f.trx.On("Create", ctx, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(transaction.Transaction{TransactionNumber: number}, nil).Once()
	f.printer.On("Print", ctx, mock.Anything).Return(nil)
	return started, release
}

func TestSession_PayKeepsCartChangedInFlight(t *testing.T) {
	t.Run("Item Added During Submission", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()
		started, release := f.blockCreate(ctx, "TRX-20")

		done := make(chan error, 1)
		go func() {
			_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
			done <- err
		}()
		<-started

		_, err := f.ledger.AddItem(ctx, product.Product{ID: 5, Name: "Gula", SellingPrice: idr(15000), StockQuantity: 3}, 1)
		require.NoError(t, err)

		close(release)
		require.NoError(t, <-done)

		items := f.ledger.Items()
		require.Len(t, items, 3)
		assert.Equal(t, int64(5), items[2].Product.ID)
		assert.True(t, hasLevel(f.notices.Drain(), notice.LevelInfo))
		assert.Equal(t, 1, f.inv.transactions)
	})

	t.Run("Recalled Sale Survives", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		holds := hold.NewService(f.ledger, hold.NewMemoryStore(), f.notices, hold.Options{RequireConfirm: true})

		_, err := f.ledger.AddItem(ctx, product.Product{ID: 7, Name: "Beras", SellingPrice: idr(60000), StockQuantity: 5}, 1)
		require.NoError(t, err)
		held, err := holds.Hold(ctx)
		require.NoError(t, err)
		require.True(t, f.ledger.IsEmpty())

		f.fillCart(t)
		started, release := f.blockCreate(ctx, "TRX-21")

		done := make(chan error, 1)
		go func() {
			_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
			done <- err
		}()
		<-started

		_, err = holds.Recall(ctx, held.ID, true)
		require.NoError(t, err)

		close(release)
		require.NoError(t, <-done)

		items := f.ledger.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "Beras", items[0].Product.Name)
		assert.True(t, f.ledger.Total().Equal(idr(60000)))

		remaining, err := holds.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("Untouched Cart Cleared", func(t *testing.T) {
		f := newFixture(t)
		f.fillCart(t)
		ctx := context.Background()
		started, release := f.blockCreate(ctx, "TRX-22")

		done := make(chan error, 1)
		go func() {
			_, err := f.session.Pay(ctx, PaymentRequest{Method: MethodCash, PaidAmount: idr(22000)})
			done <- err
		}()
		<-started
		close(release)
		require.NoError(t, <-done)

		assert.True(t, f.ledger.IsEmpty())
		assert.False(t, hasLevel(f.notices.Drain(), notice.LevelInfo))
	})
}

func TestSession_ReprintBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.session.Reprint(context.Background()), ErrNotCompleted)
	f.printer.AssertNotCalled(t, "Print", mock.Anything, mock.Anything)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" QRIS ")
	require.NoError(t, err)
	assert.Equal(t, MethodQRIS, m)

	_, err = ParseMethod("")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}
