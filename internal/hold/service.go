package hold

import (
	"context"
	"errors"
	"sync"
	"time"

	"kasir-pos/internal/cart"
	"kasir-pos/internal/logger"
	"kasir-pos/internal/notice"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service parks and resumes whole sales of one terminal.
type Service interface {
	Hold(ctx context.Context) (HeldTransaction, error)
	Recall(ctx context.Context, id string, discardLive bool) (HeldTransaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]HeldTransaction, error)
}

type Options struct {
	// RequireConfirm refuses to recall over a non-empty live cart unless the
	// caller explicitly discards it.
	RequireConfirm bool
}

type service struct {
	ledger   *cart.Ledger
	store    Store
	notifier notice.Notifier
	opts     Options

	// recall is a critical section: check, take and restore run back to back.
	mu sync.Mutex

	newID func() (string, error)
	now   func() time.Time
}

func NewService(ledger *cart.Ledger, store Store, notifier notice.Notifier, opts Options) Service {
	if notifier == nil {
		notifier = notice.Discard{}
	}
	return &service{
		ledger:   ledger,
		store:    store,
		notifier: notifier,
		opts:     opts,
		newID:    newHeldID,
		now:      time.Now,
	}
}

// newHeldID returns a UUIDv7: millisecond timestamp prefix plus random bits,
// so rapid repeated holds never collide and ids sort by hold time.
func newHeldID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *service) Hold(ctx context.Context) (HeldTransaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Hold"),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	var held HeldTransaction
	err := s.ledger.Detach(ctx, func(sale cart.Snapshot) error {
		id, err := s.newID()
		if err != nil {
			return err
		}
		held = HeldTransaction{ID: id, Sale: sale, HeldAt: s.now()}
		return s.store.Save(ctx, held)
	})
	if errors.Is(err, cart.ErrCartEmpty) {
		notice.Warn(ctx, s.notifier, "Cart is empty, nothing to hold")
		return HeldTransaction{}, ErrNothingToHold
	}
	if err != nil {
		log.Error("hold failed", zap.Error(err))
		notice.Error(ctx, s.notifier, "Failed to hold transaction")
		return HeldTransaction{}, err
	}

	log.Info("transaction held",
		zap.String("held_id", held.ID),
		zap.Int("lines", len(held.Sale.Items)),
		zap.String("total", held.Sale.Total.String()),
	)
	notice.Success(ctx, s.notifier, "Transaction held")
	return held.Clone(), nil
}

// Recall restores a held sale over the live cart and drops it from the held
// set. Without discardLive a non-empty live cart is refused when the service
// requires confirmation; otherwise the live cart is discarded, not held.
func (s *service) Recall(ctx context.Context, id string, discardLive bool) (HeldTransaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Recall"),
		zap.String("held_id", id),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.RequireConfirm && !discardLive && !s.ledger.IsEmpty() {
		notice.Warn(ctx, s.notifier, "Current cart is not empty, confirm to discard it")
		return HeldTransaction{}, ErrLiveCartNotEmpty
	}

	held, err := s.store.Take(ctx, id)
	if errors.Is(err, ErrHeldNotFound) {
		notice.Warn(ctx, s.notifier, "Held transaction not found")
		return HeldTransaction{}, err
	}
	if err != nil {
		log.Error("take held transaction failed", zap.Error(err))
		notice.Error(ctx, s.notifier, "Failed to recall transaction")
		return HeldTransaction{}, err
	}

	if !s.ledger.IsEmpty() {
		log.Warn("live cart discarded by recall")
	}
	s.ledger.Restore(ctx, held.Sale)

	log.Info("transaction recalled")
	notice.Success(ctx, s.notifier, "Transaction recalled")
	return held, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrHeldNotFound) {
		notice.Warn(ctx, s.notifier, "Held transaction not found")
		return err
	}
	if err != nil {
		logger.FromCtx(ctx).Error("delete held transaction failed", zap.String("held_id", id), zap.Error(err))
		return err
	}

	notice.Info(ctx, s.notifier, "Held transaction deleted")
	return nil
}

func (s *service) List(ctx context.Context) ([]HeldTransaction, error) {
	return s.store.List(ctx)
}
