package transaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kasir-pos/internal/backend"
	"kasir-pos/internal/logger"

	"go.uber.org/zap"
)

type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Service is the remote transaction and refund API.
type Service interface {
	Create(ctx context.Context, sub Submission) (Transaction, error)
	Refund(ctx context.Context, transactionID int64, reason string) (Refund, error)
}

type service struct {
	client Poster
}

func NewService(client Poster) Service {
	return &service{client: client}
}

// Create submits sub exactly once. It never retries.
func (s *service) Create(ctx context.Context, sub Submission) (Transaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateTransaction"),
		zap.String("payment_method", sub.PaymentMethod),
		zap.String("total", sub.Total.String()),
	)

	if len(sub.Items) == 0 {
		return Transaction{}, ErrNoItems
	}

	var trx Transaction
	if err := s.client.Post(ctx, "/transactions", sub, &trx); err != nil {
		log.Warn("create transaction failed",
			zap.String("kind", string(backend.KindOf(err))),
			zap.Error(err),
		)
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if trx.TransactionNumber == "" {
		if trx.ID == 0 {
			log.Error("transaction created without identifier")
			return Transaction{}, ErrMissingIdentifier
		}
		trx.TransactionNumber = strconv.FormatInt(trx.ID, 10)
	}

	log.Info("transaction created", zap.String("transaction_number", trx.TransactionNumber))
	return trx, nil
}

func (s *service) Refund(ctx context.Context, transactionID int64, reason string) (Refund, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RefundTransaction"),
		zap.Int64("transaction_id", transactionID),
	)

	if transactionID <= 0 {
		return Refund{}, ErrInvalidID
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Refund{}, ErrReasonRequired
	}

	path := "/transactions/" + strconv.FormatInt(transactionID, 10) + "/refund"
	var refund Refund
	err := s.client.Post(ctx, path, RefundRequest{Reason: reason}, &refund)
	switch {
	case errors.Is(err, backend.ErrEmptyResponse):
		// Some backend versions answer a refund with a bare message.
		refund = Refund{Status: "refunded"}
	case err != nil:
		log.Warn("refund failed", zap.Error(err))
		return Refund{}, fmt.Errorf("refund transaction: %w", err)
	}

	if refund.TransactionID == 0 {
		refund.TransactionID = transactionID
	}
	log.Info("transaction refunded")
	return refund, nil
}
