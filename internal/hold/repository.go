package hold

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kasir-pos/internal/cart"
	"kasir-pos/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type postgresStore struct {
	db         *sql.DB
	terminalID string
}

// NewPostgresStore keeps held sales in the held_transactions table so they
// survive a till restart. Rows are scoped to one terminal.
func NewPostgresStore(db *sql.DB, terminalID string) Store {
	return &postgresStore{db: db, terminalID: terminalID}
}

func (r *postgresStore) Save(ctx context.Context, h HeldTransaction) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Save"),
		zap.String("held_id", h.ID),
	)

	payload, err := json.Marshal(h.Sale)
	if err != nil {
		return fmt.Errorf("marshal held sale: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO held_transactions (id, terminal_id, payload, held_at)
		VALUES ($1, $2, $3, $4)
	`, h.ID, r.terminalID, payload, h.HeldAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return ErrDuplicateID
		}
		log.Error("insert held transaction failed", zap.Error(err))
		return err
	}

	return nil
}

func (r *postgresStore) Take(ctx context.Context, id string) (HeldTransaction, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM held_transactions
		WHERE id = $1 AND terminal_id = $2
		RETURNING id, payload, held_at
	`, id, r.terminalID)

	h, err := scanHeld(row)
	if errors.Is(err, sql.ErrNoRows) {
		return HeldTransaction{}, ErrHeldNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("take held transaction failed",
			zap.String("layer", "repository"),
			zap.String("held_id", id),
			zap.Error(err),
		)
		return HeldTransaction{}, err
	}
	return h, nil
}

func (r *postgresStore) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM held_transactions
		WHERE id = $1 AND terminal_id = $2
	`, id, r.terminalID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrHeldNotFound
	}
	return nil
}

func (r *postgresStore) List(ctx context.Context) ([]HeldTransaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payload, held_at
		FROM held_transactions
		WHERE terminal_id = $1
		ORDER BY seq ASC
	`, r.terminalID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []HeldTransaction{}
	for rows.Next() {
		h, err := scanHeld(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHeld(s scanner) (HeldTransaction, error) {
	var (
		h       HeldTransaction
		payload []byte
	)
	if err := s.Scan(&h.ID, &payload, &h.HeldAt); err != nil {
		return HeldTransaction{}, err
	}

	var sale cart.Snapshot
	if err := json.Unmarshal(payload, &sale); err != nil {
		return HeldTransaction{}, fmt.Errorf("decode held sale %s: %w", h.ID, err)
	}
	h.Sale = sale
	return h, nil
}
