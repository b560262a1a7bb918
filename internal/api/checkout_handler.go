package api

import (
	"errors"
	"net/http"

	"kasir-pos/internal/backend"
	"kasir-pos/internal/checkout"
	"kasir-pos/internal/logger"
	"kasir-pos/internal/metrics"
	"kasir-pos/internal/quickamount"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type checkoutView struct {
	Open   bool             `json:"open"`
	State  checkout.State   `json:"state"`
	Result *checkout.Result `json:"result,omitempty"`
}

type PayRequest struct {
	PaymentMethod string          `json:"payment_method"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	OutletID      string          `json:"outlet_id"`
}

func viewOf(s *checkout.Session) checkoutView {
	if s == nil {
		return checkoutView{State: checkout.StateIdle}
	}
	v := checkoutView{Open: true, State: s.State()}
	if result, ok := s.Result(); ok {
		v.Result = &result
	}
	return v
}

// remote reports whether err came back from the backend rather than local
// validation.
func remote(err error) bool {
	var apiErr *backend.APIError
	return errors.As(err, &apiErr)
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s, _ := h.t.Checkout()
	respondJSON(w, r, http.StatusOK, viewOf(s))
}

func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	s, err := h.t.OpenCheckout(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, viewOf(s))
}

func (h *Handler) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.t.CloseCheckout(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, viewOf(nil))
}

// Pay submits through the open payment flow, opening one when none is.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PayRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	s, ok := h.t.Checkout()
	if !ok {
		var err error
		if s, err = h.t.OpenCheckout(ctx); err != nil {
			respondError(w, r, err)
			return
		}
	}

	timer := metrics.StartTimer()
	result, err := s.Pay(ctx, checkout.PaymentRequest{
		Method:     checkout.Method(req.PaymentMethod),
		PaidAmount: req.PaidAmount,
		OutletID:   req.OutletID,
	})
	if err != nil {
		if remote(err) {
			h.t.Stats.SalesFailed.Inc()
		}
		respondError(w, r, err)
		return
	}
	h.t.Stats.SalesCompleted.Inc()
	logger.FromCtx(ctx).Info("sale completed",
		zap.String("layer", "api"),
		zap.String("transaction_number", result.TransactionNumber),
		zap.Duration("duration", timer.Duration()),
	)
	respondJSON(w, r, http.StatusCreated, result)
}

func (h *Handler) Reprint(w http.ResponseWriter, r *http.Request) {
	s, ok := h.t.Checkout()
	if !ok {
		respondError(w, r, checkout.ErrNotCompleted)
		return
	}
	if err := s.Reprint(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	h.t.Stats.Reprints.Inc()
	respondJSON(w, r, http.StatusOK, viewOf(s))
}

// QuickAmounts suggests cash amounts for ?total=, or the live cart total.
func (h *Handler) QuickAmounts(w http.ResponseWriter, r *http.Request) {
	total := h.t.Ledger.Total()
	if raw := r.URL.Query().Get("total"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(w, r, badRequest{err})
			return
		}
		total = v
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"total":   total,
		"amounts": quickamount.Suggest(total),
	})
}
