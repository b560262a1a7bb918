package api

import (
	"net/http"
	"strconv"

	"kasir-pos/internal/cache"
	"kasir-pos/internal/notice"
	"kasir-pos/internal/product"
	"kasir-pos/internal/utils"

	"github.com/go-chi/chi/v5"
)

type RefundRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) outlet(r *http.Request) string {
	if o := r.URL.Query().Get("outlet_id"); o != "" {
		return o
	}
	return h.t.OutletID
}

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, err := h.t.Catalog.Search(r.Context(), product.Filter{
		Search:     q.Get("search"),
		CategoryID: q.Get("category_id"),
		OutletID:   h.outlet(r),
		Limit:      limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, products)
}

func (h *Handler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.t.Catalog.GetByBarcode(r.Context(), chi.URLParam(r, "code"), h.outlet(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

func (h *Handler) GetStockLevel(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	level, err := h.t.Catalog.GetStockLevel(r.Context(), id, h.outlet(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, level)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseInt64(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, badRequest{err})
		return
	}
	var req RefundRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	refund, err := h.t.Transactions.Refund(ctx, id, req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cache.Invalidate(ctx, h.t.Invalidator, cache.ScopeTransactions)
	cache.Invalidate(ctx, h.t.Invalidator, cache.ScopeStock)
	notice.Success(ctx, h.t.Notifier, "Transaction refunded")
	respondJSON(w, r, http.StatusOK, refund)
}
