package api

import (
	"net/http"

	"kasir-pos/internal/cart"
	"kasir-pos/internal/logger"
	"kasir-pos/internal/product"
	"kasir-pos/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartView struct {
	cart.Snapshot
	ItemCount int `json:"item_count"`
}

type lineResponse struct {
	Item *cart.LineItem `json:"item,omitempty"`
	Cart cartView       `json:"cart"`
}

type AddItemRequest struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type ScanRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type DiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

type CustomerRequest struct {
	Customer *cart.Customer `json:"customer"`
}

func (h *Handler) view() cartView {
	s := h.t.Ledger.Snapshot()
	return cartView{Snapshot: s, ItemCount: s.ItemCount()}
}

// withLine renders item unless the mutation removed the line.
func (h *Handler) withLine(item cart.LineItem) lineResponse {
	resp := lineResponse{Cart: h.view()}
	if item.Quantity > 0 {
		resp.Item = &item
	}
	return resp
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.view())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.t.Ledger.Clear(r.Context())
	respondJSON(w, r, http.StatusOK, h.view())
}

// AddItem adds a product picked from search results. The stock level is
// re-read from the stock service when an outlet is known.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddItemRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Product.ID <= 0 {
		respondError(w, r, errInvalidProductID)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p := req.Product
	if h.t.OutletID != "" && h.t.Catalog != nil {
		level, err := h.t.Catalog.GetStockLevel(ctx, p.ID, h.t.OutletID)
		if err != nil {
			logger.FromCtx(ctx).Warn("stock refresh failed, using listed stock",
				zap.String("layer", "api"),
				zap.Int64("product_id", p.ID),
				zap.Error(err),
			)
		} else {
			p.StockQuantity = level.Quantity
		}
	}

	item, err := h.t.Ledger.AddItem(ctx, p, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, h.withLine(item))
}

// Scan resolves a barcode and adds one unit. Only the newest scan's lookup
// is applied; a response overtaken by a later scan is dropped.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScanRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ticket := h.t.Latest.Next("scan")
	p, err := h.t.Catalog.GetByBarcode(ctx, req.Barcode, h.t.OutletID)
	if err != nil {
		if !h.t.Latest.IsCurrent("scan", ticket) {
			h.t.Stats.StaleScans.Inc()
			err = product.ErrStaleResponse
		}
		respondError(w, r, err)
		return
	}

	var (
		item   cart.LineItem
		addErr error
	)
	applied := h.t.Latest.Apply("scan", ticket, func() {
		item, addErr = h.t.Ledger.AddItem(ctx, p, req.Quantity)
	})
	if !applied {
		h.t.Stats.StaleScans.Inc()
		logger.FromCtx(ctx).Info("stale scan dropped",
			zap.String("layer", "api"),
			zap.String("barcode", req.Barcode),
		)
		respondError(w, r, product.ErrStaleResponse)
		return
	}
	if addErr != nil {
		respondError(w, r, addErr)
		return
	}
	respondJSON(w, r, http.StatusCreated, h.withLine(item))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.t.Ledger.RemoveItem(r.Context(), id)
	respondJSON(w, r, http.StatusOK, h.view())
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req QuantityRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.t.Ledger.UpdateQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, h.withLine(item))
}

func (h *Handler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req DiscountRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.t.Ledger.UpdateDiscount(r.Context(), id, req.Discount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, h.withLine(item))
}

func (h *Handler) TogglePriceMode(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.t.Ledger.TogglePriceMode(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, h.withLine(item))
}

func (h *Handler) RefreshStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	level, err := h.t.Catalog.GetStockLevel(ctx, id, h.t.OutletID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.t.Ledger.RefreshStock(ctx, id, level.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, h.withLine(item))
}

func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	h.t.Ledger.SetCustomer(r.Context(), req.Customer)
	respondJSON(w, r, http.StatusOK, h.view())
}

func (h *Handler) SetTotalDiscount(w http.ResponseWriter, r *http.Request) {
	var req DiscountRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.t.Ledger.SetTotalDiscount(r.Context(), req.Discount); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, h.view())
}

func productID(r *http.Request) (int64, error) {
	id, err := utils.ParseInt64(chi.URLParam(r, "productID"))
	if err != nil || id <= 0 {
		return 0, errInvalidProductID
	}
	return id, nil
}
