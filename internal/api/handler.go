package api

import (
	"net/http"

	"kasir-pos/internal/auth"
	"kasir-pos/internal/logger"
	"kasir-pos/internal/metrics"
	"kasir-pos/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	// Origin of the POS screen allowed by CORS; empty disables CORS.
	Origin string
	// FallbackToken is used for backend calls when the UI sends none.
	FallbackToken string
	Limiter       *middleware.RateLimiter
}

type healthResponse struct {
	Status     string               `json:"status"`
	TerminalID string               `json:"terminal_id"`
	Stats      metrics.TillSnapshot `json:"stats"`
}

type Handler struct {
	t *Terminal
}

func NewHandler(t *Terminal) *Handler {
	t.fillDefaults()
	return &Handler{t: t}
}

func NewRouter(t *Terminal, opts RouterOptions) http.Handler {
	h := NewHandler(t)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.TerminalMiddleware(t.ID))
	r.Use(logger.LoggingMiddleware)
	if opts.Origin != "" {
		r.Use(middleware.CORS(opts.Origin))
	}
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}
	r.Use(auth.Middleware(opts.FallbackToken))
	r.Use(withNotices)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Post("/scan", h.Scan)
			r.Put("/customer", h.SetCustomer)
			r.Put("/discount", h.SetTotalDiscount)
			r.Route("/items/{productID}", func(r chi.Router) {
				r.Delete("/", h.RemoveItem)
				r.Put("/quantity", h.UpdateQuantity)
				r.Put("/discount", h.UpdateDiscount)
				r.Post("/price-mode", h.TogglePriceMode)
				r.Post("/refresh-stock", h.RefreshStock)
			})
		})

		r.Route("/holds", func(r chi.Router) {
			r.Get("/", h.ListHolds)
			r.Post("/", h.Hold)
			r.Post("/{id}/recall", h.Recall)
			r.Delete("/{id}", h.DeleteHold)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.GetCheckout)
			r.Post("/", h.OpenCheckout)
			r.Delete("/", h.CloseCheckout)
			r.Post("/pay", h.Pay)
			r.Post("/reprint", h.Reprint)
			r.Get("/quick-amounts", h.QuickAmounts)
		})

		r.Get("/products", h.SearchProducts)
		r.Get("/products/barcode/{code}", h.GetProductByBarcode)
		r.Get("/stocks/{productID}", h.GetStockLevel)

		r.Post("/transactions/{id}/refund", h.Refund)

		r.Get("/settings/shortcuts", h.ListShortcuts)
		r.Put("/settings/shortcuts/{action}", h.SetShortcut)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, healthResponse{
		Status:     "ok",
		TerminalID: h.t.ID,
		Stats:      h.t.Stats.Snapshot(),
	})
}
