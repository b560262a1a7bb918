package api

import (
	"net/http"

	"kasir-pos/internal/hold"

	"github.com/go-chi/chi/v5"
)

type heldResponse struct {
	Held hold.HeldTransaction `json:"held"`
	Cart cartView             `json:"cart"`
}

type RecallRequest struct {
	DiscardLive bool `json:"discard_live"`
}

func (h *Handler) ListHolds(w http.ResponseWriter, r *http.Request) {
	held, err := h.t.Holds.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if held == nil {
		held = []hold.HeldTransaction{}
	}
	respondJSON(w, r, http.StatusOK, held)
}

func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	held, err := h.t.Holds.Hold(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, heldResponse{Held: held, Cart: h.view()})
}

func (h *Handler) Recall(w http.ResponseWriter, r *http.Request) {
	var req RecallRequest
	if err := decode(r, &req, true); err != nil {
		respondError(w, r, err)
		return
	}

	held, err := h.t.Holds.Recall(r.Context(), chi.URLParam(r, "id"), req.DiscardLive)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, heldResponse{Held: held, Cart: h.view()})
}

func (h *Handler) DeleteHold(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.t.Holds.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"deleted": id})
}
