package api

import (
	"net/http"

	"kasir-pos/internal/settings"

	"github.com/go-chi/chi/v5"
)

type ShortcutRequest struct {
	Key string `json:"key"`
}

func (h *Handler) ListShortcuts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.t.Shortcuts.All())
}

func (h *Handler) SetShortcut(w http.ResponseWriter, r *http.Request) {
	var req ShortcutRequest
	if err := decode(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	action := settings.Action(chi.URLParam(r, "action"))
	if err := h.t.Shortcuts.Set(r.Context(), action, req.Key); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, settings.Change{Action: action, Key: h.t.Shortcuts.GetShortcut(action)})
}
