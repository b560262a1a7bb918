package hold

import (
	"time"

	"kasir-pos/internal/cart"
)

// HeldTransaction is a parked sale. It is never mutated after it is stored.
type HeldTransaction struct {
	ID     string        `json:"id"`
	Sale   cart.Snapshot `json:"sale"`
	HeldAt time.Time     `json:"held_at"`
}

func (h HeldTransaction) Clone() HeldTransaction {
	out := h
	out.Sale = h.Sale.Clone()
	return out
}
