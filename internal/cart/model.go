package cart

import (
	"kasir-pos/internal/pricing"
	"kasir-pos/internal/product"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// LineItem is one product's presence in the cart.
type LineItem struct {
	Product           product.Product `json:"product"`
	Quantity          int             `json:"quantity"`
	Discount          decimal.Decimal `json:"discount"`
	UseWholesalePrice bool            `json:"use_wholesale_price"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

func (li LineItem) SellingPrice() decimal.Decimal { return li.Product.SellingPrice }

func (li LineItem) WholesalePrice() (decimal.Decimal, bool) {
	return li.Product.WholesalePrice.Decimal, li.Product.WholesalePrice.Valid
}

func (li LineItem) UsesWholesalePrice() bool { return li.UseWholesalePrice }

// UnitPrice is the price the resolver picks for the current price mode.
func (li LineItem) UnitPrice() decimal.Decimal {
	return pricing.Resolve(li)
}

func (li LineItem) Clone() LineItem {
	out := li
	out.Product = li.Product.Clone()
	return out
}

// Snapshot is a detached deep copy of a sale: lines, customer and sale-level
// discount, with the totals as they were when it was taken.
type Snapshot struct {
	Items    []LineItem      `json:"items"`
	Customer *Customer       `json:"customer,omitempty"`
	Discount decimal.Decimal `json:"discount"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Items:    make([]LineItem, len(s.Items)),
		Customer: s.Customer.Clone(),
		Discount: s.Discount,
		Subtotal: s.Subtotal,
		Total:    s.Total,
	}
	for i, item := range s.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

// ItemCount is the number of units across all lines.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}
