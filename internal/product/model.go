package product

import "github.com/shopspring/decimal"

type Product struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	SKU            string              `json:"sku"`
	Barcode        string              `json:"barcode,omitempty"`
	SellingPrice   decimal.Decimal     `json:"selling_price"`
	WholesalePrice decimal.NullDecimal `json:"wholesale_price"`
	StockQuantity  int                 `json:"stock_quantity"`
	IsActive       *bool               `json:"is_active,omitempty"`
}

// Active treats a missing is_active flag as active; older backends omit it.
func (p Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// Clone returns a copy that shares no pointers with p.
func (p Product) Clone() Product {
	out := p
	if p.IsActive != nil {
		active := *p.IsActive
		out.IsActive = &active
	}
	return out
}

type Filter struct {
	Search     string
	CategoryID string
	OutletID   string
	Limit      int
}

type StockLevel struct {
	ProductID int64  `json:"product_id"`
	OutletID  string `json:"outlet_id"`
	Quantity  int    `json:"quantity"`
}
