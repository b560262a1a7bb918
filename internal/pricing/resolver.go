package pricing

import "github.com/shopspring/decimal"

// Priced is anything that can be priced by the resolver: a selling price, an
// optional wholesale price and the line's price-mode flag.
type Priced interface {
	SellingPrice() decimal.Decimal
	WholesalePrice() (decimal.Decimal, bool)
	UsesWholesalePrice() bool
}

// Resolve returns the unit price that applies to the item. Wholesale wins only
// when the item asks for it and the product carries a positive wholesale price.
func Resolve(item Priced) decimal.Decimal {
	if item.UsesWholesalePrice() {
		if wholesale, ok := usableWholesale(item); ok {
			return wholesale
		}
	}
	return item.SellingPrice()
}

// CanUseWholesale reports whether switching the item to wholesale pricing is allowed.
func CanUseWholesale(item Priced) bool {
	_, ok := usableWholesale(item)
	return ok
}

// LineTotal is quantity * unit price - discount.
func LineTotal(unitPrice decimal.Decimal, quantity int, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}

func usableWholesale(item Priced) (decimal.Decimal, bool) {
	price, ok := item.WholesalePrice()
	if !ok || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}
