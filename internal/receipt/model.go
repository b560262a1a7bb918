package receipt

import "github.com/shopspring/decimal"

type Line struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Data is what gets printed for one sale. Letterhead fields are filled in by
// the printing service.
type Data struct {
	TransactionID     int64           `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	Date              string          `json:"date"`
	Time              string          `json:"time"`
	CashierName       string          `json:"cashier_name"`
	CustomerName      string          `json:"customer_name,omitempty"`
	Items             []Line          `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"payment_method"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	Change            decimal.Decimal `json:"change"`
}
