package transaction

import "github.com/shopspring/decimal"

type LineSubmission struct {
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// Submission is the payload sent once per checkout.
type Submission struct {
	Reference       string           `json:"reference,omitempty"`
	CustomerID      *int64           `json:"customer_id"`
	OutletID        string           `json:"outlet_id"`
	PaymentMethod   string           `json:"payment_method"`
	TransactionDate string           `json:"transaction_date"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Discount        decimal.Decimal  `json:"discount"`
	Total           decimal.Decimal  `json:"total"`
	PaidAmount      decimal.Decimal  `json:"paid_amount"`
	Change          decimal.Decimal  `json:"change"`
	Items           []LineSubmission `json:"items"`
}

// Transaction is the backend's record of a created sale.
type Transaction struct {
	ID                int64           `json:"id"`
	TransactionNumber string          `json:"transaction_number"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	Change            decimal.Decimal `json:"change"`
	Status            string          `json:"status,omitempty"`
}

type RefundRequest struct {
	Reason string `json:"reason"`
}

type Refund struct {
	TransactionID int64           `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
}
