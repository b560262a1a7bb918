package checkout

import (
	"strings"

	"kasir-pos/internal/receipt"
	"kasir-pos/internal/transaction"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodQRIS     Method = "qris"
	MethodDebit    Method = "debit"
	MethodCredit   Method = "credit"
	MethodTransfer Method = "transfer"
)

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCash, MethodQRIS, MethodDebit, MethodCredit, MethodTransfer:
		return m, nil
	default:
		return "", ErrUnknownPaymentMethod
	}
}

type PaymentRequest struct {
	Method     Method          `json:"payment_method"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	// OutletID overrides the terminal's outlet for this payment.
	OutletID string `json:"outlet_id,omitempty"`
}

// Line is a submitted line. NonPositivePrice marks a line whose resolved unit
// price was zero or negative.
type Line struct {
	transaction.LineSubmission
	NonPositivePrice bool `json:"non_positive_price"`
}

type Result struct {
	TransactionNumber string                  `json:"transaction_number"`
	Transaction       transaction.Transaction `json:"transaction"`
	Method            Method                  `json:"payment_method"`
	Total             decimal.Decimal         `json:"total"`
	PaidAmount        decimal.Decimal         `json:"paid_amount"`
	Change            decimal.Decimal         `json:"change"`
	Lines             []Line                  `json:"lines"`
	Receipt           receipt.Data            `json:"receipt"`
	Printed           bool                    `json:"printed"`
}
