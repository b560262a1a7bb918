package receipt

import (
	"time"

	"kasir-pos/internal/cart"
	"kasir-pos/internal/transaction"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04:05"
)

type BuildInput struct {
	Sale        cart.Snapshot
	Submission  transaction.Submission
	Transaction transaction.Transaction
	Cashier     string
	PrintedAt   time.Time
}

// Build assembles the receipt from the sale that was submitted. Line prices
// come from the submission so the receipt matches what the backend charged.
func Build(in BuildInput) Data {
	prices := make(map[int64]transaction.LineSubmission, len(in.Submission.Items))
	for _, line := range in.Submission.Items {
		prices[line.ProductID] = line
	}

	lines := make([]Line, 0, len(in.Sale.Items))
	for _, item := range in.Sale.Items {
		line := Line{
			Name:     item.Product.Name,
			Quantity: item.Quantity,
			Price:    item.UnitPrice(),
			Total:    item.Subtotal,
		}
		if sub, ok := prices[item.Product.ID]; ok {
			line.Price = sub.UnitPrice
			line.Total = sub.TotalPrice
		}
		lines = append(lines, line)
	}

	data := Data{
		TransactionID:     in.Transaction.ID,
		TransactionNumber: in.Transaction.TransactionNumber,
		Date:              in.PrintedAt.Format(dateLayout),
		Time:              in.PrintedAt.Format(timeLayout),
		CashierName:       in.Cashier,
		Items:             lines,
		Subtotal:          in.Submission.Subtotal,
		Tax:               decimal.Zero,
		Discount:          in.Submission.Discount,
		Total:             in.Submission.Total,
		PaymentMethod:     in.Submission.PaymentMethod,
		PaidAmount:        in.Submission.PaidAmount,
		Change:            in.Submission.Change,
	}
	if in.Sale.Customer != nil {
		data.CustomerName = in.Sale.Customer.Name
	}
	return data
}
