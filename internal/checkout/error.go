package checkout

import "errors"

var (
	ErrAlreadyCompleted     = errors.New("transaction already created for this checkout")
	ErrSubmissionInFlight   = errors.New("payment is already being submitted")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOutletRequired       = errors.New("outlet must be selected")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrInsufficientPayment  = errors.New("paid amount is less than total")
	ErrNotCompleted         = errors.New("checkout has not completed")
)
