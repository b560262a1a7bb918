package transaction

import "errors"

var (
	ErrNoItems           = errors.New("transaction has no items")
	ErrInvalidID         = errors.New("invalid transaction id")
	ErrReasonRequired    = errors.New("refund reason is required")
	ErrMissingIdentifier = errors.New("backend returned a transaction without number")
)
