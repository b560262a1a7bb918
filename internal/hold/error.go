package hold

import "errors"

var (
	ErrNothingToHold    = errors.New("cart is empty, nothing to hold")
	ErrHeldNotFound     = errors.New("held transaction not found")
	ErrLiveCartNotEmpty = errors.New("live cart is not empty, confirm to discard it")
	ErrDuplicateID      = errors.New("held transaction id already exists")
)
