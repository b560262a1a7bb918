package cart

import "errors"

var (
	// -- Availability --
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrExceedsStock    = errors.New("requested quantity exceeds available stock")
	ErrProductInactive = errors.New("product is inactive")

	// -- Validation & Input --
	ErrInvalidQuantity  = errors.New("invalid cart quantity")
	ErrNegativeDiscount = errors.New("discount must not be negative")
	ErrNoWholesalePrice = errors.New("product has no wholesale price")

	// -- Resource State --
	ErrItemNotFound = errors.New("cart item not found")
	ErrCartEmpty    = errors.New("cart is empty")
)
