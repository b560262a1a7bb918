package product

import "errors"

var (
	ErrOutletRequired  = errors.New("outlet is required")
	ErrBarcodeRequired = errors.New("barcode is required")
	ErrProductNotFound = errors.New("product not found")
	ErrStaleResponse   = errors.New("response superseded by a newer request")
)
