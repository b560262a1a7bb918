package api

import (
	"errors"
	"net/http"

	"kasir-pos/internal/backend"
	"kasir-pos/internal/cart"
	"kasir-pos/internal/checkout"
	"kasir-pos/internal/hold"
	"kasir-pos/internal/product"
	"kasir-pos/internal/receipt"
	"kasir-pos/internal/settings"
	"kasir-pos/internal/transaction"

	"github.com/sony/gobreaker/v2"
)

var errInvalidProductID = errors.New("invalid product id")

type mapping struct {
	err    error
	status int
	code   string
}

// State conflicts are 409, rejected input 422, missing things 404.
var mappings = []mapping{
	{cart.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{cart.ErrExceedsStock, http.StatusConflict, "exceeds_stock"},
	{cart.ErrProductInactive, http.StatusConflict, "product_inactive"},
	{cart.ErrCartEmpty, http.StatusConflict, "cart_empty"},
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity, "invalid_quantity"},
	{cart.ErrNegativeDiscount, http.StatusUnprocessableEntity, "negative_discount"},
	{cart.ErrNoWholesalePrice, http.StatusUnprocessableEntity, "no_wholesale_price"},
	{cart.ErrItemNotFound, http.StatusNotFound, "item_not_found"},

	{hold.ErrNothingToHold, http.StatusConflict, "nothing_to_hold"},
	{hold.ErrLiveCartNotEmpty, http.StatusConflict, "live_cart_not_empty"},
	{hold.ErrDuplicateID, http.StatusConflict, "duplicate_held_id"},
	{hold.ErrHeldNotFound, http.StatusNotFound, "held_not_found"},

	{checkout.ErrAlreadyCompleted, http.StatusConflict, "already_completed"},
	{checkout.ErrSubmissionInFlight, http.StatusConflict, "submission_in_flight"},
	{checkout.ErrEmptyCart, http.StatusConflict, "cart_empty"},
	{checkout.ErrNotCompleted, http.StatusConflict, "not_completed"},
	{checkout.ErrOutletRequired, http.StatusUnprocessableEntity, "outlet_required"},
	{checkout.ErrUnknownPaymentMethod, http.StatusUnprocessableEntity, "unknown_payment_method"},
	{checkout.ErrInsufficientPayment, http.StatusUnprocessableEntity, "insufficient_payment"},

	{product.ErrOutletRequired, http.StatusUnprocessableEntity, "outlet_required"},
	{product.ErrBarcodeRequired, http.StatusUnprocessableEntity, "barcode_required"},
	{product.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{product.ErrStaleResponse, http.StatusConflict, "stale_response"},

	{transaction.ErrInvalidID, http.StatusUnprocessableEntity, "invalid_transaction_id"},
	{transaction.ErrReasonRequired, http.StatusUnprocessableEntity, "reason_required"},

	{settings.ErrUnknownAction, http.StatusNotFound, "unknown_action"},
	{settings.ErrEmptyKey, http.StatusUnprocessableEntity, "empty_key"},
	{settings.ErrKeyInUse, http.StatusConflict, "key_in_use"},

	{gobreaker.ErrOpenState, http.StatusServiceUnavailable, "printer_unavailable"},
	{receipt.ErrPrinterRejected, http.StatusBadGateway, "print_failed"},

	{errInvalidProductID, http.StatusBadRequest, "invalid_product_id"},
}

// classify maps err to a status, a stable code and the message for the UI.
func classify(err error) (int, string, string) {
	var br badRequest
	if errors.As(err, &br) {
		return http.StatusBadRequest, "invalid_request", br.Error()
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		switch apiErr.Kind {
		case backend.KindSessionExpired:
			status = http.StatusUnauthorized
		case backend.KindPermissionDenied:
			status = http.StatusForbidden
		}
		return status, string(apiErr.Kind), backend.UserMessage(err)
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal_error", "internal server error"
}
