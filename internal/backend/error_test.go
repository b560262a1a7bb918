package backend

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    Kind
	}{
		{"stock message", http.StatusBadRequest, "Insufficient stock", KindInsufficientStock},
		{"stok message", http.StatusUnprocessableEntity, "Stok tidak cukup", KindInsufficientStock},
		{"stock on server error", http.StatusInternalServerError, "stock service down", KindServer},
		{"unauthorized", http.StatusUnauthorized, "", KindSessionExpired},
		{"forbidden", http.StatusForbidden, "", KindPermissionDenied},
		{"not found", http.StatusNotFound, "", KindNotFound},
		{"bad request", http.StatusBadRequest, "outlet_id is required", KindValidation},
		{"conflict", http.StatusConflict, "", KindValidation},
		{"server", http.StatusServiceUnavailable, "", KindServer},
		{"teapot", http.StatusTeapot, "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.message))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Insufficient stock: Kopi",
		UserMessage(&APIError{Kind: KindInsufficientStock, Message: "Kopi"}))
	assert.Equal(t, "Invalid data: qty", UserMessage(&APIError{Kind: KindValidation, Message: "qty"}))
	assert.Equal(t, "Invalid data", UserMessage(&APIError{Kind: KindValidation}))
	assert.Equal(t, "Server error, please try again later", UserMessage(&APIError{Kind: KindServer}))
	assert.Equal(t, "Cannot reach the server, check the network connection", UserMessage(&APIError{Kind: KindNetwork}))
	assert.Equal(t, "odd", UserMessage(&APIError{Kind: KindUnknown, Message: "odd"}))
	assert.Equal(t, "Something went wrong, please try again", UserMessage(errors.New("boom")))
}

func TestAPIError(t *testing.T) {
	inner := errors.New("dial tcp")
	err := &APIError{Kind: KindNetwork, Message: "dial tcp", Err: inner}
	assert.Equal(t, "backend network: dial tcp", err.Error())
	assert.ErrorIs(t, err, inner)

	err = &APIError{Status: 404, Kind: KindNotFound, Message: "missing"}
	assert.Equal(t, "backend not_found (404): missing", err.Error())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
