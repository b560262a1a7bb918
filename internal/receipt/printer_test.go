package receipt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPrinter_Print(t *testing.T) {
	ctx := context.Background()
	data := Data{TransactionNumber: "TRX-1", PaymentMethod: "cash"}

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/print", r.URL.Path)
			var got Data
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "TRX-1", got.TransactionNumber)
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		require.NoError(t, NewHTTPPrinter(srv.URL+"/", time.Second, time.Minute).Print(ctx, data))
	})

	t.Run("Rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false}`))
		}))
		defer srv.Close()

		err := NewHTTPPrinter(srv.URL, time.Second, time.Minute).Print(ctx, data)
		assert.ErrorIs(t, err, ErrPrinterRejected)
	})

	t.Run("Error Status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("paper out"))
		}))
		defer srv.Close()

		err := NewHTTPPrinter(srv.URL, time.Second, time.Minute).Print(ctx, data)
		assert.ErrorIs(t, err, ErrPrinterRejected)
		assert.Contains(t, err.Error(), "paper out")
	})

	t.Run("Breaker Opens", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		printer := NewHTTPPrinter(srv.URL, time.Second, time.Minute)
		for i := 0; i < 3; i++ {
			assert.Error(t, printer.Print(ctx, data))
		}

		err := printer.Print(ctx, data)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestLogPrinter(t *testing.T) {
	assert.NoError(t, LogPrinter{}.Print(context.Background(), Data{TransactionNumber: "TRX-1"}))
}
