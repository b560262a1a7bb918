package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kasir-pos/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var ErrPrinterRejected = errors.New("printer rejected the receipt")

// Printer sends a receipt to the printing service.
type Printer interface {
	Print(ctx context.Context, data Data) error
}

type httpPrinter struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

// NewHTTPPrinter posts receipts to {baseURL}/print. After three consecutive
// failures the breaker opens and prints fail fast for cooldown.
func NewHTTPPrinter(baseURL string, timeout, cooldown time.Duration) Printer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "receipt-printer",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("printer breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &httpPrinter{
		url:        strings.TrimRight(baseURL, "/") + "/print",
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (p *httpPrinter) Print(ctx context.Context, data Data) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "printer"),
		zap.String("method", "Print"),
		zap.String("transaction_number", data.TransactionNumber),
	)

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.send(ctx, data)
	})
	if err != nil {
		log.Warn("receipt print failed", zap.Error(err))
		return err
	}

	log.Info("receipt printed")
	return nil
}

func (p *httpPrinter) send(ctx context.Context, data Data) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrPrinterRejected, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var result struct {
		Success *bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Success != nil && !*result.Success {
		return ErrPrinterRejected
	}
	return nil
}

// LogPrinter writes receipts to the log. Used when no printer is attached.
type LogPrinter struct{}

func (LogPrinter) Print(ctx context.Context, data Data) error {
	logger.FromCtx(ctx).Info("receipt",
		zap.String("layer", "printer"),
		zap.String("transaction_number", data.TransactionNumber),
		zap.String("total", data.Total.String()),
		zap.Int("lines", len(data.Items)),
	)
	return nil
}
