package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kasir-pos/internal/auth"
	"kasir-pos/internal/logger"

	"go.uber.org/zap"
)

// Client talks JSON to the POS backend. Responses are wrapped as
// {"data": ...} and failures carry {"message": ...}.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Get issues GET path?query and decodes the data field into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues POST path with a JSON body and decodes the data field into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "backend"),
		zap.String("method", method),
		zap.String("path", path),
	)
	start := time.Now()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to marshal request", zap.Error(err))
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := logger.RequestIDFrom(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("backend request failed", zap.Error(err))
		return &APIError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response body", zap.Error(err))
		return &APIError{Status: resp.StatusCode, Kind: KindNetwork, Message: err.Error(), Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(bodyBytes, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Kind:    Classify(resp.StatusCode, msg),
			Message: msg,
		}
		log.Warn("backend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(apiErr.Kind)),
			zap.ByteString("response", bodyBytes),
			zap.Duration("duration", time.Since(start)),
		)
		return apiErr
	}

	log.Debug("backend call succeeded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		log.Error("failed decoding response", zap.Error(decodeErr))
		return fmt.Errorf("decode backend response: %w", decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		log.Error("failed decoding data", zap.Error(err))
		return fmt.Errorf("decode backend data: %w", err)
	}
	return nil
}

// tokenFor prefers the token forwarded with the UI request over the
// configured terminal token.
func (c *Client) tokenFor(ctx context.Context) string {
	if token := auth.TokenFrom(ctx); token != "" {
		return token
	}
	return c.token
}
