package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	tokenKey   ctxKey = "access_token"
	cashierKey ctxKey = "cashier"
)

// ExtractAccessToken reads the cashier's backend token from the access_token
// cookie, falling back to a bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func WithCashier(ctx context.Context, c Cashier) context.Context {
	return context.WithValue(ctx, cashierKey, c)
}

func CashierFrom(ctx context.Context) (Cashier, bool) {
	c, ok := ctx.Value(cashierKey).(Cashier)
	return c, ok
}

// Middleware forwards the UI's token to backend calls and resolves the
// cashier shown on receipts. It never rejects a request; the backend does.
func Middleware(fallbackToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := ExtractAccessToken(r)
			if token != "" {
				ctx = WithToken(ctx, token)
			} else {
				token = fallbackToken
			}
			if c, err := CashierFromToken(token); err == nil {
				ctx = WithCashier(ctx, c)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
