package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie_token"})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "cookie_token", ExtractAccessToken(req))
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")

		assert.Empty(t, ExtractAccessToken(req))
	})
}

func TestCashierFromToken(t *testing.T) {
	t.Run("Name claim", func(t *testing.T) {
		c, err := CashierFromToken(signed(t, jwt.MapClaims{"user_id": float64(12), "name": "Rina"}))
		require.NoError(t, err)
		assert.Equal(t, Cashier{ID: "12", Name: "Rina"}, c)
	})

	t.Run("Username fallback", func(t *testing.T) {
		c, err := CashierFromToken(signed(t, jwt.MapClaims{"sub": "u-1", "username": "kasir1"}))
		require.NoError(t, err)
		assert.Equal(t, "kasir1", c.Name)
		assert.Equal(t, "u-1", c.ID)
	})

	t.Run("No name", func(t *testing.T) {
		_, err := CashierFromToken(signed(t, jwt.MapClaims{"sub": "u-1"}))
		assert.ErrorIs(t, err, ErrNoCashier)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := CashierFromToken("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := CashierFromToken("")
		assert.ErrorIs(t, err, ErrNoCashier)
	})
}

func TestMiddleware(t *testing.T) {
	fallback := signed(t, jwt.MapClaims{"name": "Till Account"})
	var (
		gotToken   string
		gotCashier Cashier
		ok         bool
	)
	handler := Middleware(fallback)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = TokenFrom(r.Context())
		gotCashier, ok = CashierFrom(r.Context())
	}))

	t.Run("Forwarded token", func(t *testing.T) {
		token := signed(t, jwt.MapClaims{"name": "Rina"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, token, gotToken)
		assert.True(t, ok)
		assert.Equal(t, "Rina", gotCashier.Name)
	})

	t.Run("Fallback token", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, gotToken)
		assert.True(t, ok)
		assert.Equal(t, "Till Account", gotCashier.Name)
	})
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TokenFrom(ctx))
	_, ok := CashierFrom(ctx)
	assert.False(t, ok)
}
