package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTimestamp(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	at := time.Date(2026, 10, 15, 2, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-15 09:30:00", LocalTimestamp(at, jakarta))
	assert.Equal(t, "2026-10-15 02:30:00", LocalTimestamp(at, nil))
}

func TestParseInt64(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		hasError bool
	}{
		{"123", 123, false},
		{" 42 ", 42, false},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInt64(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestPointers(t *testing.T) {
	assert.Equal(t, "x", PtrString(StrPtr("x")))
	assert.Equal(t, "", PtrString(nil))
}

func TestWriteJSON(t *testing.T) {
	t.Run("Payload", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSON(rr, http.StatusCreated, map[string]int{"id": 1})

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"id":1}`, rr.Body.String())
	})

	t.Run("Error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSONError(rr, "bad", http.StatusBadRequest)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "bad", body["error"])
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGenerateReference(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 123*int(time.Millisecond), time.UTC)
	ref := GenerateReference("till-01", at)

	assert.Regexp(t, regexp.MustCompile(`^POS-till-01-20261015-093000-123-\d{4}$`), ref)
	assert.NotEqual(t, ref, GenerateReference("till-01", at.Add(time.Second)))
}
