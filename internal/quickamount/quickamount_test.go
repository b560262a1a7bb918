package quickamount

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amounts(vs ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func assertAmounts(t *testing.T, want, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "index %d: want %s, got %s", i, want[i], got[i])
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		total decimal.Decimal
		want  []decimal.Decimal
	}{
		{"typical", decimal.NewFromInt(137_500), amounts(140_000, 150_000, 200_000)},
		{"exact 50k", decimal.NewFromInt(50_000), amounts(50_000, 100_000, 150_000)},
		{"exact 100k", decimal.NewFromInt(100_000), amounts(100_000, 150_000, 200_000)},
		{"small", decimal.NewFromInt(7_500), amounts(10_000, 50_000, 100_000)},
		{"zero", decimal.Zero, amounts(0, 50_000, 100_000)},
		{"fractional", decimal.RequireFromString("12000.5"), amounts(20_000, 50_000, 100_000)},
		{"just above 50k", decimal.NewFromInt(95_000), amounts(100_000, 150_000, 200_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmounts(t, tt.want, Suggest(tt.total))
		})
	}
}

func TestRoundUp(t *testing.T) {
	assert.True(t, decimal.NewFromInt(20_000).Equal(RoundUp(decimal.NewFromInt(10_001), step10k)))
	assert.True(t, decimal.NewFromInt(10_000).Equal(RoundUp(decimal.NewFromInt(10_000), step10k)))
}

// Property: suggestions cover the total, ascend and are >= 10,000 apart.
func TestSuggest_Properties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("ascending, spaced and covering", prop.ForAll(
		func(total int64) bool {
			got := Suggest(decimal.NewFromInt(total))
			if len(got) != Count || got[0].LessThan(decimal.NewFromInt(total)) {
				return false
			}
			for i := 1; i < len(got); i++ {
				if got[i].Sub(got[i-1]).LessThan(step10k) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 50_000_000),
	))

	properties.TestingRun(t)
}
