package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeItem struct {
	selling   int64
	wholesale *int64
	useWS     bool
}

func (f fakeItem) SellingPrice() decimal.Decimal { return decimal.NewFromInt(f.selling) }
func (f fakeItem) UsesWholesalePrice() bool     { return f.useWS }
func (f fakeItem) WholesalePrice() (decimal.Decimal, bool) {
	if f.wholesale == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(*f.wholesale), true
}

func i64(v int64) *int64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		item fakeItem
		want int64
	}{
		{"selling mode", fakeItem{selling: 10000, wholesale: i64(8000)}, 10000},
		{"wholesale mode", fakeItem{selling: 10000, wholesale: i64(8000), useWS: true}, 8000},
		{"wholesale missing", fakeItem{selling: 10000, useWS: true}, 10000},
		{"wholesale zero", fakeItem{selling: 10000, wholesale: i64(0), useWS: true}, 10000},
		{"wholesale negative", fakeItem{selling: 10000, wholesale: i64(-5), useWS: true}, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.item)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestCanUseWholesale(t *testing.T) {
	assert.True(t, CanUseWholesale(fakeItem{selling: 1, wholesale: i64(1)}))
	assert.False(t, CanUseWholesale(fakeItem{selling: 1, wholesale: i64(0)}))
	assert.False(t, CanUseWholesale(fakeItem{selling: 1}))
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.NewFromInt(10000), 3, decimal.NewFromInt(2500))
	assert.True(t, decimal.NewFromInt(27500).Equal(got))
}
