// Package quickamount proposes round cash amounts the cashier can tap instead
// of typing the tendered cash.
package quickamount

import "github.com/shopspring/decimal"

var (
	step10k  = decimal.NewFromInt(10_000)
	step50k  = decimal.NewFromInt(50_000)
	step100k = decimal.NewFromInt(100_000)
)

// Count is the number of suggestions returned.
const Count = 3

// Suggest returns three ascending cash amounts for total, each at least
// 10,000 above the previous one.
func Suggest(total decimal.Decimal) []decimal.Decimal {
	first := RoundUp(total, step10k)
	out := []decimal.Decimal{first}

	for _, step := range []decimal.Decimal{step50k, step100k} {
		prev := out[len(out)-1]
		candidate := RoundUp(total, step)
		if !candidate.GreaterThan(prev) {
			candidate = RoundUp(prev.Add(step50k), step10k)
		}
		out = append(out, candidate)
	}

	// Each rule already climbs; this keeps the guarantee if the rules change.
	for i := 1; i < len(out); i++ {
		if out[i].Sub(out[i-1]).LessThan(step10k) {
			out[i] = RoundUp(out[i-1].Add(step50k), step10k)
		}
	}
	for len(out) < Count {
		out = append(out, RoundUp(out[len(out)-1].Add(step50k), step10k))
	}

	return out[:Count]
}

// RoundUp rounds v up to the next multiple of step.
func RoundUp(v, step decimal.Decimal) decimal.Decimal {
	return v.Div(step).Ceil().Mul(step)
}
