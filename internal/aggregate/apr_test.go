package aggregate

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// parseUSD turns a TVL string into the nullable form CalcAPR takes.
func parseUSD(value string) decimal.NullDecimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.NullDecimal{}
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(parsed)
}

func TestCalcAPR(t *testing.T) {
	tests := []struct {
		name string
		tvl  string
		want float64
	}{
		{name: "one million tvl", tvl: "1000000", want: 15768},
		{name: "ten million tvl", tvl: "10000000", want: 1576.8},
		{name: "fractional tvl", tvl: "2500000.5", want: 6307.19873856},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcAPR(
				decimal.NewFromInt(2),
				decimal.NewFromInt(100),
				decimal.NewFromInt(50),
				decimal.NewFromInt(5),
				parseUSD(tt.tvl),
			)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Fatalf("apr mismatch: %v != %v", got, tt.want)
			}
		})
	}
}

func TestCalcAPRInvalidTVL(t *testing.T) {
	for _, tvl := range []string{"0", "0.000", "-5", "NaN", "Infinity", "abc", "", "  ", "1e"} {
		got := CalcAPR(
			decimal.NewFromInt(2),
			decimal.NewFromInt(100),
			decimal.NewFromInt(50),
			decimal.NewFromInt(5),
			parseUSD(tvl),
		)
		if got != 0 {
			t.Fatalf("tvl %q: expected 0, got %v", tvl, got)
		}
	}

	missing := CalcAPR(decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.NewFromInt(5), decimal.NullDecimal{})
	if missing != 0 {
		t.Fatalf("missing tvl: expected 0, got %v", missing)
	}
}

func TestCalcAPRZeroAllocation(t *testing.T) {
	tvl := parseUSD("1000")
	if got := CalcAPR(decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1), decimal.NewFromInt(1), tvl); got != 0 {
		t.Fatalf("zero total allocation: expected 0, got %v", got)
	}
	if got := CalcAPR(decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1), tvl); got != 0 {
		t.Fatalf("zero pool allocation: expected 0, got %v", got)
	}
}
