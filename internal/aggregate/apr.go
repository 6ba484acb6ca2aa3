package aggregate

import "github.com/shopspring/decimal"

// SecondsPerYear is a 365-day year.
const SecondsPerYear = 365 * 24 * 60 * 60

// divPrecision is the number of decimal places kept by every division.
const divPrecision = 36

var (
	secondsPerYear = decimal.NewFromInt(SecondsPerYear)
	hundred        = decimal.NewFromInt(100)
)

// CalcAPR returns the reward APR in percent:
//
//	(rewardPerSecond * SecondsPerYear) / (totalAllocPoint / poolAllocPoint) * 100 * rewardPrice / tvl
//
// It returns 0 when tvl is missing or not positive, or when either
// allocation weight is zero.
func CalcAPR(rewardPerSecond, totalAllocPoint, poolAllocPoint, rewardPrice decimal.Decimal, tvl decimal.NullDecimal) float64 {
	if !tvl.Valid || !tvl.Decimal.IsPositive() {
		return 0
	}
	if totalAllocPoint.IsZero() || poolAllocPoint.IsZero() {
		return 0
	}

	share := totalAllocPoint.DivRound(poolAllocPoint, divPrecision)
	if share.IsZero() {
		return 0
	}
	apr := rewardPerSecond.Mul(secondsPerYear).
		DivRound(share, divPrecision).
		Mul(hundred).
		Mul(rewardPrice).
		DivRound(tvl.Decimal, divPrecision)
	return apr.InexactFloat64()
}
