package engine

import "fmt"

// Tier is a participant's earned discount level.
type Tier uint8

const (
	Tier0 Tier = 0
	Tier1 Tier = 1
	Tier2 Tier = 2
)

// Discount numerators per tier, over a denominator of 100.
const (
	discountDenominator    = 100
	tier1DiscountNumerator = 96
	tier2DiscountNumerator = 92
	undiscountedNumerator  = 100

	// Squaring stays within uint64 as long as the total position fits
	// in 32 bits.
	maxUnitsSafeForSquaring = uint64(1)<<32 - 1
)

func discountNumerator(tier Tier) uint64 {
	switch tier {
	case Tier1:
		return tier1DiscountNumerator
	case Tier2:
		return tier2DiscountNumerator
	default:
		return undiscountedNumerator
	}
}

// VoteCost prices deltaUnits additional vote-units on a target where the
// participant already holds priorUnits. Raw cost is the quadratic
// difference (prior+delta)^2 - prior^2; the tier discount applies to the
// full raw cost via floor division. A vote that leaves the total position
// at exactly one unit always costs 1, undiscounted, so a discount can
// never be farmed one unit at a time.
func VoteCost(priorUnits, deltaUnits uint64, tier Tier) (uint64, error) {
	if deltaUnits == 0 {
		return 0, fmt.Errorf("%w: delta units must be positive", ErrInvalidInput)
	}
	total := priorUnits + deltaUnits
	if total < priorUnits || total > maxUnitsSafeForSquaring {
		return 0, fmt.Errorf("%w: %d units exceeds safe squaring range", ErrArithmeticOverflow, total)
	}
	raw := total*total - priorUnits*priorUnits
	if total <= 1 {
		return raw, nil
	}
	// Split the division so raw*num never has to fit in 64 bits:
	// floor(raw*num/100) == (raw/100)*num + (raw%100)*num/100.
	num := discountNumerator(tier)
	return (raw/discountDenominator)*num + (raw%discountDenominator)*num/discountDenominator, nil
}
