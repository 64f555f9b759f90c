package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Share is one participant's weight in a proportional split.
type Share struct {
	UserID string
	Weight float64
}

// SplitEqually divides amount evenly among userIDs, to the cent. Leftover
// cents go to the earliest participants so the splits always sum to amount.
func SplitEqually(amount float64, userIDs []string) ([]models.Split, error) {
	shares := make([]Share, len(userIDs))
	for i, id := range userIDs {
		shares[i] = Share{UserID: id, Weight: 1}
	}
	return SplitByShares(amount, shares)
}

// SplitByShares divides amount among participants in proportion to their
// weights, to the cent. Each participant first gets the floor of their exact
// share; the remaining cents go one each to the largest fractional
// remainders, earliest participant first on ties.
func SplitByShares(amount float64, shares []Share) ([]models.Split, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	var totalWeight decimal.Decimal
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if s.Weight < 0 {
			return nil, fmt.Errorf("weight for %s cannot be negative", s.UserID)
		}
		if seen[s.UserID] {
			return nil, fmt.Errorf("duplicate participant %s", s.UserID)
		}
		seen[s.UserID] = true
		totalWeight = totalWeight.Add(decimal.NewFromFloat(s.Weight))
	}
	if totalWeight.IsZero() {
		return nil, fmt.Errorf("total weight cannot be zero")
	}

	hundred := decimal.NewFromInt(100)
	cents := decimal.NewFromFloat(amount).Mul(hundred).Round(0)

	alloc := make([]decimal.Decimal, len(shares))
	remainders := make([]decimal.Decimal, len(shares))
	assigned := decimal.Zero
	for i, s := range shares {
		exact := cents.Mul(decimal.NewFromFloat(s.Weight)).DivRound(totalWeight, 16)
		alloc[i] = exact.Floor()
		remainders[i] = exact.Sub(alloc[i])
		assigned = assigned.Add(alloc[i])
	}

	left := cents.Sub(assigned).IntPart()
	for ; left > 0; left-- {
		best := -1
		for i := range remainders {
			if best == -1 || remainders[i].GreaterThan(remainders[best]) {
				best = i
			}
		}
		alloc[best] = alloc[best].Add(decimal.NewFromInt(1))
		remainders[best] = decimal.NewFromInt(-1)
	}

	splits := make([]models.Split, len(shares))
	for i, s := range shares {
		splits[i] = models.Split{
			UserID: s.UserID,
			Amount: alloc[i].Div(hundred).InexactFloat64(),
		}
	}
	return splits, nil
}
