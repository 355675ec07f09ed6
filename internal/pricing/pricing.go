// Package pricing holds the cart money rules: line totals, cart totals and
// the free-case tier.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Free-case tiers, checked from the highest threshold down. Lower bounds are
// inclusive.
var freeCaseTiers = []struct {
	MinQuantity int
	FreeCases   int
}{
	{MinQuantity: 50, FreeCases: 3},
	{MinQuantity: 40, FreeCases: 2},
	{MinQuantity: 25, FreeCases: 1},
}

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Summary struct {
	TotalPrice    decimal.Decimal
	TotalQuantity int
	FreeCases     int
}

// FreeCases returns the number of complimentary cases earned by a cart
// holding totalQuantity units.
func FreeCases(totalQuantity int) int {
	for _, tier := range freeCaseTiers {
		if totalQuantity >= tier.MinQuantity {
			return tier.FreeCases
		}
	}
	return 0
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func Summarize(lines []Line) Summary {
	total := decimal.Zero
	quantity := 0
	for _, line := range lines {
		total = total.Add(LineTotal(line.UnitPrice, line.Quantity))
		quantity += line.Quantity
	}
	return Summary{
		TotalPrice:    total,
		TotalQuantity: quantity,
		FreeCases:     FreeCases(quantity),
	}
}

// PercentageChange is (current-previous)/previous*100 rounded to two
// decimals, or 0 when there is no previous value to compare against.
func PercentageChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	change := float64(current-previous) / float64(previous) * 100
	return math.Round(change*100) / 100
}
