// Package pricing holds the pure computation core of the register:
// cart totals and the regulated-quantity aggregate. Functions here
// never touch I/O, never return errors for malformed input, and are
// safe to recompute on every cart mutation.
package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"canopy-pos/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// gramSize matches package size strings like "3.5g" or "1 g".
var gramSize = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*[gG]\s*$`)

// clampPct forces a percentage into [0,100]. Out-of-range input is a
// caller bug but must degrade safely, not corrupt the totals.
func clampPct(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// ComputeTotals derives the cart totals from its lines and the order
// discount. The tax rate is caller supplied (e.g. 0.13) so the engine
// carries no jurisdiction. Accumulation is exact; round only through
// Totals.Presented.
func ComputeTotals(lines []domain.CartLine, discount domain.OrderDiscount, taxRate decimal.Decimal) domain.Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		gross := line.Product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		net := gross.Mul(hundred.Sub(clampPct(line.DiscountPct))).Div(hundred)
		subtotal = subtotal.Add(net)
	}

	discountAmount := decimal.Zero
	switch discount.Kind {
	case domain.DiscountPercentage:
		discountAmount = subtotal.Mul(clampPct(discount.Value)).Div(hundred)
	case domain.DiscountFixed:
		discountAmount = discount.Value
		if discountAmount.IsNegative() {
			discountAmount = decimal.Zero
		}
	}
	// The discount can never push the subtotal negative.
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	discounted := subtotal.Sub(discountAmount)
	tax := discounted.Mul(taxRate)

	return domain.Totals{
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		DiscountedSubtotal: discounted,
		Tax:                tax,
		Total:              discounted.Add(tax),
	}
}

// RegulatedEquivalent sums the dried-flower-equivalent grams across the
// cart. Per unit: an explicit equivalent on the product wins; otherwise
// a product in the regulated category with a "<number>g" package size
// contributes its parsed gram weight; anything else counts zero.
// Comparing the result against the legal ceiling is the caller's job.
func RegulatedEquivalent(lines []domain.CartLine, regulatedCategory string) float64 {
	var total float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		total += equivalentPerUnit(line.Product, regulatedCategory) * float64(line.Quantity)
	}
	return total
}

func equivalentPerUnit(p domain.Product, regulatedCategory string) float64 {
	if p.EquivalentGrams != nil {
		return *p.EquivalentGrams
	}
	if !strings.EqualFold(p.Category, regulatedCategory) {
		return 0
	}
	m := gramSize.FindStringSubmatch(p.PackageSize)
	if m == nil {
		return 0
	}
	grams, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return grams
}
