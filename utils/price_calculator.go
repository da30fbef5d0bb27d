package utils

// DefaultTaxRate is the Swedish standard VAT rate applied when callers
// don't pass an explicit rate.
const DefaultTaxRate = 0.25

// UnitPriceWithMarginPercent applies a percent markup to an ex-VAT price.
// margin=25 turns 100 into 125. margin=0 returns the price unchanged.
func UnitPriceWithMarginPercent(priceExVAT float64, marginPercent float64) float64 {
	return priceExVAT * (1 + marginPercent/100)
}

// UnitPriceWithMultiplier applies a multiplicative margin factor.
// factor=1 returns the price unchanged.
// This is a separate named operation from UnitPriceWithMarginPercent on
// purpose: both conventions exist across document types and must never be
// guessed from the argument's magnitude.
func UnitPriceWithMultiplier(priceExVAT float64, factor float64) float64 {
	return priceExVAT * factor
}

// ApplyTax returns the tax-inclusive amount for the given rate
func ApplyTax(amount float64, taxRate float64) float64 {
	return amount * (1 + taxRate)
}

// LineTotal returns the total for one line at a tax-inclusive unit price
func LineTotal(unitPriceIncTax float64, quantity int) float64 {
	return unitPriceIncTax * float64(quantity)
}

// PricedLine is the minimal shape CalculateDocumentTotals needs from a line item
type PricedLine struct {
	PriceExVAT float64
	Quantity   int
}

// DocumentTotals holds the summary block of an offer document
type DocumentTotals struct {
	SubtotalExTax float64
	TaxAmount     float64
	TotalIncTax   float64
}

// CalculateDocumentTotals sums all lines ex-VAT, then derives the tax amount
// from the tax-inclusive total (total - total/(1+rate)) instead of
// accumulating per-line tax, so rounding never drifts across many lines.
// Lines with an absent price contribute 0.
func CalculateDocumentTotals(lines []PricedLine, taxRate float64) DocumentTotals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.PriceExVAT * float64(line.Quantity)
	}

	total := ApplyTax(subtotal, taxRate)
	return DocumentTotals{
		SubtotalExTax: subtotal,
		TaxAmount:     total - total/(1+taxRate),
		TotalIncTax:   total,
	}
}
