package utils

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUnitPriceWithMarginPercent(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		percent float64
		want    float64
	}{
		{"zero margin is identity", 100, 0, 100},
		{"25 percent markup", 100, 25, 125},
		{"fractional price", 79.90, 25, 99.875},
		{"zero price", 0, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitPriceWithMarginPercent(tt.price, tt.percent)
			if !almostEqual(got, tt.want) {
				t.Errorf("UnitPriceWithMarginPercent(%v, %v) = %v, want %v", tt.price, tt.percent, got, tt.want)
			}
		})
	}
}

func TestUnitPriceWithMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		factor float64
		want   float64
	}{
		{"factor one is identity", 100, 1, 100},
		{"factor 1.25 matches 25 percent markup", 100, 1.25, 125},
		{"doubling", 49.50, 2, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitPriceWithMultiplier(tt.price, tt.factor)
			if !almostEqual(got, tt.want) {
				t.Errorf("UnitPriceWithMultiplier(%v, %v) = %v, want %v", tt.price, tt.factor, got, tt.want)
			}
		})
	}
}

// The two margin conventions must agree when they express the same markup.
func TestMarginConventionsAgree(t *testing.T) {
	prices := []float64{0, 1, 79.90, 100, 12345.67}
	for _, price := range prices {
		percent := UnitPriceWithMarginPercent(price, 25)
		factor := UnitPriceWithMultiplier(price, 1.25)
		if !almostEqual(percent, factor) {
			t.Errorf("price %v: percent convention gave %v, multiplier gave %v", price, percent, factor)
		}
	}
}

func TestApplyTax(t *testing.T) {
	if got := ApplyTax(100, 0.25); !almostEqual(got, 125) {
		t.Errorf("ApplyTax(100, 0.25) = %v, want 125", got)
	}
	if got := ApplyTax(100, 0); !almostEqual(got, 100) {
		t.Errorf("ApplyTax(100, 0) = %v, want 100", got)
	}
}

func TestLineTotal(t *testing.T) {
	if got := LineTotal(156.25, 3); !almostEqual(got, 468.75) {
		t.Errorf("LineTotal(156.25, 3) = %v, want 468.75", got)
	}
}

// Full chain for one row: 100 kr ex VAT with 25% margin becomes 125 ex VAT,
// 156.25 inc VAT, and 468.75 for three units.
func TestPricingChain(t *testing.T) {
	exVAT := UnitPriceWithMarginPercent(100, 25)
	incVAT := ApplyTax(exVAT, DefaultTaxRate)
	total := LineTotal(incVAT, 3)

	if !almostEqual(exVAT, 125) {
		t.Errorf("ex-VAT price = %v, want 125", exVAT)
	}
	if !almostEqual(incVAT, 156.25) {
		t.Errorf("inc-VAT price = %v, want 156.25", incVAT)
	}
	if !almostEqual(total, 468.75) {
		t.Errorf("line total = %v, want 468.75", total)
	}
}

func TestCalculateDocumentTotals(t *testing.T) {
	lines := []PricedLine{
		{PriceExVAT: 100, Quantity: 2},
		{PriceExVAT: 50, Quantity: 1},
	}

	totals := CalculateDocumentTotals(lines, 0.25)

	if !almostEqual(totals.SubtotalExTax, 250) {
		t.Errorf("SubtotalExTax = %v, want 250", totals.SubtotalExTax)
	}
	if !almostEqual(totals.TotalIncTax, 312.5) {
		t.Errorf("TotalIncTax = %v, want 312.5", totals.TotalIncTax)
	}
	// Tax is derived from the total, not summed per row
	if !almostEqual(totals.TaxAmount, 62.5) {
		t.Errorf("TaxAmount = %v, want 62.5", totals.TaxAmount)
	}
	if !almostEqual(totals.SubtotalExTax+totals.TaxAmount, totals.TotalIncTax) {
		t.Errorf("subtotal + tax = %v, want %v", totals.SubtotalExTax+totals.TaxAmount, totals.TotalIncTax)
	}
}

func TestCalculateDocumentTotalsEmpty(t *testing.T) {
	totals := CalculateDocumentTotals(nil, 0.25)
	if totals.SubtotalExTax != 0 || totals.TaxAmount != 0 || totals.TotalIncTax != 0 {
		t.Errorf("empty lines should yield zero totals, got %+v", totals)
	}
}

// Line order must not change the totals.
func TestCalculateDocumentTotalsOrderIndependent(t *testing.T) {
	forward := []PricedLine{
		{PriceExVAT: 100, Quantity: 2},
		{PriceExVAT: 79.90, Quantity: 3},
		{PriceExVAT: 12.34, Quantity: 7},
	}
	reversed := []PricedLine{forward[2], forward[1], forward[0]}

	a := CalculateDocumentTotals(forward, 0.25)
	b := CalculateDocumentTotals(reversed, 0.25)

	if !almostEqual(a.TotalIncTax, b.TotalIncTax) || !almostEqual(a.TaxAmount, b.TaxAmount) {
		t.Errorf("totals differ by order: %+v vs %+v", a, b)
	}
}
