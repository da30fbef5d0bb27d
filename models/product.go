package models

// ProductRecord represents a product returned by the external catalog lookup.
// It is immutable within a quote session once fetched.
type ProductRecord struct {
	ArticleID   string            `json:"articleId"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	Brand       string            `json:"brand,omitempty"`
	// PriceExVAT is the nominal price excluding tax. Nil means "price on
	// request": treated as 0 in totals but displayed differently.
	PriceExVAT *float64  `json:"priceExVat,omitempty"`
	Variants   []Variant `json:"variants,omitempty"`
	// Views maps a view label (Front, Back, Left, Right) to an image URL
	// when the catalog provides per-view images directly.
	Views    map[string]string `json:"views,omitempty"`
	ImageURL string            `json:"imageUrl,omitempty"`
}

// Variant represents a color variant of a product with its own image
type Variant struct {
	Color    string `json:"color"`
	ImageURL string `json:"imageUrl"`
}

// PriceOrZero returns the ex-VAT price, treating an absent price as 0
func (p *ProductRecord) PriceOrZero() float64 {
	if p.PriceExVAT == nil {
		return 0
	}
	return *p.PriceExVAT
}

// HasPrice reports whether the product carries a price at all
func (p *ProductRecord) HasPrice() bool {
	return p.PriceExVAT != nil
}

// CatalogError is the structured error shape the external catalog API
// returns instead of a product payload.
// Example: {"error": "not found", "details": "no article 123456"}
type CatalogError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
