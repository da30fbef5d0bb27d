package models

// QuoteLineItem represents one product entry within a quote.
// Quantity is always >= 1; non-positive input is coerced upward on write.
type QuoteLineItem struct {
	ID        int64         `json:"id"`
	QuoteID   int64         `json:"quoteId"`
	Product   ProductRecord `json:"product"`
	Quantity  int           `json:"quantity"`
	LogoURL   string        `json:"logoUrl,omitempty"`
	MockupURL string        `json:"mockupUrl,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

// Quote represents an ordered collection of line items for one customer.
// Insertion order of the lines is the document's row order.
type Quote struct {
	ID            int64  `json:"id"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// QuoteResponse represents a quote with its lines and computed totals
// Example response:
//
//	{
//	  "id": 1,
//	  "customerName": "Svensson Bygg AB",
//	  "createdAt": "2024-01-15T10:30:00Z",
//	  "updatedAt": "2024-01-15T10:30:00Z",
//	  "lines": [
//	    {
//	      "id": 1,
//	      "quoteId": 1,
//	      "product": {"articleId": "123456", "name": "Profilkeps", "priceExVat": 100},
//	      "quantity": 3,
//	      "mockupUrl": "https://drive.google.com/uc?id=abc"
//	    }
//	  ],
//	  "subtotalExTax": 300,
//	  "taxAmount": 75,
//	  "totalIncTax": 375
//	}
type QuoteResponse struct {
	Quote
	Lines         []QuoteLineItem `json:"lines"`
	SubtotalExTax float64         `json:"subtotalExTax"`
	TaxAmount     float64         `json:"taxAmount"`
	TotalIncTax   float64         `json:"totalIncTax"`
}

// CreateQuoteRequest represents the request body for creating a quote
// Example: {"customerName": "Svensson Bygg AB", "customerEmail": "info@svensson.se"}
type CreateQuoteRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
}

// AddLineItemRequest represents the request body for adding a product to a quote.
// If the product already exists on the quote (matched by articleId) the line
// is updated in place instead of appended.
// Example: {"product": {"articleId": "123456", "name": "Profilkeps"}, "quantity": 2}
type AddLineItemRequest struct {
	Product  ProductRecord `json:"product"`
	Quantity int           `json:"quantity"`
	LogoURL  string        `json:"logoUrl,omitempty"`
}

// UpdateLineItemRequest represents the request body for updating a line item
type UpdateLineItemRequest struct {
	Quantity  *int    `json:"quantity,omitempty"`
	MockupURL *string `json:"mockupUrl,omitempty"`
}

// CoerceQuantity clamps a requested quantity to the minimum of 1
func CoerceQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}
