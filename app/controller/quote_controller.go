package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"offert-mockup-me/models"
	"offert-mockup-me/pricing"
	"offert-mockup-me/repository"
	"offert-mockup-me/service"
	"offert-mockup-me/utils"
)

// QuoteController handles HTTP requests for quotes and their line items
type QuoteController struct {
	repository repository.QuoteRepositoryInterface
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(repo repository.QuoteRepositoryInterface) *QuoteController {
	return &QuoteController{
		repository: repo,
	}
}

// pricedLines converts quote lines to the margin-adjusted ex-tax prices
// the documents are built from. Lines without a price contribute nothing.
func pricedLines(lines []models.QuoteLineItem) []utils.PricedLine {
	engine := pricing.GetEngine()
	priced := make([]utils.PricedLine, 0, len(lines))
	for _, line := range lines {
		if !line.Product.HasPrice() {
			continue
		}
		priced = append(priced, utils.PricedLine{
			PriceExVAT: engine.UnitPriceWithMargin(service.DocumentTypeOffert, line.Product.PriceOrZero()),
			Quantity:   line.Quantity,
		})
	}
	return priced
}

func buildQuoteResponse(quote *models.Quote, lines []models.QuoteLineItem) *models.QuoteResponse {
	totals := utils.CalculateDocumentTotals(pricedLines(lines), pricing.GetEngine().TaxRate())
	if lines == nil {
		lines = []models.QuoteLineItem{}
	}
	return &models.QuoteResponse{
		Quote:         *quote,
		Lines:         lines,
		SubtotalExTax: totals.SubtotalExTax,
		TaxAmount:     totals.TaxAmount,
		TotalIncTax:   totals.TotalIncTax,
	}
}

// parseQuoteID extracts the numeric quote ID from a path like /quotes/{id}...
func parseQuoteID(path string) (int64, string, error) {
	trimmed := strings.TrimPrefix(path, "/quotes/")
	if trimmed == "" || trimmed == path {
		return 0, "", fmt.Errorf("quote id parameter is required")
	}
	idStr, rest, _ := strings.Cut(trimmed, "/")
	quoteID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid quote id parameter")
	}
	return quoteID, rest, nil
}

// CreateQuote handles POST /quotes
// Example request:
// POST /quotes
// {
//   "customerName": "Svensson Bygg AB",
//   "customerEmail": "info@svensson.se"
// }
func (c *QuoteController) CreateQuote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateQuote: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ CreateQuote: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ CreateQuote: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		log.Printf("❌ CreateQuote: customerName is required")
		http.Error(w, "customerName is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	quote, err := c.repository.CreateQuote(ctx, &req)
	if err != nil {
		log.Printf("❌ CreateQuote: Error creating quote: %v", err)
		http.Error(w, fmt.Sprintf("Failed to create quote: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ CreateQuote: Successfully created quote id=%d", quote.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(quote); err != nil {
		log.Printf("❌ CreateQuote: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetQuote handles GET /quotes/:id
// Returns the quote with its lines in insertion order plus computed totals
func (c *QuoteController) GetQuote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetQuote: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GetQuote: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteID, rest, err := parseQuoteID(r.URL.Path)
	if err != nil || rest != "" {
		http.Error(w, "invalid quote id parameter", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	quote, err := c.repository.GetQuote(ctx, quoteID)
	if err != nil {
		log.Printf("❌ GetQuote: Error fetching quote: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch quote: %v", err), http.StatusInternalServerError)
		return
	}

	lines, err := c.repository.GetQuoteLines(ctx, quoteID)
	if err != nil {
		log.Printf("❌ GetQuote: Error fetching quote lines: %v", err)
		http.Error(w, fmt.Sprintf("Failed to fetch quote lines: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ GetQuote: Successfully fetched quote id=%d with %d lines", quoteID, len(lines))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(buildQuoteResponse(quote, lines)); err != nil {
		log.Printf("❌ GetQuote: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// AddLine handles POST /quotes/:id/lines
// Adds a product to the quote. A product already on the quote (matched
// by articleId) is updated in place so the row order stays stable.
// Example request:
// POST /quotes/1/lines
// {
//   "product": {"articleId": "123456", "name": "Profilkeps", "priceExVat": 100},
//   "quantity": 3
// }
func (c *QuoteController) AddLine(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddLine: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ AddLine: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteID, rest, err := parseQuoteID(r.URL.Path)
	if err != nil || rest != "lines" {
		http.Error(w, "invalid path format. Expected: /quotes/{id}/lines", http.StatusBadRequest)
		return
	}

	var req models.AddLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ AddLine: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	line, err := c.repository.UpsertLine(ctx, quoteID, &req)
	if err != nil {
		log.Printf("❌ AddLine: Error adding line: %v", err)
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to add line: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ AddLine: Successfully added line id=%d to quote %d", line.ID, quoteID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(line); err != nil {
		log.Printf("❌ AddLine: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// UpdateLine handles PUT /quotes/:id/lines/:lineId
// Updates quantity and/or mockup URL on a line in place
// Example request:
// PUT /quotes/1/lines/2
// {
//   "quantity": 5
// }
func (c *QuoteController) UpdateLine(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UpdateLine: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		log.Printf("❌ UpdateLine: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteID, lineID, ok := parseLinePath(w, r.URL.Path)
	if !ok {
		return
	}

	var req models.UpdateLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ UpdateLine: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	if err := c.repository.UpdateLine(ctx, quoteID, lineID, &req); err != nil {
		log.Printf("❌ UpdateLine: Error updating line: %v", err)
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to update line: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ UpdateLine: Successfully updated line %d in quote %d", lineID, quoteID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]string{"message": "Line updated successfully"}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ UpdateLine: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// RemoveLine handles DELETE /quotes/:id/lines/:lineId
func (c *QuoteController) RemoveLine(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 RemoveLine: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodDelete {
		log.Printf("❌ RemoveLine: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteID, lineID, ok := parseLinePath(w, r.URL.Path)
	if !ok {
		return
	}

	ctx := context.Background()
	if err := c.repository.RemoveLine(ctx, quoteID, lineID); err != nil {
		log.Printf("❌ RemoveLine: Error removing line: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to remove line: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ RemoveLine: Successfully removed line %d from quote %d", lineID, quoteID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]string{"message": "Line removed successfully"}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ RemoveLine: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ClearQuote handles DELETE /quotes/:id/lines
// Removes every line item from the quote
func (c *QuoteController) ClearQuote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ClearQuote: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodDelete {
		log.Printf("❌ ClearQuote: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteID, rest, err := parseQuoteID(r.URL.Path)
	if err != nil || rest != "lines" {
		http.Error(w, "invalid path format. Expected: /quotes/{id}/lines", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	if err := c.repository.ClearQuote(ctx, quoteID); err != nil {
		log.Printf("❌ ClearQuote: Error clearing quote: %v", err)
		http.Error(w, fmt.Sprintf("Failed to clear quote: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ ClearQuote: Successfully cleared quote %d", quoteID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]string{"message": "Quote cleared successfully"}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ ClearQuote: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// parseLinePath extracts quote ID and line ID from /quotes/{id}/lines/{lineId},
// writing the error response itself when the path is malformed
func parseLinePath(w http.ResponseWriter, path string) (int64, int64, bool) {
	quoteID, rest, err := parseQuoteID(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] != "lines" {
		http.Error(w, "invalid path format. Expected: /quotes/{id}/lines/{lineId}", http.StatusBadRequest)
		return 0, 0, false
	}

	lineID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		http.Error(w, "invalid line id parameter", http.StatusBadRequest)
		return 0, 0, false
	}

	return quoteID, lineID, true
}
