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
	"sync"
	"time"

	"github.com/google/uuid"

	"offert-mockup-me/models"
	"offert-mockup-me/pricing"
	"offert-mockup-me/repository"
	"offert-mockup-me/service"
	"offert-mockup-me/utils"
)

// OffertController handles HTTP requests for offer document generation
type OffertController struct {
	repository repository.QuoteRepositoryInterface
	offerts    *service.OffertService
	exports    *service.ExportService
	previews   *service.PreviewService

	// Temporary storage for preview PNG pages (key: sessionID, value: map of page number to PNG data)
	pngStorage      map[string]map[int][]byte
	pngStorageMutex sync.RWMutex
}

// NewOffertController creates a new OffertController
func NewOffertController(repo repository.QuoteRepositoryInterface, offerts *service.OffertService, exports *service.ExportService, previews *service.PreviewService) *OffertController {
	return &OffertController{
		repository: repo,
		offerts:    offerts,
		exports:    exports,
		previews:   previews,
		pngStorage: make(map[string]map[int][]byte),
	}
}

// loadQuote fetches the quote and its lines, writing the error response
// itself on failure
func (c *OffertController) loadQuote(ctx context.Context, w http.ResponseWriter, quoteID int64) (*models.Quote, []models.QuoteLineItem, bool) {
	quote, err := c.repository.GetQuote(ctx, quoteID)
	if err != nil {
		log.Printf("❌ GenerateOffert: Error fetching quote: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, nil, false
		}
		http.Error(w, fmt.Sprintf("Failed to fetch quote: %v", err), http.StatusInternalServerError)
		return nil, nil, false
	}

	lines, err := c.repository.GetQuoteLines(ctx, quoteID)
	if err != nil {
		log.Printf("❌ GenerateOffert: Error fetching quote lines: %v", err)
		http.Error(w, fmt.Sprintf("Failed to fetch quote lines: %v", err), http.StatusInternalServerError)
		return nil, nil, false
	}

	return quote, lines, true
}

// GenerateOffert handles GET /quotes/:id/offert?format=pdf|xlsx|html|png
// Builds the priced offer document for a quote. PDF is the default; xlsx
// returns a spreadsheet, html returns the paginated preview markup and png
// rasterizes the preview into per-page images retrievable by session.
func (c *OffertController) GenerateOffert(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GenerateOffert: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GenerateOffert: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteID, rest, err := parseQuoteID(r.URL.Path)
	if err != nil || rest != "offert" {
		http.Error(w, "invalid path format. Expected: /quotes/{id}/offert", http.StatusBadRequest)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}

	ctx := context.Background()
	quote, lines, ok := c.loadQuote(ctx, w, quoteID)
	if !ok {
		return
	}

	switch format {
	case "pdf":
		result, err := c.offerts.Generate(ctx, quote, lines)
		if err != nil {
			log.Printf("❌ GenerateOffert: Error generating PDF: %v", err)
			var validationErr *models.ValidationError
			if errors.As(err, &validationErr) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, fmt.Sprintf("Failed to generate PDF: %v", err), http.StatusInternalServerError)
			return
		}

		log.Printf("✅ GenerateOffert: Generated %s (%d pages)", result.FileName, result.Pages)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.FileName))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(result.PDF); err != nil {
			log.Printf("❌ GenerateOffert: Error writing PDF response: %v", err)
		}

	case "xlsx":
		if len(lines) == 0 {
			http.Error(w, "quote has no lines", http.StatusBadRequest)
			return
		}

		data, err := c.exports.ExportQuoteXLSX(quote, lines)
		if err != nil {
			log.Printf("❌ GenerateOffert: Error generating XLSX: %v", err)
			http.Error(w, fmt.Sprintf("Failed to generate XLSX: %v", err), http.StatusInternalServerError)
			return
		}

		offerNumber := utils.GenerateOfferNumber(time.Now())
		filename := strings.TrimSuffix(utils.OfferFileName(quote.CustomerName, offerNumber), ".pdf") + ".xlsx"

		log.Printf("✅ GenerateOffert: Generated %s", filename)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			log.Printf("❌ GenerateOffert: Error writing XLSX response: %v", err)
		}

	case "html":
		html, err := c.renderQuoteHTML(quote, lines)
		if err != nil {
			log.Printf("❌ GenerateOffert: Error rendering HTML: %v", err)
			http.Error(w, fmt.Sprintf("Failed to render HTML: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(html)); err != nil {
			log.Printf("❌ GenerateOffert: Error writing HTML response: %v", err)
		}

	case "png":
		pngs, err := c.previews.GeneratePreviewPNG(ctx, quoteID)
		if err != nil {
			log.Printf("❌ GenerateOffert: Error generating preview PNGs: %v", err)
			http.Error(w, fmt.Sprintf("Failed to generate preview: %v", err), http.StatusInternalServerError)
			return
		}

		sessionID := uuid.New().String()

		c.pngStorageMutex.Lock()
		c.pngStorage[sessionID] = pngs
		c.pngStorageMutex.Unlock()

		// Schedule cleanup after 10 minutes
		go func() {
			time.Sleep(10 * time.Minute)
			c.pngStorageMutex.Lock()
			delete(c.pngStorage, sessionID)
			c.pngStorageMutex.Unlock()
		}()

		type PageLink struct {
			Page     int    `json:"page"`
			URL      string `json:"url"`
			Filename string `json:"filename"`
		}

		var pages []PageLink
		for i := 1; i <= len(pngs); i++ {
			if _, exists := pngs[i]; exists {
				downloadPath := fmt.Sprintf("/offert/png-page?session=%s&page=%d", sessionID, i)
				pages = append(pages, PageLink{
					Page:     i,
					URL:      downloadPath,
					Filename: fmt.Sprintf("offert_%d_page_%d.png", quoteID, i),
				})
			}
		}

		log.Printf("✅ GenerateOffert: Generated %d preview pages for quote %d", len(pngs), quoteID)

		response := map[string]interface{}{
			"sessionId":  sessionID,
			"totalPages": len(pngs),
			"quoteId":    quoteID,
			"pages":      pages,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("❌ GenerateOffert: Error encoding JSON response: %v", err)
		}

	default:
		http.Error(w, "invalid format. Valid formats: pdf, xlsx, html, png", http.StatusBadRequest)
	}
}

// RenderOffert handles GET /offert/render?quoteId=N
// Returns the HTML preview template (used by chromedp for PNG generation)
func (c *OffertController) RenderOffert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		log.Printf("❌ RenderOffert: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quoteIDStr := strings.TrimSpace(r.URL.Query().Get("quoteId"))
	if quoteIDStr == "" {
		log.Printf("❌ RenderOffert: quoteId parameter is required")
		http.Error(w, "quoteId parameter is required", http.StatusBadRequest)
		return
	}

	quoteID, err := strconv.ParseInt(quoteIDStr, 10, 64)
	if err != nil {
		log.Printf("❌ RenderOffert: Invalid quoteId: %s", quoteIDStr)
		http.Error(w, "invalid quoteId parameter", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	quote, lines, ok := c.loadQuote(ctx, w, quoteID)
	if !ok {
		return
	}

	html, err := c.renderQuoteHTML(quote, lines)
	if err != nil {
		log.Printf("❌ RenderOffert: Error rendering HTML: %v", err)
		http.Error(w, fmt.Sprintf("Failed to render HTML: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		log.Printf("❌ RenderOffert: Error writing HTML response: %v", err)
	}
}

func (c *OffertController) renderQuoteHTML(quote *models.Quote, lines []models.QuoteLineItem) (string, error) {
	taxRate := pricing.GetEngine().TaxRate()
	totals := utils.CalculateDocumentTotals(pricedLines(lines), taxRate)
	offerNumber := utils.GenerateOfferNumber(time.Now())
	return c.previews.RenderOffertHTML(quote, lines, totals, taxRate, offerNumber)
}

// DownloadPreviewPage handles GET /offert/png-page?session=XXX&page=N
// Serves one preview page from a session created by the png format
func (c *OffertController) DownloadPreviewPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		log.Printf("❌ DownloadPreviewPage: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	pageStr := strings.TrimSpace(r.URL.Query().Get("page"))

	if sessionID == "" {
		log.Printf("❌ DownloadPreviewPage: session parameter is required")
		http.Error(w, "session parameter is required", http.StatusBadRequest)
		return
	}

	pageNum, err := strconv.Atoi(pageStr)
	if err != nil || pageNum < 1 {
		log.Printf("❌ DownloadPreviewPage: Invalid page: %s", pageStr)
		http.Error(w, "invalid page parameter", http.StatusBadRequest)
		return
	}

	c.pngStorageMutex.RLock()
	pngs, exists := c.pngStorage[sessionID]
	c.pngStorageMutex.RUnlock()

	if !exists {
		log.Printf("❌ DownloadPreviewPage: Session not found: %s", sessionID)
		http.Error(w, "session not found or expired", http.StatusNotFound)
		return
	}

	data, exists := pngs[pageNum]
	if !exists {
		log.Printf("❌ DownloadPreviewPage: Page %d not found in session %s", pageNum, sessionID)
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"offert_page_%d.png\"", pageNum))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("❌ DownloadPreviewPage: Error writing PNG response: %v", err)
	}
}
