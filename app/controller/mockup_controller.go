package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"offert-mockup-me/models"
	"offert-mockup-me/repository"
	"offert-mockup-me/service"
)

// MockupController handles HTTP requests for logo uploads and mockup generation
type MockupController struct {
	mockups    *service.MockupService
	repository repository.QuoteRepositoryInterface
}

// NewMockupController creates a new MockupController
func NewMockupController(mockups *service.MockupService, repo repository.QuoteRepositoryInterface) *MockupController {
	return &MockupController{
		mockups:    mockups,
		repository: repo,
	}
}

// GenerateMockup handles POST /mockups
// Accepts a multipart form with the customer's logo and composites it onto
// the product photo. When quoteId is present the resulting mockup URL is
// stored on the matching quote line; a later upload for the same product
// supersedes the earlier one.
//
// Form fields:
//   - logo (file, required): PNG or JPEG, max 5 MB
//   - productId (required): article number the mockup belongs to
//   - backgroundUrl (optional): product photo URL; a flat background is used when absent
//   - placement (optional): top-left, top-right, bottom-left, bottom-right, center
//   - quoteId (optional): quote whose line should carry the mockup
//   - slot (optional): "true" reuses one storage slot per product instead of
//     adding a timestamped file per upload
//
// Example response:
// {
//   "productId": "123456",
//   "mockupUrl": "https://drive.google.com/uc?id=abc",
//   "degraded": false
// }
func (c *MockupController) GenerateMockup(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GenerateMockup: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ GenerateMockup: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		log.Printf("❌ GenerateMockup: Failed to parse multipart form: %v", err)
		http.Error(w, fmt.Sprintf("Invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}

	productID := strings.TrimSpace(r.FormValue("productId"))
	if productID == "" {
		http.Error(w, "productId is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		log.Printf("❌ GenerateMockup: Missing logo file: %v", err)
		http.Error(w, "logo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, err := service.ValidateLogoUpload(contentType, header.Size); err != nil {
		log.Printf("❌ GenerateMockup: Rejected logo upload: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logoData, err := io.ReadAll(file)
	if err != nil {
		log.Printf("❌ GenerateMockup: Failed to read logo file: %v", err)
		http.Error(w, fmt.Sprintf("Failed to read logo file: %v", err), http.StatusBadRequest)
		return
	}

	ctx := context.Background()

	logoURL, err := c.mockups.UploadLogo(ctx, productID, logoData, contentType)
	if err != nil {
		log.Printf("❌ GenerateMockup: Error uploading logo: %v", err)
		http.Error(w, fmt.Sprintf("Failed to upload logo: %v", err), http.StatusInternalServerError)
		return
	}

	placement := service.Placement(r.FormValue("placement"))
	if placement == "" {
		placement = service.PlacementCenter
	}

	policy := service.KeyPolicyAppendTimestamped
	if r.FormValue("slot") == "true" {
		policy = service.KeyPolicyOverwriteByProduct
	}

	result, err := c.mockups.GenerateMockup(ctx, productID, r.FormValue("backgroundUrl"), logoData, logoURL, placement, policy)
	if err != nil {
		log.Printf("❌ GenerateMockup: Error generating mockup: %v", err)
		var loadErr *models.LoadError
		var encodeErr *models.EncodeError
		if errors.As(err, &loadErr) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if errors.As(err, &encodeErr) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to generate mockup: %v", err), http.StatusInternalServerError)
		return
	}

	// Attach the mockup to the quote line when a quote is named. Persist
	// failure here does not waste the composite; the URL is still returned.
	if quoteIDStr := r.FormValue("quoteId"); quoteIDStr != "" {
		quoteID, err := strconv.ParseInt(quoteIDStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid quoteId parameter", http.StatusBadRequest)
			return
		}
		if err := c.repository.SetMockupByArticle(ctx, quoteID, productID, result.URL, logoURL); err != nil {
			log.Printf("⚠️  GenerateMockup: Could not attach mockup to quote %d: %v", quoteID, err)
		}
	}

	if result.Degraded {
		log.Printf("⚠️  GenerateMockup: Mockup for product %s degraded to logo URL", productID)
	} else {
		log.Printf("✅ GenerateMockup: Successfully generated mockup for product %s", productID)
	}

	response := models.MockupResponse{
		ProductID: result.ProductID,
		MockupURL: result.URL,
		Degraded:  result.Degraded,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ GenerateMockup: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
