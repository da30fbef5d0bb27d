package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"offert-mockup-me/models"
	"offert-mockup-me/service"
)

// ProductController handles HTTP requests for catalog lookups
type ProductController struct {
	session *service.SearchSession
}

// NewProductController creates a new ProductController
func NewProductController(client service.CatalogClientInterface) *ProductController {
	return &ProductController{
		session: service.NewSearchSession(client),
	}
}

// SearchProduct handles GET /products/search?articleNo=123456
// Looks up an article in the remote catalog. Requests race each other
// while the user is typing; a response overtaken by a newer search is
// discarded and answered with 204 so the client keeps what it has.
// Example response:
// {
//   "articleId": "123456",
//   "name": "Profilkeps",
//   "priceExVat": 100,
//   "imageUrl": "https://images.example.com/123456_Front.jpg"
// }
func (c *ProductController) SearchProduct(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 SearchProduct: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ SearchProduct: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	articleNo := strings.TrimSpace(r.URL.Query().Get("articleNo"))
	if articleNo == "" {
		http.Error(w, "articleNo parameter is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	product, stale, err := c.session.Search(ctx, articleNo)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			log.Printf("❌ SearchProduct: Invalid article number: %s", articleNo)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var notFoundErr *models.NotFoundError
		if errors.As(err, &notFoundErr) {
			log.Printf("⚠️  SearchProduct: Article not found: %s", articleNo)
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("❌ SearchProduct: Error looking up article %s: %v", articleNo, err)
		http.Error(w, fmt.Sprintf("Failed to look up article: %v", err), http.StatusInternalServerError)
		return
	}

	if stale {
		log.Printf("⚠️  SearchProduct: Discarding stale result for article %s", articleNo)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	log.Printf("✅ SearchProduct: Found article %s (%s)", product.ArticleID, product.Name)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(product); err != nil {
		log.Printf("❌ SearchProduct: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetProductViews handles GET /products/views?imageUrl=...
// Derives the four angle image URLs (Front, Right, Back, Left) from a
// single product image URL, in both naming conventions.
// Example response:
// {
//   "views": [
//     {"view": "front", "shortUrl": ".../ABC123_F.jpg", "longUrl": ".../ABC123_Front.jpg"},
//     {"view": "right", "shortUrl": ".../ABC123_R.jpg", "longUrl": ".../ABC123_Right.jpg"}
//   ]
// }
func (c *ProductController) GetProductViews(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetProductViews: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GetProductViews: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imageURL := strings.TrimSpace(r.URL.Query().Get("imageUrl"))
	if imageURL == "" {
		http.Error(w, "imageUrl parameter is required", http.StatusBadRequest)
		return
	}

	views := service.ResolveAngleImages(imageURL)

	log.Printf("✅ GetProductViews: Resolved %d views", len(views.Views))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		log.Printf("❌ GetProductViews: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
