package router

import (
	"net/http"
	"strings"

	"offert-mockup-me/app/controller"
)

type Controllers struct {
	Product *controller.ProductController
	Quote   *controller.QuoteController
	Mockup  *controller.MockupController
	Offert  *controller.OffertController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Product catalog routes
	http.HandleFunc("/products/search", controllers.Product.SearchProduct)
	http.HandleFunc("/products/views", controllers.Product.GetProductViews)

	// Mockup generation
	http.HandleFunc("/mockups", controllers.Mockup.GenerateMockup)

	// Quote routes
	http.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			controllers.Quote.CreateQuote(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	http.HandleFunc("/quotes/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/quotes/")

		// Offer document for a quote: /quotes/:id/offert
		if strings.HasSuffix(path, "/offert") {
			controllers.Offert.GenerateOffert(w, r)
			return
		}
		// Line item by ID: /quotes/:id/lines/:lineId
		if strings.Contains(path, "/lines/") {
			if r.Method == http.MethodDelete {
				controllers.Quote.RemoveLine(w, r)
				return
			}
			if r.Method == http.MethodPut || r.Method == http.MethodPatch {
				controllers.Quote.UpdateLine(w, r)
				return
			}
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// Line collection: /quotes/:id/lines
		if strings.HasSuffix(path, "/lines") {
			if r.Method == http.MethodPost {
				controllers.Quote.AddLine(w, r)
				return
			}
			if r.Method == http.MethodDelete {
				controllers.Quote.ClearQuote(w, r)
				return
			}
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Otherwise, treat as GET /quotes/:id
		if r.Method == http.MethodGet && !strings.Contains(path, "/") {
			controllers.Quote.GetQuote(w, r)
			return
		}

		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Offer preview routes (used by the browser renderer and PNG download)
	http.HandleFunc("/offert/render", controllers.Offert.RenderOffert)
	http.HandleFunc("/offert/png-page", controllers.Offert.DownloadPreviewPage)
}
