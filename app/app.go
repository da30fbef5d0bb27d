package app

import (
	"fmt"
	"os"

	"offert-mockup-me/app/controller"
	"offert-mockup-me/app/router"
	"offert-mockup-me/db"
	"offert-mockup-me/pricing"
	"offert-mockup-me/repository"
	"offert-mockup-me/service"
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Load the pricing configuration (margins and tax per document type)
	pricingConfigPath := os.Getenv("PRICING_CONFIG_PATH")
	if pricingConfigPath == "" {
		pricingConfigPath = "config/pricing.json"
	}
	if _, err := pricing.NewEngine(pricingConfigPath); err != nil {
		return fmt.Errorf("failed to load pricing config: %w", err)
	}

	// Get credentials path from environment variable
	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credentialsPath == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
	}

	// Initialize storage with one Drive folder per bucket
	storageService, err := service.NewStorageService(credentialsPath, map[string]string{
		service.BucketLogos:   os.Getenv("STORAGE_FOLDER_LOGOS"),
		service.BucketMockups: os.Getenv("STORAGE_FOLDER_MOCKUPS"),
		service.BucketOffers:  os.Getenv("STORAGE_FOLDER_OFFERS"),
	})
	if err != nil {
		return err
	}

	catalogURL := os.Getenv("CATALOG_API_URL")
	if catalogURL == "" {
		return fmt.Errorf("CATALOG_API_URL environment variable is not set")
	}

	// Base URL the headless browser renders previews from
	renderBaseURL := os.Getenv("RENDER_BASE_URL")
	if renderBaseURL == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		renderBaseURL = "http://localhost:" + port
	}

	// Initialize services
	catalogClient := service.NewCatalogClient(catalogURL)
	imageLoader := service.NewImageLoader()
	compositor := service.NewCompositor()
	mockupService := service.NewMockupService(compositor, imageLoader, storageService)
	offertService := service.NewOffertService(imageLoader, storageService)
	exportService := service.NewExportService()
	previewService := service.NewPreviewService(renderBaseURL)

	// Initialize repository
	quoteRepo := repository.NewQuoteRepository()

	// Create controllers
	controllers := &router.Controllers{
		Product: controller.NewProductController(catalogClient),
		Quote:   controller.NewQuoteController(quoteRepo),
		Mockup:  controller.NewMockupController(mockupService, quoteRepo),
		Offert:  controller.NewOffertController(quoteRepo, offertService, exportService, previewService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
