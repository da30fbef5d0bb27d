package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"offert-mockup-me/models"
	"offert-mockup-me/utils"
)

// StorageKeyPolicy selects how mockup filenames are derived. The two
// historical call-site strategies are unified behind this one parameter:
// overwrite-by-product keeps a single slot per product and upserts it;
// append-timestamped writes a fresh timestamp-qualified file every time.
type StorageKeyPolicy string

const (
	KeyPolicyOverwriteByProduct StorageKeyPolicy = "overwrite-by-product"
	KeyPolicyAppendTimestamped  StorageKeyPolicy = "append-timestamped"
)

const (
	// Upload limits checked before any network or canvas work
	maxLogoBytes = 5 << 20
)

var allowedLogoTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
}

// MockupService orchestrates logo upload, compositing and persistence
type MockupService struct {
	compositor *Compositor
	loader     ImageLoaderInterface
	storage    StorageServiceInterface
}

// NewMockupService creates a new MockupService instance
func NewMockupService(compositor *Compositor, loader ImageLoaderInterface, storage StorageServiceInterface) *MockupService {
	return &MockupService{
		compositor: compositor,
		loader:     loader,
		storage:    storage,
	}
}

// ValidateLogoUpload rejects bad uploads before any I/O: wrong file type or
// oversized payload. Returns the normalized file extension.
func ValidateLogoUpload(contentType string, size int64) (string, error) {
	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return "", &models.ValidationError{Field: "logo", Reason: fmt.Sprintf("unsupported file type %q, expected PNG or JPEG", contentType)}
	}
	if size > maxLogoBytes {
		return "", &models.ValidationError{Field: "logo", Reason: fmt.Sprintf("file too large (%d bytes, max %d)", size, maxLogoBytes)}
	}
	return ext, nil
}

// UploadLogo validates and persists an uploaded logo, returning its
// retrievable URL. Logos always get timestamp-qualified names.
func (s *MockupService) UploadLogo(ctx context.Context, productID string, data []byte, contentType string) (string, error) {
	ext, err := ValidateLogoUpload(contentType, int64(len(data)))
	if err != nil {
		return "", err
	}

	fileName := utils.LogoFileName(productID, ext, time.Now())
	path, err := s.storage.Upload(ctx, BucketLogos, fileName, data, contentType, false)
	if err != nil {
		return "", err
	}

	logoURL := s.storage.PublicURL(path)
	log.Printf("✓ UploadLogo: Stored logo for product %s at %s", productID, logoURL)
	return logoURL, nil
}

// GenerateMockup composites the logo onto the product photo and persists
// the result under the given key policy. The product photo is optional
// (the compositor falls back to a neutral fill); the logo is required.
// When persistence fails the logo's own URL is returned as a degraded
// mockup instead of failing the user flow.
func (s *MockupService) GenerateMockup(ctx context.Context, productID string, backgroundURL string, logoData []byte, logoURL string, placement Placement, policy StorageKeyPolicy) (*models.CompositeResult, error) {
	var background io.Reader
	if backgroundURL != "" {
		bgData, _, err := s.loader.LoadBytes(ctx, backgroundURL, DefaultLoadTimeout)
		if err != nil {
			// Optional asset: compositor renders the neutral fill instead
			log.Printf("⚠️  GenerateMockup: product photo unavailable for %s, compositing on neutral fill: %v", productID, err)
		} else {
			background = bytes.NewReader(bgData)
		}
	}

	opts := CompositeOptions{OverlaySize: DefaultOverlaySize}
	fileName := utils.MockupFileName(productID, time.Now())
	upsert := false
	if policy == KeyPolicyOverwriteByProduct {
		opts.OverlaySize = QuickOverlaySize
		fileName = utils.MockupSlotFileName(productID)
		upsert = true
	}

	composite, err := s.compositor.Composite(background, bytes.NewReader(logoData), placement, opts)
	if err != nil {
		// LoadError (overlay) or EncodeError: a mockup without a logo is
		// meaningless, so no storage write happens
		return nil, err
	}

	path, err := s.storage.Upload(ctx, BucketMockups, fileName, composite, "image/png", upsert)
	if err != nil {
		log.Printf("⚠️  GenerateMockup: persistence failed for %s, degrading to logo URL: %v", productID, err)
		return &models.CompositeResult{
			ProductID: productID,
			ImageData: composite,
			FileName:  fileName,
			URL:       logoURL,
			Degraded:  true,
		}, nil
	}

	return &models.CompositeResult{
		ProductID: productID,
		ImageData: composite,
		FileName:  fileName,
		URL:       s.storage.PublicURL(path),
	}, nil
}
