package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"offert-mockup-me/models"
)

func TestValidateLogoUpload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantExt     string
		wantErr     bool
	}{
		{"png accepted", "image/png", 1024, "png", false},
		{"jpeg accepted", "image/jpeg", 1024, "jpg", false},
		{"legacy jpg accepted", "image/jpg", 1024, "jpg", false},
		{"gif rejected", "image/gif", 1024, "", true},
		{"svg rejected", "image/svg+xml", 1024, "", true},
		{"oversized rejected", "image/png", maxLogoBytes + 1, "", true},
		{"exactly at limit accepted", "image/png", maxLogoBytes, "png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateLogoUpload(tt.contentType, tt.size)
			if tt.wantErr {
				var validationErr *models.ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected ValidationError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ext != tt.wantExt {
				t.Errorf("ext = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestUploadLogo(t *testing.T) {
	storage := newFakeStorage()
	svc := NewMockupService(NewCompositor(), &fakeLoader{err: errors.New("unused")}, storage)

	logoURL, err := svc.UploadLogo(context.Background(), "123456", pngBytes(t, 8, 8), "image/png")
	if err != nil {
		t.Fatalf("UploadLogo returned error: %v", err)
	}

	if !strings.HasPrefix(logoURL, "https://files.example.com/stored-logo_123456_") {
		t.Errorf("logoURL = %q", logoURL)
	}
	if len(storage.names) != 1 || !strings.HasSuffix(storage.names[0], ".png") {
		t.Errorf("stored names = %v", storage.names)
	}
}

func TestUploadLogoRejectsBadType(t *testing.T) {
	svc := NewMockupService(NewCompositor(), &fakeLoader{}, newFakeStorage())

	_, err := svc.UploadLogo(context.Background(), "123456", []byte("GIF89a"), "image/gif")

	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestGenerateMockupTimestampedPolicy(t *testing.T) {
	storage := newFakeStorage()
	loader := &fakeLoader{data: pngBytes(t, 50, 50), format: "png"}
	svc := NewMockupService(NewCompositor(), loader, storage)

	result, err := svc.GenerateMockup(context.Background(), "123456",
		"https://img.example.com/123456_F.jpg", pngBytes(t, 30, 30),
		"https://files.example.com/logo.png", PlacementCenter, KeyPolicyAppendTimestamped)
	if err != nil {
		t.Fatalf("GenerateMockup returned error: %v", err)
	}

	if result.Degraded {
		t.Error("result should not be degraded")
	}
	if !strings.HasPrefix(result.FileName, "mockup_123456_") {
		t.Errorf("FileName = %q, want timestamped name", result.FileName)
	}
	if len(result.ImageData) == 0 {
		t.Error("missing composite bytes")
	}
}

func TestGenerateMockupSlotPolicy(t *testing.T) {
	storage := newFakeStorage()
	svc := NewMockupService(NewCompositor(), &fakeLoader{err: errors.New("photo gone")}, storage)

	result, err := svc.GenerateMockup(context.Background(), "123456",
		"https://img.example.com/123456_F.jpg", pngBytes(t, 30, 30),
		"https://files.example.com/logo.png", PlacementBottomRight, KeyPolicyOverwriteByProduct)
	if err != nil {
		t.Fatalf("GenerateMockup returned error: %v", err)
	}

	// Slot policy reuses one fixed name per product
	if result.FileName != "123456-mockup.png" {
		t.Errorf("FileName = %q, want slot name", result.FileName)
	}
}

// Broken logo bytes fail the mockup without touching storage.
func TestGenerateMockupBrokenLogoFails(t *testing.T) {
	storage := newFakeStorage()
	svc := NewMockupService(NewCompositor(), &fakeLoader{err: errors.New("no photo")}, storage)

	_, err := svc.GenerateMockup(context.Background(), "123456",
		"", []byte("not an image"), "https://files.example.com/logo.png",
		PlacementCenter, KeyPolicyAppendTimestamped)

	var loadErr *models.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %T: %v", err, err)
	}
	if len(storage.names) != 0 {
		t.Errorf("storage should stay untouched, got uploads: %v", storage.names)
	}
}

// A storage outage degrades the result to the logo's own URL.
func TestGenerateMockupDegradesOnPersistFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.err = &models.PersistError{Key: "mockups", Err: errors.New("drive down")}
	svc := NewMockupService(NewCompositor(), &fakeLoader{err: errors.New("no photo")}, storage)

	result, err := svc.GenerateMockup(context.Background(), "123456",
		"", pngBytes(t, 30, 30), "https://files.example.com/logo.png",
		PlacementCenter, KeyPolicyAppendTimestamped)
	if err != nil {
		t.Fatalf("persistence failure should degrade, not fail: %v", err)
	}

	if !result.Degraded {
		t.Error("result not marked degraded")
	}
	if result.URL != "https://files.example.com/logo.png" {
		t.Errorf("degraded URL = %q, want the logo URL", result.URL)
	}
	if len(result.ImageData) == 0 {
		t.Error("composite bytes should survive a persistence failure")
	}
}
