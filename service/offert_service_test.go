package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"offert-mockup-me/models"
)

// fakeLoader serves a fixed payload or a fixed error for every URL
type fakeLoader struct {
	data   []byte
	format string
	err    error

	mu   sync.Mutex
	urls []string
}

func (l *fakeLoader) LoadBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, string, error) {
	l.mu.Lock()
	l.urls = append(l.urls, url)
	l.mu.Unlock()
	if l.err != nil {
		return nil, "", l.err
	}
	return l.data, l.format, nil
}

func (l *fakeLoader) Load(ctx context.Context, url string, timeout time.Duration) (image.Image, error) {
	data, _, err := l.LoadBytes(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// fakeStorage records uploads; uploaded is signalled once per Upload call
type fakeStorage struct {
	err      error
	uploaded chan string

	mu    sync.Mutex
	names []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: make(chan string, 16)}
}

func (s *fakeStorage) Upload(ctx context.Context, bucket string, fileName string, data []byte, contentType string, upsert bool) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	s.names = append(s.names, fileName)
	s.mu.Unlock()
	s.uploaded <- fileName
	return "stored-" + fileName, nil
}

func (s *fakeStorage) PublicURL(storagePath string) string {
	return "https://files.example.com/" + storagePath
}

func priceOf(v float64) *float64 { return &v }

func testQuote() *models.Quote {
	return &models.Quote{ID: 1, CustomerName: "Svensson Bygg AB"}
}

func testLine(articleID string, qty int) models.QuoteLineItem {
	return models.QuoteLineItem{
		Product: models.ProductRecord{
			ArticleID:  articleID,
			Name:       "Profilkeps med tryck",
			PriceExVAT: priceOf(100),
			ImageURL:   "https://img.example.com/" + articleID + "_Front.jpg",
		},
		Quantity: qty,
	}
}

func TestGenerateRejectsEmptyQuote(t *testing.T) {
	svc := NewOffertService(&fakeLoader{err: errors.New("unused")}, newFakeStorage())

	_, err := svc.Generate(context.Background(), testQuote(), nil)

	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for empty quote, got %T: %v", err, err)
	}
}

func TestGenerateProducesPDF(t *testing.T) {
	loader := &fakeLoader{data: pngBytes(t, 40, 40), format: "png"}
	storage := newFakeStorage()
	svc := NewOffertService(loader, storage)

	result, err := svc.Generate(context.Background(), testQuote(), []models.QuoteLineItem{
		testLine("123456", 3),
		testLine("234567", 1),
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if result.Pages != 1 {
		t.Errorf("Pages = %d, want 1 for two lines", result.Pages)
	}
	if !strings.HasPrefix(result.OfferNumber, "OFF-") || len(result.OfferNumber) != 10 {
		t.Errorf("OfferNumber = %q, want OFF- plus six digits", result.OfferNumber)
	}
	if want := "Offert_Svensson_Bygg_AB_" + result.OfferNumber + ".pdf"; result.FileName != want {
		t.Errorf("FileName = %q, want %q", result.FileName, want)
	}

	// A copy is archived asynchronously
	select {
	case name := <-storage.uploaded:
		if name != result.FileName {
			t.Errorf("archived as %q, want %q", name, result.FileName)
		}
	case <-time.After(2 * time.Second):
		t.Error("archive copy was never uploaded")
	}
}

// A failing image loader degrades rows to placeholders, never aborts.
func TestGenerateSurvivesImageFailures(t *testing.T) {
	loader := &fakeLoader{err: &models.TimeoutError{URL: "x", Timeout: time.Second}}
	svc := NewOffertService(loader, newFakeStorage())

	result, err := svc.Generate(context.Background(), testQuote(), []models.QuoteLineItem{
		testLine("123456", 1),
	})
	if err != nil {
		t.Fatalf("Generate should tolerate image failures, got %v", err)
	}
	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}

	// Short URL is tried before the long URL
	if len(loader.urls) != 2 {
		t.Fatalf("expected 2 load attempts, got %d: %v", len(loader.urls), loader.urls)
	}
	if !strings.HasSuffix(loader.urls[0], "_F.jpg") || !strings.HasSuffix(loader.urls[1], "_Front.jpg") {
		t.Errorf("candidate order wrong: %v", loader.urls)
	}
}

// Archive failure is logged only; the caller still gets the document.
func TestGenerateIgnoresArchiveFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.err = errors.New("storage down")
	svc := NewOffertService(&fakeLoader{err: errors.New("no images")}, storage)

	result, err := svc.Generate(context.Background(), testQuote(), []models.QuoteLineItem{
		testLine("123456", 1),
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(result.PDF) == 0 {
		t.Error("empty PDF output")
	}
}

// Many lines must spill onto additional pages at row checkpoints.
func TestGeneratePaginatesLongQuotes(t *testing.T) {
	svc := NewOffertService(&fakeLoader{err: errors.New("no images")}, newFakeStorage())

	var lines []models.QuoteLineItem
	for i := 0; i < 30; i++ {
		lines = append(lines, testLine(fmt.Sprintf("%06d", 100000+i), 1))
	}

	result, err := svc.Generate(context.Background(), testQuote(), lines)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Pages < 2 {
		t.Errorf("Pages = %d, want at least 2 for 30 lines", result.Pages)
	}
}

// A quote line without a price renders but contributes nothing to totals,
// so generation still succeeds.
func TestGenerateHandlesPricelessLines(t *testing.T) {
	svc := NewOffertService(&fakeLoader{err: errors.New("no images")}, newFakeStorage())

	line := testLine("123456", 2)
	line.Product.PriceExVAT = nil

	result, err := svc.Generate(context.Background(), testQuote(), []models.QuoteLineItem{line})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(result.PDF) == 0 {
		t.Error("empty PDF output")
	}
}
