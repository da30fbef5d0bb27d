package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"offert-mockup-me/models"
)

func TestValidateArticleNumber(t *testing.T) {
	tests := []struct {
		name      string
		articleNo string
		wantErr   bool
	}{
		{"six digits", "123456", false},
		{"longer number", "1234567890", false},
		{"too short", "12345", true},
		{"letters", "ABC123", true},
		{"empty", "", true},
		{"embedded space", "123 456", true},
		{"negative sign", "-123456", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticleNumber(tt.articleNo)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateArticleNumber(%q) accepted invalid input", tt.articleNo)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateArticleNumber(%q) = %v, want nil", tt.articleNo, err)
			}
			if tt.wantErr {
				var validationErr *models.ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestLookupArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/123456" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articleId": "123456", "name": "Profilkeps", "priceExVat": 100, "imageUrl": "https://img.example.com/123456_F.jpg"}`))
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL)
	product, err := client.LookupArticle(context.Background(), "123456")
	if err != nil {
		t.Fatalf("LookupArticle returned error: %v", err)
	}

	if product.ArticleID != "123456" || product.Name != "Profilkeps" {
		t.Errorf("unexpected product: %+v", product)
	}
	if !product.HasPrice() || product.PriceOrZero() != 100 {
		t.Errorf("price not decoded: %+v", product.PriceExVAT)
	}
}

func TestLookupArticleNotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL)
	_, err := client.LookupArticle(context.Background(), "123456")

	var notFoundErr *models.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if notFoundErr.ArticleID != "123456" {
		t.Errorf("NotFoundError.ArticleID = %q", notFoundErr.ArticleID)
	}
}

// A 200 payload carrying an error field still means "not found".
func TestLookupArticleErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "no such article", "details": "article 999999 is unknown"}`))
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL)
	_, err := client.LookupArticle(context.Background(), "999999")

	var notFoundErr *models.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestLookupArticleRejectsInvalidNumberWithoutRequest(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer server.Close()

	client := NewCatalogClient(server.URL)
	_, err := client.LookupArticle(context.Background(), "abc")

	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if requested {
		t.Error("invalid article number still reached the catalog")
	}
}

// blockingCatalog lets the test control when each lookup starts and returns
type blockingCatalog struct {
	mu      sync.Mutex
	started map[string]chan struct{}
	release map[string]chan struct{}
}

func newBlockingCatalog() *blockingCatalog {
	return &blockingCatalog{
		started: make(map[string]chan struct{}),
		release: make(map[string]chan struct{}),
	}
}

func chanFor(mu *sync.Mutex, m map[string]chan struct{}, key string) chan struct{} {
	mu.Lock()
	defer mu.Unlock()
	ch, ok := m[key]
	if !ok {
		ch = make(chan struct{})
		m[key] = ch
	}
	return ch
}

func (c *blockingCatalog) LookupArticle(ctx context.Context, articleNo string) (*models.ProductRecord, error) {
	close(chanFor(&c.mu, c.started, articleNo))
	<-chanFor(&c.mu, c.release, articleNo)
	return &models.ProductRecord{ArticleID: articleNo, Name: "Artikel " + articleNo}, nil
}

// A response that arrives after a newer query was issued must be discarded.
func TestSearchSessionDiscardsStaleResponse(t *testing.T) {
	catalog := newBlockingCatalog()
	session := NewSearchSession(catalog)

	type result struct {
		product *models.ProductRecord
		stale   bool
		err     error
	}

	firstDone := make(chan result, 1)
	go func() {
		p, stale, err := session.Search(context.Background(), "111111")
		firstDone <- result{p, stale, err}
	}()
	// Wait until the first query holds its sequence number before the
	// second one starts, so the ordering under test is deterministic
	<-chanFor(&catalog.mu, catalog.started, "111111")

	secondDone := make(chan result, 1)
	go func() {
		p, stale, err := session.Search(context.Background(), "222222")
		secondDone <- result{p, stale, err}
	}()
	<-chanFor(&catalog.mu, catalog.started, "222222")

	// Release the newer query first, then the older one
	close(chanFor(&catalog.mu, catalog.release, "222222"))
	second := <-secondDone
	close(chanFor(&catalog.mu, catalog.release, "111111"))
	first := <-firstDone

	if second.stale || second.err != nil || second.product == nil {
		t.Fatalf("newest query should win: %+v", second)
	}
	if second.product.ArticleID != "222222" {
		t.Errorf("unexpected product for newest query: %+v", second.product)
	}

	if !first.stale {
		t.Error("superseded query was not marked stale")
	}
	if first.product != nil {
		t.Error("stale query still returned a product")
	}
}

func TestSearchSessionSequentialQueriesAreFresh(t *testing.T) {
	catalog := newBlockingCatalog()
	session := NewSearchSession(catalog)

	close(chanFor(&catalog.mu, catalog.release, "111111"))
	close(chanFor(&catalog.mu, catalog.release, "222222"))

	for _, articleNo := range []string{"111111", "222222"} {
		product, stale, err := session.Search(context.Background(), articleNo)
		if err != nil {
			t.Fatalf("Search(%s) returned error: %v", articleNo, err)
		}
		if stale {
			t.Errorf("sequential query %s was marked stale", articleNo)
		}
		if product == nil || product.ArticleID != articleNo {
			t.Errorf("unexpected product for %s: %+v", articleNo, product)
		}
	}
}
