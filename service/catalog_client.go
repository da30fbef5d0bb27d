package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sync"
	"time"

	"offert-mockup-me/models"
)

// articleNumberRegex: digits only, minimum 6 characters
var articleNumberRegex = regexp.MustCompile(`^[0-9]{6,}$`)

// ValidateArticleNumber rejects malformed article numbers before any
// network work happens
func ValidateArticleNumber(articleNo string) error {
	if !articleNumberRegex.MatchString(articleNo) {
		return &models.ValidationError{Field: "articleNumber", Reason: "must be digits only, minimum 6 characters"}
	}
	return nil
}

// CatalogClientInterface defines the contract for the external product catalog
type CatalogClientInterface interface {
	LookupArticle(ctx context.Context, articleNo string) (*models.ProductRecord, error)
}

// CatalogClient is the thin wrapper around the remote product catalog API.
// One attempt per lookup; no retry or backoff.
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

// NewCatalogClient creates a new CatalogClient instance
func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Ensure CatalogClient implements CatalogClientInterface
var _ CatalogClientInterface = (*CatalogClient)(nil)

// LookupArticle fetches a product record by article number. Any non-2xx
// response or an error-bearing payload is treated as "not found".
func (c *CatalogClient) LookupArticle(ctx context.Context, articleNo string) (*models.ProductRecord, error) {
	if err := ValidateArticleNumber(articleNo); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/products/%s", c.baseURL, articleNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️  LookupArticle: catalog returned status %d for article %s", resp.StatusCode, articleNo)
		return nil, &models.NotFoundError{ArticleID: articleNo}
	}

	// The catalog answers with either a product payload or an
	// {error, details} shape; sniff for the error field first.
	var raw struct {
		models.ProductRecord
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &models.LoadError{URL: url, Err: fmt.Errorf("failed to decode catalog response: %w", err)}
	}
	if raw.Error != "" {
		return nil, &models.NotFoundError{ArticleID: articleNo}
	}

	product := raw.ProductRecord
	return &product, nil
}

// SearchSession guards one search box against stale in-flight responses.
// Each Search call takes a fresh monotonically increasing sequence number;
// a response arriving after a newer query was issued is discarded. The
// sequence is owned by the session instance, never a process-wide global.
type SearchSession struct {
	client CatalogClientInterface

	mu  sync.Mutex
	seq uint64
}

// NewSearchSession creates a session-scoped stale-response guard
func NewSearchSession(client CatalogClientInterface) *SearchSession {
	return &SearchSession{client: client}
}

// Search looks up an article and reports whether the result is still
// current. stale=true means a newer query superseded this one while it was
// in flight; callers must drop the result.
func (s *SearchSession) Search(ctx context.Context, articleNo string) (product *models.ProductRecord, stale bool, err error) {
	s.mu.Lock()
	s.seq++
	mySeq := s.seq
	s.mu.Unlock()

	product, err = s.client.LookupArticle(ctx, articleNo)

	s.mu.Lock()
	stale = mySeq != s.seq
	s.mu.Unlock()

	if stale {
		log.Printf("⚠️  Search: discarding stale response for article %s (seq %d superseded)", articleNo, mySeq)
		return nil, true, nil
	}
	return product, false, err
}
