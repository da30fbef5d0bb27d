package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"offert-mockup-me/db"
	"offert-mockup-me/models"
)

// QuoteRepository handles database operations for quotes and their line items
type QuoteRepository struct{}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{}
}

// Ensure QuoteRepository implements QuoteRepositoryInterface
var _ QuoteRepositoryInterface = (*QuoteRepository)(nil)

// CreateQuote creates a new quote for a customer
func (r *QuoteRepository) CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error) {
	log.Printf("📦 CreateQuote: Creating quote for customer=%s", req.CustomerName)

	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, &models.ValidationError{Field: "customerName", Reason: "cannot be empty"}
	}

	query := `
		INSERT INTO quotes (customer_name, customer_email, customer_phone)
		VALUES ($1, $2, $3)
		RETURNING id, customer_name, customer_email, customer_phone, created_at, updated_at
	`

	var quote models.Quote
	var email, phone sql.NullString

	err := db.DB.QueryRowContext(ctx, query,
		req.CustomerName,
		sql.NullString{String: req.CustomerEmail, Valid: req.CustomerEmail != ""},
		sql.NullString{String: req.CustomerPhone, Valid: req.CustomerPhone != ""},
	).Scan(
		&quote.ID,
		&quote.CustomerName,
		&email,
		&phone,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	)
	if err != nil {
		log.Printf("❌ CreateQuote: Error creating quote: %v", err)
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	if email.Valid {
		quote.CustomerEmail = email.String
	}
	if phone.Valid {
		quote.CustomerPhone = phone.String
	}

	return &quote, nil
}

// GetQuote retrieves a quote by its ID
func (r *QuoteRepository) GetQuote(ctx context.Context, quoteID int64) (*models.Quote, error) {
	query := `
		SELECT id, customer_name, customer_email, customer_phone, created_at, updated_at
		FROM quotes
		WHERE id = $1
	`

	var quote models.Quote
	var email, phone sql.NullString

	err := db.DB.QueryRowContext(ctx, query, quoteID).Scan(
		&quote.ID,
		&quote.CustomerName,
		&email,
		&phone,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quote %d not found", quoteID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if email.Valid {
		quote.CustomerEmail = email.String
	}
	if phone.Valid {
		quote.CustomerPhone = phone.String
	}

	return &quote, nil
}

// GetQuoteLines retrieves all line items for a quote in insertion order,
// which is the document's row order
func (r *QuoteRepository) GetQuoteLines(ctx context.Context, quoteID int64) ([]models.QuoteLineItem, error) {
	query := `
		SELECT id, quote_id, article_id, product_name, description, category, brand,
		       price_ex_vat, image_url, variants, quantity, logo_url, mockup_url, created_at
		FROM quote_lines
		WHERE quote_id = $1
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote lines: %w", err)
	}
	defer rows.Close()

	var lines []models.QuoteLineItem
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}

	return lines, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLine(row rowScanner) (*models.QuoteLineItem, error) {
	var line models.QuoteLineItem
	var description, category, brand, imageURL, variantsJSON, logoURL, mockupURL sql.NullString
	var priceExVAT sql.NullFloat64

	err := row.Scan(
		&line.ID,
		&line.QuoteID,
		&line.Product.ArticleID,
		&line.Product.Name,
		&description,
		&category,
		&brand,
		&priceExVAT,
		&imageURL,
		&variantsJSON,
		&line.Quantity,
		&logoURL,
		&mockupURL,
		&line.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan quote line: %w", err)
	}

	line.Product.Description = description.String
	line.Product.Category = category.String
	line.Product.Brand = brand.String
	line.Product.ImageURL = imageURL.String
	line.LogoURL = logoURL.String
	line.MockupURL = mockupURL.String
	if priceExVAT.Valid {
		price := priceExVAT.Float64
		line.Product.PriceExVAT = &price
	}
	if variantsJSON.Valid && variantsJSON.String != "" {
		if err := json.Unmarshal([]byte(variantsJSON.String), &line.Product.Variants); err != nil {
			log.Printf("⚠️  scanLine: failed to parse variants for line %d: %v", line.ID, err)
		}
	}

	return &line, nil
}

// UpsertLine adds a product to a quote. If a line for the same article
// already exists it is updated in place instead of appended, so the row
// order stays stable. Quantity is coerced to at least 1.
func (r *QuoteRepository) UpsertLine(ctx context.Context, quoteID int64, req *models.AddLineItemRequest) (*models.QuoteLineItem, error) {
	if strings.TrimSpace(req.Product.ArticleID) == "" {
		return nil, &models.ValidationError{Field: "articleId", Reason: "cannot be empty"}
	}

	qty := models.CoerceQuantity(req.Quantity)

	var variantsJSON sql.NullString
	if len(req.Product.Variants) > 0 {
		data, err := json.Marshal(req.Product.Variants)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize variants: %w", err)
		}
		variantsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var priceExVAT sql.NullFloat64
	if req.Product.PriceExVAT != nil {
		priceExVAT = sql.NullFloat64{Float64: *req.Product.PriceExVAT, Valid: true}
	}

	query := `
		INSERT INTO quote_lines
			(quote_id, article_id, product_name, description, category, brand,
			 price_ex_vat, image_url, variants, quantity, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (quote_id, article_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			price_ex_vat = EXCLUDED.price_ex_vat,
			image_url = EXCLUDED.image_url,
			variants = EXCLUDED.variants,
			quantity = EXCLUDED.quantity,
			logo_url = COALESCE(NULLIF(EXCLUDED.logo_url, ''), quote_lines.logo_url)
		RETURNING id, quote_id, article_id, product_name, description, category, brand,
		          price_ex_vat, image_url, variants, quantity, logo_url, mockup_url, created_at
	`

	row := db.DB.QueryRowContext(ctx, query,
		quoteID,
		req.Product.ArticleID,
		req.Product.Name,
		sql.NullString{String: req.Product.Description, Valid: req.Product.Description != ""},
		sql.NullString{String: req.Product.Category, Valid: req.Product.Category != ""},
		sql.NullString{String: req.Product.Brand, Valid: req.Product.Brand != ""},
		priceExVAT,
		sql.NullString{String: req.Product.ImageURL, Valid: req.Product.ImageURL != ""},
		variantsJSON,
		qty,
		req.LogoURL,
	)

	line, err := scanLine(row)
	if err != nil {
		log.Printf("❌ UpsertLine: Error upserting line for article %s: %v", req.Product.ArticleID, err)
		return nil, fmt.Errorf("failed to upsert quote line: %w", err)
	}

	log.Printf("📦 UpsertLine: Quote %d now carries article %s x%d", quoteID, line.Product.ArticleID, line.Quantity)
	return line, nil
}

// UpdateLine updates a line item's quantity and/or mockup URL in place
func (r *QuoteRepository) UpdateLine(ctx context.Context, quoteID int64, lineID int64, req *models.UpdateLineItemRequest) error {
	if req.Quantity == nil && req.MockupURL == nil {
		return &models.ValidationError{Field: "body", Reason: "nothing to update"}
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if req.Quantity != nil {
		sets = append(sets, fmt.Sprintf("quantity = $%d", argPos))
		args = append(args, models.CoerceQuantity(*req.Quantity))
		argPos++
	}
	if req.MockupURL != nil {
		sets = append(sets, fmt.Sprintf("mockup_url = $%d", argPos))
		args = append(args, *req.MockupURL)
		argPos++
	}

	query := fmt.Sprintf("UPDATE quote_lines SET %s WHERE id = $%d AND quote_id = $%d",
		strings.Join(sets, ", "), argPos, argPos+1)
	args = append(args, lineID, quoteID)

	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update quote line: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("line %d not found in quote %d", lineID, quoteID)
	}

	return nil
}

// SetMockupByArticle stores the mockup URL (and the logo it was built
// from) on the line matching an article. A later mockup supersedes the
// earlier one.
func (r *QuoteRepository) SetMockupByArticle(ctx context.Context, quoteID int64, articleID string, mockupURL string, logoURL string) error {
	query := `
		UPDATE quote_lines
		SET mockup_url = $1, logo_url = $2
		WHERE quote_id = $3 AND article_id = $4
	`

	result, err := db.DB.ExecContext(ctx, query, mockupURL, logoURL, quoteID, articleID)
	if err != nil {
		return fmt.Errorf("failed to set mockup: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("article %s not found in quote %d", articleID, quoteID)
	}

	log.Printf("✓ SetMockupByArticle: Quote %d article %s mockup updated", quoteID, articleID)
	return nil
}

// RemoveLine removes one line item from a quote
func (r *QuoteRepository) RemoveLine(ctx context.Context, quoteID int64, lineID int64) error {
	result, err := db.DB.ExecContext(ctx,
		`DELETE FROM quote_lines WHERE id = $1 AND quote_id = $2`, lineID, quoteID)
	if err != nil {
		return fmt.Errorf("failed to remove quote line: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("line %d not found in quote %d", lineID, quoteID)
	}

	log.Printf("📦 RemoveLine: Removed line %d from quote %d", lineID, quoteID)
	return nil
}

// ClearQuote removes every line item from a quote
func (r *QuoteRepository) ClearQuote(ctx context.Context, quoteID int64) error {
	_, err := db.DB.ExecContext(ctx, `DELETE FROM quote_lines WHERE quote_id = $1`, quoteID)
	if err != nil {
		return fmt.Errorf("failed to clear quote: %w", err)
	}

	log.Printf("📦 ClearQuote: Cleared quote %d", quoteID)
	return nil
}
