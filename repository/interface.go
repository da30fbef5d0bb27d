package repository

import (
	"context"

	"offert-mockup-me/models"
)

// QuoteRepositoryInterface defines the contract for quote persistence
type QuoteRepositoryInterface interface {
	CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, quoteID int64) (*models.Quote, error)
	GetQuoteLines(ctx context.Context, quoteID int64) ([]models.QuoteLineItem, error)
	UpsertLine(ctx context.Context, quoteID int64, req *models.AddLineItemRequest) (*models.QuoteLineItem, error)
	UpdateLine(ctx context.Context, quoteID int64, lineID int64, req *models.UpdateLineItemRequest) error
	SetMockupByArticle(ctx context.Context, quoteID int64, articleID string, mockupURL string, logoURL string) error
	RemoveLine(ctx context.Context, quoteID int64, lineID int64) error
	ClearQuote(ctx context.Context, quoteID int64) error
}
