package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"offert-mockup-me/models"
	"offert-mockup-me/pricing"
	"offert-mockup-me/utils"
)

// Page geometry in millimeters (A4 portrait)
const (
	pageMarginLeft  = 15.0
	pageMarginTop   = 15.0
	pageMarginRight = 15.0
	// Content below this Y triggers a page break at the next checkpoint
	pageBottomLimit = 272.0

	rowImageSize  = 22.0
	lineRowHeight = 26.0
	nameColWidth  = 70.0
)

// DocumentTypeOffert selects the margin convention in the pricing config
const DocumentTypeOffert = "offert"

// OffertService renders the paginated offer document. Every generation
// call builds its own fpdf instance and cursor; nothing is shared across
// concurrent calls.
type OffertService struct {
	loader  ImageLoaderInterface
	storage StorageServiceInterface
}

// NewOffertService creates a new OffertService instance
func NewOffertService(loader ImageLoaderInterface, storage StorageServiceInterface) *OffertService {
	return &OffertService{
		loader:  loader,
		storage: storage,
	}
}

// OffertResult is the finished document plus its identifying metadata
type OffertResult struct {
	PDF         []byte
	FileName    string
	OfferNumber string
	Pages       int
}

// documentCursor tracks the running layout position for one generation
// call: the fpdf Y position is the vertical offset, Page the current page
// index. Scoped to a single Generate call, never reused.
type documentCursor struct {
	pdf  *fpdf.Fpdf
	page int
	// tr maps UTF-8 to the cp1252 the core fonts expect
	tr func(string) string
}

// ensureSpace emits a page break when the projected content height would
// cross the page-bottom limit. Called at fixed checkpoints only (before
// each line-item row, the totals block and the terms block), so a single
// section may slightly overflow rather than be split mid-element.
func (c *documentCursor) ensureSpace(height float64) {
	if c.pdf.GetY()+height > pageBottomLimit {
		c.pdf.AddPage()
		c.pdf.SetY(pageMarginTop)
		c.page++
	}
}

// Generate renders the full offer document for a quote. Sections run
// strictly forward: header, customer, product rows, totals, terms. The
// finished bytes are returned for immediate download and a copy is
// archived to storage asynchronously; archive failure is logged only since
// the caller already holds the document.
func (s *OffertService) Generate(ctx context.Context, quote *models.Quote, lines []models.QuoteLineItem) (*OffertResult, error) {
	if len(lines) == 0 {
		return nil, &models.ValidationError{Field: "quote", Reason: "cannot generate an offer without line items"}
	}

	now := time.Now()
	offerNumber := utils.GenerateOfferNumber(now)
	engine := pricing.GetEngine()
	taxRate := engine.TaxRate()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginLeft, pageMarginTop, pageMarginRight)
	// Breaks happen at section checkpoints, not mid-element
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	cursor := &documentCursor{pdf: pdf, page: 1, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	s.renderHeader(cursor, offerNumber, now)
	s.renderCustomer(cursor, quote)
	priced := s.renderLineItems(ctx, cursor, lines, engine, taxRate)
	s.renderTotals(cursor, priced, taxRate)
	s.renderTerms(cursor)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &models.EncodeError{Err: fmt.Errorf("failed to finalize offer document: %w", err)}
	}

	fileName := utils.OfferFileName(quote.CustomerName, offerNumber)
	result := &OffertResult{
		PDF:         buf.Bytes(),
		FileName:    fileName,
		OfferNumber: offerNumber,
		Pages:       cursor.page,
	}

	// Archive a copy without blocking the download; failure is logged only
	go s.archiveCopy(fileName, result.PDF)

	log.Printf("✅ Generate: Offer %s rendered (%d pages, %d lines) for %s", offerNumber, result.Pages, len(lines), quote.CustomerName)
	return result, nil
}

func (s *OffertService) archiveCopy(fileName string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.storage.Upload(ctx, BucketOffers, fileName, data, "application/pdf", false); err != nil {
		log.Printf("⚠️  archiveCopy: failed to archive %s: %v", fileName, err)
		return
	}
	log.Printf("✓ archiveCopy: Archived %s", fileName)
}

// renderHeader draws the document title, offer number and date
func (s *OffertService) renderHeader(c *documentCursor, offerNumber string, now time.Time) {
	pdf := c.pdf
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "OFFERT", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 5, fmt.Sprintf("Offertnummer: %s", offerNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Datum: %s", now.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

// renderCustomer draws the customer block
func (s *OffertService) renderCustomer(c *documentCursor, quote *models.Quote) {
	pdf := c.pdf
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Kund", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, c.tr(quote.CustomerName), "", 1, "L", false, 0, "")
	if quote.CustomerEmail != "" {
		pdf.CellFormat(0, 5, quote.CustomerEmail, "", 1, "L", false, 0, "")
	}
	if quote.CustomerPhone != "" {
		pdf.CellFormat(0, 5, quote.CustomerPhone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// renderLineItems draws the product table, one row per line item, with the
// page-break checkpoint before every row. Returns the priced lines feeding
// the totals block.
func (s *OffertService) renderLineItems(ctx context.Context, c *documentCursor, lines []models.QuoteLineItem, engine *pricing.Engine, taxRate float64) []utils.PricedLine {
	pdf := c.pdf

	// Column header
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(24, 7, "Artikelnr", "B", 0, "L", true, 0, "")
	pdf.CellFormat(nameColWidth, 7, c.tr("Benämning"), "B", 0, "L", true, 0, "")
	pdf.CellFormat(14, 7, "Antal", "B", 0, "R", true, 0, "")
	pdf.CellFormat(26, 7, c.tr("À-pris"), "B", 0, "R", true, 0, "")
	pdf.CellFormat(26, 7, "Summa", "B", 1, "R", true, 0, "")

	priced := make([]utils.PricedLine, 0, len(lines))
	for i, line := range lines {
		c.ensureSpace(lineRowHeight)
		s.renderLineRow(ctx, c, i, &line, engine, taxRate)

		marginalExVAT := engine.UnitPriceWithMargin(DocumentTypeOffert, line.Product.PriceOrZero())
		priced = append(priced, utils.PricedLine{PriceExVAT: marginalExVAT, Quantity: line.Quantity})
	}

	return priced
}

// renderLineRow draws one product row: image (mockup or resolved front
// view), article id, name on at most two lines, quantity and prices.
func (s *OffertService) renderLineRow(ctx context.Context, c *documentCursor, index int, line *models.QuoteLineItem, engine *pricing.Engine, taxRate float64) {
	pdf := c.pdf
	rowTop := pdf.GetY()

	s.embedRowImage(ctx, c, index, line, rowTop)

	textLeft := pageMarginLeft + rowImageSize + 4
	pdf.SetXY(textLeft, rowTop+2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(24, 5, line.Product.ArticleID, "", 0, "L", false, 0, "")

	// Name wraps across at most two lines; anything beyond is dropped
	nameLines := wrapName(pdf, line.Product.Name, nameColWidth)
	pdf.CellFormat(nameColWidth, 5, c.tr(nameLines[0]), "", 0, "L", false, 0, "")

	unitIncTax := utils.ApplyTax(engine.UnitPriceWithMargin(DocumentTypeOffert, line.Product.PriceOrZero()), taxRate)
	unitLabel := utils.FormatSEK(unitIncTax)
	totalLabel := utils.FormatSEK(utils.LineTotal(unitIncTax, line.Quantity))
	if !line.Product.HasPrice() {
		unitLabel = c.tr("Pris på förfrågan")
		totalLabel = "-"
	}

	pdf.CellFormat(14, 5, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 5, unitLabel, "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 5, totalLabel, "", 1, "R", false, 0, "")

	if len(nameLines) > 1 {
		pdf.SetXY(textLeft+24, pdf.GetY())
		pdf.CellFormat(nameColWidth, 5, c.tr(nameLines[1]), "", 1, "L", false, 0, "")
	}

	// Advance past both the text block and the image
	bottom := rowTop + rowImageSize + 3
	if pdf.GetY() > bottom {
		bottom = pdf.GetY()
	}
	pdf.SetXY(pageMarginLeft, bottom)
	pdf.SetDrawColor(225, 225, 225)
	pdf.Line(pageMarginLeft, bottom, 210-pageMarginRight, bottom)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetY(bottom + 2)
}

// embedRowImage loads and draws the row's mockup (or resolved product
// view) inside the 5-second bound. Short URL first, long URL second, then
// a placeholder glyph; a missing image never aborts generation.
func (s *OffertService) embedRowImage(ctx context.Context, c *documentCursor, index int, line *models.QuoteLineItem, rowTop float64) {
	pdf := c.pdf

	var candidates []string
	if line.MockupURL != "" {
		candidates = []string{line.MockupURL}
	} else if line.Product.ImageURL != "" {
		// Consumer-side fallback: abbreviated view URL first, full name second
		set := ResolveAngleImages(line.Product.ImageURL, ViewFront)
		if len(set.Views) == 1 {
			candidates = []string{set.Views[0].ShortURL, set.Views[0].LongURL}
		}
	}

	for _, url := range candidates {
		data, format, err := s.loader.LoadBytes(ctx, url, DefaultLoadTimeout)
		if err != nil {
			log.Printf("⚠️  embedRowImage: failed to load %s for article %s: %v", url, line.Product.ArticleID, err)
			continue
		}

		name := fmt.Sprintf("line%d_p%d", index, c.page)
		opts := fpdf.ImageOptions{ImageType: strings.ToUpper(format), ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, pageMarginLeft, rowTop+1, rowImageSize, rowImageSize, false, opts, 0, "")
		return
	}

	if len(candidates) > 0 {
		// Placeholder glyph where the image would have been
		pdf.SetDrawColor(200, 200, 200)
		pdf.Rect(pageMarginLeft, rowTop+1, rowImageSize, rowImageSize, "D")
		pdf.SetFont("Helvetica", "", 14)
		pdf.SetTextColor(180, 180, 180)
		pdf.SetXY(pageMarginLeft, rowTop+1+rowImageSize/2-3)
		pdf.CellFormat(rowImageSize, 6, c.tr("×"), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetDrawColor(0, 0, 0)
	}
}

// renderTotals draws the summary block with subtotal, tax and total.
// Checkpoint: the whole block moves to a fresh page if it would not fit.
func (s *OffertService) renderTotals(c *documentCursor, priced []utils.PricedLine, taxRate float64) {
	c.ensureSpace(30)
	pdf := c.pdf

	totals := utils.CalculateDocumentTotals(priced, taxRate)
	labelX := 210 - pageMarginRight - 80

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(labelX)
	pdf.CellFormat(50, 6, "Summa exkl. moms", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, utils.FormatSEK(totals.SubtotalExTax), "", 1, "R", false, 0, "")

	pdf.SetX(labelX)
	pdf.CellFormat(50, 6, fmt.Sprintf("Moms (%.0f%%)", taxRate*100), "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, utils.FormatSEK(totals.TaxAmount), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(labelX)
	pdf.CellFormat(50, 7, "Att betala", "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, utils.FormatSEK(totals.TotalIncTax), "T", 1, "R", false, 0, "")
}

// renderTerms draws the closing terms block.
// Checkpoint: moves whole to the next page if it would overflow.
func (s *OffertService) renderTerms(c *documentCursor) {
	c.ensureSpace(34)
	pdf := c.pdf

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Villkor", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	terms := []string{
		"Offerten är giltig i 30 dagar från offertdatum.",
		"Priserna anges inklusive moms om inget annat anges.",
		"Tryckkostnad för logotyp ingår. Korrektur skickas före produktion.",
		"Leveranstid 2-3 veckor efter godkänt korrektur.",
	}
	for _, term := range terms {
		pdf.CellFormat(0, 5, c.tr(term), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

// wrapName splits a product name to fit the name column, keeping at most
// two lines. Text beyond the second line is truncated, not overflowed.
func wrapName(pdf *fpdf.Fpdf, name string, width float64) []string {
	split := pdf.SplitText(name, width)
	if len(split) == 0 {
		return []string{""}
	}
	if len(split) > 2 {
		split = split[:2]
	}
	return split
}
