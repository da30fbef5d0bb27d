package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"offert-mockup-me/models"
	"offert-mockup-me/pricing"
	"offert-mockup-me/utils"
)

// PreviewService renders an HTML preview of an offer and screenshots it to
// per-page PNGs with headless Chrome. The HTML route exists so the sales
// user can eyeball the document before committing to the PDF.
type PreviewService struct {
	baseURL string // base URL for the render endpoint, e.g. "http://localhost:8080"
}

// NewPreviewService creates a new PreviewService instance
func NewPreviewService(baseURL string) *PreviewService {
	return &PreviewService{baseURL: baseURL}
}

// detectChromePath detects the path to Chrome/Chromium executable.
// Checks CHROME_PATH env var first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// previewLine is the template shape for one rendered row
type previewLine struct {
	ArticleID string
	Name      string
	Quantity  int
	ImageURL  string
	UnitPrice string
	LineTotal string
	HasPrice  bool
}

// previewPage groups the rows that fit on one rendered A4 page. The first
// page carries the header and customer block so it holds fewer rows.
type previewPage struct {
	Number int
	First  bool
	Last   bool
	Lines  []previewLine
}

const (
	previewRowsFirstPage = 6
	previewRowsPerPage   = 8
)

func paginatePreviewLines(lines []previewLine) []previewPage {
	var pages []previewPage
	remaining := lines
	capacity := previewRowsFirstPage
	for {
		n := len(remaining)
		if n > capacity {
			n = capacity
		}
		pages = append(pages, previewPage{
			Number: len(pages) + 1,
			First:  len(pages) == 0,
			Lines:  remaining[:n],
		})
		remaining = remaining[n:]
		if len(remaining) == 0 {
			break
		}
		capacity = previewRowsPerPage
	}
	pages[len(pages)-1].Last = true
	return pages
}

// RenderOffertHTML renders the offer preview template for a quote
func (s *PreviewService) RenderOffertHTML(quote *models.Quote, lines []models.QuoteLineItem, totals utils.DocumentTotals, taxRate float64, offerNumber string) (string, error) {
	previewLines := make([]previewLine, 0, len(lines))
	for _, line := range lines {
		imageURL := line.MockupURL
		if imageURL == "" && line.Product.ImageURL != "" {
			if set := ResolveAngleImages(line.Product.ImageURL, ViewFront); len(set.Views) == 1 {
				imageURL = set.Views[0].ShortURL
			}
		}

		unitIncTax := utils.ApplyTax(pricing.GetEngine().UnitPriceWithMargin(DocumentTypeOffert, line.Product.PriceOrZero()), taxRate)
		previewLines = append(previewLines, previewLine{
			ArticleID: line.Product.ArticleID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			ImageURL:  imageURL,
			UnitPrice: utils.FormatSEK(unitIncTax),
			LineTotal: utils.FormatSEK(utils.LineTotal(unitIncTax, line.Quantity)),
			HasPrice:  line.Product.HasPrice(),
		})
	}

	templateData := struct {
		OfferNumber string
		Date        string
		Customer    *models.Quote
		Pages       []previewPage
		Subtotal    string
		Tax         string
		Total       string
		TaxPercent  string
	}{
		OfferNumber: offerNumber,
		Date:        time.Now().Format("2006-01-02"),
		Customer:    quote,
		Pages:       paginatePreviewLines(previewLines),
		Subtotal:    utils.FormatSEK(totals.SubtotalExTax),
		Tax:         utils.FormatSEK(totals.TaxAmount),
		Total:       utils.FormatSEK(totals.TotalIncTax),
		TaxPercent:  fmt.Sprintf("%.0f", taxRate*100),
	}

	templatePath := filepath.Join("templates", "offert.html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// waitForImagesJS waits for fonts plus every <img> to finish loading, each
// bounded at 5 seconds so a dead image URL cannot hang the preview.
const waitForImagesJS = `
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete && img.naturalWidth > 0 && img.naturalHeight > 0) {
						resolve();
						return;
					}
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}))
		]);
	})();
`

// GeneratePreviewPNG navigates the offer render endpoint and captures one
// PNG per .page element. Returns a map of page number to PNG data.
func (s *PreviewService) GeneratePreviewPNG(ctx context.Context, quoteID int64) (map[int][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	// Enable Page domain up front
	if err := chromedp.Run(chromedpCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return page.Enable().Do(ctx)
	})); err != nil {
		log.Printf("⚠️  GeneratePreviewPNG: failed to enable page domain: %v", err)
	}

	renderURL := fmt.Sprintf("%s/offert/render?quoteId=%d", s.baseURL, quoteID)

	// 210mm = 794px, 297mm = 1123px at 96 DPI
	var pageCountVal float64
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 4000), // tall viewport so every page renders
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForImagesJS, nil),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Evaluate(`document.querySelectorAll('.page').length`, &pageCountVal),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	pageCount := int(pageCountVal)
	if pageCount == 0 {
		return nil, fmt.Errorf("no pages found in preview HTML")
	}
	log.Printf("📄 GeneratePreviewPNG: quote=%d pages=%d", quoteID, pageCount)

	showOnlyPage := func(pageNum int) string {
		return fmt.Sprintf(`
			(function() {
				const pages = document.querySelectorAll('.page');
				pages.forEach((page, index) => {
					page.style.display = index === %d - 1 ? 'block' : 'none';
				});
				document.documentElement.style.height = '297mm';
				document.body.style.height = '297mm';
				document.body.style.overflow = 'hidden';
			})();
		`, pageNum)
	}

	pngs := make(map[int][]byte)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		var buf []byte
		err := chromedp.Run(chromedpCtx,
			chromedp.EmulateViewport(794, 1123),
			chromedp.Evaluate(showOnlyPage(pageNum), nil),
			chromedp.Sleep(400*time.Millisecond),
			chromedp.CaptureScreenshot(&buf),
		)
		if err != nil || len(buf) == 0 {
			return nil, fmt.Errorf("failed to capture page %d: %w", pageNum, err)
		}
		pngs[pageNum] = buf
	}

	return pngs, nil
}
