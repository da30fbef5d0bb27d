package service

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"offert-mockup-me/models"
	"offert-mockup-me/pricing"
	"offert-mockup-me/utils"
)

// ExportService turns a quote into an XLSX workbook for sales users who
// want to rework the numbers outside the offer document
type ExportService struct{}

// NewExportService creates a new ExportService instance
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportQuoteXLSX renders the quote's line items and totals to a workbook.
// Pricing follows the same margin and tax treatment as the offer document.
func (s *ExportService) ExportQuoteXLSX(quote *models.Quote, lines []models.QuoteLineItem) ([]byte, error) {
	engine := pricing.GetEngine()
	taxRate := engine.TaxRate()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("⚠️  ExportQuoteXLSX: failed to close workbook: %v", err)
		}
	}()

	sheet := "Offert"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{"Artikelnr", "Benämning", "Antal", "À-pris inkl. moms", "Summa"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "D", "E", 18)

	priced := make([]utils.PricedLine, 0, len(lines))
	row := 2
	for _, line := range lines {
		marginalExVAT := engine.UnitPriceWithMargin(DocumentTypeOffert, line.Product.PriceOrZero())
		unitIncTax := utils.ApplyTax(marginalExVAT, taxRate)

		values := []interface{}{
			line.Product.ArticleID,
			line.Product.Name,
			line.Quantity,
			unitIncTax,
			utils.LineTotal(unitIncTax, line.Quantity),
		}
		if !line.Product.HasPrice() {
			values[3] = "Pris på förfrågan"
			values[4] = "-"
		}

		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}

		priced = append(priced, utils.PricedLine{PriceExVAT: marginalExVAT, Quantity: line.Quantity})
		row++
	}

	totals := utils.CalculateDocumentTotals(priced, taxRate)
	summary := [][2]interface{}{
		{"Summa exkl. moms", totals.SubtotalExTax},
		{fmt.Sprintf("Moms (%.0f%%)", taxRate*100), totals.TaxAmount},
		{"Att betala", totals.TotalIncTax},
	}
	row++
	for _, entry := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(4, row)
		valueCell, _ := excelize.CoordinatesToCellName(5, row)
		if err := f.SetCellValue(sheet, labelCell, entry[0]); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
		if err := f.SetCellValue(sheet, valueCell, entry[1]); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
