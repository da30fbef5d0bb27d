package service

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"offert-mockup-me/models"
)

func TestExportQuoteXLSX(t *testing.T) {
	svc := NewExportService()

	data, err := svc.ExportQuoteXLSX(testQuote(), []models.QuoteLineItem{
		testLine("123456", 3),
	})
	if err != nil {
		t.Fatalf("ExportQuoteXLSX returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Offert" {
		t.Fatalf("sheets = %v, want [Offert]", sheets)
	}

	checks := map[string]string{
		"A1": "Artikelnr",
		"B1": "Benämning",
		"C1": "Antal",
		"A2": "123456",
		"B2": "Profilkeps med tryck",
		"C2": "3",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue("Offert", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}

	// Without a pricing config the margin passes prices through:
	// 100 ex VAT -> 125 inc VAT -> 375 for three units
	if got, _ := f.GetCellValue("Offert", "D2"); got != "125" {
		t.Errorf("unit price cell = %q, want 125", got)
	}
	if got, _ := f.GetCellValue("Offert", "E2"); got != "375" {
		t.Errorf("line total cell = %q, want 375", got)
	}
}

func TestExportQuoteXLSXPricelessLine(t *testing.T) {
	svc := NewExportService()

	line := testLine("123456", 2)
	line.Product.PriceExVAT = nil

	data, err := svc.ExportQuoteXLSX(testQuote(), []models.QuoteLineItem{line})
	if err != nil {
		t.Fatalf("ExportQuoteXLSX returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Offert", "D2"); got != "Pris på förfrågan" {
		t.Errorf("unit price cell = %q, want on-request label", got)
	}
	if got, _ := f.GetCellValue("Offert", "E2"); got != "-" {
		t.Errorf("line total cell = %q, want -", got)
	}
}
