package pricing

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"offert-mockup-me/utils"
)

// Margin convention constants
const (
	MarginModePercent    = "percent"
	MarginModeMultiplier = "multiplier"
)

// PricingConfig represents the pricing configuration structure
type PricingConfig struct {
	Currency      string                  `json:"currency"`
	TaxRate       float64                 `json:"taxRate"`
	DocumentTypes map[string]MarginConfig `json:"documentTypes"`
}

// MarginConfig selects the margin convention for one document type.
// Mode "percent" treats Value as a percent markup (25 -> price * 1.25);
// mode "multiplier" treats Value as a factor (1.25 -> price * 1.25).
// The two conventions stay explicit per document type instead of being
// inferred from the value's magnitude.
type MarginConfig struct {
	Mode  string  `json:"mode"`
	Value float64 `json:"value"`
}

// Engine handles margin and tax resolution based on JSON configuration
type Engine struct {
	config *PricingConfig
}

var engineInstance *Engine

// NewEngine creates a new pricing engine instance
func NewEngine(configPath string) (*Engine, error) {
	if engineInstance != nil {
		return engineInstance, nil
	}

	// Resolve config path
	if !filepath.IsAbs(configPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		configPath = filepath.Join(wd, configPath)
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing config: %w", err)
	}

	// Parse JSON
	var config PricingConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse pricing config: %w", err)
	}

	// Validate config
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}

	engine := &Engine{
		config: &config,
	}

	engineInstance = engine
	log.Printf("✅ PricingEngine: Successfully loaded pricing config from %s", configPath)
	return engine, nil
}

func validateConfig(config *PricingConfig) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if config.TaxRate < 0 {
		return fmt.Errorf("taxRate must be non-negative")
	}
	for docType, margin := range config.DocumentTypes {
		if margin.Mode != MarginModePercent && margin.Mode != MarginModeMultiplier {
			return fmt.Errorf("document type %q has unknown margin mode %q", docType, margin.Mode)
		}
	}
	return nil
}

// GetEngine returns the singleton pricing engine instance
func GetEngine() *Engine {
	return engineInstance
}

// TaxRate returns the configured tax rate, falling back to the standard rate
func (e *Engine) TaxRate() float64 {
	if e == nil || e.config == nil || e.config.TaxRate == 0 {
		return utils.DefaultTaxRate
	}
	return e.config.TaxRate
}

// Currency returns the configured currency code
func (e *Engine) Currency() string {
	if e == nil || e.config == nil {
		return "SEK"
	}
	return e.config.Currency
}

// UnitPriceWithMargin resolves the margin convention for a document type
// and applies it to an ex-VAT price. Unknown document types get the price
// unchanged (margin 0 / factor 1 are equivalent here).
func (e *Engine) UnitPriceWithMargin(docType string, priceExVAT float64) float64 {
	if e == nil || e.config == nil {
		return priceExVAT
	}

	margin, exists := e.config.DocumentTypes[docType]
	if !exists {
		return priceExVAT
	}

	switch margin.Mode {
	case MarginModeMultiplier:
		return utils.UnitPriceWithMultiplier(priceExVAT, margin.Value)
	default:
		return utils.UnitPriceWithMarginPercent(priceExVAT, margin.Value)
	}
}
