package utils

import (
	"fmt"
	"regexp"
	"time"
)

var nonAlphanumRegex = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeCustomerName strips every character outside [A-Za-z0-9] to '_'
// so customer names are safe inside stored filenames.
// Example: "Svensson Bygg AB" -> "Svensson_Bygg_AB"
func SanitizeCustomerName(name string) string {
	return nonAlphanumRegex.ReplaceAllString(name, "_")
}

// LogoFileName builds the storage name for an uploaded logo:
// logo_<productId>_<epochMillis>.<ext>
func LogoFileName(productID string, ext string, now time.Time) string {
	return fmt.Sprintf("logo_%s_%d.%s", productID, now.UnixMilli(), ext)
}

// MockupFileName builds the timestamp-qualified storage name for a mockup:
// mockup_<productId>_<epochMillis>.png
func MockupFileName(productID string, now time.Time) string {
	return fmt.Sprintf("mockup_%s_%d.png", productID, now.UnixMilli())
}

// MockupSlotFileName builds the single-slot storage name for a mockup that
// is overwritten on each regeneration: <productId>-mockup.png
func MockupSlotFileName(productID string) string {
	return fmt.Sprintf("%s-mockup.png", productID)
}

// OfferFileName builds the offer document filename:
// Offert_<sanitizedCustomerName>_<OFF-XXXXXX>.pdf
func OfferFileName(customerName string, offerNumber string) string {
	return fmt.Sprintf("Offert_%s_%s.pdf", SanitizeCustomerName(customerName), offerNumber)
}

// GenerateOfferNumber derives an offer number from the low-order digits of
// the current timestamp: OFF- followed by six digits. Uniqueness is
// best-effort only; two calls inside the same millisecond window collide.
func GenerateOfferNumber(now time.Time) string {
	return fmt.Sprintf("OFF-%06d", now.UnixMilli()%1000000)
}
