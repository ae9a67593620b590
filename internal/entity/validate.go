package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxPrice mirrors the listings price column, NUMERIC(8, 2): at most six
// integer digits, so any price must be strictly below 10^6.
var maxPrice = decimal.New(1, 6)

// ValidateProductName enforces the product model rules: name is mandatory
// and non-empty. Uniqueness is enforced by the store.
func ValidateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Validationf("product name must not be empty")
	}
	return nil
}

// ValidateListing enforces the listing model rules on create and update.
func ValidateListing(l *Listing) error {
	if strings.TrimSpace(l.Title) == "" {
		return Validationf("listing title must not be empty")
	}
	if l.Price.IsNegative() {
		return Validationf("listing price must not be negative")
	}
	if !l.Price.LessThan(maxPrice) {
		return Validationf("listing price out of range")
	}
	if l.Quantity < 0 {
		return Validationf("listing quantity must not be negative")
	}
	return nil
}
