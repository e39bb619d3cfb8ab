package domain

import "github.com/shopspring/decimal"

// Placeholders used by the reference scraper when a field is missing from the page.
const (
	NameNotFound  = "name not found"
	PriceNotFound = "price not found"
)

// Markers shown instead of a price when a value could not be produced.
const (
	PriceParseErrorMarker  = "could not parse price"
	CalculationErrorMarker = "calculation error"
)

// PriceAmount is a normalized, non-negative price in a known currency.
type PriceAmount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// LineItem is one comparable product row, either from the reference source or from a store.
type LineItem struct {
	EAN         string       `json:"ean"`
	ProductName string       `json:"productName"`
	Price       *PriceAmount `json:"price,omitempty"`
	PriceText   string       `json:"priceText"`
	Source      string       `json:"source"`
}

// ScrapeResult holds the fields extracted from the reference product page.
// Each field is independently optional; missing ones carry a placeholder.
type ScrapeResult struct {
	ProductName  string `json:"productName"`
	RawPriceText string `json:"rawPriceText"`
	ImageURL     string `json:"imageUrl"`
	Description  string `json:"description"`
}

// HasName reports whether the product name was found on the page.
func (r *ScrapeResult) HasName() bool {
	return r != nil && r.ProductName != "" && r.ProductName != NameNotFound
}

// HasPrice reports whether a price text was found on the page.
func (r *ScrapeResult) HasPrice() bool {
	return r != nil && r.RawPriceText != "" && r.RawPriceText != PriceNotFound
}

// ScrapeDetails are the presentation-only extras of the reference page.
type ScrapeDetails struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

// Resolution is the merged answer for one EAN lookup.
type Resolution struct {
	EAN             string        `json:"ean"`
	Items           []LineItem    `json:"items"`
	SuggestedPrice  string        `json:"suggestedPrice"`
	SuggestedAmount *PriceAmount  `json:"suggestedAmount,omitempty"`
	ScrapeDetails   ScrapeDetails `json:"scrapeDetails"`
	ScrapeError     string        `json:"scrapeError,omitempty"`
}
