// Package pricing converts between locale-formatted price text and exact amounts.
//
// Prices follow the es-AR convention: "." groups thousands and "," separates
// decimals, with an optional leading "$" symbol ("$ 12.345,67").
package pricing

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/preciolens/backend/internal/domain"
)

// Currency tags every normalized amount.
var Currency = currency.MustParseISO("ARS")

// Symbol prefixes every formatted amount.
const Symbol = "$"

var localePriceRegex = regexp.MustCompile(`^(\d{1,3}(\.\d{3})+|\d+)(,\d+)?$`)

var digitRegex = regexp.MustCompile(`\d`)

// NewAmount tags a decimal value with the supported currency.
// Negative values are rejected.
func NewAmount(value decimal.Decimal) (domain.PriceAmount, error) {
	if value.IsNegative() {
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "negative amount %s", value)
	}
	return domain.PriceAmount{Value: value, Currency: Currency.String()}, nil
}

// Parse normalizes locale-formatted price text such as "$ 12.345,67".
func Parse(text string) (domain.PriceAmount, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	cleaned = strings.ReplaceAll(cleaned, Currency.String(), "")
	cleaned = strings.ReplaceAll(cleaned, Symbol, "")

	if cleaned == "" {
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "empty price text %q", text)
	}
	if !digitRegex.MatchString(cleaned) {
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "no digits in %q", text)
	}
	if !localePriceRegex.MatchString(cleaned) {
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "malformed separators in %q", text)
	}

	plain := strings.ReplaceAll(cleaned, ".", "")
	plain = strings.Replace(plain, ",", ".", 1)

	value, err := decimal.NewFromString(plain)
	if err != nil {
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "%q: %v", text, err)
	}
	return NewAmount(value)
}

// ParseValue normalizes a price column value as returned by a database driver.
// Text values are read as plain SQL decimals first ("1234.5000") and fall back
// to the locale format.
func ParseValue(v any) (domain.PriceAmount, error) {
	switch x := v.(type) {
	case nil:
		return domain.PriceAmount{}, errors.Wrap(domain.ErrPriceParse, "null price")
	case int64:
		return NewAmount(decimal.NewFromInt(x))
	case int:
		return NewAmount(decimal.NewFromInt(int64(x)))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "non-finite price %v", x)
		}
		return NewAmount(decimal.NewFromFloat(x))
	case float32:
		return ParseValue(float64(x))
	case decimal.Decimal:
		return NewAmount(x)
	case []byte:
		return parseColumnText(string(x))
	case string:
		return parseColumnText(x)
	default:
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrPriceParse, "unsupported price type %T", v)
	}
}

func parseColumnText(s string) (domain.PriceAmount, error) {
	if value, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		return NewAmount(value)
	}
	return Parse(s)
}

// Format renders an amount as display text, e.g. "$ 1.150,00".
// The decimal is formatted exactly, whatever its magnitude.
func Format(amount domain.PriceAmount) string {
	fixed := amount.Value.StringFixed(2)
	cents := fixed[len(fixed)-2:]

	grouped := humanize.BigComma(amount.Value.Round(2).Truncate(0).BigInt())
	grouped = strings.ReplaceAll(grouped, ",", ".")

	return Symbol + " " + grouped + "," + cents
}

// FormatOrMarker formats amount, or returns the parse error marker when it is nil.
func FormatOrMarker(amount *domain.PriceAmount) string {
	if amount == nil {
		return domain.PriceParseErrorMarker
	}
	return Format(*amount)
}
