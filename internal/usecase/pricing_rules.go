package usecase

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/preciolens/backend/internal/domain"
	"github.com/preciolens/backend/internal/infrastructure/pricing"
)

// Default business rule: 10% markup, rounded up to the next multiple of 50.
var (
	DefaultMarkup       = decimal.RequireFromString("0.10")
	DefaultRoundingStep = decimal.NewFromInt(50)
)

// PriceCalculator derives a suggested resale price from a reference price
type PriceCalculator struct {
	markup decimal.Decimal
	step   decimal.Decimal
}

// NewPriceCalculator creates a calculator; a non-positive step falls back to the default
func NewPriceCalculator(markup, step decimal.Decimal) PriceCalculator {
	if markup.IsNegative() {
		markup = DefaultMarkup
	}
	if !step.IsPositive() {
		step = DefaultRoundingStep
	}
	return PriceCalculator{markup: markup, step: step}
}

// Compute applies the markup and rounds up to a multiple of the step.
// A nil reference means the reference price was unusable.
func (c PriceCalculator) Compute(reference *domain.PriceAmount) (domain.PriceAmount, error) {
	if reference == nil {
		return domain.PriceAmount{}, domain.ErrComputation
	}

	raw := reference.Value.Mul(decimal.NewFromInt(1).Add(c.markup))
	rounded := raw.Div(c.step).Ceil().Mul(c.step)

	amount, err := pricing.NewAmount(rounded)
	if err != nil {
		return domain.PriceAmount{}, errors.Wrapf(domain.ErrComputation, "%v", err)
	}
	return amount, nil
}

// Aggregate puts the reference item first, then store items in fan-out order.
func Aggregate(reference *domain.LineItem, storeItems []domain.LineItem) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(storeItems)+1)
	if reference != nil {
		items = append(items, *reference)
	}
	return append(items, storeItems...)
}
