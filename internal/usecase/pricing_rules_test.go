package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preciolens/backend/internal/domain"
)

func amount(t *testing.T, value string) *domain.PriceAmount {
	t.Helper()
	return &domain.PriceAmount{Value: decimal.RequireFromString(value), Currency: "ARS"}
}

func TestPriceCalculator_Compute(t *testing.T) {
	calc := NewPriceCalculator(DefaultMarkup, DefaultRoundingStep)

	tests := []struct {
		reference string
		want      string
	}{
		// 1100 is already a multiple of 50
		{"1000", "1100"},
		// 1101.1 rounds up, never down
		{"1001", "1150"},
		{"0", "0"},
		{"1", "50"},
		{"45.45", "50"},
		{"2345.50", "2600"},
		{"10000", "11000"},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			got, err := calc.Compute(amount(t, tt.reference))
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Value), "got %s, want %s", got.Value, tt.want)
			assert.Equal(t, "ARS", got.Currency)
		})
	}
}

func TestPriceCalculator_NoReference(t *testing.T) {
	calc := NewPriceCalculator(DefaultMarkup, DefaultRoundingStep)

	_, err := calc.Compute(nil)
	assert.ErrorIs(t, err, domain.ErrComputation)
}

func TestNewPriceCalculator_FallsBackOnInvalidRule(t *testing.T) {
	calc := NewPriceCalculator(decimal.NewFromInt(-1), decimal.Zero)

	got, err := calc.Compute(amount(t, "1001"))
	require.NoError(t, err)
	assert.Equal(t, "1150", got.Value.String())
}

func TestPriceCalculator_CustomRule(t *testing.T) {
	calc := NewPriceCalculator(decimal.RequireFromString("0.25"), decimal.NewFromInt(100))

	got, err := calc.Compute(amount(t, "1000"))
	require.NoError(t, err)
	assert.Equal(t, "1300", got.Value.String())
}

func TestAggregate(t *testing.T) {
	reference := &domain.LineItem{ProductName: "ref", Source: "Pricely"}
	stores := []domain.LineItem{
		{ProductName: "b", Source: "B"},
		{ProductName: "a", Source: "A"},
	}

	t.Run("reference first then stores in given order", func(t *testing.T) {
		items := Aggregate(reference, stores)
		require.Len(t, items, 3)
		assert.Equal(t, "Pricely", items[0].Source)
		assert.Equal(t, "B", items[1].Source)
		assert.Equal(t, "A", items[2].Source)
	})

	t.Run("no reference item", func(t *testing.T) {
		items := Aggregate(nil, stores)
		assert.Equal(t, stores, items)
	})

	t.Run("nothing found is empty, not nil", func(t *testing.T) {
		items := Aggregate(nil, nil)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}
