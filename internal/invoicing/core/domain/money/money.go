// Package money implements the fixed-scale decimal arithmetic behind every
// invoice total. All functions are pure and deterministic: the same inputs
// always produce the same outputs at the fixed scale.
//
// Rounding is half-up. decimal.Round rounds half away from zero, which is
// identical to half-up for the non-negative quantities handled here
// (e.g. 250 * 0.0825 = 20.625 rounds to 20.63).
package money

import "github.com/shopspring/decimal"

// CurrencyScale is the number of decimal places for currency amounts.
// Tax rates use RateScale (0.0825 = 8.25%).
const (
	CurrencyScale int32 = 2
	RateScale     int32 = 4
)

// LineAmount returns quantity * rate rounded to the currency scale.
// Quantity < 1 and negative rates are rejected by validation upstream.
func LineAmount(quantity int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(quantity))).Round(CurrencyScale)
}

// Totals is the result of ComputeTotals.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals derives the invoice totals from its line-item amounts:
// subtotal is the rounded sum, taxAmount the rounded subtotal*taxRate, and
// total the rounded sum of both. An empty amounts slice yields all zeros.
func ComputeTotals(amounts []decimal.Decimal, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, a := range amounts {
		subtotal = subtotal.Add(a)
	}
	subtotal = subtotal.Round(CurrencyScale)
	taxAmount := subtotal.Mul(taxRate).Round(CurrencyScale)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount).Round(CurrencyScale),
	}
}
