package purchase

import "github.com/shopspring/decimal"

// DeriveAmounts splits a tax-inclusive amount into its HT (tax
// exclusive) and VAT parts for a given rate:
//
//	ht  = round(ttc / (1 + rate/100), 2)
//	vat = round(ttc - ht, 2)
//
// Both parts are derived, never stored, so they cannot drift from the
// authoritative TTC amount.
func DeriveAmounts(ttc, rate float64) (ht, vat float64) {
	ttcD := decimal.NewFromFloat(ttc)
	divisor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(rate).Div(decimal.NewFromInt(100)))

	htD := ttcD.Div(divisor).Round(2)
	vatD := ttcD.Sub(htD).Round(2)

	ht, _ = htD.Float64()
	vat, _ = vatD.Float64()
	return ht, vat
}
