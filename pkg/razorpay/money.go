package razorpay

import "github.com/shopspring/decimal"

// AmountMinor converts a major-unit price to the currency's minor unit
// (paise for INR). Prices are stored with two decimal places so the shift
// is exact.
func AmountMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
