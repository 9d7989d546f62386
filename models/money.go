package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places kept for prices and totals.
const MoneyPlaces = 2

// RoundMoney rounds half to even at MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}
