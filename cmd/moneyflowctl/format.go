package main

import (
	"github.com/Rhymond/go-money"

	"moneyflow/internal/core"
)

// formatMoney renders m with the symbol, separators and fraction digits of
// the ISO currency code. Unknown codes fall back to BRL.
func formatMoney(m core.Money, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.BRL)
	}
	minor := m.Decimal().Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
