package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount the way the storefront displays prices,
// e.g. "1.320.000 ₫". Amounts are rounded to whole dong.
func FormatVND(amount decimal.Decimal) string {
	return vndPrinter.Sprintf("%d ₫", amount.Round(0).IntPart())
}

// OrderNumber formats the human-readable order number
func OrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%04d-%06d", year, seq)
}
