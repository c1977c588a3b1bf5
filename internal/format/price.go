// Package format は価格表示のフォーマット。
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultSymbol = "Rp"

// PriceFormatter はロケールに合わせて桁区切りし、通貨記号を前に付ける
type PriceFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewPriceFormatter は不正なlocaleなら id（インドネシア）にフォールバックする
func NewPriceFormatter(locale, symbol string) *PriceFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &PriceFormatter{printer: message.NewPrinter(tag), symbol: symbol}
}

func (f *PriceFormatter) Format(amount int64) string {
	if amount < 0 {
		return "-" + f.symbol + f.printer.Sprintf("%d", -amount)
	}
	return f.symbol + f.printer.Sprintf("%d", amount)
}
