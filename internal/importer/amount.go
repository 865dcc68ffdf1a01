package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount accepts both "1.234,56" and "1,234.56" styles: whichever of '.'
// and ',' appears last is the decimal separator. A lone ',' is decimal too.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\'':
			return -1
		}

		return r
	}, s)

	dot := strings.LastIndexByte(clean, '.')
	comma := strings.LastIndexByte(clean, ',')

	if comma > dot {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
