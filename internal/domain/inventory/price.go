package inventory

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
)

// ParsePrice convierte un precio con formato de moneda ("$1,234.50", "USD 12", "12,50") a decimal.
// Precios negativos o vacíos son entrada inválida.
func ParsePrice(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}

	// Coma decimal solo si no hay punto y la coma final va seguida de 1 o 2 dígitos.
	if !strings.Contains(s, ".") {
		if i := strings.LastIndex(s, ","); i >= 0 && len(s)-i-1 <= 2 && strings.Count(s, ",") == 1 {
			s = s[:i] + "." + s[i+1:]
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return d.Round(2), nil
}

// FormatPrice representación canónica usada en auditoría e historial de precios.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
