package inventory

import "github.com/shopspring/decimal"

// criticalRatio fracción del umbral bajo la cual la alerta se marca crítica.
var criticalRatio = decimal.NewFromFloat(0.5)

// IsCritical: sin existencias, o menos de la mitad del umbral.
// Se usa decimal para que umbrales impares (p. ej. 7 → 3.5) no se redondeen.
func IsCritical(quantity, threshold int) bool {
	if quantity == 0 {
		return true
	}
	limit := decimal.NewFromInt(int64(threshold)).Mul(criticalRatio)
	return decimal.NewFromInt(int64(quantity)).LessThan(limit)
}

// idealStockFactor stock objetivo al reponer, relativo al umbral.
var idealStockFactor = decimal.NewFromFloat(1.5)

// SuggestedOrder stock ideal (umbral × 1.5, redondeado hacia arriba) y unidades a pedir para alcanzarlo.
func SuggestedOrder(quantity, threshold int) (ideal, suggested int) {
	ideal = int(decimal.NewFromInt(int64(threshold)).Mul(idealStockFactor).Ceil().IntPart())
	suggested = ideal - quantity
	if suggested < 0 {
		suggested = 0
	}
	return ideal, suggested
}
