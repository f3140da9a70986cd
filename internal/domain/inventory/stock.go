package inventory

import (
	"math"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
)

// MaxQuantity tope de la columna items.quantity (INT).
const MaxQuantity = math.MaxInt32

// AdjustMode forma en que el llamador expresa un ajuste antes de convertirlo a delta.
type AdjustMode string

const (
	ModeAdd    AdjustMode = "add"
	ModeRemove AdjustMode = "remove"
	ModeSet    AdjustMode = "set"
)

// ComputeDelta traduce un modo de ajuste a delta con signo.
// En ModeSet el delta se calcula contra current, la foto leída al recibir la petición.
func ComputeDelta(mode AdjustMode, amount, current int) (int, error) {
	if amount > MaxQuantity {
		return 0, domain.ErrInvalidInput
	}
	switch mode {
	case ModeAdd:
		if amount <= 0 {
			return 0, domain.ErrInvalidInput
		}
		return amount, nil
	case ModeRemove:
		if amount <= 0 {
			return 0, domain.ErrInvalidInput
		}
		return -amount, nil
	case ModeSet:
		if amount < 0 {
			return 0, domain.ErrInvalidInput
		}
		return amount - current, nil
	}
	return 0, domain.ErrInvalidInput
}

// ValidDelta indica si el delta cabe en el rango de la columna de cantidad.
func ValidDelta(delta int) bool {
	return delta >= -MaxQuantity && delta <= MaxQuantity
}

// ApplyDelta calcula la nueva cantidad; rechaza el resultado negativo con los tres valores.
// Cero es un resultado válido. Un delta o resultado fuera de rango es ErrInvalidInput.
func ApplyDelta(current, delta int) (int, error) {
	if !ValidDelta(delta) || current < 0 || current > MaxQuantity {
		return current, domain.ErrInvalidInput
	}
	next := current + delta
	if next > MaxQuantity {
		return current, domain.ErrInvalidInput
	}
	if next < 0 {
		return current, &domain.NegativeStockError{Current: current, Delta: delta, Resulting: next}
	}
	return next, nil
}
