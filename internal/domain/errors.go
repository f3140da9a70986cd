package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInvalidReason         = errors.New("motivo de ajuste inválido")
	ErrNegativeStockRejected = errors.New("el ajuste dejaría el stock en negativo")
	ErrInvalidStatus         = errors.New("estado de alerta inválido")
	ErrDuplicateIdentifier   = errors.New("identificador de ítem duplicado")
	ErrStorageFailure        = errors.New("fallo de almacenamiento")
)

// NegativeStockError detalla un ajuste rechazado para que la UI pueda mostrar los valores.
type NegativeStockError struct {
	Current   int // cantidad en mano al momento de la lectura bloqueada
	Delta     int // delta solicitado
	Resulting int // cantidad que habría quedado
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("%s: actual=%d, delta=%d, resultado=%d",
		ErrNegativeStockRejected.Error(), e.Current, e.Delta, e.Resulting)
}

// Is permite errors.Is(err, ErrNegativeStockRejected).
func (e *NegativeStockError) Is(target error) bool {
	return target == ErrNegativeStockRejected
}

// StorageError envuelve un fallo de la base (begin/commit/consulta) con la operación que falló.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageFailure.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorageFailure) sin perder la causa original.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// NewStorageError construye un StorageError; devuelve nil si err es nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
