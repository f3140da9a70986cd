package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RefSource indica cómo se identifica un ítem del catálogo.
type RefSource string

const (
	RefGenerated RefSource = "generated" // código generado al crear el ítem manualmente
	RefExternal  RefSource = "external"  // identificador externo (ISBN, código del proveedor) de la importación
)

// ItemRef es la referencia a un ítem: un único tipo con etiqueta de origen, así el ledger
// y el motor de alertas se escriben una sola vez contra la abstracción.
type ItemRef struct {
	Source RefSource
	Code   string
}

// Generated construye una referencia a un ítem con código generado.
func Generated(code string) ItemRef { return ItemRef{Source: RefGenerated, Code: code} }

// External construye una referencia a un ítem importado.
func External(code string) ItemRef { return ItemRef{Source: RefExternal, Code: code} }

// ParseRefSource valida el origen recibido desde la capa HTTP o CLI.
func ParseRefSource(s string) (RefSource, bool) {
	switch RefSource(strings.ToLower(strings.TrimSpace(s))) {
	case RefGenerated:
		return RefGenerated, true
	case RefExternal:
		return RefExternal, true
	}
	return "", false
}

// Valid indica si la referencia tiene origen conocido y código no vacío.
func (r ItemRef) Valid() bool {
	if strings.TrimSpace(r.Code) == "" {
		return false
	}
	return r.Source == RefGenerated || r.Source == RefExternal
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%s", r.Source, r.Code)
}

// DefaultReorderLevel umbral de reorden cuando no se indica al crear el ítem.
const DefaultReorderLevel = 10

// Item representa un libro o material del catálogo con su cantidad en mano.
// Quantity solo se modifica a través del ledger de stock y nunca es negativa.
type Item struct {
	ID           int64 // identificador sustituto (llave de auditoría y alertas)
	Ref          ItemRef
	Name         string
	Price        decimal.Decimal
	Quantity     int
	ReorderLevel int
	Grade        string // derivado del nombre, solo informativo
	Category     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BelowThreshold indica si el ítem rompe su umbral de reorden (umbral 0 = sin seguimiento).
func (i *Item) BelowThreshold() bool {
	return i.ReorderLevel > 0 && i.Quantity < i.ReorderLevel
}
