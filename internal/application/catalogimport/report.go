package catalogimport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Row fila válida del CSV.
type Row struct {
	Line         int
	ExternalID   string
	Name         string
	Price        decimal.Decimal
	Quantity     int
	ReorderLevel *int
	Category     string
}

type outcome int

const (
	outcomeCreated outcome = iota + 1
	outcomeUpdated
	outcomeUnchanged
)

// Failure fila rechazada.
type Failure struct {
	Line       int
	ExternalID string
	Reason     string
}

// Report resultado de una importación.
type Report struct {
	Rows      int
	Created   int
	Updated   int
	Unchanged int
	Failures  []Failure
}

func (r *Report) count(o outcome) {
	switch o {
	case outcomeCreated:
		r.Created++
	case outcomeUpdated:
		r.Updated++
	case outcomeUnchanged:
		r.Unchanged++
	}
}

func (r *Report) fail(line int, externalID string, err error) {
	r.Failures = append(r.Failures, Failure{Line: line, ExternalID: externalID, Reason: err.Error()})
}

// String reporte legible para la salida del CLI.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("=== Reporte de importación ===\n")
	fmt.Fprintf(&b, "Filas:         %d\n", r.Rows)
	fmt.Fprintf(&b, "Creados:       %d\n", r.Created)
	fmt.Fprintf(&b, "Actualizados:  %d\n", r.Updated)
	fmt.Fprintf(&b, "Sin cambios:   %d\n", r.Unchanged)
	fmt.Fprintf(&b, "Con error:     %d\n", len(r.Failures))
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  línea %d (%s): %s\n", f.Line, f.ExternalID, f.Reason)
	}
	b.WriteString("==============================\n")
	return b.String()
}
