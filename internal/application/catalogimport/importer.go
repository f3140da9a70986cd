// Package catalogimport carga ítems y cantidades desde un CSV de catálogo externo.
package catalogimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	domaininv "github.com/jhoicas/bookstore-inventory/internal/domain/inventory"
)

// Columnas esperadas; las dos últimas son opcionales.
var header = []string{"external_id", "name", "price", "quantity", "reorder_level", "category"}

// Options parámetros de una corrida de importación.
type Options struct {
	Charset string // utf-8 (defecto), latin1 / iso-8859-1, windows-1252
	ActorID string
}

// Importer crea los ítems que faltan y fija su cantidad con un ajuste "set".
type Importer struct {
	catalog *inventory.CatalogUseCase
	ledger  *inventory.StockLedgerUseCase
	log     zerolog.Logger
}

func NewImporter(catalog *inventory.CatalogUseCase, ledger *inventory.StockLedgerUseCase, log zerolog.Logger) *Importer {
	return &Importer{catalog: catalog, ledger: ledger, log: log}
}

// decoderFor devuelve el decodificador del charset; nil para UTF-8.
func decoderFor(charset string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, fmt.Errorf("charset %q no soportado", charset)
}

// Import procesa el CSV fila por fila. Un error de fila no detiene la corrida; un fallo
// de almacenamiento sí, y se devuelve junto con el reporte parcial.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (Report, error) {
	var rep Report
	if strings.TrimSpace(opts.ActorID) == "" {
		return rep, domain.ErrInvalidInput
	}
	dec, err := decoderFor(opts.Charset)
	if err != nil {
		return rep, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("leer CSV línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), header[0]) {
			continue
		}
		rep.Rows++

		row, err := parseRow(line, rec)
		if err != nil {
			rep.fail(line, firstField(rec), err)
			continue
		}
		outcome, err := im.apply(ctx, row, opts.ActorID)
		if err != nil {
			if errors.Is(err, domain.ErrStorageFailure) {
				return rep, fmt.Errorf("importar línea %d: %w", line, err)
			}
			rep.fail(line, row.ExternalID, err)
			continue
		}
		rep.count(outcome)
	}

	im.log.Info().
		Int("rows", rep.Rows).
		Int("created", rep.Created).
		Int("updated", rep.Updated).
		Int("unchanged", rep.Unchanged).
		Int("failed", len(rep.Failures)).
		Msg("importación de catálogo terminada")
	return rep, nil
}

func (im *Importer) apply(ctx context.Context, row Row, actorID string) (outcome, error) {
	ref := entity.External(row.ExternalID)
	current := 0
	res := outcomeUpdated

	item, err := im.catalog.GetItem(ctx, ref)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = im.catalog.CreateItem(ctx, inventory.NewItemInput{
			Name:       row.Name,
			Price:      row.Price,
			Category:   row.Category,
			Threshold:  row.ReorderLevel,
			ExternalID: row.ExternalID,
			ActorID:    actorID,
		})
		if err != nil {
			return 0, err
		}
		res = outcomeCreated
	case err != nil:
		return 0, err
	default:
		current = item.Quantity
	}

	if row.Quantity == current {
		if res == outcomeCreated {
			return res, nil
		}
		return outcomeUnchanged, nil
	}
	_, err = im.ledger.AdjustByMode(ctx, inventory.AdjustByModeInput{
		Ref:     ref,
		Mode:    domaininv.ModeSet,
		Amount:  row.Quantity,
		Reason:  domaininv.ReasonInventoryAdjust,
		Notes:   "importación de catálogo",
		ActorID: actorID,
	})
	if err != nil {
		return 0, err
	}
	return res, nil
}

func firstField(rec []string) string {
	if len(rec) == 0 {
		return ""
	}
	return strings.TrimSpace(rec[0])
}

// parseRow valida una fila: external_id,name,price,quantity[,reorder_level,category].
func parseRow(line int, rec []string) (Row, error) {
	if len(rec) < 4 {
		return Row{}, fmt.Errorf("se esperaban al menos 4 columnas, hay %d", len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	row := Row{Line: line, ExternalID: rec[0], Name: rec[1]}
	if row.ExternalID == "" {
		return row, errors.New("external_id vacío")
	}
	if row.Name == "" {
		return row, errors.New("nombre vacío")
	}
	price, err := domaininv.ParsePrice(rec[2])
	if err != nil {
		return row, fmt.Errorf("precio inválido %q", rec[2])
	}
	row.Price = price
	qty, err := strconv.Atoi(rec[3])
	if err != nil || qty < 0 {
		return row, fmt.Errorf("cantidad inválida %q", rec[3])
	}
	row.Quantity = qty
	if len(rec) > 4 && rec[4] != "" {
		lvl, err := strconv.Atoi(rec[4])
		if err != nil || lvl < 0 {
			return row, fmt.Errorf("umbral inválido %q", rec[4])
		}
		row.ReorderLevel = &lvl
	}
	if len(rec) > 5 {
		row.Category = rec[5]
	}
	return row, nil
}
