package catalogimport_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/bookstore-inventory/internal/application/catalogimport"
	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/application/inventory/inventorytest"
	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

const actor = "importer"

// catalogCSV cubre las cuatro salidas posibles: actualizado, sin cambios, creado y con error.
const catalogCSV = `external_id,name,price,quantity,reorder_level,category
EXT-1,El Principito,$12.50,10,5,Ficción
EXT-2,Rayuela,15.00,4
EXT-3,Ñandú,"9,90",7,,Infantil
EXT-4,Sin precio,,3
EXT-5,Negativo,10.00,-2
`

type fixture struct {
	store    *inventorytest.Store
	catalog  *inventory.CatalogUseCase
	ledger   *inventory.StockLedgerUseCase
	importer *catalogimport.Importer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := inventorytest.NewStore()
	catalog := inventory.NewCatalogUseCase(s, s.Items())
	ledger := inventory.NewStockLedgerUseCase(s, s.Items())
	return &fixture{
		store:    s,
		catalog:  catalog,
		ledger:   ledger,
		importer: catalogimport.NewImporter(catalog, ledger, zerolog.Nop()),
	}
}

// seed crea un ítem externo con la cantidad indicada.
func (f *fixture) seed(t *testing.T, externalID, name string, qty int) {
	t.Helper()
	ctx := context.Background()
	ref, err := f.catalog.CreateItem(ctx, inventory.NewItemInput{
		Name: name, Price: decimal.NewFromInt(10), ExternalID: externalID, ActorID: actor,
	})
	require.NoError(t, err)
	if qty > 0 {
		_, err = f.ledger.AdjustStock(ctx, inventory.AdjustInput{
			Ref: ref, Delta: qty, Reason: "Inventory Adjustment", ActorID: actor,
		})
		require.NoError(t, err)
	}
}

func (f *fixture) quantity(t *testing.T, externalID string) int {
	t.Helper()
	item, err := f.catalog.GetItem(context.Background(), entity.External(externalID))
	require.NoError(t, err)
	return item.Quantity
}

// ─────────────────────────────────────────────────────────────────────────────
// Import
// ─────────────────────────────────────────────────────────────────────────────

func TestImport_ReporteCompleto(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "EXT-1", "El Principito", 3)
	f.seed(t, "EXT-2", "Rayuela", 4)

	rep, err := f.importer.Import(context.Background(), strings.NewReader(catalogCSV), catalogimport.Options{ActorID: actor})
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Rows)
	assert.Equal(t, 1, rep.Created)
	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, 1, rep.Unchanged)
	require.Len(t, rep.Failures, 2)
	assert.Equal(t, 5, rep.Failures[0].Line)
	assert.Equal(t, "EXT-5", rep.Failures[1].ExternalID)

	assert.Equal(t, 10, f.quantity(t, "EXT-1"))
	assert.Equal(t, 4, f.quantity(t, "EXT-2"))
	assert.Equal(t, 7, f.quantity(t, "EXT-3"))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "import_report", []byte(rep.String()))
}

func TestImport_ItemCreadoConAtributos(t *testing.T) {
	f := newFixture(t)

	_, err := f.importer.Import(context.Background(), strings.NewReader(catalogCSV), catalogimport.Options{ActorID: actor})
	require.NoError(t, err)

	item, err := f.catalog.GetItem(context.Background(), entity.External("EXT-1"))
	require.NoError(t, err)
	assert.Equal(t, "El Principito", item.Name)
	assert.Equal(t, "12.5", item.Price.String())
	assert.Equal(t, 5, item.ReorderLevel)
	assert.Equal(t, "Ficción", item.Category)

	// CREATE + ADJUST_STOCK: la cantidad inicial queda en la bitácora.
	actions := []entity.AuditAction{}
	for _, e := range f.store.AuditEntries(item.ID) {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []entity.AuditAction{entity.AuditCreate, entity.AuditAdjustStock}, actions)
}

func TestImport_Latin1(t *testing.T) {
	f := newFixture(t)
	raw, err := charmap.ISO8859_1.NewEncoder().String("EXT-9,Cien años de soledad,20.00,2\n")
	require.NoError(t, err)

	rep, err := f.importer.Import(context.Background(), strings.NewReader(raw), catalogimport.Options{
		Charset: "latin1", ActorID: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)

	item, err := f.catalog.GetItem(context.Background(), entity.External("EXT-9"))
	require.NoError(t, err)
	assert.Equal(t, "Cien años de soledad", item.Name)
}

func TestImport_CharsetDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.importer.Import(context.Background(), strings.NewReader(""), catalogimport.Options{
		Charset: "ebcdic", ActorID: actor,
	})
	assert.ErrorContains(t, err, "no soportado")
}

func TestImport_SinActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.importer.Import(context.Background(), strings.NewReader(catalogCSV), catalogimport.Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Escenario: el almacenamiento falla a mitad de corrida; se corta y se devuelve el parcial.
func TestImport_FalloDeAlmacenamientoDetiene(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("audit.append", domain.NewStorageError("append audit entry", errors.New("conexión perdida")))

	rep, err := f.importer.Import(context.Background(), strings.NewReader(catalogCSV), catalogimport.Options{ActorID: actor})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorContains(t, err, "línea 2")
	assert.Equal(t, 1, rep.Rows)
	assert.Zero(t, rep.Created)
}

func TestImport_ColumnasInsuficientes(t *testing.T) {
	f := newFixture(t)
	rep, err := f.importer.Import(context.Background(), strings.NewReader("EXT-1,Solo nombre\n"), catalogimport.Options{ActorID: actor})
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, 1, rep.Failures[0].Line)
	assert.Contains(t, rep.Failures[0].Reason, "al menos 4 columnas")
}
