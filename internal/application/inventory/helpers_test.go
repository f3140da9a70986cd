package inventory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/application/inventory/inventorytest"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
)

const (
	testActor  = "user-1"
	testSystem = "system"
)

// tickingClock avanza un segundo en cada lectura para que los registros tengan fechas distintas.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *tickingClock {
	return &tickingClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	store   *inventorytest.Store
	clock   *tickingClock
	ledger  *inventory.StockLedgerUseCase
	catalog *inventory.CatalogUseCase
	alerts  *inventory.AlertUseCase
	history *inventory.HistoryUseCase
	restock *inventory.ReplenishmentUseCase
}

func newFixture(t *testing.T, opts ...inventory.Option) *fixture {
	t.Helper()
	s := inventorytest.NewStore()
	clock := newClock()
	opts = append([]inventory.Option{inventory.WithClock(clock.Now)}, opts...)
	return &fixture{
		store:   s,
		clock:   clock,
		ledger:  inventory.NewStockLedgerUseCase(s, s.Items(), opts...),
		catalog: inventory.NewCatalogUseCase(s, s.Items(), opts...),
		alerts:  inventory.NewAlertUseCase(s, s.Items(), s.Alerts(), s.AlertHistory(), opts...),
		history: inventory.NewHistoryUseCase(s.Items(), s.Audit(), s.Prices()),
		restock: inventory.NewReplenishmentUseCase(s.Items(), s.Alerts(), opts...),
	}
}

// seedItem inserta un ítem externo con la cantidad y el umbral indicados.
func (f *fixture) seedItem(code string, quantity, threshold int) entity.Item {
	return f.store.SeedItem(entity.Item{
		Ref:          entity.External(code),
		Name:         "Libro " + code,
		Price:        decimal.RequireFromString("12.50"),
		Quantity:     quantity,
		ReorderLevel: threshold,
		Category:     "General",
	})
}

func (f *fixture) quantity(t *testing.T, id int64) int {
	t.Helper()
	it, ok := f.store.Item(id)
	if !ok {
		t.Fatalf("ítem %d no existe", id)
	}
	return it.Quantity
}
