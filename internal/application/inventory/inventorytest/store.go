// Package inventorytest provee un almacén en memoria con semántica transaccional
// para probar los casos de uso sin PostgreSQL.
package inventorytest

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/domain"
	"github.com/jhoicas/bookstore-inventory/internal/domain/entity"
	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// ErrOpenAlertExists emula la violación del índice único parcial de alertas abiertas.
var ErrOpenAlertExists = errors.New("ya existe una alerta abierta para el ítem")

type state struct {
	items        map[int64]entity.Item
	audit        []entity.AuditEntry
	prices       []entity.PriceHistoryEntry
	alerts       map[int64]entity.LowStockAlert
	alertHistory []entity.AlertHistoryEntry
}

func (st *state) clone() state {
	return state{
		items:        maps.Clone(st.items),
		audit:        slices.Clone(st.audit),
		prices:       slices.Clone(st.prices),
		alerts:       maps.Clone(st.alerts),
		alertHistory: slices.Clone(st.alertHistory),
	}
}

// Store serializa las transacciones con un mutex: cada Run trabaja sobre una copia
// y solo la publica si fn no devuelve error. Los ids no retroceden en rollback.
type Store struct {
	mu   sync.Mutex
	data state
	seq  atomic.Int64

	failMu   sync.Mutex
	failures map[string]error

	// Commits y Rollbacks cuentan transacciones terminadas.
	Commits   atomic.Int64
	Rollbacks atomic.Int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		data: state{
			items:  map[int64]entity.Item{},
			alerts: map[int64]entity.LowStockAlert{},
		},
		failures: map[string]error{},
	}
}

var _ inventory.TxRunner = (*Store)(nil)

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("begin", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.take("begin"); err != nil {
		return domain.NewStorageError("begin", err)
	}

	tx := s.data.clone()
	if err := fn(s.repos(&tx)); err != nil {
		s.Rollbacks.Add(1)
		return err
	}
	if err := s.take("commit"); err != nil {
		s.Rollbacks.Add(1)
		return domain.NewStorageError("commit", err)
	}
	s.data = tx
	s.Commits.Add(1)
	return nil
}

func (s *Store) repos(tx *state) inventory.TxRepos {
	return inventory.TxRepos{
		Items:        &itemRepo{s: s, tx: tx},
		Audit:        &auditRepo{s: s, tx: tx},
		Prices:       &priceRepo{s: s, tx: tx},
		Alerts:       &alertRepo{s: s, tx: tx},
		AlertHistory: &alertHistoryRepo{s: s, tx: tx},
	}
}

// Items repositorio fuera de transacción (equivalente al pool).
func (s *Store) Items() repository.ItemRepository { return &itemRepo{s: s} }

func (s *Store) Audit() repository.AuditRepository { return &auditRepo{s: s} }

func (s *Store) Prices() repository.PriceHistoryRepository { return &priceRepo{s: s} }

func (s *Store) Alerts() repository.AlertRepository { return &alertRepo{s: s} }

func (s *Store) AlertHistory() repository.AlertHistoryRepository { return &alertHistoryRepo{s: s} }

// FailOn hace que la próxima llamada a op falle con err. Ops: "begin", "commit",
// "items.update_quantity", "items.update_fields", "audit.append", "prices.append",
// "alerts.create", "alerts.update_status", "alert_history.append", "items.list_below", "alerts.list".
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures[op] = err
}

func (s *Store) take(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

func (s *Store) nextID() int64 { return s.seq.Add(1) }

// SeedItem inserta un ítem ya confirmado, sin auditoría. Devuelve el ítem con su id.
func (s *Store) SeedItem(item entity.Item) entity.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		item.UpdatedAt = item.CreatedAt
	}
	s.data.items[item.ID] = item
	return item
}

// SeedAlert inserta una alerta ya confirmada.
func (s *Store) SeedAlert(alert entity.LowStockAlert) entity.LowStockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert.ID = s.nextID()
	s.data.alerts[alert.ID] = alert
	return alert
}

// Item foto confirmada de un ítem.
func (s *Store) Item(id int64) (entity.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.data.items[id]
	return it, ok
}

// AuditEntries entradas confirmadas del ítem en orden de inserción.
func (s *Store) AuditEntries(itemID int64) []entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.AuditEntry
	for _, e := range s.data.audit {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out
}

// PriceEntries historial de precios confirmado del ítem en orden de inserción.
func (s *Store) PriceEntries(itemID int64) []entity.PriceHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.PriceHistoryEntry
	for _, e := range s.data.prices {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out
}

// AlertsForItem alertas confirmadas del ítem ordenadas por id.
func (s *Store) AlertsForItem(itemID int64) []entity.LowStockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.LowStockAlert
	for _, a := range s.data.alerts {
		if a.ItemID == itemID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b entity.LowStockAlert) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// AlertHistoryEntries historial confirmado de la alerta.
func (s *Store) AlertHistoryEntries(alertID int64) []entity.AlertHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.AlertHistoryEntry
	for _, e := range s.data.alertHistory {
		if e.AlertID == alertID {
			out = append(out, e)
		}
	}
	return out
}

// with ejecuta fn sobre la copia de la transacción o, fuera de ella, sobre los datos confirmados.
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

type itemRepo struct {
	s  *Store
	tx *state
}

func (r *itemRepo) Create(_ context.Context, item *entity.Item) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, it := range st.items {
			if it.Ref == item.Ref {
				return domain.ErrDuplicateIdentifier
			}
		}
		item.ID = r.s.nextID()
		st.items[item.ID] = *item
		return nil
	})
}

func (r *itemRepo) GetByRef(_ context.Context, ref entity.ItemRef) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.with(r.tx, func(st *state) error {
		for _, it := range st.items {
			if it.Ref == ref {
				cp := it
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) GetByRefForUpdate(ctx context.Context, ref entity.ItemRef) (*entity.Item, error) {
	return r.GetByRef(ctx, ref)
}

func (r *itemRepo) GetByIDForUpdate(_ context.Context, id int64) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.with(r.tx, func(st *state) error {
		if it, ok := st.items[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	if err := r.s.take("items.update_quantity"); err != nil {
		return domain.NewStorageError("items.update_quantity", err)
	}
	return r.s.with(r.tx, func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		if quantity < 0 {
			return domain.NewStorageError("items.update_quantity", errors.New("violación de CHECK quantity >= 0"))
		}
		it.Quantity = quantity
		it.UpdatedAt = time.Now().UTC()
		st.items[id] = it
		return nil
	})
}

func (r *itemRepo) UpdateFields(_ context.Context, id int64, c repository.ItemFieldChanges) error {
	if err := r.s.take("items.update_fields"); err != nil {
		return domain.NewStorageError("items.update_fields", err)
	}
	return r.s.with(r.tx, func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		if c.Name != nil {
			it.Name = *c.Name
		}
		if c.Category != nil {
			it.Category = *c.Category
		}
		if c.ReorderLevel != nil {
			it.ReorderLevel = *c.ReorderLevel
		}
		if c.Price != nil {
			p, err := parseStoredPrice(*c.Price)
			if err != nil {
				return domain.NewStorageError("items.update_fields", err)
			}
			it.Price = p
		}
		it.UpdatedAt = time.Now().UTC()
		st.items[id] = it
		return nil
	})
}

func (r *itemRepo) ListBelowThreshold(_ context.Context) ([]entity.Item, error) {
	if err := r.s.take("items.list_below"); err != nil {
		return nil, err
	}
	var out []entity.Item
	err := r.s.with(r.tx, func(st *state) error {
		for _, it := range st.items {
			if it.BelowThreshold() {
				out = append(out, it)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.Item) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func parseStoredPrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

type auditRepo struct {
	s  *Store
	tx *state
}

func (r *auditRepo) Append(_ context.Context, e *entity.AuditEntry) error {
	if err := r.s.take("audit.append"); err != nil {
		return domain.NewStorageError("audit.append", err)
	}
	return r.s.with(r.tx, func(st *state) error {
		e.ID = r.s.nextID()
		st.audit = append(st.audit, *e)
		return nil
	})
}

func (r *auditRepo) ListByItem(_ context.Context, itemID int64, limit int, exclude ...entity.AuditAction) ([]entity.AuditEntry, error) {
	var out []entity.AuditEntry
	err := r.s.with(r.tx, func(st *state) error {
		for _, e := range st.audit {
			if e.ItemID == itemID && !slices.Contains(exclude, e.Action) {
				out = append(out, e)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.AuditEntry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type priceRepo struct {
	s  *Store
	tx *state
}

func (r *priceRepo) Append(_ context.Context, e *entity.PriceHistoryEntry) error {
	if err := r.s.take("prices.append"); err != nil {
		return domain.NewStorageError("prices.append", err)
	}
	return r.s.with(r.tx, func(st *state) error {
		e.ID = r.s.nextID()
		st.prices = append(st.prices, *e)
		return nil
	})
}

func (r *priceRepo) ListByItem(_ context.Context, itemID int64, limit int) ([]entity.PriceHistoryEntry, error) {
	var out []entity.PriceHistoryEntry
	err := r.s.with(r.tx, func(st *state) error {
		for _, e := range st.prices {
			if e.ItemID == itemID {
				out = append(out, e)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.PriceHistoryEntry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type alertRepo struct {
	s  *Store
	tx *state
}

func (r *alertRepo) Create(_ context.Context, a *entity.LowStockAlert) error {
	if err := r.s.take("alerts.create"); err != nil {
		return domain.NewStorageError("alerts.create", err)
	}
	return r.s.with(r.tx, func(st *state) error {
		for _, cur := range st.alerts {
			if cur.ItemID == a.ItemID && cur.Status.Open() {
				return domain.NewStorageError("alerts.create", ErrOpenAlertExists)
			}
		}
		a.ID = r.s.nextID()
		st.alerts[a.ID] = *a
		return nil
	})
}

func (r *alertRepo) GetByID(_ context.Context, id int64) (*entity.LowStockAlert, error) {
	var out *entity.LowStockAlert
	err := r.s.with(r.tx, func(st *state) error {
		if a, ok := st.alerts[id]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *alertRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.LowStockAlert, error) {
	return r.GetByID(ctx, id)
}

func (r *alertRepo) GetOpenByItemForUpdate(_ context.Context, itemID int64) (*entity.LowStockAlert, error) {
	var out *entity.LowStockAlert
	err := r.s.with(r.tx, func(st *state) error {
		for _, a := range st.alerts {
			if a.ItemID == itemID && a.Status.Open() {
				cp := a
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *alertRepo) update(id int64, fn func(a *entity.LowStockAlert)) error {
	return r.s.with(r.tx, func(st *state) error {
		a, ok := st.alerts[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&a)
		st.alerts[id] = a
		return nil
	})
}

func (r *alertRepo) Touch(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(a *entity.LowStockAlert) { a.UpdatedAt = at })
}

func (r *alertRepo) SetCritical(_ context.Context, id int64, critical bool, at time.Time) error {
	return r.update(id, func(a *entity.LowStockAlert) {
		a.IsCritical = critical
		a.UpdatedAt = at
	})
}

func (r *alertRepo) UpdateStatus(_ context.Context, id int64, status entity.AlertStatus, ackBy *string, at time.Time) error {
	if err := r.s.take("alerts.update_status"); err != nil {
		return domain.NewStorageError("alerts.update_status", err)
	}
	return r.update(id, func(a *entity.LowStockAlert) {
		a.Status = status
		a.AcknowledgedBy = ackBy
		a.UpdatedAt = at
	})
}

func (r *alertRepo) List(_ context.Context, f repository.AlertFilter) ([]entity.LowStockAlert, error) {
	if err := r.s.take("alerts.list"); err != nil {
		return nil, err
	}
	var out []entity.LowStockAlert
	err := r.s.with(r.tx, func(st *state) error {
		for _, a := range st.alerts {
			if f.ItemID != 0 && a.ItemID != f.ItemID {
				continue
			}
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.Status == "" && !a.Status.Open() {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.LowStockAlert) int {
		if a.IsCritical != b.IsCritical {
			if a.IsCritical {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if f.Offset >= len(out) {
		return []entity.LowStockAlert{}, err
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func (r *alertRepo) ListOpenRecovered(_ context.Context) ([]entity.LowStockAlert, error) {
	var out []entity.LowStockAlert
	err := r.s.with(r.tx, func(st *state) error {
		for _, a := range st.alerts {
			it, ok := st.items[a.ItemID]
			if a.Status.Open() && ok && !it.BelowThreshold() {
				out = append(out, a)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b entity.LowStockAlert) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

type alertHistoryRepo struct {
	s  *Store
	tx *state
}

func (r *alertHistoryRepo) Append(_ context.Context, e *entity.AlertHistoryEntry) error {
	if err := r.s.take("alert_history.append"); err != nil {
		return domain.NewStorageError("alert_history.append", err)
	}
	return r.s.with(r.tx, func(st *state) error {
		e.ID = r.s.nextID()
		st.alertHistory = append(st.alertHistory, *e)
		return nil
	})
}

func (r *alertHistoryRepo) ListByAlert(_ context.Context, alertID int64) ([]entity.AlertHistoryEntry, error) {
	var out []entity.AlertHistoryEntry
	err := r.s.with(r.tx, func(st *state) error {
		for _, e := range st.alertHistory {
			if e.AlertID == alertID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}
