package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bookstore-inventory/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Items        repository.ItemRepository
	Audit        repository.AuditRepository
	Prices       repository.PriceHistoryRepository
	Alerts       repository.AlertRepository
	AlertHistory repository.AlertHistoryRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y el error llega intacto al llamador.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// Option configura dependencias opcionales de los casos de uso.
type Option func(*options)

type options struct {
	now         func() time.Time
	log         zerolog.Logger
	autoResolve bool
}

func buildOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
		log: zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithClock reemplaza el reloj (tests y reprocesos con fecha fija).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger inyecta el logger estructurado.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithAutoResolve habilita que el barrido resuelva alertas cuyo ítem ya se repuso.
func WithAutoResolve(enabled bool) Option {
	return func(o *options) { o.autoResolve = enabled }
}
