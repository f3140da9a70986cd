// Package scheduler ejecuta el barrido periódico de umbrales de stock con robfig/cron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
)

// lockKey clave del candado distribuido del barrido.
const lockKey = "bookstore-inventory:alert-sweep"

// Sweeper caso de uso que evalúa todos los ítems contra su umbral.
type Sweeper interface {
	EvaluateThresholds(ctx context.Context, actorID string) (inventory.SweepResult, error)
}

// ErrLockHeld otra réplica está ejecutando el barrido.
var ErrLockHeld = errors.New("barrido en curso en otra instancia")

// Config parámetros del barrido programado.
type Config struct {
	Schedule string        // expresión cron; vacío deshabilita
	Actor    string        // actor de sistema registrado en las alertas creadas
	Timeout  time.Duration // tope por ejecución; 0 = 5 minutos
}

// Scheduler envuelve un cron.Cron con un único trabajo: el barrido de alertas.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	locker  Locker
	cfg     Config
	log     zerolog.Logger
}

// New valida la expresión y registra el trabajo. locker puede ser nil (una sola réplica).
func New(sweeper Sweeper, locker Locker, cfg Config, log zerolog.Logger) (*Scheduler, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if locker == nil {
		locker = NoopLocker{}
	}
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		sweeper: sweeper,
		locker:  locker,
		cfg:     cfg,
		log:     log,
	}
	if cfg.Schedule == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("programación de barrido %q inválida: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Enabled indica si hay un trabajo programado.
func (s *Scheduler) Enabled() bool { return len(s.cron.Entries()) > 0 }

// Start arranca el cron en segundo plano.
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.log.Info().Msg("barrido de alertas deshabilitado")
		return
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.cfg.Schedule).Msg("barrido de alertas programado")
}

// Stop detiene el cron y espera a que termine la ejecución en curso o a que venza ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrLockHeld) {
		s.log.Error().Err(err).Msg("barrido de alertas falló")
	}
}

// RunOnce ejecuta un barrido tomando el candado; ErrLockHeld si otra instancia lo tiene.
func (s *Scheduler) RunOnce(ctx context.Context) (inventory.SweepResult, error) {
	release, ok, err := s.locker.Acquire(ctx, lockKey, s.cfg.Timeout)
	if err != nil {
		return inventory.SweepResult{}, fmt.Errorf("tomar candado de barrido: %w", err)
	}
	if !ok {
		s.log.Debug().Msg("barrido omitido: candado ocupado")
		return inventory.SweepResult{}, ErrLockHeld
	}
	defer release(context.WithoutCancel(ctx))

	return s.sweeper.EvaluateThresholds(ctx, s.cfg.Actor)
}

// cronLogger adapta zerolog a cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
