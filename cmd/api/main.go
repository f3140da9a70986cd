package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/bookstore-inventory/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/bookstore-inventory/internal/interfaces/http"
	"github.com/jhoicas/bookstore-inventory/pkg/config"
	"github.com/jhoicas/bookstore-inventory/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	opts := []inventory.Option{
		inventory.WithLogger(log.Component("inventory")),
		inventory.WithAutoResolve(cfg.Alerts.AutoResolve),
	}

	catalogUC := inventory.NewCatalogUseCase(txRunner, itemRepo, opts...)
	ledgerUC := inventory.NewStockLedgerUseCase(txRunner, itemRepo, opts...)
	historyUC := inventory.NewHistoryUseCase(itemRepo, postgres.NewAuditRepository(pool), postgres.NewPriceHistoryRepository(pool))
	alertRepo := postgres.NewAlertRepository(pool)
	alertUC := inventory.NewAlertUseCase(
		txRunner, itemRepo,
		alertRepo, postgres.NewAlertHistoryRepository(pool),
		opts...,
	)
	restockUC := inventory.NewReplenishmentUseCase(itemRepo, alertRepo, opts...)

	// Candado Redis solo si hay varias réplicas compartiendo el barrido.
	var locker scheduler.Locker
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		locker = scheduler.NewRedisLocker(rdb)
	}
	sweeps, err := scheduler.New(alertUC, locker, scheduler.Config{
		Schedule: cfg.Alerts.SweepSchedule,
		Actor:    cfg.Alerts.SystemActor,
	}, log.Component("scheduler"))
	if err != nil {
		log.Fatal().Err(err).Msg("configurar barrido de alertas")
	}
	sweeps.Start()

	app := httpRouter.NewApp(cfg.App.Name)
	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:     catalogUC,
		Ledger:      ledgerUC,
		History:     historyUC,
		Alerts:      alertUC,
		Restock:     restockUC,
		JWTSecret:   cfg.JWT.Secret,
		SwaggerFile: cfg.Swagger.File,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sweeps.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
