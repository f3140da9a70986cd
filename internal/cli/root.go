// Package cli comandos de operación de stockctl: migraciones, barrido de alertas e importación.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/bookstore-inventory/internal/application/inventory"
	"github.com/jhoicas/bookstore-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/bookstore-inventory/pkg/config"
	"github.com/jhoicas/bookstore-inventory/pkg/logger"
)

// Services casos de uso que necesitan los comandos.
type Services struct {
	Catalog     *inventory.CatalogUseCase
	Ledger      *inventory.StockLedgerUseCase
	Alerts      *inventory.AlertUseCase
	SystemActor string
	Log         zerolog.Logger
}

// Migrator operaciones de esquema; *postgres.Migrator la implementa.
type Migrator interface {
	Up(ctx context.Context) (int, error)
	Down(ctx context.Context) error
	Status(ctx context.Context) ([]postgres.MigrationStatus, error)
	Close() error
}

// RootOptions flags globales y constructores de dependencias (reemplazables en tests).
type RootOptions struct {
	LogLevel     string
	OpenServices func(ctx context.Context, opts *RootOptions) (*Services, func(), error)
	OpenMigrator func(ctx context.Context, opts *RootOptions) (Migrator, error)
}

// NewRootCommand comando raíz de stockctl con las dependencias reales.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{
		OpenServices: openServices,
		OpenMigrator: openMigrator,
	})
}

// NewRootCommandWith permite inyectar constructores.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stockctl",
		Short:        "Operación del inventario de la librería",
		Long:         "Herramientas de operación del inventario: migraciones, barrido de alertas de stock bajo e importación de catálogo.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "nivel de log (por defecto LOG_LEVEL)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// loadConfig lee la configuración; los logs van a stderr para no mezclarse con la salida del comando.
func loadConfig(opts *RootOptions) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level, Service: "stockctl", Out: os.Stderr})
	return cfg, log, nil
}

// openServices conecta a PostgreSQL y arma los casos de uso; el cierre libera el pool.
func openServices(ctx context.Context, opts *RootOptions) (*Services, func(), error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	itemRepo := postgres.NewItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	ucOpts := []inventory.Option{
		inventory.WithLogger(log.Component("inventory")),
		inventory.WithAutoResolve(cfg.Alerts.AutoResolve),
	}
	return &Services{
		Catalog: inventory.NewCatalogUseCase(txRunner, itemRepo, ucOpts...),
		Ledger:  inventory.NewStockLedgerUseCase(txRunner, itemRepo, ucOpts...),
		Alerts: inventory.NewAlertUseCase(
			txRunner, itemRepo,
			postgres.NewAlertRepository(pool), postgres.NewAlertHistoryRepository(pool),
			ucOpts...,
		),
		SystemActor: cfg.Alerts.SystemActor,
		Log:         log.Component("stockctl"),
	}, pool.Close, nil
}

func openMigrator(ctx context.Context, opts *RootOptions) (Migrator, error) {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return postgres.NewMigrator(ctx, cfg.DB.ConnectionString())
}
