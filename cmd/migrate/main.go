package main

import (
	"context"
	"fmt"
	"os"
	"time"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	databasepb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/murkotick/storefront-catalog/internal/config"
	"github.com/murkotick/storefront-catalog/internal/observability"
	"github.com/murkotick/storefront-catalog/internal/store/scylla"
	"github.com/murkotick/storefront-catalog/migrations"
)

const migrateTimeout = 2 * time.Minute

// migrate applies the embedded schema to the store selected by
// CATALOG_STORE_DRIVER.
//
// Usage (local Scylla):
//
//	CATALOG_STORE_HOSTS=127.0.0.1 CATALOG_STORE_KEYSPACE=catalog \
//	CATALOG_STORE_REPLICATION_FACTOR=3 go run ./cmd/migrate
//
// Usage (Spanner emulator):
//
//	SPANNER_EMULATOR_HOST=localhost:9010 CATALOG_STORE_DRIVER=spanner \
//	CATALOG_STORE_SPANNER_DATABASE=projects/test-project/instances/emulator-instance/databases/test-db \
//	go run ./cmd/migrate
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newMigrator),
		fx.Invoke(register),
		fx.StartTimeout(migrateTimeout),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	return app.Stop(stopCtx)
}

type migrator struct {
	cfg config.Config
	log *zap.Logger
}

func newMigrator(cfg config.Config, log *zap.Logger) *migrator {
	return &migrator{cfg: cfg, log: log.Named("migrate")}
}

// register runs the migration when the app starts; a failure aborts startup.
func register(lc fx.Lifecycle, m *migrator) {
	lc.Append(fx.Hook{OnStart: m.Run})
}

func (m *migrator) Run(ctx context.Context) error {
	switch m.cfg.Store.Driver {
	case config.DriverScylla:
		return m.scylla(ctx)
	case config.DriverSpanner:
		return m.spanner(ctx)
	default:
		m.log.Info("driver has no schema to apply", zap.String("driver", m.cfg.Store.Driver))
		return nil
	}
}

func cqlParams(cfg config.StoreConfig) migrations.CQLParams {
	return migrations.CQLParams{
		Keyspace:          cfg.Keyspace,
		LocalDC:           cfg.LocalDC,
		ReplicationFactor: cfg.ReplicationFactor,
	}
}

func (m *migrator) scylla(ctx context.Context) error {
	cfg := m.cfg.Store
	stmts, err := migrations.CQL(cqlParams(cfg))
	if err != nil {
		return fmt.Errorf("read CQL: %w", err)
	}

	session, err := scylla.Connect(ctx, scylla.Config{
		Hosts:          cfg.Hosts,
		LocalDC:        cfg.LocalDC,
		Consistency:    cfg.Consistency,
		Timeout:        cfg.Timeout,
		ConnectTimeout: cfg.ConnectTimeout,
		Username:       cfg.Username,
		Password:       cfg.Password,
	}, m.log)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.ApplySchema(ctx, stmts); err != nil {
		return err
	}
	m.log.Info("cql migrations applied",
		zap.Int("statements", len(stmts)),
		zap.String("keyspace", cfg.Keyspace),
		zap.Int("replication_factor", cfg.ReplicationFactor),
	)
	return nil
}

func (m *migrator) spanner(ctx context.Context) error {
	db := m.cfg.Store.SpannerDatabase
	stmts, err := migrations.SpannerDDL()
	if err != nil {
		return fmt.Errorf("read DDL: %w", err)
	}
	if len(stmts) == 0 {
		return fmt.Errorf("no DDL statements found")
	}

	admin, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("database admin client: %w", err)
	}
	defer admin.Close()

	op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   db,
		Statements: stmts,
	})
	if err != nil {
		return fmt.Errorf("UpdateDatabaseDdl: %w", err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("UpdateDatabaseDdl wait: %w", err)
	}

	m.log.Info("spanner DDL applied", zap.Int("statements", len(stmts)), zap.String("database", db))
	return nil
}
