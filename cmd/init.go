package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/engine"
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "impact.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore initialises and migrates the configured store.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func initEngine() *engine.Engine {
	return engine.New(
		engine.WithParallel(cfg.Engine.Parallel),
		engine.WithEngagementCostField(cfg.Engine.EngagementCostField),
	)
}

// initLibrary loads the embedded methodologies plus any in the configured
// directory.
func initLibrary(eng *engine.Engine) (*methodology.Library, error) {
	lib, err := methodology.NewDefaultLibrary(eng.Registry())
	if err != nil {
		return nil, eris.Wrap(err, "load default methodologies")
	}
	if cfg.Methodology.Dir != "" {
		n, err := lib.LoadDir(cfg.Methodology.Dir)
		if err != nil {
			return nil, eris.Wrapf(err, "load methodologies from %s", cfg.Methodology.Dir)
		}
		zap.L().Debug("loaded methodologies", zap.String("dir", cfg.Methodology.Dir), zap.Int("count", n))
	}
	return lib, nil
}

func defaultMethodologyID() string {
	if cfg.Methodology.DefaultID != "" {
		return cfg.Methodology.DefaultID
	}
	return methodology.DefaultID
}
