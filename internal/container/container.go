package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gradscope/adapters/excel"
	"gradscope/adapters/normalize"
	"gradscope/adapters/postgres"
	"gradscope/app"
	"gradscope/domain/filter"
	"gradscope/internal"
	"gradscope/internal/config"
	"gradscope/internal/datastore"
	"gradscope/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; DB is nil for file sources
	DB     *sqlx.DB
	Source ports.DatasetSource

	Store    *datastore.Store
	Variants *app.VariantRegistry
	Explorer *app.ExplorerService
}

// New wires the pipeline from configuration. The dataset is not loaded;
// call Store.Load before serving.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initSource(ctx); err != nil {
		return nil, err
	}

	normConfig := normalize.DefaultConfig()
	normConfig.Coercion.Lenient = cfg.Data.LenientNumbers
	c.Store = datastore.NewStore(c.Source, normalize.NewNormalizer(normConfig, logger), logger)

	variants, err := app.NewVariantRegistry(app.BuiltinVariants(), cfg.Dashboard.Variant)
	if err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	c.Variants = variants

	var opts []app.ExplorerOption
	if cfg.Dashboard.OptionPolicy != "" {
		opts = append(opts, app.WithPolicy(filter.ParsePolicy(cfg.Dashboard.OptionPolicy)))
	}
	c.Explorer = app.NewExplorerService(c.Store, variants, logger, opts...)

	logger.Info("[Container] source=%s variant=%s policy=%q", c.Source.Describe(), variants.Default(), cfg.Dashboard.OptionPolicy)
	return c, nil
}

func (c *Container) initSource(ctx context.Context) error {
	switch c.Config.Data.Source {
	case "postgres":
		db, err := postgres.Connect(ctx, c.Config.Data.DatabaseURL)
		if err != nil {
			return err
		}
		c.DB = db
		c.Source = postgres.NewDatasetSource(db, c.Config.Data.Table, c.Logger)
	case "file", "":
		c.Source = excel.NewDataReader(c.Config.Data.File, c.Logger)
	default:
		return fmt.Errorf("unknown data source %q", c.Config.Data.Source)
	}
	return nil
}

// Shutdown releases the database connection, if any
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
