package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"gradscope/internal"
	"gradscope/internal/config"
	"gradscope/internal/container"
	"gradscope/ui"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level), appConfig.Log.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appConfig, logger); err != nil {
		logger.Error("[Main] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appConfig *config.Config, logger *internal.Logger) error {
	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer appContainer.Shutdown(context.Background())

	// The dashboard cannot render anything without the base dataset
	snap, err := appContainer.Store.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Main] Loaded snapshot %s: %d strata from %s", snap.ID, snap.Report.RowsOut, snap.Source)

	gin.SetMode(appConfig.Server.GinMode)
	server := ui.NewServer(appContainer.Explorer, appContainer.Store, logger)

	servers := []*http.Server{{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if appConfig.Profiling.Enabled {
		ops := ui.NewOpsApp(appContainer.Store, ui.OpsConfig{Profiling: true})
		servers = append(servers, &http.Server{
			Addr:              ":" + appConfig.Profiling.Port,
			Handler:           ops.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
		logger.Info("[Main] Ops server on :%s (healthz, readyz, metrics, debug/pprof)", appConfig.Profiling.Port)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("[Main] Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("[Main] Shutting down")
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("[Main] shutdown %s: %v", srv.Addr, err)
			}
		}
		return nil
	})
	return g.Wait()
}
