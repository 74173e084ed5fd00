package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/api"
	"github.com/sells-group/impact-cli/internal/store"
)

var (
	servePort    int
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the impact calculation API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		mode := "serve"
		if serveNoStore {
			mode = "calculate"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		eng := initEngine()
		lib, err := initLibrary(eng)
		if err != nil {
			return err
		}

		var st store.Store
		if !serveNoStore {
			if st, err = openStore(ctx); err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		srv := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: api.New(eng, lib, st, api.Options{
				RateLimit:      cfg.Server.RateLimit,
				RateBurst:      cfg.Server.RateBurst,
				CORSOrigins:    cfg.Server.CORSOrigins,
				DefaultID:      defaultMethodologyID(),
				RequestTimeout: 30 * time.Second,
			}).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.Int("methodologies", lib.Len()),
			zap.Bool("store", st != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "serve calculations without persistence")
	rootCmd.AddCommand(serveCmd)
}
