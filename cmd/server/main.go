package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	router "github.com/dkeye/LiveSession/internal/adapters/http"
	"github.com/dkeye/LiveSession/internal/adapters/rtc"
	relay "github.com/dkeye/LiveSession/internal/adapters/signal"
	"github.com/dkeye/LiveSession/internal/app"
	"github.com/dkeye/LiveSession/internal/app/orch"
	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/dkeye/LiveSession/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Live session signaling server",
	Long:  `Creates shareable live sessions and relays WebRTC signaling between the admin and the student of each session room.`,
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the postgres tables and exit",
	RunE:  migrate,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	pf.Int("port", 0, "listen port")
	pf.String("mode", "", "gin mode: debug, release or test")
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return cfg, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	ice, err := rtc.ICEServers(cfg.ICEServers)
	if err != nil {
		return err
	}

	m := metrics.New()
	reg := app.NewRegistry(st, app.WithMetrics(m))

	var policy app.Policy = app.DropPolicy{}
	if cfg.Relay.KickSlow {
		policy = app.KickPolicy{}
	}
	hub := orch.New(relay.Encoder{}, policy, m)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	r := router.SetupRouter(ctx, router.Deps{
		Cfg:        cfg,
		Registry:   reg,
		Hub:        hub,
		Metrics:    m,
		ICEServers: ice,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.Store.Driver).Msg("LiveSession server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		<-hubDone
		return fmt.Errorf("listen: %w", err)
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-hubDone
	log.Info().Msg("Server exited gracefully")
	return nil
}

func migrate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pg, err := store.OpenPostgres(ctx, cfg.Store.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := store.Migrate(ctx, pg.DB()); err != nil {
		return err
	}
	log.Info().Msg("migration complete")
	return nil
}
