package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/beadhub/beadhub/internal/app"
	"github.com/beadhub/beadhub/internal/config"
	"github.com/beadhub/beadhub/internal/ephemeral"
	"github.com/beadhub/beadhub/internal/httpapi"
	"github.com/beadhub/beadhub/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, outbox dispatcher, and SSE event bus",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitCode = 1
		return err
	}

	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	st, err := openStoreWithRetry(ctx, cfg, log)
	if err != nil {
		exitCode = 2
		return err
	}
	defer st.Close()

	eph, err := ephemeral.Open(cfg.RedisURL)
	if err != nil {
		exitCode = 2
		return err
	}
	defer eph.Close()

	if err := st.Migrate(ctx); err != nil {
		exitCode = 1
		return err
	}

	a := app.New(cfg, log, st, eph)

	srv := httpapi.New(a)
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	go a.Dispatcher.Run(dispatcherCtx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case sig := <-sigCh:
		log.Info().Msg("signal received, draining")
		cancelDispatcher()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DrainTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("forced listener close after drain timeout")
		}
		exitCode = 0
		if sig == syscall.SIGINT {
			exitCode = 130
		}
		return nil
	case err := <-serveErr:
		exitCode = 1
		return err
	}
}

// openStoreWithRetry backs off across a handful of boot-time connection
// attempts before giving up, the way a service launched alongside its own
// database in the same deploy should tolerate a cold dependency.
func openStoreWithRetry(ctx context.Context, cfg config.Config, log zerolog.Logger) (*store.Store, error) {
	const attempts = 5
	backoff := 500 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		st, err := store.Open(ctx, cfg.DatabaseURL)
		if err == nil {
			return st, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i+1).Msg("database unreachable, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
