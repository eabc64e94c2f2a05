package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api"
)

// RunServe runs the review API until ctx is cancelled, then drains
// in-flight requests.
func RunServe(ctx context.Context, app *App, port int) error {
	apiCfg := api.Config{
		Port:           app.Config.API.Port,
		AllowedOrigins: app.Config.API.AllowedOrigins,
	}
	if port > 0 {
		apiCfg.Port = port
	}

	server := api.NewServer(apiCfg, app.Service, app.Logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		app.Logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("server shutdown error", slog.Any("error", err))
		}
	}()

	// Start blocks until shutdown
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	app.Logger.Info("server stopped")
	return nil
}
