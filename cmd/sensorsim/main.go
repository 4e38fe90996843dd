// Command sensorsim posts synthetic PM samples to a running feedd instance.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dustfeed/dustfeed/internal/config"
	"github.com/dustfeed/dustfeed/internal/httpx"
	"github.com/dustfeed/dustfeed/internal/sensorsim"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadSensorSim()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := httpx.NewClient(10*time.Second, 2)
	sensorsim.Run(ctx, cfg, client)
}
