// Command overlap runs comparisons, gap detection and search on local
// workbooks without starting the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/overlap/internal/config"
	"github.com/JonMunkholm/overlap/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; the process environment wins over it.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, newRootCmd(cfg), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
