// Command convert turns a vendor product export into the catalog product
// schema without running the web server.
//
//	convert shopify_export.csv
//	convert products.xlsx -o out.xlsx --platform amazon --map price="Sale Price"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/JonMunkholm/catalogconv/internal/core/platforms" // Register all platform profiles
	"github.com/JonMunkholm/catalogconv/internal/logging"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries a process exit code alongside the error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	// A .env file is optional; it mostly supplies REFERENCE_* settings.
	_ = godotenv.Load()
	logging.SetupWriter(os.Stderr, envOr("LOG_LEVEL", "warn"), envOr("LOG_FORMAT", "text"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newConvertCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		code := exitFailure
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		os.Exit(code)
	}
	os.Exit(exitOK)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
