package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"nsecli/internal/app"
)

// Build metadata, stamped via -ldflags at release time. The API
// surface reports the application version from the app package; these
// identify the binary itself.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("relay %s (built %s)\n", Version, BuildTime)
		return
	}

	// Create application instance
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start application
	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
