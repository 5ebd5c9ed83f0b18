// Package app provides application initialization and lifecycle management
// for the CSV relay server. It wires configuration loading, logging, metrics,
// the hosting-service client, the relay and health services, the chi router,
// and graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and optional YAML file
//	2. Initialize the JSON logger and resolve filesystem paths
//	3. Construct the hosting-service client and relay/health services
//	4. Assemble the router with the full middleware chain
//	5. Create the HTTP server with configured timeouts
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    slog.Error("failed to initialize", "error", err)
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and releases the log file handle last.
//
// # Error Handling
//
// All initialization errors are returned to the caller for proper handling.
// The app does not call os.Exit() directly, allowing the main function to
// control the exit process.
package app
