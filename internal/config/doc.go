// Package config provides centralized configuration management for both
// binaries. It handles loading configuration from multiple sources,
// validation, and path resolution relative to the executable.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (config.yaml / configs/config.yaml)
//	3. Struct defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NSE_* for namespacing:
//
//	NSE_SERVER_PORT=8080
//	NSE_FETCH_OUTPUT_DIR=/var/lib/nse/downloads
//	NSE_RELAY_API_KEY=...
//	NSE_RELAY_TEMPLATE_ID=...
//	NSE_LOGGING_LEVEL=info
//
// # Path Management
//
// The Paths type is the single source of truth for filesystem locations.
// Everything resolves against the executable directory, never the
// working directory:
//
//	paths, _ := config.GetPaths()
//	dest := paths.GetDownloadPath("cm_bhavcopy_02012026.zip")
//
// # Validation
//
// Load validates the merged configuration with struct tags
// (go-playground/validator): port ranges, positive timeouts, URL shape.
// Relay credentials are checked separately by ValidateRelay so the
// fetcher can run without them.
package config
