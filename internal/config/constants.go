package config

// Application constants shared by the fetcher and relay binaries
const (
	AppName    = "NSE Data Tools"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces every environment variable (NSE_SERVER_PORT, ...)
	EnvPrefix = "NSE"
)
