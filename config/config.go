package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"kestralog/version"
)

// Config holds kestralog runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string

	// Remote Kestra server
	KestraURL    string
	KestraTenant string
	KestraToken  string

	// KestraURLSet is true when the server URL was given explicitly via
	// KESTRA_URL or --server, as opposed to being the built-in default.
	KestraURLSet bool

	// HTTP client tuning
	HTTPTimeoutSeconds int

	// Gateway mode
	GatewayMode  bool
	Port         int
	GatewayToken string

	// Local archive database
	DatabaseURL         string
	SQLiteBusyTimeoutMS int
	SQLiteMaxOpenConns  int
	SQLiteMaxIdleConns  int

	// CLI defaults
	SearchPageSize int
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFilePath: getEnv("LOG_FILE", "./kestralog.log"),

		KestraURL:    getEnv("KESTRA_URL", "http://localhost:8080"),
		KestraURLSet: os.Getenv("KESTRA_URL") != "",
		KestraTenant: getEnv("KESTRA_TENANT", "main"),
		KestraToken:  getEnv("KESTRA_TOKEN", ""),

		HTTPTimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 30),

		GatewayMode:  getEnvBool("GATEWAY_MODE", false),
		Port:         getEnvInt("PORT", 7799),
		GatewayToken: getEnv("GATEWAY_TOKEN", ""),

		DatabaseURL:         getEnv("DATABASE_URL", "kestralog.db"),
		SQLiteBusyTimeoutMS: getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteMaxOpenConns:  getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:  getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),

		SearchPageSize: getEnvInt("SEARCH_PAGE_SIZE", 25),
	}
}

// ParseFlags parses command-line flags, applies any overrides to the package-level Settings, and updates configuration accordingly.
// It also provides a custom usage message and handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "kestralog - Kestra log API client\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  KESTRA_URL               Kestra server URL (default http://localhost:8080)")
		fmt.Fprintln(out, "  KESTRA_TENANT            Kestra tenant (default main)")
		fmt.Fprintln(out, "  KESTRA_TOKEN             Bearer token for the Kestra API")
		fmt.Fprintln(out, "  LOG_LEVEL                Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                 Log file path (default ./kestralog.log)")
		fmt.Fprintln(out, "  HTTP_TIMEOUT_SECONDS     HTTP client timeout in seconds (default 30)")
		fmt.Fprintln(out, "  GATEWAY_MODE             Run the local gateway server (true/false, default false)")
		fmt.Fprintln(out, "  PORT                     Gateway HTTP port (default 7799)")
		fmt.Fprintln(out, "  GATEWAY_TOKEN            Access token required by the gateway (empty = open)")
		fmt.Fprintln(out, "  DATABASE_URL             SQLite archive path (default kestralog.db)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS   SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS    SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS    SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  SEARCH_PAGE_SIZE         Default page size for log search (default 25)")
	}

	server := flag.String("server", Settings.KestraURL, "Kestra server URL (overrides KESTRA_URL)")
	tenant := flag.String("tenant", Settings.KestraTenant, "Kestra tenant (overrides KESTRA_TENANT)")
	token := flag.String("token", Settings.KestraToken, "Bearer token for the Kestra API (overrides KESTRA_TOKEN)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	httpTimeout := flag.Int("http-timeout", Settings.HTTPTimeoutSeconds, "HTTP client timeout in seconds (overrides HTTP_TIMEOUT_SECONDS)")
	gateway := flag.Bool("gateway", Settings.GatewayMode, "Run the local gateway server instead of the CLI (overrides GATEWAY_MODE)")
	port := flag.Int("port", Settings.Port, "Gateway HTTP port (overrides PORT)")
	gatewayToken := flag.String("gateway-token", Settings.GatewayToken, "Access token required by the gateway (overrides GATEWAY_TOKEN)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite archive path (overrides DATABASE_URL)")
	pageSize := flag.Int("page-size", Settings.SearchPageSize, "Default page size for log search (overrides SEARCH_PAGE_SIZE)")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "server" {
			Settings.KestraURLSet = true
		}
	})

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.KestraURL = *server
	Settings.KestraTenant = *tenant
	Settings.KestraToken = *token
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.HTTPTimeoutSeconds = *httpTimeout
	Settings.GatewayMode = *gateway
	Settings.Port = *port
	Settings.GatewayToken = *gatewayToken
	Settings.DatabaseURL = *db
	Settings.SearchPageSize = *pageSize
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
