// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment the app runs in
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	default:
		return "dev"
	}
}

// ParseEnvironment converts the ENV value into an Environment
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// Favorites storage backends
const (
	FavoritesFile   = "file"
	FavoritesSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	DataDir          string
	FavoritesBackend string
	FavoritesPath    string
	PageSize         int
	Debounce         time.Duration
	SessionTTL       time.Duration
	SessionSweep     time.Duration
	MaxSessions      int

	// SearchFields overrides the searched fields per dataset, keyed by
	// dataset name (e.g. "formulary").
	SearchFields map[string][]string
}

// Datasets whose searched fields may be overridden with SEARCH_FIELDS_<NAME>
var searchFieldDatasets = []string{"formulary", "antibiotics", "dilution", "paediatric", "frank-shann", "counseling"}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		DataDir:          getEnvWithDefault("DATA_DIR", "data"),
		FavoritesBackend: strings.ToLower(getEnvWithDefault("FAVORITES_BACKEND", FavoritesFile)),
		FavoritesPath:    os.Getenv("FAVORITES_PATH"),
		PageSize:         getIntEnvWithDefault("PAGE_SIZE", 20),
		Debounce:         time.Duration(getIntEnvWithDefault("DEBOUNCE_MS", 300)) * time.Millisecond,
		SessionTTL:       time.Duration(getIntEnvWithDefault("SESSION_TTL_MINUTES", 30)) * time.Minute,
		SessionSweep:     time.Duration(getIntEnvWithDefault("SESSION_SWEEP_SECONDS", 60)) * time.Second,
		MaxSessions:      getIntEnvWithDefault("MAX_SESSIONS", 100),
		SearchFields:     map[string][]string{},
	}

	if cfg.FavoritesPath == "" {
		if cfg.FavoritesBackend == FavoritesSQLite {
			cfg.FavoritesPath = "favorites.db"
		} else {
			cfg.FavoritesPath = "favorites.json"
		}
	}

	for _, name := range searchFieldDatasets {
		key := "SEARCH_FIELDS_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if fields := splitList(os.Getenv(key)); len(fields) > 0 {
			cfg.SearchFields[name] = fields
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	// Validate PORT
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	// Validate ADDRESS
	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	// Validate LOG_LEVEL
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Validate MAX_REQUEST_BODY
	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	// Validate MAX_HEADER_SIZE
	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	// Validate LOG_RETENTION_WEEKS
	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	// Validate MAX_LOG_FILE_SIZE
	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if cfg.DataDir == "" {
		return fmt.Errorf("invalid DATA_DIR: DATA_DIR cannot be empty")
	}

	if err := validateFavoritesBackend(cfg.FavoritesBackend); err != nil {
		return fmt.Errorf("invalid FAVORITES_BACKEND: %w", err)
	}

	if err := validateRange(cfg.PageSize, 1, 200, "PAGE_SIZE"); err != nil {
		return fmt.Errorf("invalid PAGE_SIZE: %w", err)
	}

	if err := validateRange(int(cfg.Debounce/time.Millisecond), 0, 5000, "DEBOUNCE_MS"); err != nil {
		return fmt.Errorf("invalid DEBOUNCE_MS: %w", err)
	}

	if err := validateRange(int(cfg.SessionTTL/time.Minute), 1, 1440, "SESSION_TTL_MINUTES"); err != nil {
		return fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}

	if err := validateRange(int(cfg.SessionSweep/time.Second), 5, 3600, "SESSION_SWEEP_SECONDS"); err != nil {
		return fmt.Errorf("invalid SESSION_SWEEP_SECONDS: %w", err)
	}

	if err := validateRange(cfg.MaxSessions, 1, 10000, "MAX_SESSIONS"); err != nil {
		return fmt.Errorf("invalid MAX_SESSIONS: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	// Check for localhost/loopback addresses first
	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// The browser serves a single local user, public interfaces are refused
	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateFavoritesBackend validates the FAVORITES_BACKEND environment variable
func validateFavoritesBackend(backend string) error {
	switch backend {
	case FavoritesFile, FavoritesSQLite:
		return nil
	}
	return fmt.Errorf("FAVORITES_BACKEND must be one of: [%s %s], got: %s", FavoritesFile, FavoritesSQLite, backend)
}

// validateRange checks an integer setting against inclusive bounds
func validateRange(value, minValue, maxValue int, configName string) error {
	if value < minValue || value > maxValue {
		return fmt.Errorf("%s must be between %d and %d, got: %d", configName, minValue, maxValue, value)
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// splitList splits a comma separated value, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	vars := []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"DATA_DIR",
		"FAVORITES_BACKEND",
		"FAVORITES_PATH",
		"PAGE_SIZE",
		"DEBOUNCE_MS",
		"SESSION_TTL_MINUTES",
		"SESSION_SWEEP_SECONDS",
		"MAX_SESSIONS",
	}
	for _, name := range searchFieldDatasets {
		vars = append(vars, "SEARCH_FIELDS_"+strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	}
	return vars
}
