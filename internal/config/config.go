package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Upstream mode constants
	ModeHTTP = "http"
	ModeStub = "stub"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMemoryThreshold = 2 * 1024 * 1024   // 2MB - larger uploads are spooled to disk
	DefaultChunkSize       = 64 * 1024         // 64KB chunks for spooling
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultUpstreamTimeout = 30 * time.Second

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the W-2 intake server
type Config struct {
	// Server configuration
	Host          string
	Port          int
	AllowedOrigin string

	// Upload handling configuration
	MemoryThreshold int64  // Uploads above this size are spooled to disk
	ChunkSize       int64  // Chunk size used when spooling
	MaxFileSize     int64  // Maximum accepted upload size in bytes
	TempDir         string // Scratch space for spooled uploads

	// Upstream (third-party) configuration
	UpstreamMode    string // "http" for real endpoints, "stub" for in-process
	ReportURL       string
	UploadURL       string
	APISecret       string
	UpstreamTimeout time.Duration

	// Submission history configuration
	StorePath string // Empty disables the history store

	// Application configuration
	Version     string
	ServiceName string
	LogLevel    string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		AllowedOrigin:   "*",
		MemoryThreshold: DefaultMemoryThreshold,
		ChunkSize:       DefaultChunkSize,
		MaxFileSize:     DefaultMaxFileSize,
		TempDir:         os.TempDir(),
		UpstreamMode:    ModeStub, // Default to stub so the service runs without upstream credentials
		UpstreamTimeout: DefaultUpstreamTimeout,
		StorePath:       "",
		Version:         "1.0.0",
		ServiceName:     "w2-intake",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("W2_INTAKE")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("origin", cfg.AllowedOrigin)
	viper.SetDefault("memthreshold", cfg.MemoryThreshold)
	viper.SetDefault("chunksize", cfg.ChunkSize)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("tempdir", cfg.TempDir)
	viper.SetDefault("upstream", cfg.UpstreamMode)
	viper.SetDefault("reporturl", cfg.ReportURL)
	viper.SetDefault("uploadurl", cfg.UploadURL)
	viper.SetDefault("apisecret", cfg.APISecret)
	viper.SetDefault("timeout", cfg.UpstreamTimeout)
	viper.SetDefault("storepath", cfg.StorePath)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("origin", cfg.AllowedOrigin, "Allowed CORS origin for browser clients")
	pflag.Int64("memthreshold", cfg.MemoryThreshold, "Uploads above this size (bytes) are spooled to disk")
	pflag.Int64("chunksize", cfg.ChunkSize, "Chunk size in bytes used when spooling large uploads")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum accepted upload size in bytes")
	pflag.String("tempdir", cfg.TempDir, "Directory for request-scoped scratch files")
	pflag.String("upstream", cfg.UpstreamMode, "Upstream mode: 'http' for real endpoints, 'stub' for in-process")
	pflag.String("reporturl", cfg.ReportURL, "Third-party data reporting endpoint (http mode)")
	pflag.String("uploadurl", cfg.UploadURL, "Third-party file upload endpoint (http mode)")
	pflag.String("apisecret", cfg.APISecret, "Shared secret sent to third-party endpoints")
	pflag.Duration("timeout", cfg.UpstreamTimeout, "Timeout for third-party API calls")
	pflag.String("storepath", cfg.StorePath, "Submission history database path (empty disables history)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("origin", pflag.Lookup("origin"))
	_ = viper.BindPFlag("memthreshold", pflag.Lookup("memthreshold"))
	_ = viper.BindPFlag("chunksize", pflag.Lookup("chunksize"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("tempdir", pflag.Lookup("tempdir"))
	_ = viper.BindPFlag("upstream", pflag.Lookup("upstream"))
	_ = viper.BindPFlag("reporturl", pflag.Lookup("reporturl"))
	_ = viper.BindPFlag("uploadurl", pflag.Lookup("uploadurl"))
	_ = viper.BindPFlag("apisecret", pflag.Lookup("apisecret"))
	_ = viper.BindPFlag("timeout", pflag.Lookup("timeout"))
	_ = viper.BindPFlag("storepath", pflag.Lookup("storepath"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nW-2 Intake Server - extracts W-2 fields from uploaded PDFs and reports them upstream\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stub upstream on 127.0.0.1:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081               # listen on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --upstream=http --reporturl=URL --uploadurl=URL --apisecret=SECRET\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_ORIGIN        Allowed CORS origin\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_MEMTHRESHOLD  Spooling threshold in bytes\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_CHUNKSIZE     Spooling chunk size in bytes\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_MAXFILESIZE   Maximum upload size in bytes\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_TEMPDIR       Scratch directory\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_UPSTREAM      Upstream mode (http or stub)\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_REPORTURL     Third-party report endpoint\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_UPLOADURL     Third-party upload endpoint\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_APISECRET     Shared secret for third-party calls\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_TIMEOUT       Third-party call timeout\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_STOREPATH     Submission history database path\n")
		fmt.Fprintf(os.Stderr, "  W2_INTAKE_LOGLEVEL      Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.AllowedOrigin = viper.GetString("origin")
	cfg.MemoryThreshold = viper.GetInt64("memthreshold")
	cfg.ChunkSize = viper.GetInt64("chunksize")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.TempDir = viper.GetString("tempdir")
	cfg.UpstreamMode = viper.GetString("upstream")
	cfg.ReportURL = viper.GetString("reporturl")
	cfg.UploadURL = viper.GetString("uploadurl")
	cfg.APISecret = viper.GetString("apisecret")
	cfg.UpstreamTimeout = viper.GetDuration("timeout")
	cfg.StorePath = viper.GetString("storepath")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate upload sizing
	if c.MemoryThreshold <= 0 {
		return errors.New("memory threshold must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.MaxFileSize < c.MemoryThreshold {
		return errors.New("maximum file size cannot be below the memory threshold")
	}

	// Validate scratch directory, create if it doesn't exist
	if c.TempDir == "" {
		return errors.New("temp directory cannot be empty")
	}
	if _, err := os.Stat(c.TempDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.TempDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create temp directory %s: %w", c.TempDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access temp directory %s: %w", c.TempDir, err)
	}

	// Validate upstream mode
	switch c.UpstreamMode {
	case ModeStub:
	case ModeHTTP:
		if err := validateEndpoint("reporturl", c.ReportURL); err != nil {
			return err
		}
		if err := validateEndpoint("uploadurl", c.UploadURL); err != nil {
			return err
		}
		if c.APISecret == "" {
			return errors.New("apisecret is required in http upstream mode")
		}
	default:
		return errors.New("upstream mode must be either 'http' or 'stub'")
	}

	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream timeout must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// validateEndpoint checks that a configured upstream endpoint is an absolute URL
func validateEndpoint(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required in http upstream mode", name)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL: %q", name, raw)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsStubUpstream returns true if the in-process stub upstream is selected
func (c *Config) IsStubUpstream() bool {
	return c.UpstreamMode == ModeStub
}

// HistoryEnabled returns true if submission history recording is configured
func (c *Config) HistoryEnabled() bool {
	return c.StorePath != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, Upstream: %s, MemoryThreshold: %d, MaxFileSize: %d, LogLevel: %s}",
		c.Host, c.Port, c.UpstreamMode, c.MemoryThreshold, c.MaxFileSize, c.LogLevel)
}
