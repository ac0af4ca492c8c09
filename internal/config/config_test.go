package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.Host != DefaultHost {
		t.Errorf("Expected host %s, got %s", DefaultHost, cfg.Host)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Expected port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.MemoryThreshold != DefaultMemoryThreshold {
		t.Errorf("Expected memory threshold %d, got %d", int64(DefaultMemoryThreshold), cfg.MemoryThreshold)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("Expected chunk size %d, got %d", int64(DefaultChunkSize), cfg.ChunkSize)
	}
	if cfg.UpstreamMode != ModeStub {
		t.Errorf("Expected default upstream mode %q, got %q", ModeStub, cfg.UpstreamMode)
	}
	if cfg.UpstreamTimeout != DefaultUpstreamTimeout {
		t.Errorf("Expected upstream timeout %v, got %v", DefaultUpstreamTimeout, cfg.UpstreamTimeout)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("Expected log level %s, got %s", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.HistoryEnabled() {
		t.Error("History should be disabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tempDir := t.TempDir()

	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.TempDir = tempDir
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid stub configuration",
			modify: func(c *Config) {},
		},
		{
			name: "valid http configuration",
			modify: func(c *Config) {
				c.UpstreamMode = ModeHTTP
				c.ReportURL = "https://api.example.com/report"
				c.UploadURL = "https://api.example.com/upload"
				c.APISecret = "secret"
			},
		},
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.Port = 0 },
			wantErr: "port must be between 1 and 65535",
		},
		{
			name:    "zero memory threshold",
			modify:  func(c *Config) { c.MemoryThreshold = 0 },
			wantErr: "memory threshold must be positive",
		},
		{
			name:    "zero chunk size",
			modify:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: "chunk size must be positive",
		},
		{
			name:    "negative max file size",
			modify:  func(c *Config) { c.MaxFileSize = -1 },
			wantErr: "maximum file size must be positive",
		},
		{
			name:    "max file size below threshold",
			modify:  func(c *Config) { c.MaxFileSize = c.MemoryThreshold - 1 },
			wantErr: "maximum file size cannot be below the memory threshold",
		},
		{
			name:    "empty temp dir",
			modify:  func(c *Config) { c.TempDir = "" },
			wantErr: "temp directory cannot be empty",
		},
		{
			name:    "unknown upstream mode",
			modify:  func(c *Config) { c.UpstreamMode = "carrier-pigeon" },
			wantErr: "upstream mode must be either 'http' or 'stub'",
		},
		{
			name: "http mode without report url",
			modify: func(c *Config) {
				c.UpstreamMode = ModeHTTP
				c.UploadURL = "https://api.example.com/upload"
				c.APISecret = "secret"
			},
			wantErr: "reporturl is required",
		},
		{
			name: "http mode with relative upload url",
			modify: func(c *Config) {
				c.UpstreamMode = ModeHTTP
				c.ReportURL = "https://api.example.com/report"
				c.UploadURL = "/upload"
				c.APISecret = "secret"
			},
			wantErr: "uploadurl must be an absolute URL",
		},
		{
			name: "http mode without secret",
			modify: func(c *Config) {
				c.UpstreamMode = ModeHTTP
				c.ReportURL = "https://api.example.com/report"
				c.UploadURL = "https://api.example.com/upload"
			},
			wantErr: "apisecret is required",
		},
		{
			name:    "zero upstream timeout",
			modify:  func(c *Config) { c.UpstreamTimeout = 0 },
			wantErr: "upstream timeout must be positive",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestConfig_Validate_CreatesTempDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TempDir = filepath.Join(t.TempDir(), "scratch")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(cfg.TempDir)
	if err != nil {
		t.Fatalf("temp directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("temp directory path is not a directory")
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9090

	if got := cfg.Address(); got != "0.0.0.0:9090" {
		t.Errorf("Expected address 0.0.0.0:9090, got %s", got)
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsStubUpstream() {
		t.Error("default configuration should use the stub upstream")
	}

	cfg.UpstreamMode = ModeHTTP
	if cfg.IsStubUpstream() {
		t.Error("http mode should not report as stub upstream")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug should be true for debug log level")
	}

	cfg.StorePath = filepath.Join(t.TempDir(), "history")
	if !cfg.HistoryEnabled() {
		t.Error("HistoryEnabled should be true when a store path is set")
	}

	cfg.UpstreamTimeout = 5 * time.Second
	if !strings.Contains(cfg.String(), "Upstream: http") {
		t.Errorf("String() missing upstream mode: %s", cfg.String())
	}
}
