package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// BusyPolicy decides what happens when a signal is admitted while a
// session is already live.
type BusyPolicy string

const (
	// BusyReject drops the new signal and keeps the live session.
	BusyReject BusyPolicy = "reject"
	// BusySupersede tears down the live session and presents the new call.
	BusySupersede BusyPolicy = "supersede"
)

// Platform selects the native call UI variant.
type Platform string

const (
	PlatformCallKit Platform = "callkit"
	PlatformTelecom Platform = "telecom"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Call      CallConfig
	Bridge    BridgeConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// CallConfig holds call engine tunables.
type CallConfig struct {
	Platform Platform `envconfig:"CALL_PLATFORM" default:"callkit"`

	// StaleThreshold rejects signals whose sent time is older than this.
	StaleThreshold time.Duration `envconfig:"CALL_STALE_THRESHOLD" default:"5m"`

	// DedupCapacity bounds the seen-message window.
	DedupCapacity int `envconfig:"CALL_DEDUP_CAPACITY" default:"5"`

	// RingTimeout ends an unanswered session.
	RingTimeout time.Duration `envconfig:"CALL_RING_TIMEOUT" default:"60s"`

	// AnswerResolveDelay is the gap between the foreground request and
	// resolving the presented call. Resolving too early can race with the
	// platform's own foreground promotion. Platform-dependent.
	AnswerResolveDelay time.Duration `envconfig:"CALL_ANSWER_RESOLVE_DELAY" default:"250ms"`

	// BusyPolicy selects the live-session collision behavior.
	BusyPolicy BusyPolicy `envconfig:"CALL_BUSY_POLICY" default:"reject"`
}

// BridgeConfig holds embedded-content bridge configuration.
type BridgeConfig struct {
	ShellURL string `envconfig:"BRIDGE_SHELL_URL" default:"https://app.voxshell.io"`
	Version  string `envconfig:"BRIDGE_APP_VERSION" default:"dev"`
}

// StorageConfig holds persisted state configuration.
type StorageConfig struct {
	StateDir    string `envconfig:"STATE_DIR" default:"/tmp/voxshell-state"`
	TransferDir string `envconfig:"TRANSFER_DIR" default:"/tmp/voxshell-files"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the call engine cannot run with.
func (c *Config) Validate() error {
	switch c.Call.BusyPolicy {
	case BusyReject, BusySupersede:
	default:
		return fmt.Errorf("invalid busy policy: %q", c.Call.BusyPolicy)
	}
	switch c.Call.Platform {
	case PlatformCallKit, PlatformTelecom:
	default:
		return fmt.Errorf("invalid call platform: %q", c.Call.Platform)
	}
	if c.Call.DedupCapacity < 1 {
		return fmt.Errorf("dedup capacity must be positive, got %d", c.Call.DedupCapacity)
	}
	if c.Call.StaleThreshold <= 0 {
		return fmt.Errorf("stale threshold must be positive, got %s", c.Call.StaleThreshold)
	}
	if c.Call.RingTimeout <= 0 {
		return fmt.Errorf("ring timeout must be positive, got %s", c.Call.RingTimeout)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Call: CallConfig{
			Platform:           PlatformCallKit,
			StaleThreshold:     5 * time.Minute,
			DedupCapacity:      5,
			RingTimeout:        60 * time.Second,
			AnswerResolveDelay: 250 * time.Millisecond,
			BusyPolicy:         BusyReject,
		},
		Bridge: BridgeConfig{
			ShellURL: "https://app.voxshell.io",
			Version:  "dev",
		},
		Storage: StorageConfig{
			StateDir:    "/tmp/voxshell-state",
			TransferDir: "/tmp/voxshell-files",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
