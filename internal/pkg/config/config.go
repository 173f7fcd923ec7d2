package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned by Validate for an unusable configuration.
var ErrInvalid = errors.New("invalid config")

// Store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	State     StateConfig             `yaml:"state"`
	Telegram  TelegramConfig          `yaml:"telegram"`
	Webhook   WebhookConfig           `yaml:"webhook"`
	Kafka     KafkaConfig             `yaml:"kafka"`
	Sources   map[string]SourceConfig `yaml:"sources"`
	Transport TransportConfig         `yaml:"transport"`
	Timezone  string                  `yaml:"timezone"`
	Logging   LoggingConfig           `yaml:"logging"`
	Metrics   MetricsConfig           `yaml:"metrics"`
	Bot       BotConfig               `yaml:"bot"`
	Report    ReportConfig            `yaml:"report"`
	Probe     ProbeConfig             `yaml:"probe"`
}

type StateConfig struct {
	Backend       string `yaml:"backend"`        // file | postgres | redis
	Path          string `yaml:"path"`           // state file for the file backend
	DSN           string `yaml:"dsn"`            // postgres
	RedisAddr     string `yaml:"redis_addr"`     // redis
	RedisKey      string `yaml:"redis_key"`      // redis hash holding the competitions
	RetentionDays int    `yaml:"retention_days"` // default 7
}

// RetentionWindow is the maximum age of a stored competition.
func (s StateConfig) RetentionWindow() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

type TelegramConfig struct {
	Token        string        `yaml:"token"`
	ChatID       string        `yaml:"chat_id"` // numeric id or @channel
	Timeout      time.Duration `yaml:"timeout"`
	SendInterval time.Duration `yaml:"send_interval"` // min gap between two messages
}

type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SourceConfig configures one bookmaker fetcher.
type SourceConfig struct {
	Enabled    bool          `yaml:"enabled"`
	SportIDs   []string      `yaml:"sport_ids"`
	UseTor     bool          `yaml:"use_tor"`
	UseBrowser bool          `yaml:"use_browser"`
	ProxyList  []string      `yaml:"proxy_list"` // tried in order
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type TransportConfig struct {
	TorProxy  string        `yaml:"tor_proxy"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // optional JSON log file
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node-exporter textfile written after each run
}

type BotConfig struct {
	Addr           string  `yaml:"addr"`
	Schedule       string  `yaml:"schedule"` // cron spec, empty disables scheduled runs
	ListLimit      int     `yaml:"list_limit"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids"`
	UpdateTimeout  int     `yaml:"update_timeout"`
}

type ReportConfig struct {
	ExportDir string  `yaml:"export_dir"`
	Bookmaker string  `yaml:"bookmaker"`
	Kelly     float64 `yaml:"kelly"`
	Stake     float64 `yaml:"stake"`
}

type ProbeConfig struct {
	Retries  int           `yaml:"retries"`
	MinPause time.Duration `yaml:"min_pause"`
	MaxPause time.Duration `yaml:"max_pause"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		State: StateConfig{
			Backend:       BackendFile,
			Path:          "data.json",
			RedisKey:      "openingalert:competitions",
			RetentionDays: 7,
		},
		Telegram: TelegramConfig{
			Timeout:      30 * time.Second,
			SendInterval: time.Second,
		},
		Webhook: WebhookConfig{Timeout: 10 * time.Second},
		Kafka:   KafkaConfig{Topic: "openingalert.competitions"},
		Sources: map[string]SourceConfig{
			"betify": {
				Enabled:  true,
				SportIDs: []string{"17", "22", "43", "44", "45", "46", "48"},
				UseTor:   true,
			},
			"sportaza": {
				Enabled:  true,
				SportIDs: []string{"1359", "1393", "904", "923", "924", "1405", "1406", "1415", "2245", "1356", "1659", "893", "2239"},
			},
			"greenluck": {
				Enabled:  true,
				SportIDs: []string{"14", "15", "16", "17", "27", "28", "31", "32"},
			},
			"pinnacle": {
				Enabled:  true,
				SportIDs: []string{"42"},
				UseTor:   true,
			},
		},
		Transport: TransportConfig{
			TorProxy:  "socks5://127.0.0.1:9050",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0 Safari/537.36",
			Timeout:   15 * time.Second,
		},
		Timezone: "Europe/Paris",
		Logging:  LoggingConfig{Level: "info"},
		Bot: BotConfig{
			Addr:          ":8080",
			ListLimit:     30,
			UpdateTimeout: 60,
		},
		Report: ReportConfig{
			ExportDir: "exports",
			Bookmaker: "betify",
			Kelly:     4,
			Stake:     20,
		},
		Probe: ProbeConfig{
			Retries:  3,
			MinPause: 3 * time.Second,
			MaxPause: 7 * time.Second,
		},
	}
}

// Location returns the display time zone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Source returns the settings of one bookmaker.
func (c *Config) Source(name string) (SourceConfig, bool) {
	s, ok := c.Sources[name]
	return s, ok
}

// SourceTimeout returns the per-source timeout, falling back to the transport default.
func (c *Config) SourceTimeout(name string) time.Duration {
	if s, ok := c.Sources[name]; ok && s.Timeout > 0 {
		return s.Timeout
	}
	if c.Transport.Timeout > 0 {
		return c.Transport.Timeout
	}
	return 15 * time.Second
}

func (c *Config) Validate() error {
	if c.State.RetentionDays <= 0 {
		return fmt.Errorf("%w: state.retention_days must be > 0, got %d", ErrInvalid, c.State.RetentionDays)
	}
	switch c.State.Backend {
	case BackendFile:
		if c.State.Path == "" {
			return fmt.Errorf("%w: state.path is required for the file backend", ErrInvalid)
		}
	case BackendPostgres:
		if c.State.DSN == "" {
			return fmt.Errorf("%w: state.dsn is required for the postgres backend", ErrInvalid)
		}
	case BackendRedis:
		if c.State.RedisAddr == "" {
			return fmt.Errorf("%w: state.redis_addr is required for the redis backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown state.backend %q", ErrInvalid, c.State.Backend)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	if c.Probe.MaxPause < c.Probe.MinPause {
		return fmt.Errorf("%w: probe.max_pause must be >= probe.min_pause", ErrInvalid)
	}
	return nil
}
