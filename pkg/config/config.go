package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Provider struct {
		Transport            string        `yaml:"transport" default:"websocket"` // websocket or polling
		WebSocketURL         string        `yaml:"websocket_url"`
		RESTBaseURL          string        `yaml:"rest_base_url"`
		APIKey               string        `yaml:"api_key"`
		PollInterval         time.Duration `yaml:"poll_interval" default:"5s"`
		HandshakeTimeout     time.Duration `yaml:"handshake_timeout" default:"15s"`
		ConnectTimeout       time.Duration `yaml:"connect_timeout" default:"10s"`
		HeartbeatInterval    time.Duration `yaml:"heartbeat_interval" default:"30s"`
		ReconnectBase        time.Duration `yaml:"reconnect_base" default:"1s"`
		ReconnectMax         time.Duration `yaml:"reconnect_max" default:"30s"`
		MaxReconnectAttempts int           `yaml:"max_reconnect_attempts" default:"10"`
		ConfirmTimeout       time.Duration `yaml:"confirm_timeout" default:"5s"`
		HealthMaxSilence     time.Duration `yaml:"health_max_silence" default:"2m"`
	} `yaml:"provider"`
	Tap struct {
		Enabled     bool   `yaml:"enabled"`
		TopicPrefix string `yaml:"topic_prefix" default:"market.data"`
		MaxRPS      int    `yaml:"max_rps" default:"20"`
		BufferSize  int    `yaml:"buffer_size" default:"1000"`
	} `yaml:"tap"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"marketpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		BarFrequency     string        `yaml:"bar_frequency" default:"1min"`
	} `yaml:"clickhouse"`
	Analytics struct {
		BaseURL      string        `yaml:"base_url"`
		Timeout      time.Duration `yaml:"timeout" default:"3s"`
		Scorer       string        `yaml:"scorer" default:"linear"` // linear or stochastic
		ScorerJitter float64       `yaml:"scorer_jitter" default:"0.1"`
		ScorerSeed   int64         `yaml:"scorer_seed" default:"1"`
	} `yaml:"analytics"`
	Signals struct {
		CacheTTL    time.Duration `yaml:"cache_ttl" default:"30s"`
		HistoryFreq string        `yaml:"history_freq" default:"1day"`
		Redis       struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"signals"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("PROVIDER_TRANSPORT"); v != "" {
		c.Provider.Transport = v
	}
	if v := os.Getenv("PROVIDER_WS_URL"); v != "" {
		c.Provider.WebSocketURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Signals.Redis.Addr = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Provider.Transport {
	case "websocket":
		if c.Provider.WebSocketURL == "" {
			return fmt.Errorf("provider.websocket_url is required for the websocket transport")
		}
	case "polling":
		if c.Provider.RESTBaseURL == "" {
			return fmt.Errorf("provider.rest_base_url is required for the polling transport")
		}
	default:
		return fmt.Errorf("provider.transport must be 'websocket' or 'polling', got '%s'", c.Provider.Transport)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	if c.Tap.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when the tap is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Analytics.BaseURL == "" {
		return fmt.Errorf("analytics.base_url is required")
	}
	switch c.Analytics.Scorer {
	case "linear", "stochastic":
	default:
		return fmt.Errorf("analytics.scorer must be 'linear' or 'stochastic', got '%s'", c.Analytics.Scorer)
	}
	return nil
}
