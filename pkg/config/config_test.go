package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
provider:
  transport: websocket
  websocket_url: wss://stream.example.com/v1
  api_key: test-key
analytics:
  base_url: http://analytics:9000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Provider.ReconnectBase != time.Second || cfg.Provider.ReconnectMax != 30*time.Second {
		t.Fatalf("reconnect defaults = %v / %v", cfg.Provider.ReconnectBase, cfg.Provider.ReconnectMax)
	}
	if cfg.Provider.MaxReconnectAttempts != 10 {
		t.Fatalf("max attempts = %d", cfg.Provider.MaxReconnectAttempts)
	}
	if cfg.Analytics.Scorer != "linear" {
		t.Fatalf("scorer = %q", cfg.Analytics.Scorer)
	}
	if cfg.Signals.CacheTTL != 30*time.Second {
		t.Fatalf("cache ttl = %v", cfg.Signals.CacheTTL)
	}
	if cfg.Tap.TopicPrefix != "market.data" {
		t.Fatalf("topic prefix = %q", cfg.Tap.TopicPrefix)
	}
}

func TestValidateTransportRequirements(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "websocket without url",
			yaml: `
provider:
  transport: websocket
  api_key: k
analytics:
  base_url: http://a
`,
			wantErr: "websocket_url",
		},
		{
			name: "polling without rest url",
			yaml: `
provider:
  transport: polling
  api_key: k
analytics:
  base_url: http://a
`,
			wantErr: "rest_base_url",
		},
		{
			name: "unknown transport",
			yaml: `
provider:
  transport: carrier-pigeon
  api_key: k
analytics:
  base_url: http://a
`,
			wantErr: "transport",
		},
		{
			name: "missing api key",
			yaml: `
provider:
  transport: websocket
  websocket_url: wss://x
analytics:
  base_url: http://a
`,
			wantErr: "api_key",
		},
		{
			name: "tap without brokers",
			yaml: minimalYAML + `
tap:
  enabled: true
`,
			wantErr: "kafka.brokers",
		},
		{
			name: "clickhouse without host",
			yaml: minimalYAML + `
clickhouse:
  enabled: true
`,
			wantErr: "clickhouse.host",
		},
		{
			name: "bad scorer",
			yaml: `
provider:
  transport: websocket
  websocket_url: wss://stream.example.com/v1
  api_key: test-key
analytics:
  base_url: http://a
  scorer: oracle
`,
			wantErr: "scorer",
		},
	}
	for _, tc := range cases {
		_, err := Load(writeConfig(t, tc.yaml))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: error %v does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PROVIDER_API_KEY", "env-key")
	t.Setenv("PROVIDER_TRANSPORT", "polling")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, `
provider:
  transport: websocket
  websocket_url: wss://x
  rest_base_url: https://api.example.com
  api_key: file-key
analytics:
  base_url: http://a
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Fatalf("api key = %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Transport != "polling" {
		t.Fatalf("transport = %q", cfg.Provider.Transport)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
}
