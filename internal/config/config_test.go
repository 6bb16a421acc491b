package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thanos-io/thanos/pkg/tracing/otlp"

	"github.com/nicolastakashi/stats-viewer/internal/controller"
	"github.com/nicolastakashi/stats-viewer/internal/table"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	configContent := `
server:
  insecure_listen_address: ":8080"
source:
  url: "https://stats.example.com/"
  variant: "fixed"
  databases_path: "bases.json"
  directory: "/srv/stats"
  timeout: "3s"
intervals:
  floor_year: 2015
metrics:
  - label: "HTTP duration"
    value: "http_duration"
  - value: "db_calls"
table:
  columns:
    - width: 10
    - width: 3
      align: right
log:
  level: "debug"
  format: "json"
memory_limit:
  enabled: true
  ratio: 0.8
cors:
  allowed_origins: ["https://example.com"]
  allowed_methods: ["GET"]
  allowed_headers: ["Content-Type"]
  allow_credentials: false
  max_age: 60
`
	DefaultConfig = NewDefaultConfig()
	t.Cleanup(func() { DefaultConfig = NewDefaultConfig() })

	err := LoadConfig(writeTempConfig(t, configContent))
	require.NoError(t, err)

	assert.Equal(t, ":8080", DefaultConfig.Server.InsecureListenAddress)
	assert.Equal(t, "https://stats.example.com/", DefaultConfig.Source.URL)
	assert.Equal(t, VariantFixed, DefaultConfig.Source.Variant)
	assert.Equal(t, "bases.json", DefaultConfig.Source.DatabasesPath)
	assert.Equal(t, "/srv/stats", DefaultConfig.Source.Directory)
	assert.Equal(t, 3*time.Second, DefaultConfig.Source.Timeout)
	assert.Equal(t, 2015, DefaultConfig.Intervals.FloorYear)
	assert.Equal(t, []MetricOption{
		{Label: "HTTP duration", Value: "http_duration"},
		{Value: "db_calls"},
	}, DefaultConfig.Metrics)
	assert.Equal(t, []ColumnConfig{{Width: 10}, {Width: 3, Align: AlignRight}}, DefaultConfig.Table.Columns)
	assert.Equal(t, "debug", DefaultConfig.Log.Level)
	assert.Equal(t, "json", DefaultConfig.Log.Format)
	assert.True(t, DefaultConfig.MemoryLimit.Enabled)
	assert.Equal(t, 0.8, DefaultConfig.MemoryLimit.Ratio)
	assert.Equal(t, []string{"https://example.com"}, DefaultConfig.CORS.AllowedOrigins)
	assert.False(t, DefaultConfig.CORS.AllowCredentials)
	assert.Equal(t, 60, DefaultConfig.CORS.MaxAge)
	assert.NoError(t, DefaultConfig.Validate())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configContent := `
intervals:
  floor_year: "invalid" # Should be int, not string
`
	DefaultConfig = NewDefaultConfig()
	t.Cleanup(func() { DefaultConfig = NewDefaultConfig() })

	err := LoadConfig(writeTempConfig(t, configContent))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config file")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	err := LoadConfig("nonexistent-file.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDefaultConfig_Initialization(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, ":9091", cfg.Server.InsecureListenAddress)
	assert.Equal(t, VariantDatabase, cfg.Source.Variant)
	assert.Equal(t, "databases.json", cfg.Source.DatabasesPath)
	assert.Equal(t, 2011, cfg.Intervals.FloorYear)
	assert.Len(t, cfg.Table.Columns, 8)
	assert.Equal(t, ColumnConfig{Width: 13}, cfg.Table.Columns[0])
	assert.Equal(t, ColumnConfig{}, cfg.Table.Columns[2])
	for _, col := range cfg.Table.Columns[3:] {
		assert.Equal(t, ColumnConfig{Width: 2, Align: AlignRight}, col)
	}
	assert.Equal(t, []string{"GET", "OPTIONS"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []MetricOption{{Value: "http_duration"}}, cfg.Metrics)
	assert.NoError(t, cfg.Validate())
}

func TestSourceConfig_PathTemplate(t *testing.T) {
	tests := []struct {
		name         string
		source       SourceConfig
		wantTemplate string
		wantSelector bool
	}{
		{
			name:         "database variant",
			source:       SourceConfig{Variant: VariantDatabase},
			wantTemplate: "{database}/{interval}/{metric}.json",
			wantSelector: true,
		},
		{
			name:         "fixed variant",
			source:       SourceConfig{Variant: VariantFixed},
			wantTemplate: "/tmp/stats_http/{interval}/{metric}.json",
			wantSelector: false,
		},
		{
			name:         "template override",
			source:       SourceConfig{Variant: VariantFixed, BasePathTemplate: "data/{interval}/{metric}.json"},
			wantTemplate: "data/{interval}/{metric}.json",
			wantSelector: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTemplate, tt.source.PathTemplate())
			assert.Equal(t, tt.wantSelector, tt.source.HasDatabaseSelector())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:     "unsupported scheme",
			mutate:   func(c *Config) { c.Source.URL = "ftp://example.com" },
			errorMsg: "only 'http' and 'https' are supported",
		},
		{
			name:     "unknown variant",
			mutate:   func(c *Config) { c.Source.Variant = "other" },
			errorMsg: "unknown source variant",
		},
		{
			name:     "template without metric",
			mutate:   func(c *Config) { c.Source.BasePathTemplate = "{database}/{interval}.json" },
			errorMsg: "missing {metric}",
		},
		{
			name:     "negative timeout",
			mutate:   func(c *Config) { c.Source.Timeout = -time.Second },
			errorMsg: "source.timeout",
		},
		{
			name:     "zero floor year",
			mutate:   func(c *Config) { c.Intervals.FloorYear = 0 },
			errorMsg: "floor_year",
		},
		{
			name:     "bad alignment",
			mutate:   func(c *Config) { c.Table.Columns[1].Align = "middle" },
			errorMsg: "unknown alignment",
		},
		{
			name:     "no metrics",
			mutate:   func(c *Config) { c.Metrics = nil },
			errorMsg: "at least one metric",
		},
		{
			name:     "empty metric value",
			mutate:   func(c *Config) { c.Metrics = []MetricOption{{Label: "x"}} },
			errorMsg: "value is required",
		},
		{
			name: "memory ratio out of range",
			mutate: func(c *Config) {
				c.MemoryLimit.Enabled = true
				c.MemoryLimit.Ratio = 1.5
			},
			errorMsg: "memory_limit.ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestRegisterSourceFlags(t *testing.T) {
	DefaultConfig = NewDefaultConfig()
	t.Cleanup(func() { DefaultConfig = NewDefaultConfig() })

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterSourceFlags(fs)
	RegisterLogFlags(fs)
	err := fs.Parse([]string{
		"-source-url", "http://upstream:8080/",
		"-source-variant", "fixed",
		"-metrics", "http_duration, ,db_calls",
		"-log.level", "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://upstream:8080/", DefaultConfig.Source.URL)
	assert.Equal(t, VariantFixed, DefaultConfig.Source.Variant)
	assert.Equal(t, []MetricOption{{Value: "http_duration"}, {Value: "db_calls"}}, DefaultConfig.Metrics)
	assert.Equal(t, "warn", DefaultConfig.Log.Level)
}

func TestConfig_IsTracingEnabled(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name:     "tracing enabled",
			config:   &Config{Tracing: &otlp.Config{}},
			expected: true,
		},
		{
			name:     "tracing disabled",
			config:   &Config{Tracing: nil},
			expected: false,
		},
		{
			name:     "nil config",
			config:   nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsTracingEnabled())
		})
	}
}

func TestConfig_GetTracingServiceName(t *testing.T) {
	tests := []struct {
		name           string
		config         *Config
		envServiceName string
		expected       string
	}{
		{
			name:     "service name from config",
			config:   &Config{Tracing: &otlp.Config{ServiceName: "stats-viewer"}},
			expected: "stats-viewer",
		},
		{
			name:           "service name from environment",
			config:         &Config{Tracing: &otlp.Config{ServiceName: "config-service"}},
			envServiceName: "env-service",
			expected:       "env-service",
		},
		{
			name:     "no tracing config",
			config:   &Config{Tracing: nil},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envServiceName != "" {
				t.Setenv("OTEL_SERVICE_NAME", tt.envServiceName)
			}
			assert.Equal(t, tt.expected, tt.config.GetTracingServiceName())
		})
	}
}

func TestConfig_ControllerSettings(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Variant = VariantFixed
	cfg.Metrics = []MetricOption{{Value: "http_duration"}, {Label: "DB calls", Value: "db_calls"}}

	s := cfg.ControllerSettings()

	assert.Equal(t, controller.FixedPathVariant, s.Variant)
	assert.Equal(t, "databases.json", s.DatabasesPath)
	assert.Equal(t, 2011, s.FloorYear)
	assert.Equal(t, []controller.Option{
		{Label: "http_duration", Value: "http_duration"},
		{Label: "DB calls", Value: "db_calls"},
	}, s.Metrics)

	cfg.Source.Variant = VariantDatabase
	assert.Equal(t, controller.DatabaseVariant, cfg.ControllerSettings().Variant)
}

func TestConfig_TableColumns(t *testing.T) {
	cols := NewDefaultConfig().TableColumns()

	require.Len(t, cols, 8)
	assert.Equal(t, table.Column{Width: 13, Align: table.AlignLeft}, cols[0])
	assert.Equal(t, table.Column{}, cols[2])
	for _, c := range cols[3:] {
		assert.Equal(t, table.Column{Width: 2, Align: table.AlignRight}, c)
	}
}
