package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/thanos-io/thanos/pkg/tracing/otlp"
	yaml "gopkg.in/yaml.v3"

	"github.com/nicolastakashi/stats-viewer/internal/controller"
	"github.com/nicolastakashi/stats-viewer/internal/table"
)

const (
	VariantDatabase = "database"
	VariantFixed    = "fixed"

	AlignLeft  = "left"
	AlignRight = "right"
)

type Config struct {
	Server      ServerConfig      `yaml:"server,omitempty"`
	Source      SourceConfig      `yaml:"source,omitempty"`
	Intervals   IntervalsConfig   `yaml:"intervals,omitempty"`
	Metrics     []MetricOption    `yaml:"metrics,omitempty"`
	Table       TableConfig       `yaml:"table,omitempty"`
	Log         LogConfig         `yaml:"log,omitempty"`
	MemoryLimit MemoryLimitConfig `yaml:"memory_limit,omitempty"`
	Tracing     *otlp.Config      `yaml:"tracing,omitempty"`
	CORS        CORSConfig        `yaml:"cors,omitempty"`
}

type ServerConfig struct {
	InsecureListenAddress string `yaml:"insecure_listen_address,omitempty"`
}

// SourceConfig describes where statistics documents are fetched from.
type SourceConfig struct {
	URL string `yaml:"url,omitempty"`
	// Variant selects the path layout: "database" prefixes paths with the
	// selected database, "fixed" reads from a single base path.
	Variant          string `yaml:"variant,omitempty"`
	BasePathTemplate string `yaml:"base_path_template,omitempty"`
	DatabasesPath    string `yaml:"databases_path,omitempty"`
	// Directory, when set, is served read-only under /stats/.
	Directory string        `yaml:"directory,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

type IntervalsConfig struct {
	FloorYear int `yaml:"floor_year,omitempty"`
}

type MetricOption struct {
	Label string `yaml:"label,omitempty"`
	Value string `yaml:"value"`
}

type TableConfig struct {
	Columns []ColumnConfig `yaml:"columns,omitempty"`
}

type ColumnConfig struct {
	Width int    `yaml:"width,omitempty"`
	Align string `yaml:"align,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

type MemoryLimitConfig struct {
	Enabled bool    `yaml:"enabled,omitempty"`
	Ratio   float64 `yaml:"ratio,omitempty"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins,omitempty"`
	AllowedMethods   []string `yaml:"allowed_methods,omitempty"`
	AllowedHeaders   []string `yaml:"allowed_headers,omitempty"`
	AllowCredentials bool     `yaml:"allow_credentials,omitempty"`
	MaxAge           int      `yaml:"max_age,omitempty"`
}

var DefaultConfig = NewDefaultConfig()

// NewDefaultConfig returns the configuration used when neither flags nor a
// config file override a value.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			InsecureListenAddress: ":9091",
		},
		Source: SourceConfig{
			URL:           "http://localhost:9091/stats/",
			Variant:       VariantDatabase,
			DatabasesPath: "databases.json",
		},
		Intervals: IntervalsConfig{
			FloorYear: 2011,
		},
		Metrics: []MetricOption{
			{Value: "http_duration"},
		},
		Table: TableConfig{
			Columns: []ColumnConfig{
				{Width: 13},
				{Width: 13},
				{},
				{Width: 2, Align: AlignRight},
				{Width: 2, Align: AlignRight},
				{Width: 2, Align: AlignRight},
				{Width: 2, Align: AlignRight},
				{Width: 2, Align: AlignRight},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "logfmt",
		},
		MemoryLimit: MemoryLimitConfig{
			Ratio: 0.9,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		},
	}
}

func LoadConfig(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(f, DefaultConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	return nil
}

func RegisterSourceFlags(fs *flag.FlagSet) {
	fs.StringVar(&DefaultConfig.Source.URL, "source-url", DefaultConfig.Source.URL, "Base URL the statistics documents are fetched from.")
	fs.StringVar(&DefaultConfig.Source.Variant, "source-variant", DefaultConfig.Source.Variant, "Path layout of the statistics documents. Supported values: database, fixed.")
	fs.StringVar(&DefaultConfig.Source.BasePathTemplate, "source-path-template", "", "Overrides the variant path template. Placeholders: {database}, {interval}, {metric}.")
	fs.StringVar(&DefaultConfig.Source.DatabasesPath, "source-databases-path", DefaultConfig.Source.DatabasesPath, "Path of the database list document, relative to the source URL.")
	fs.DurationVar(&DefaultConfig.Source.Timeout, "source-timeout", 0, "Timeout for a single fetch. 0 means no timeout.")
	fs.IntVar(&DefaultConfig.Intervals.FloorYear, "intervals-floor-year", DefaultConfig.Intervals.FloorYear, "Oldest year offered in the month selector.")
	fs.Func("metrics", "Comma-separated list of metric identifiers offered in the metric selector", func(v string) error {
		DefaultConfig.Metrics = nil
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				DefaultConfig.Metrics = append(DefaultConfig.Metrics, MetricOption{Value: s})
			}
		}
		return nil
	})
}

func RegisterLogFlags(fs *flag.FlagSet) {
	fs.StringVar(&DefaultConfig.Log.Level, "log.level", DefaultConfig.Log.Level, "Only log messages with the given severity or above. One of: debug, info, warn, error.")
	fs.StringVar(&DefaultConfig.Log.Format, "log.format", DefaultConfig.Log.Format, "Output format of log messages. One of: logfmt, json.")
	fs.StringVar(&DefaultConfig.Log.File, "log.file", DefaultConfig.Log.File, "Write logs to this file instead of stderr.")
}

func RegisterMemoryLimitFlags(fs *flag.FlagSet) {
	fs.BoolVar(&DefaultConfig.MemoryLimit.Enabled, "memory-limit-enabled", DefaultConfig.MemoryLimit.Enabled, "Set GOMEMLIMIT from the cgroup or system memory limit.")
	fs.Float64Var(&DefaultConfig.MemoryLimit.Ratio, "memory-limit-ratio", DefaultConfig.MemoryLimit.Ratio, "Ratio of the detected memory limit used as GOMEMLIMIT.")
}

// PathTemplate returns the configured template, falling back to the variant's default.
func (s SourceConfig) PathTemplate() string {
	if s.BasePathTemplate != "" {
		return s.BasePathTemplate
	}
	if s.Variant == VariantFixed {
		return "/tmp/stats_http/{interval}/{metric}.json"
	}
	return "{database}/{interval}/{metric}.json"
}

func (s SourceConfig) HasDatabaseSelector() bool {
	return s.Variant != VariantFixed
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Source.URL)
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid scheme for source URL %q, only 'http' and 'https' are supported", c.Source.URL)
	}

	switch c.Source.Variant {
	case VariantDatabase, VariantFixed:
	default:
		return fmt.Errorf("unknown source variant %q", c.Source.Variant)
	}

	tmpl := c.Source.PathTemplate()
	for _, p := range []string{"{interval}", "{metric}"} {
		if !strings.Contains(tmpl, p) {
			return fmt.Errorf("source path template %q is missing %s", tmpl, p)
		}
	}

	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative (got: %v)", c.Source.Timeout)
	}

	if c.Intervals.FloorYear <= 0 {
		return fmt.Errorf("intervals.floor_year must be positive (got: %d)", c.Intervals.FloorYear)
	}

	for i, col := range c.Table.Columns {
		if col.Width < 0 {
			return fmt.Errorf("table.columns[%d].width must not be negative", i)
		}
		switch col.Align {
		case "", AlignLeft, AlignRight:
		default:
			return fmt.Errorf("table.columns[%d].align: unknown alignment %q", i, col.Align)
		}
	}

	if len(c.Metrics) == 0 {
		return fmt.Errorf("at least one metric must be configured")
	}
	for i, m := range c.Metrics {
		if strings.TrimSpace(m.Value) == "" {
			return fmt.Errorf("metrics[%d]: value is required", i)
		}
	}

	if c.MemoryLimit.Enabled && (c.MemoryLimit.Ratio <= 0 || c.MemoryLimit.Ratio > 1) {
		return fmt.Errorf("memory_limit.ratio must be in (0, 1] (got: %v)", c.MemoryLimit.Ratio)
	}
	return nil
}

func (c *Config) IsTracingEnabled() bool {
	if c == nil {
		return false
	}
	return c.Tracing != nil
}

func (c *Config) GetTracingServiceName() string {
	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		if c == nil || c.Tracing == nil {
			return ""
		}
		return c.Tracing.ServiceName
	}
	return serviceName
}

// ControllerSettings converts the source, interval and metric sections into
// controller settings. A metric without a label is shown by its value.
func (c *Config) ControllerSettings() controller.Settings {
	metrics := make([]controller.Option, 0, len(c.Metrics))
	for _, m := range c.Metrics {
		label := m.Label
		if label == "" {
			label = m.Value
		}
		metrics = append(metrics, controller.Option{Label: label, Value: m.Value})
	}

	return controller.Settings{
		Variant: controller.Variant{
			BasePathTemplate:    c.Source.PathTemplate(),
			HasDatabaseSelector: c.Source.HasDatabaseSelector(),
		},
		DatabasesPath: c.Source.DatabasesPath,
		FloorYear:     c.Intervals.FloorYear,
		Metrics:       metrics,
	}
}

func (c *Config) TableColumns() []table.Column {
	cols := make([]table.Column, 0, len(c.Table.Columns))
	for _, col := range c.Table.Columns {
		align := table.AlignLeft
		if col.Align == AlignRight {
			align = table.AlignRight
		}
		cols = append(cols, table.Column{Width: col.Width, Align: align})
	}
	return cols
}
