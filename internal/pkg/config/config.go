package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Recorder  RecorderConfig  `mapstructure:"recorder"`
	Retention RetentionConfig `mapstructure:"retention"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	StaticDir    string `mapstructure:"static_dir"`
}

// BackendConfig points at the fleet REST backend.
type BackendConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
	// Schema is "current" or "legacy". Legacy backends have no
	// getRequestCounts endpoint.
	Schema string `mapstructure:"schema"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

func (b BackendConfig) Legacy() bool {
	return strings.EqualFold(b.Schema, "legacy")
}

type DashboardConfig struct {
	FrameRate       int            `mapstructure:"frame_rate"`
	RefreshRate     int            `mapstructure:"refresh_rate"`
	Rotate          bool           `mapstructure:"rotate"`
	RotateIncrement float64        `mapstructure:"rotate_increment"`
	Viewport        ViewportConfig `mapstructure:"viewport"`
}

type ViewportConfig struct {
	Longitude float64 `mapstructure:"longitude"`
	Latitude  float64 `mapstructure:"latitude"`
	Zoom      float64 `mapstructure:"zoom"`
	MinZoom   float64 `mapstructure:"min_zoom"`
	MaxZoom   float64 `mapstructure:"max_zoom"`
	Pitch     float64 `mapstructure:"pitch"`
	Bearing   float64 `mapstructure:"bearing"`
	Width     int     `mapstructure:"width"`
	Height    int     `mapstructure:"height"`
	MapStyle  string  `mapstructure:"map_style"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecorderConfig struct {
	// SampleInterval is the minimum spacing between recorded snapshots.
	SampleInterval time.Duration `mapstructure:"sample_interval"`
}

type RetentionConfig struct {
	MaxAge time.Duration `mapstructure:"max_age"`
	Cron   string        `mapstructure:"cron"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: VERTIWATCH_BACKEND_BASE_URL → backend.base_url
	v.SetEnvPrefix("VERTIWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout_ms", 2000)
	v.SetDefault("backend.schema", "current")
	v.SetDefault("dashboard.frame_rate", 30)
	v.SetDefault("dashboard.refresh_rate", 60)
	v.SetDefault("dashboard.rotate", false)
	v.SetDefault("dashboard.rotate_increment", 0.1)
	v.SetDefault("dashboard.viewport.longitude", -122.176128)
	v.SetDefault("dashboard.viewport.latitude", 37.42240)
	v.SetDefault("dashboard.viewport.zoom", 16.5)
	v.SetDefault("dashboard.viewport.min_zoom", 15.5)
	v.SetDefault("dashboard.viewport.max_zoom", 18)
	v.SetDefault("dashboard.viewport.pitch", 0)
	v.SetDefault("dashboard.viewport.bearing", 0)
	v.SetDefault("dashboard.viewport.width", 500)
	v.SetDefault("dashboard.viewport.height", 500)
	v.SetDefault("dashboard.viewport.map_style", "mapbox://styles/mapbox/satellite-v9")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "vertiwatch")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "vertiwatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("recorder.sample_interval", "1s")
	v.SetDefault("retention.max_age", "168h")
	v.SetDefault("retention.cron", "0 * * * *")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.task_queue", "vertiwatch-retention")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL))
	}
	if c.Backend.TimeoutMS <= 0 {
		errs = append(errs, "backend.timeout_ms must be positive")
	}
	switch strings.ToLower(c.Backend.Schema) {
	case "current", "legacy":
	default:
		errs = append(errs, fmt.Sprintf("backend.schema must be current or legacy, got %q", c.Backend.Schema))
	}
	if c.Dashboard.FrameRate <= 0 {
		errs = append(errs, "dashboard.frame_rate must be positive")
	}
	if c.Dashboard.RefreshRate < c.Dashboard.FrameRate {
		errs = append(errs, fmt.Sprintf("dashboard.refresh_rate (%d) must be at least dashboard.frame_rate (%d)",
			c.Dashboard.RefreshRate, c.Dashboard.FrameRate))
	}
	vp := c.Dashboard.Viewport
	if vp.MinZoom > vp.MaxZoom {
		errs = append(errs, "dashboard.viewport.min_zoom must not exceed max_zoom")
	}
	if vp.Zoom < vp.MinZoom || vp.Zoom > vp.MaxZoom {
		errs = append(errs, fmt.Sprintf("dashboard.viewport.zoom must be within [%g, %g], got %g", vp.MinZoom, vp.MaxZoom, vp.Zoom))
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		errs = append(errs, "dashboard.viewport width and height must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Recorder.SampleInterval < 0 {
		errs = append(errs, "recorder.sample_interval must not be negative")
	}
	if c.Retention.MaxAge <= 0 {
		errs = append(errs, "retention.max_age must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
