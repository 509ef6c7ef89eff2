package config

import (
	"time"
)

type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Checks    ChecksConfig    `mapstructure:"checks"`
}

type LoggerConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	ExporterType string  `mapstructure:"exporter_type"`
	Endpoint     string  `mapstructure:"endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type HTTPConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	FollowRedirects     bool          `mapstructure:"follow_redirects"`
}

type ScanConfig struct {
	// MaxConcurrency caps simultaneous in-flight network operations.
	MaxConcurrency int `mapstructure:"max_concurrency"`

	// CriticalStopThreshold is the critical finding count at which the
	// circuit breaker halts further probing.
	CriticalStopThreshold int `mapstructure:"critical_stop_threshold"`

	// PacingDelay is the fixed delay each check task waits before its first
	// request, to desynchronize request timing from rate-based defenses.
	PacingDelay time.Duration `mapstructure:"pacing_delay"`

	// RequestsPerSecond enables an additional global token-bucket limit on
	// outbound requests when > 0. Off by default.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

type ChecksConfig struct {
	ExposedPaths     []string `mapstructure:"exposed_paths"`
	MissingAuthPaths []string `mapstructure:"missing_auth_paths"`
	IDORPath         string   `mapstructure:"idor_path"`
	IDORMaxObjectID  int      `mapstructure:"idor_max_object_id"`
	AdminActionPaths []string `mapstructure:"admin_action_paths"`
	WorkflowPath     string   `mapstructure:"workflow_path"`
}

// Default returns the reference probe battery and engine settings.
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "termul",
			ExporterType: "otlp",
			SampleRate:   1.0,
		},
		HTTP: HTTPConfig{
			Timeout:             5 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			FollowRedirects:     true,
		},
		Scan: ScanConfig{
			MaxConcurrency:        10,
			CriticalStopThreshold: 2,
			PacingDelay:           1500 * time.Millisecond,
			RequestsPerSecond:     0,
			BurstSize:             1,
		},
		Checks: ChecksConfig{
			ExposedPaths:     []string{"admin", "api/admin", "debug", "internal"},
			MissingAuthPaths: []string{"/api/admin", "/api/internal/report"},
			IDORPath:         "/api/user/profile",
			IDORMaxObjectID:  5,
			AdminActionPaths: []string{"/api/admin/approve", "/api/admin/delete"},
			WorkflowPath:     "/api/order/complete",
		},
	}
}
