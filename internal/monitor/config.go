package monitor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the monitoring configuration loaded from YAML.
type Config struct {
	// Interval between monitoring cycles, e.g. "30s", "5m", "1d"
	Interval string `yaml:"interval"`

	// BufferCapacity is the per-producer ring buffer size
	BufferCapacity int `yaml:"buffer_capacity"`

	// CacheSize bounds the gate's verdict cache
	CacheSize int `yaml:"cache_size"`

	// DatabasePath is the SQLite event sink location
	DatabasePath string `yaml:"database_path"`

	// Novelty selects the recent-outputs backend
	Novelty NoveltyConfig `yaml:"novelty"`

	// Alerts overrides the default alert thresholds
	Alerts AlertThresholds `yaml:"alerts"`
}

// NoveltyConfig selects and configures the recent-outputs store.
type NoveltyConfig struct {
	// Backend: "memory", "redis", or "none"
	Backend string `yaml:"backend"`

	// Capacity for the memory backend
	Capacity int `yaml:"capacity"`

	// Addr and TTL for the redis backend
	Addr string `yaml:"addr"`
	TTL  string `yaml:"ttl"`
}

// DefaultConfig returns the stock monitoring configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:       "1m",
		BufferCapacity: DefaultBufferCapacity,
		DatabasePath:   ".slopwatch/slopwatch.db",
		Novelty:        NoveltyConfig{Backend: "memory", Capacity: 1000},
		Alerts:         DefaultAlertThresholds(),
	}
}

// LoadConfig reads a YAML configuration file. Missing fields keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return config, nil
}

// IntervalDuration parses the configured cycle interval.
func (c *Config) IntervalDuration() (time.Duration, error) {
	return parseDuration(c.Interval)
}

// parseDuration handles standard Go durations plus a "d" suffix for days.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}

	return time.ParseDuration(s)
}
