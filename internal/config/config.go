package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration. Values come from defaults,
// then an optional YAML file, then environment overrides, in that order.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Training TrainingConfig `yaml:"training"`
	Cohort   CohortConfig   `yaml:"cohort"`
	Cache    CacheConfig    `yaml:"cache"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// DataConfig holds storage locations.
type DataConfig struct {
	// Dir is the working directory for the sqlite database and model
	// artifacts.
	Dir      string `yaml:"dir"`
	ModelDir string `yaml:"model_dir"`
}

// TrainingConfig holds model training settings.
type TrainingConfig struct {
	MinRows   int     `yaml:"min_rows"`
	TestRatio float64 `yaml:"test_ratio"`
	Folds     int     `yaml:"folds"`
	Seed      int64   `yaml:"seed"`
}

// CohortConfig holds the comparison cohort windows.
type CohortConfig struct {
	DistanceWindowKM float64 `yaml:"distance_window_km"`
	FareWindow       float64 `yaml:"fare_window"`
}

// CacheConfig holds prediction response cache settings.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// LimitsConfig holds rate limiting settings.
type LimitsConfig struct {
	IPPerMinute     int `yaml:"ip_per_minute"`
	BurstMultiplier int `yaml:"burst_multiplier"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Data: DataConfig{
			Dir:      "./data",
			ModelDir: "./data/models",
		},
		Training: TrainingConfig{
			MinRows:   20,
			TestRatio: 0.2,
			Folds:     5,
			Seed:      42,
		},
		Cohort: CohortConfig{
			DistanceWindowKM: 2,
			FareWindow:       50,
		},
		Cache: CacheConfig{
			Size: 1024,
			TTL:  15 * time.Minute,
		},
		Limits: LimitsConfig{
			IPPerMinute:     60,
			BurstMultiplier: 2,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Data.Dir = getEnvOrDefault("DATA_DIR", c.Data.Dir)
	c.Data.ModelDir = getEnvOrDefault("MODEL_DIR", c.Data.ModelDir)

	if v, ok := envInt("RATE_LIMIT_PER_MIN"); ok {
		c.Limits.IPPerMinute = v
	}
	if v, ok := envInt("CACHE_SIZE"); ok {
		c.Cache.Size = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if c.Training.MinRows <= 0 {
		return fmt.Errorf("training min_rows must be positive, got %d", c.Training.MinRows)
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("training test_ratio must be in (0, 1), got %v", c.Training.TestRatio)
	}
	if c.Training.Folds < 2 {
		return fmt.Errorf("training folds must be at least 2, got %d", c.Training.Folds)
	}
	if c.Cohort.DistanceWindowKM <= 0 {
		return fmt.Errorf("cohort distance_window_km must be positive, got %v", c.Cohort.DistanceWindowKM)
	}
	if c.Cohort.FareWindow <= 0 {
		return fmt.Errorf("cohort fare_window must be positive, got %v", c.Cohort.FareWindow)
	}
	if c.Limits.IPPerMinute <= 0 {
		return fmt.Errorf("limits ip_per_minute must be positive, got %d", c.Limits.IPPerMinute)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
