// Package config loads runtime settings from defaults, an optional
// parada.yaml file and PARADA_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PARADA"

// Sources holds the default location of each export. Locations may be local
// paths, http(s) URLs or s3://bucket/key references.
type Sources struct {
	Preparation string `mapstructure:"preparation"`
	PFUS3       string `mapstructure:"pfus3"`
}

type Config struct {
	DBPath           string        `mapstructure:"db"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	ColumnTolerance  float64       `mapstructure:"column_tolerance"`
	CriticalDuration float64       `mapstructure:"critical_duration"`
	RulesFile        string        `mapstructure:"rules_file"`
	SnapshotKeep     int           `mapstructure:"snapshot_keep"`
	HTTPAddr         string        `mapstructure:"http_addr"`
	WatchDebounce    time.Duration `mapstructure:"watch_debounce"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	LogLevel         string        `mapstructure:"log_level"`
	S3Region         string        `mapstructure:"s3_region"`
	Sources          Sources       `mapstructure:"sources"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	dbPath := filepath.Join(".parada", "parada.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".parada", "parada.db")
	}
	return Config{
		DBPath:           dbPath,
		CacheTTL:         5 * time.Minute,
		ColumnTolerance:  0.2,
		CriticalDuration: 100,
		SnapshotKeep:     10,
		HTTPAddr:         ":8080",
		WatchDebounce:    500 * time.Millisecond,
		FetchTimeout:     30 * time.Second,
		LogLevel:         "info",
	}
}

// Load builds a Config. When file is empty, parada.yaml is looked up in the
// working directory and in ~/.parada; a missing file is not an error.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("parada")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".parada"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msg := fmt.Sprintf("invalid config (%d errors):", len(errs))
		for _, e := range errs {
			msg += "\n  - " + e.Error()
		}
		return Config{}, fmt.Errorf("%s", msg)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db", d.DBPath)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("column_tolerance", d.ColumnTolerance)
	v.SetDefault("critical_duration", d.CriticalDuration)
	v.SetDefault("rules_file", d.RulesFile)
	v.SetDefault("snapshot_keep", d.SnapshotKeep)
	v.SetDefault("http_addr", d.HTTPAddr)
	v.SetDefault("watch_debounce", d.WatchDebounce)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("s3_region", d.S3Region)
	v.SetDefault("sources.preparation", d.Sources.Preparation)
	v.SetDefault("sources.pfus3", d.Sources.PFUS3)
}

func (c Config) Validate() []error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db: path is required"))
	}
	if c.ColumnTolerance < 0 || c.ColumnTolerance > 1 {
		errs = append(errs, fmt.Errorf("column_tolerance: %g is outside 0-1", c.ColumnTolerance))
	}
	if c.CriticalDuration <= 0 {
		errs = append(errs, fmt.Errorf("critical_duration: must be positive, got %g", c.CriticalDuration))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl: must be positive, got %s", c.CacheTTL))
	}
	if c.SnapshotKeep < 1 {
		errs = append(errs, fmt.Errorf("snapshot_keep: must be at least 1, got %d", c.SnapshotKeep))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: invalid value %q", c.LogLevel))
	}
	return errs
}
