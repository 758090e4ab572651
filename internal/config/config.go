// Package config loads shiftlog settings from an optional .env file, an
// optional shiftlog.yaml and SHIFTLOG_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. SHIFTLOG_DB.
const EnvPrefix = "SHIFTLOG"

// Config holds all runtime settings.
type Config struct {
	DB            string        `mapstructure:"db"`
	User          string        `mapstructure:"user"`
	HourlyRate    float64       `mapstructure:"hourly_rate"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	PositionTTL   time.Duration `mapstructure:"position_ttl"`
	GeocoderURL   string        `mapstructure:"geocoder_url"`
	Tick          time.Duration `mapstructure:"tick"`
	Timezone      string        `mapstructure:"timezone"`
	LogUseCases   bool          `mapstructure:"log_use_cases"`
}

// Options controls where Load looks. Zero values use the defaults.
type Options struct {
	// ConfigFile is an explicit YAML file; it must exist when set.
	ConfigFile string
	// EnvFile is a dotenv file; a missing file is ignored.
	EnvFile string
	// SearchDirs are scanned for shiftlog.yaml when ConfigFile is empty.
	SearchDirs []string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DB:          defaultDBPath(),
		User:        defaultUser(),
		PositionTTL: 10 * time.Minute,
		Tick:        time.Second,
	}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("db", def.DB)
	v.SetDefault("user", def.User)
	v.SetDefault("hourly_rate", def.HourlyRate)
	v.SetDefault("redis_addr", def.RedisAddr)
	v.SetDefault("redis_password", def.RedisPassword)
	v.SetDefault("position_ttl", def.PositionTTL)
	v.SetDefault("geocoder_url", def.GeocoderURL)
	v.SetDefault("tick", def.Tick)
	v.SetDefault("timezone", def.Timezone)
	v.SetDefault("log_use_cases", def.LogUseCases)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, opts Options) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
		return nil
	}

	v.SetConfigName("shiftlog")
	v.SetConfigType("yaml")
	dirs := opts.SearchDirs
	if len(dirs) == 0 {
		dirs = defaultSearchDirs()
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errors.New("db path is required")
	}
	if c.User == "" {
		return errors.New("user is required")
	}
	if c.HourlyRate < 0 {
		return fmt.Errorf("hourly_rate must not be negative, got %v", c.HourlyRate)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the zone used for calendar dates; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "shiftlog.db"
	}
	return filepath.Join(home, ".shiftlog", "shiftlog.db")
}

func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

func defaultSearchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".shiftlog"))
	}
	return dirs
}
