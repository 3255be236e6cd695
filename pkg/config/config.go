package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	xdgAppName = "duewatch"
	configFile = "config.json"
	envPrefix  = "DUEWATCH"

	BackendFile   = "file"
	BackendSQLite = "sqlite"

	// MinInterval is the shortest accepted check_interval and non-zero request_timeout.
	MinInterval = time.Second
)

var durationKeys = []string{"check_interval", "request_timeout"}

type Config struct {
	APIURL         string        `json:"api_url" mapstructure:"api_url"`
	UserID         string        `json:"user_id" mapstructure:"user_id"`
	CheckInterval  time.Duration `json:"check_interval" mapstructure:"check_interval"`
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout"`
	Calendar       string        `json:"calendar,omitempty" mapstructure:"calendar"`
	MirrorCalendar bool          `json:"mirror_calendar" mapstructure:"mirror_calendar"`
	LedgerBackend  string        `json:"ledger_backend" mapstructure:"ledger_backend"`
	StateDir       string        `json:"state_dir,omitempty" mapstructure:"state_dir"`
	LogLevel       string        `json:"log_level" mapstructure:"log_level"`
	LogFormat      string        `json:"log_format" mapstructure:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:         "http://localhost:8080",
		CheckInterval:  time.Minute,
		RequestTimeout: 10 * time.Second,
		Calendar:       "Tasks",
		LedgerBackend:  BackendFile,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Dir is the directory holding the config file and, by default, local state.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file when present and applies DUEWATCH_* environment
// overrides. A .env file in the working directory is loaded first.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	def := Default()
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("user_id", def.UserID)
	v.SetDefault("check_interval", def.CheckInterval)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("calendar", def.Calendar)
	v.SetDefault("mirror_calendar", def.MirrorCalendar)
	v.SetDefault("ledger_backend", def.LedgerBackend)
	v.SetDefault("state_dir", "")
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	for _, key := range durationKeys {
		d, err := durationSetting(v.Get(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		v.Set(key, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Dir(path)
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = def.CheckInterval
	}
	if cfg.Calendar == "" {
		cfg.Calendar = def.Calendar
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// durationSetting reads a duration from the file or environment. Bare numbers
// are seconds; strings use time.ParseDuration syntax.
func durationSetting(raw interface{}) (time.Duration, error) {
	switch val := raw.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		val = strings.TrimSpace(val)
		if secs, err := strconv.ParseFloat(val, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(val)
	}
	return 0, fmt.Errorf("unsupported value %v", raw)
}

func (c *Config) Validate() error {
	if c.CheckInterval < MinInterval {
		return fmt.Errorf("check_interval %s is below %s", c.CheckInterval, MinInterval)
	}
	if c.RequestTimeout < 0 || (c.RequestTimeout > 0 && c.RequestTimeout < MinInterval) {
		return fmt.Errorf("request_timeout %s is below %s", c.RequestTimeout, MinInterval)
	}
	switch c.LedgerBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown ledger_backend %q (want %q or %q)", c.LedgerBackend, BackendFile, BackendSQLite)
	}
	if c.APIURL == "" {
		return fmt.Errorf("api_url must be set")
	}
	return nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as JSON. Durations are written in their string form so
// the file stays readable and round-trips through Load.
func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	type fileConfig Config
	out := struct {
		fileConfig
		CheckInterval  string `json:"check_interval"`
		RequestTimeout string `json:"request_timeout"`
	}{
		fileConfig:     fileConfig(*cfg),
		CheckInterval:  cfg.CheckInterval.String(),
		RequestTimeout: cfg.RequestTimeout.String(),
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
