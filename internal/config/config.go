// Package config loads settings for the server and the terminal client.
//
// Values are resolved in priority order:
//  1. Defaults
//  2. Config file (--config, TODO_CONFIG, or the user config directory);
//     .toml files are TOML, .json and .jsonc files are JSON with comments
//  3. Environment variables (TODO_*)
//  4. Command line flags
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/BurntSushi/toml"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/tgienger/todo/internal/logging"
)

// Defaults
const (
	DefaultListenAddr     = "127.0.0.1:8001"
	DefaultAPIURL         = "http://127.0.0.1:8001"
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimezone       = "Asia/Tehran"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

var (
	errConfigRead    = errors.New("cannot read config file")
	errConfigInvalid = errors.New("invalid config file")
	errConfigFormat  = errors.New("unsupported config file extension")
	errInvalidValue  = errors.New("invalid config value")
)

// Duration is a time.Duration written as a string such as "5s" in config
// files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds resolved settings. Empty paths mean "use the default
// location".
type Config struct {
	ListenAddr     string   `toml:"listen_addr" json:"listen_addr"`
	DBPath         string   `toml:"db_path" json:"db_path"`
	APIURL         string   `toml:"api_url" json:"api_url"`
	RequestTimeout Duration `toml:"request_timeout" json:"request_timeout"`
	Timezone       string   `toml:"timezone" json:"timezone"`
	LogLevel       string   `toml:"log_level" json:"log_level"`
	LogFormat      string   `toml:"log_format" json:"log_format"`
	LogFile        string   `toml:"log_file" json:"log_file"`
	StateFile      string   `toml:"state_file" json:"state_file"`

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string `toml:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		APIURL:         DefaultAPIURL,
		RequestTimeout: Duration(DefaultRequestTimeout),
		Timezone:       DefaultTimezone,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// Timeout returns the client request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout)
}

// Location loads the configured time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", errInvalidValue, c.Timezone, err)
	}
	return loc, nil
}

// LogOptions returns the logging options for a component.
func (c Config) LogOptions(prefix string) logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Prefix:     prefix,
		Timestamps: true,
	}
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", errInvalidValue, err)
	}
	if _, err := logging.ParseFormatter(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %w", errInvalidValue, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", errInvalidValue)
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%w: api_url is empty", errInvalidValue)
	}
	return nil
}

// Env looks up an environment variable. os.LookupEnv satisfies it.
type Env func(key string) (string, bool)

// Load resolves the configuration. Flags are registered on fs and parsed
// from args; env is consulted for TODO_* variables.
func Load(fs *flag.FlagSet, args []string, env Env) (Config, error) {
	if env == nil {
		env = os.LookupEnv
	}

	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()

	path := flags.configFile
	if path == "" {
		if v, ok := env("TODO_CONFIG"); ok {
			path = v
		}
	}
	mustExist := path != ""
	if path == "" {
		path = findUserConfigFile()
	}
	if path != "" {
		if err := loadConfigFile(&cfg, path, mustExist); err != nil {
			return Config{}, err
		}
	}

	loadFromEnv(&cfg, env)
	flags.apply(fs, &cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadConfigFile overlays path onto cfg. A missing file is only an error
// when the caller named it explicitly.
func loadConfigFile(cfg *Config, path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return nil
		}
		return fmt.Errorf("%w %s: %w", errConfigRead, path, err)
	}

	var fileCfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &fileCfg); err != nil {
			return fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
		}
	case ".json", ".jsonc":
		// Standardize JSONC to JSON
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("%w %s: invalid JSONC: %w", errConfigInvalid, path, err)
		}
		if err := json.Unmarshal(standardized, &fileCfg); err != nil {
			return fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
		}
	default:
		return fmt.Errorf("%w: %s", errConfigFormat, path)
	}

	merge(cfg, fileCfg)
	cfg.ConfigFile = path
	return nil
}

// merge copies the non-empty fields of overlay onto base.
func merge(base *Config, overlay Config) {
	setString(&base.ListenAddr, overlay.ListenAddr)
	setString(&base.DBPath, overlay.DBPath)
	setString(&base.APIURL, overlay.APIURL)
	if overlay.RequestTimeout != 0 {
		base.RequestTimeout = overlay.RequestTimeout
	}
	setString(&base.Timezone, overlay.Timezone)
	setString(&base.LogLevel, overlay.LogLevel)
	setString(&base.LogFormat, overlay.LogFormat)
	setString(&base.LogFile, overlay.LogFile)
	setString(&base.StateFile, overlay.StateFile)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func loadFromEnv(cfg *Config, env Env) {
	lookup := func(key string) string {
		v, _ := env(key)
		return v
	}
	setString(&cfg.ListenAddr, lookup("TODO_LISTEN_ADDR"))
	setString(&cfg.DBPath, lookup("TODO_DB_PATH"))
	setString(&cfg.APIURL, lookup("TODO_API_URL"))
	setString(&cfg.Timezone, lookup("TODO_TIMEZONE"))
	setString(&cfg.LogLevel, lookup("TODO_LOG_LEVEL"))
	setString(&cfg.LogFormat, lookup("TODO_LOG_FORMAT"))
	setString(&cfg.LogFile, lookup("TODO_LOG_FILE"))
}

// findUserConfigFile returns the first existing config file under the user
// config directory, or "".
func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.toml", "config.jsonc", "config.json"} {
		path := filepath.Join(dir, "todo", name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
