package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-skillsprint"
)

// EnvPrefix scopes the environment variables read by Load
const EnvPrefix = "SKILLSPRINT_"

// EnvConfigFile names the config file when --config is not given
const EnvConfigFile = EnvPrefix + "CONFIG"

const flagConfig = "config"

type Config struct {
	API       API       `koanf:"api" json:"api"`
	Auth      Auth      `koanf:"auth" json:"auth"`
	Profile   Profile   `koanf:"profile" json:"profile"`
	Log       Log       `koanf:"log" json:"log"`
	Telemetry Telemetry `koanf:"telemetry" json:"telemetry"`
}

type API struct {
	BaseURL string        `koanf:"base_url" json:"base_url"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

type Auth struct {
	LogoutTimeout time.Duration `koanf:"logout_timeout" json:"logout_timeout"`
}

type Profile struct {
	DSN string `koanf:"dsn" json:"dsn"`
}

type Log struct {
	Level string `koanf:"level" json:"level"`
}

type Telemetry struct {
	Endpoint string `koanf:"endpoint" json:"endpoint"`
	Insecure bool   `koanf:"insecure" json:"insecure"`
}

func (c Config) GetBaseURL() string {
	return c.API.BaseURL
}

func (c Config) GetTimeout() time.Duration {
	return c.API.Timeout
}

func (c Config) GetLogoutTimeout() time.Duration {
	return c.Auth.LogoutTimeout
}

func (c Config) GetDSN() string {
	return c.Profile.DSN
}

func (c Config) GetLogLevel() string {
	return c.Log.Level
}

// ClientConfig maps the api section onto the transport options
func (c Config) ClientConfig() skillsprint.ClientConfig {
	return skillsprint.ClientConfig{
		BaseURL: c.API.BaseURL,
		Timeout: c.API.Timeout,
	}
}

// Dir returns the directory holding a file backed profile, empty for
// in-memory databases
func (p Profile) Dir() string {
	path := strings.TrimPrefix(p.DSN, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return ""
	}
	return filepath.Dir(path)
}

// Defaults returns the built in configuration values
func Defaults() map[string]any {
	return map[string]any{
		"api.base_url":        skillsprint.DefaultBaseURL,
		"api.timeout":         skillsprint.DefaultTimeout.String(),
		"auth.logout_timeout": skillsprint.DefaultLogoutTimeout.String(),
		"profile.dsn":         defaultDSN(),
		"log.level":           "info",
		"telemetry.endpoint":  "",
		"telemetry.insecure":  false,
	}
}

func defaultDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return "file:" + filepath.Join(dir, "skillsprint", "profile.db")
}

// DefaultFile is the config file read when none is named
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "skillsprint", "config.yaml")
}

// RegisterFlags adds the global flags to fs. Flag names are config keys.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "path to a YAML config file")
	fs.String("api.base_url", skillsprint.DefaultBaseURL, "backend base URL")
	fs.Duration("api.timeout", skillsprint.DefaultTimeout, "timeout for a single API call")
	fs.Duration("auth.logout_timeout", skillsprint.DefaultLogoutTimeout, "timeout for the logout API call")
	fs.String("profile.dsn", defaultDSN(), "profile database DSN")
	fs.String("log.level", "info", "log level: debug, info, warn, error")
	fs.String("telemetry.endpoint", "", "OTLP/gRPC collector endpoint, tracing is off when empty")
	fs.Bool("telemetry.insecure", false, "disable TLS for the collector connection")
}

// Load merges defaults, the YAML file, SKILLSPRINT_ environment variables
// and the flags set on fs, later sources win. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, err
	}

	if path, explicit := configFile(fs); path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrap(err, errors.CategoryBadInput, "unable to load config file").
					WithMetadata(map[string]any{"path": path})
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps SKILLSPRINT_API_BASE_URL to api.base_url. Only the first
// underscore separates the section.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func configFile(fs *pflag.FlagSet) (string, bool) {
	if fs != nil {
		if path, err := fs.GetString(flagConfig); err == nil && path != "" {
			return path, true
		}
	}
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path, true
	}
	return DefaultFile(), false
}

func (c Config) Validate() error {
	return validation.Errors{
		"api": validation.ValidateStruct(&c.API,
			validation.Field(&c.API.BaseURL, validation.Required, is.URL),
			validation.Field(&c.API.Timeout, validation.Required, validation.Min(time.Millisecond)),
		),
		"auth": validation.ValidateStruct(&c.Auth,
			validation.Field(&c.Auth.LogoutTimeout, validation.Required, validation.Min(time.Millisecond)),
		),
		"profile": validation.ValidateStruct(&c.Profile,
			validation.Field(&c.Profile.DSN, validation.Required),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		),
	}.Filter()
}
