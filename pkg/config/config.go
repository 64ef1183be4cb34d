// Package config loads matterform settings using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MATTERFORM_LISTEN_ADDR.
const EnvPrefix = "MATTERFORM"

// DefaultFile is the project-local config file looked up when no explicit
// file is given.
const DefaultFile = "matterform.yml"

// Config holds every configuration value.
type Config struct {
	ListenAddr    string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	LookupDelay   time.Duration `mapstructure:"lookup_delay" yaml:"lookup_delay"`
	LookupBaseURL string        `mapstructure:"lookup_base_url" yaml:"lookup_base_url"`
	StoreDriver   string        `mapstructure:"store_driver" yaml:"store_driver"`
	StoreDSN      string        `mapstructure:"store_dsn" yaml:"store_dsn"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	LogJSON       bool          `mapstructure:"log_json" yaml:"log_json"`
	Theme         string        `mapstructure:"theme" yaml:"theme"`
	ThemeVariant  string        `mapstructure:"theme_variant" yaml:"theme_variant"`
	TermsText     string        `mapstructure:"terms_text" yaml:"terms_text"`
	Prefill       bool          `mapstructure:"prefill" yaml:"prefill"`
	SchemaFile    string        `mapstructure:"schema_file" yaml:"schema_file"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
}

// Keys lists every configuration key in declaration order.
var Keys = []string{
	"listen_addr",
	"lookup_delay",
	"lookup_base_url",
	"store_driver",
	"store_dsn",
	"log_level",
	"log_json",
	"theme",
	"theme_variant",
	"terms_text",
	"prefill",
	"schema_file",
	"session_ttl",
}

// DefaultTermsText is shown in the terms modal unless overridden.
const DefaultTermsText = "By creating this matter you confirm that the information provided is accurate " +
	"and that you accept the terms and conditions of the matter registry."

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// File is an explicit config file. When empty, DefaultFile is read if it
	// exists.
	File string
	// Flags are bound on top of file and environment values. Flag names use
	// dashes (listen-addr) and map onto the underscore keys.
	Flags *pflag.FlagSet
}

// Load resolves configuration with precedence
// flags > MATTERFORM_* env > config file > defaults.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("config: binding %s env: %w", key, err)
		}
	}

	path := strings.TrimSpace(opts.File)
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if explicit || fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if opts.Flags != nil {
		for _, key := range Keys {
			flag := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("config: binding %s flag: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with nothing but defaults applied.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		LookupDelay:  400 * time.Millisecond,
		StoreDriver:  "memory",
		LogLevel:     "info",
		Theme:        "default",
		ThemeVariant: "light",
		TermsText:    DefaultTermsText,
		SessionTTL:   30 * time.Minute,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("lookup_delay", d.LookupDelay)
	v.SetDefault("lookup_base_url", d.LookupBaseURL)
	v.SetDefault("store_driver", d.StoreDriver)
	v.SetDefault("store_dsn", d.StoreDSN)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_json", d.LogJSON)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("theme_variant", d.ThemeVariant)
	v.SetDefault("terms_text", d.TermsText)
	v.SetDefault("prefill", d.Prefill)
	v.SetDefault("schema_file", d.SchemaFile)
	v.SetDefault("session_ttl", d.SessionTTL)
}

// Validate checks values that cannot be caught by type decoding.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.StoreDriver) {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("config: unsupported store_driver %q", c.StoreDriver))
	}
	if c.LookupDelay < 0 {
		errs = append(errs, fmt.Errorf("config: lookup_delay must not be negative"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("config: session_ttl must not be negative"))
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
