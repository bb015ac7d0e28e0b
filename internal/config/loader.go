package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CLAUSEWISE"

// legacyEnv maps config keys to the variable names earlier deployments used.
var legacyEnv = map[string]string{
	"remote.huggingface.api_key": "HUGGINGFACE_API_KEY",
	"remote.granite.api_key":     "IBM_API_KEY",
	"remote.granite.base_url":    "GRANITE_URL",
}

// newViper builds a Viper instance seeded with every default key, so that
// CLAUSEWISE_<SECTION>_<FIELD> variables override keys that no file sets.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	seed, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("config: encode defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(seed)); err != nil {
		return nil, fmt.Errorf("config: seed defaults: %w", err)
	}
	for key, legacy := range legacyEnv {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	return v, nil
}

// loadDotEnv reads .env files without overriding variables already set.
// Missing files are ignored.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the YAML file at configPath on top of the defaults, applies
// .env and CLAUSEWISE_* overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env", filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if err := mergeFile(v, configPath); err != nil {
		return nil, err
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from defaults, .env and environment variables
// only:
//
//	CLAUSEWISE_<SECTION>_<FIELD>   e.g.  CLAUSEWISE_REMOTE_BACKEND, CLAUSEWISE_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return unmarshalAndFinalize(v)
}

func mergeFile(v *viper.Viper, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("config: failed to parse config file %q: %w", configPath, err)
	}
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and passes the new
// Config to onChange. Changes that fail to parse or validate are dropped.
// Callers apply only the runtime-safe subset (the log level); rule tables and
// connections stay as built at startup.
func Watch(configPath string, onChange func(*Config)) error {
	v, err := newViper()
	if err != nil {
		return err
	}
	v.SetConfigFile(configPath)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("config: watch %q: %w", configPath, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fresh, err := newViper()
		if err != nil {
			return
		}
		if err := mergeFile(fresh, configPath); err != nil {
			return
		}
		cfg, err := unmarshalAndFinalize(fresh)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on error. For use in main.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
