// Package config loads knolstate settings from defaults, an optional YAML
// file, the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/knolstate/internal/generate"
	"github.com/conorfennell/knolstate/internal/kv"
	"github.com/conorfennell/knolstate/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. KNOLSTATE_STORAGE_DRIVER.
const EnvPrefix = "KNOLSTATE_"

// APIKeyEnv is read for generation.api_key when no prefixed override is set.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// Config is the full settings tree.
type Config struct {
	Storage    Storage    `koanf:"storage"`
	Generation Generation `koanf:"generation"`
	Fitness    Fitness    `koanf:"fitness"`
	Importer   Importer   `koanf:"importer"`
	Log        Log        `koanf:"log"`
}

// Storage selects the kv driver.
type Storage struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite redis memory"`
	Path   string `koanf:"path" validate:"required_if=Driver sqlite"`
	Redis  Redis  `koanf:"redis"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type Generation struct {
	// APIKey may be empty; generation then fails with a missing credential.
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model" validate:"required"`
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type Fitness struct {
	RolloverInterval time.Duration `koanf:"rollover_interval" validate:"gt=0"`
	WeekDays         int           `koanf:"week_days" validate:"gte=1,lte=31"`
}

type Importer struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// KVOptions converts the storage settings for kv.Open.
func (s Storage) KVOptions() kv.Options {
	return kv.Options{
		Driver:        s.Driver,
		Path:          s.Path,
		RedisAddr:     s.Redis.Addr,
		RedisPassword: s.Redis.Password,
		RedisDB:       s.Redis.DB,
	}
}

// AnthropicOptions converts the generation settings for generate.NewAnthropic.
func (g Generation) AnthropicOptions() generate.AnthropicOptions {
	return generate.AnthropicOptions{APIKey: g.APIKey, Model: g.Model, URL: g.URL, Timeout: g.Timeout}
}

var defaults = map[string]any{
	"storage.driver":            "sqlite",
	"storage.path":              "knolstate.db",
	"storage.redis.addr":        "localhost:6379",
	"storage.redis.password":    "",
	"storage.redis.db":          0,
	"generation.api_key":        "",
	"generation.model":          generate.DefaultModel,
	"generation.url":            generate.DefaultAnthropicURL,
	"generation.timeout":        60 * time.Second,
	"fitness.rollover_interval": time.Minute,
	"fitness.week_days":         7,
	"importer.repos_dir":        "repos",
	"log.level":                 "info",
	"log.format":                "text",
}

// envKeys maps KNOLSTATE_STORAGE_REDIS_ADDR style names to their keys. Key
// segments contain underscores, so the mapping cannot be derived by splitting.
var envKeys = func() map[string]string {
	m := make(map[string]string, len(defaults))
	for key := range defaults {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		m[name] = key
	}
	return m
}()

// Load builds the Config. A missing file at path is not an error. flags may
// be nil; only flags named after a key (e.g. "storage.driver") are read.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return Config{}, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		if err := k.Set("generation.api_key", key); err != nil {
			return Config{}, err
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(name string) string {
		return envKeys[name]
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if err := store.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
