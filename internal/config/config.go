// Package config loads the CLI configuration from a YAML or JSON file and the
// ENLYST_* environment variables.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/trigger"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "enlyst.yaml"

// Environment variables overriding the file.
const (
	EnvBaseURL       = "ENLYST_BASE_URL"
	EnvAccessToken   = "ENLYST_ACCESS_TOKEN"
	EnvWebhookToken  = "ENLYST_WEBHOOK_TOKEN"
	EnvRedisAddr     = "ENLYST_REDIS_ADDR"
	EnvRedisPassword = "ENLYST_REDIS_PASSWORD"
	EnvLogLevel      = "ENLYST_LOG_LEVEL"
	EnvStoreKey      = "ENLYST_STORE_KEY"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full CLI configuration.
type Config struct {
	Credentials client.Credentials `yaml:"credentials" json:"credentials"`
	Client      ClientConfig       `yaml:"client" json:"client"`
	Trigger     TriggerConfig      `yaml:"trigger" json:"trigger"`
	Store       StoreConfig        `yaml:"store" json:"store"`
	Log         LogConfig          `yaml:"log" json:"log"`
}

// ClientConfig tunes the API client.
type ClientConfig struct {
	Timeout      Duration `yaml:"timeout" json:"timeout"`
	RateLimit    float64  `yaml:"rateLimit" json:"rateLimit"`
	Burst        int      `yaml:"burst" json:"burst"`
	PollInterval Duration `yaml:"pollInterval" json:"pollInterval"`
	PollTimeout  Duration `yaml:"pollTimeout" json:"pollTimeout"`
}

// TriggerConfig holds the webhook parameters. The token is only read from the
// environment or from AccessToken.
type TriggerConfig struct {
	trigger.Config `yaml:",inline"`
	AccessToken    string `yaml:"accessToken" json:"accessToken"`
}

// StoreConfig selects where received webhook events are kept.
type StoreConfig struct {
	Backend       string   `yaml:"backend" json:"backend"`
	Capacity      int      `yaml:"capacity" json:"capacity"`
	Dir           string   `yaml:"dir" json:"dir"`
	RedisAddr     string   `yaml:"redisAddr" json:"redisAddr"`
	RedisPassword string   `yaml:"redisPassword" json:"redisPassword"`
	RedisDB       int      `yaml:"redisDB" json:"redisDB"`
	TTL           Duration `yaml:"ttl" json:"ttl"`
	// Redact lists extra key patterns masked before events are stored.
	Redact []string `yaml:"redact" json:"redact"`
	// EncryptionKey (base64, 32 bytes) encrypts stored event payloads.
	EncryptionKey string   `yaml:"encryptionKey" json:"encryptionKey"`
	FallbackKeys  []string `yaml:"fallbackKeys" json:"fallbackKeys"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Credentials: client.Credentials{BaseURL: client.DefaultBaseURL},
		Store:       StoreConfig{Backend: StoreMemory, Capacity: 1000},
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults and applies the
// environment. An empty path reads DefaultPath if present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Credentials.BaseURL = v
	}
	if v, ok := lookup(EnvAccessToken); ok && v != "" {
		c.Credentials.AccessToken = v
	}
	if v, ok := lookup(EnvWebhookToken); ok && v != "" {
		c.Trigger.AccessToken = v
		if c.Trigger.Authentication == "" {
			c.Trigger.Authentication = trigger.AuthCredentials
		}
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Store.RedisAddr = v
		c.Store.Backend = StoreRedis
	}
	if v, ok := lookup(EnvRedisPassword); ok {
		c.Store.RedisPassword = v
	}
	if v, ok := lookup(EnvStoreKey); ok && v != "" {
		c.Store.EncryptionKey = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate checks the parts that do not depend on which command runs.
// Credentials are checked by the commands that call the API.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("config: redis store requires redisAddr")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Store.EncryptionKey != "" {
		if _, err := c.Store.Keys(); err != nil {
			return err
		}
	}
	if c.Client.RateLimit < 0 || c.Client.Burst < 0 {
		return errors.New("config: rate limit and burst must not be negative")
	}
	return nil
}

// Keys decodes the active and fallback encryption keys.
func (s StoreConfig) Keys() ([][]byte, error) {
	encoded := append([]string{s.EncryptionKey}, s.FallbackKeys...)
	keys := make([][]byte, len(encoded))
	for i, k := range encoded {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("config: encryption key %d is not valid base64: %w", i, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("config: encryption key %d must decode to 32 bytes, got %d", i, len(key))
		}
		keys[i] = key
	}
	return keys, nil
}

// TriggerSettings returns the trigger configuration with its token.
func (c Config) TriggerSettings() trigger.Config {
	cfg := c.Trigger.Config
	cfg.AccessToken = c.Trigger.AccessToken
	return cfg
}

// ClientOptions translates the client section into client options.
func (c Config) ClientOptions() []client.Option {
	var opts []client.Option
	if c.Client.Timeout > 0 {
		opts = append(opts, client.WithTimeout(c.Client.Timeout.Std()))
	}
	if c.Client.RateLimit > 0 {
		burst := c.Client.Burst
		if burst == 0 {
			burst = 1
		}
		opts = append(opts, client.WithRateLimit(c.Client.RateLimit, burst))
	}
	if c.Client.PollInterval > 0 {
		opts = append(opts, client.WithPollInterval(c.Client.PollInterval.Std()))
	}
	if c.Client.PollTimeout > 0 {
		opts = append(opts, client.WithPollTimeout(c.Client.PollTimeout.Std()))
	}
	return opts
}

// Duration accepts Go duration strings ("10s") or a number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) parse(s string) error {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	return d.parse(strings.Trim(string(data), `"`))
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
