// Package settings loads application settings from defaults, an optional
// YAML file and PUSHBOX_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with dots in keys
// replaced by underscores: server.port becomes PUSHBOX_SERVER_PORT.
const EnvPrefix = "PUSHBOX"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Levels   LevelsConfig   `mapstructure:"levels"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Ngrok    NgrokConfig    `mapstructure:"ngrok"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LevelsConfig holds level directory settings
type LevelsConfig struct {
	Dir     string `mapstructure:"dir"`
	Default string `mapstructure:"default"`
	Watch   bool   `mapstructure:"watch"`
}

// SessionsConfig holds session storage settings
type SessionsConfig struct {
	Store           string        `mapstructure:"store"` // file, redis or memory
	Dir             string        `mapstructure:"dir"`
	MaxAge          time.Duration `mapstructure:"max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig holds the Redis session store settings
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// NgrokConfig holds tunnel settings
type NgrokConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"auth_token"`
	Domain    string `mapstructure:"domain"`
}

// Store kinds accepted by sessions.store
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("levels.dir", "levels")
	v.SetDefault("levels.default", "")
	v.SetDefault("levels.watch", true)

	v.SetDefault("sessions.store", StoreFile)
	v.SetDefault("sessions.dir", "sessions")
	v.SetDefault("sessions.max_age", 24*time.Hour)
	v.SetDefault("sessions.cleanup_interval", time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "pushbox")
	v.SetDefault("redis.ttl", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.auth_token", "")
	v.SetDefault("ngrok.domain", "")
}

// Settings owns a viper instance and the last successfully decoded Config
type Settings struct {
	v *viper.Viper

	mu  sync.RWMutex
	cfg *Config
}

// Load reads settings. An empty configPath searches for pushbox.yaml in the
// working directory and ./config; a missing file is not an error.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pushbox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file leaves defaults and env in effect
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Settings{v: v, cfg: cfg}, nil
}

// Config returns a copy of the current settings
func (s *Settings) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// Viper returns the underlying viper instance
func (s *Settings) Viper() *viper.Viper {
	return s.v
}

// FileUsed returns the config file that was read, or "" when none was
func (s *Settings) FileUsed() string {
	return s.v.ConfigFileUsed()
}

// Watch reloads the config file whenever it changes and calls onChange
// with the new settings. A change that fails validation goes to onError and
// the previous settings stay in effect. Without a config file it does nothing.
func (s *Settings) Watch(onChange func(Config), onError func(error)) {
	if s.FileUsed() == "" {
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(s.v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		s.mu.Lock()
		s.cfg = cfg
		s.mu.Unlock()
		if onChange != nil {
			onChange(*cfg)
		}
	})
	s.v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative")
	}
	if c.Levels.Dir == "" {
		return fmt.Errorf("levels.dir is required")
	}

	switch c.Sessions.Store {
	case StoreFile:
		if c.Sessions.Dir == "" {
			return fmt.Errorf("sessions.dir is required for the file store")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("sessions.store must be one of file, redis, memory; got %q", c.Sessions.Store)
	}
	if c.Sessions.MaxAge <= 0 {
		return fmt.Errorf("sessions.max_age must be positive")
	}
	if c.Sessions.CleanupInterval <= 0 {
		return fmt.Errorf("sessions.cleanup_interval must be positive")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must be non-negative")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json; got %q", c.Log.Format)
	}
	return nil
}
