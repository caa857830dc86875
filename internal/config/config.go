// Package config loads the server configuration from a yaml file, with
// environment variable overrides prefixed RULES_.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig holds the websocket server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	MaxMessageBytes int64         `mapstructure:"max_message_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// EngineConfig bounds the rules engine.
type EngineConfig struct {
	// ConsequenceFuse aborts consequence chains that never settle.
	ConsequenceFuse int `mapstructure:"consequence_fuse"`
	// TieBreakerDepth bounds the ranking tie break recursion.
	TieBreakerDepth int `mapstructure:"tie_breaker_depth"`
}

// Load reads the configuration file at the given path. A missing file is
// not an error, defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("RULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.pong_timeout", 60*time.Second)
	v.SetDefault("server.ping_period", 54*time.Second)
	v.SetDefault("server.max_message_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.url", "postgres://localhost:5432/rules?sslmode=disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("engine.consequence_fuse", 1000)
	v.SetDefault("engine.tie_breaker_depth", 10)
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("config: server.address is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("config: database.url is required")
	}
	if c.Engine.ConsequenceFuse <= 0 {
		return fmt.Errorf("config: engine.consequence_fuse must be positive")
	}
	if c.Server.PingPeriod >= c.Server.PongTimeout {
		return fmt.Errorf("config: server.ping_period must be shorter than server.pong_timeout")
	}
	return nil
}
