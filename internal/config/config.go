// Package config loads runtime settings from config.yaml in the config
// directory and NEUROZEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/neurozen/internal/constants"
)

type Config struct {
	Database string       `mapstructure:"database"`
	Debug    bool         `mapstructure:"debug"`
	LogLevel string       `mapstructure:"log_level"`
	Server   ServerConfig `mapstructure:"server"`
	Auth     AuthConfig   `mapstructure:"auth"`
	AI       AIConfig     `mapstructure:"ai"`
	Redis    RedisConfig  `mapstructure:"redis"`

	// Dir is the directory the config file was looked up in.
	Dir string `mapstructure:"-"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the cross-process summary lock. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads config.yaml from dir (if present) and overlays the environment.
func Load(dir string) (Config, error) {
	dir = ExpandHome(dir)

	v := viper.New()
	setDefaults(v, dir)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Dir = dir
	cfg.Database = ExpandHome(cfg.Database)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("database", filepath.Join(dir, constants.AppName+".db"))
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "")
	v.SetDefault("server.addr", constants.DefaultServerAddr)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("ai.base_url", constants.DefaultAIBaseURL)
	v.SetDefault("ai.model", constants.DefaultAIModel)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.timeout", constants.DefaultAITimeout)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database must not be empty")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %s", c.AI.Timeout)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	return nil
}

// IsPostgres reports whether the database setting is a PostgreSQL URL.
func (c Config) IsPostgres() bool {
	return IsPostgresURL(c.Database)
}

func IsPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
