// Package config loads application settings from defaults, environment
// variables and an optional YAML file pointed at by CONFIG_PATH.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage modes.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageS3     = "s3"
	StorageDynamo = "dynamodb"
)

// Provider names.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

// Persona sources.
const (
	PersonaFile       = "file"
	PersonaParamStore = "paramstore"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Provider ProviderConfig `mapstructure:"provider"`
	Persona  PersonaConfig  `mapstructure:"persona"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	LogLevel    string   `mapstructure:"log_level"`
}

type StorageConfig struct {
	Mode        string        `mapstructure:"mode"`
	Dir         string        `mapstructure:"dir"`
	SQLitePath  string        `mapstructure:"sqlite_path"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisDB     int           `mapstructure:"redis_db"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
	S3Bucket    string        `mapstructure:"s3_bucket"`
	S3Prefix    string        `mapstructure:"s3_prefix"`
	DynamoTable string        `mapstructure:"dynamo_table"`
}

type ProviderConfig struct {
	Name    string        `mapstructure:"name"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PersonaConfig struct {
	Source      string `mapstructure:"source"`
	Dir         string `mapstructure:"dir"`
	ParamPrefix string `mapstructure:"param_prefix"`
}

type ChatConfig struct {
	MaxHistory      int `mapstructure:"max_history"`
	MaxMessageChars int `mapstructure:"max_message_chars"`
}

// Load builds the configuration. Environment variables override file
// values, which override defaults; nested keys use underscores
// (storage.redis_addr -> STORAGE_REDIS_ADDR).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers a default for every known key. AutomaticEnv only
// surfaces keys viper already knows about, so every key needs one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.log_level", "info")

	v.SetDefault("storage.mode", StorageFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.sqlite_path", "./data/conversations.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_ttl", time.Duration(0))
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_prefix", "sessions")
	v.SetDefault("storage.dynamo_table", "")

	v.SetDefault("provider.name", ProviderOpenAI)
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.model", "gpt-4o-mini")
	v.SetDefault("provider.timeout", 30*time.Second)

	v.SetDefault("persona.source", PersonaFile)
	v.SetDefault("persona.dir", "./persona")
	v.SetDefault("persona.param_prefix", "")

	v.SetDefault("chat.max_history", 40)
	v.SetDefault("chat.max_message_chars", 4000)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("config: server.port must be positive, got %d", c.Server.Port)
	}
	switch c.Storage.Mode {
	case StorageMemory, StorageFile, StorageSQLite, StorageRedis, StorageS3, StorageDynamo:
	default:
		return fmt.Errorf("config: unknown storage.mode %q", c.Storage.Mode)
	}
	switch c.Provider.Name {
	case ProviderOpenAI, ProviderBedrock:
	default:
		return fmt.Errorf("config: unknown provider.name %q", c.Provider.Name)
	}
	switch c.Persona.Source {
	case PersonaFile, PersonaParamStore:
	default:
		return fmt.Errorf("config: unknown persona.source %q", c.Persona.Source)
	}
	return nil
}
