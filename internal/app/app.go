// Package app assembles the conversation service from configuration. The
// HTTP server and the Lambda entrypoint share this wiring so a storage or
// provider added here is available to both.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/redis/go-redis/v9"

	"twin-agent/internal/config"
	"twin-agent/internal/integrations/bedrock"
	"twin-agent/internal/integrations/openai"
	"twin-agent/internal/persona"
	"twin-agent/internal/repository"
	"twin-agent/internal/usecase"
)

// BuildChatService wires the configured storage backend, model provider and
// persona source into a chat service. AWS credentials are resolved only when
// a selected component needs them.
func BuildChatService(ctx context.Context, cfg *config.Config) (*usecase.ChatService, error) {
	var awsCfg aws.Config
	if needsAWS(cfg) {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load aws config: %w", err)
		}
	}

	store, err := buildStore(cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	provider, err := buildProvider(cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	loader, err := buildPersona(cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	cached, err := persona.NewCache(loader)
	if err != nil {
		return nil, err
	}

	return usecase.NewChatService(store, provider, cached, cfg.Chat.MaxHistory, cfg.Chat.MaxMessageChars, cfg.Provider.Timeout)
}

func needsAWS(cfg *config.Config) bool {
	return cfg.Storage.Mode == config.StorageS3 ||
		cfg.Storage.Mode == config.StorageDynamo ||
		cfg.Provider.Name == config.ProviderBedrock ||
		cfg.Persona.Source == config.PersonaParamStore
}

func buildStore(cfg *config.Config, awsCfg aws.Config) (usecase.Store, error) {
	switch cfg.Storage.Mode {
	case config.StorageMemory:
		return repository.NewMemoryStore(), nil
	case config.StorageFile:
		return repository.NewFileStore(cfg.Storage.Dir)
	case config.StorageSQLite:
		return repository.NewSQLiteStore(cfg.Storage.SQLitePath)
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		return repository.NewRedisStore(client, cfg.Storage.RedisTTL)
	case config.StorageS3:
		return repository.NewS3Store(awss3.NewFromConfig(awsCfg), cfg.Storage.S3Bucket, cfg.Storage.S3Prefix)
	case config.StorageDynamo:
		return repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), cfg.Storage.DynamoTable)
	default:
		return nil, fmt.Errorf("app: unknown storage mode %q", cfg.Storage.Mode)
	}
}

func buildProvider(cfg *config.Config, awsCfg aws.Config) (usecase.Provider, error) {
	switch cfg.Provider.Name {
	case config.ProviderOpenAI:
		var opts []openai.Option
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Provider.BaseURL))
		}
		return openai.NewClient(cfg.Provider.APIKey, cfg.Provider.Model, opts...)
	case config.ProviderBedrock:
		return bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), cfg.Provider.Model)
	default:
		return nil, fmt.Errorf("app: unknown provider %q", cfg.Provider.Name)
	}
}

func buildPersona(cfg *config.Config, awsCfg aws.Config) (persona.Loader, error) {
	switch cfg.Persona.Source {
	case config.PersonaFile:
		return persona.NewFileLoader(cfg.Persona.Dir)
	case config.PersonaParamStore:
		return persona.NewParamStoreLoader(awsssm.NewFromConfig(awsCfg), cfg.Persona.ParamPrefix)
	default:
		return nil, fmt.Errorf("app: unknown persona source %q", cfg.Persona.Source)
	}
}
