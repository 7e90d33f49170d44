package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/require"

	"twin-agent/internal/config"
)

// localConfig returns a configuration that wires only local components, so
// building it never touches AWS or the network.
func localConfig(t *testing.T) *config.Config {
	t.Helper()

	personaDir := t.TempDir()
	err := os.WriteFile(filepath.Join(personaDir, "summary.txt"), []byte("I am Sam."), 0o600)
	require.NoError(t, err)

	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Storage: config.StorageConfig{
			Mode: config.StorageMemory,
		},
		Provider: config.ProviderConfig{
			Name:   config.ProviderOpenAI,
			APIKey: "sk-test",
			Model:  "gpt-4o-mini",
		},
		Persona: config.PersonaConfig{
			Source: config.PersonaFile,
			Dir:    personaDir,
		},
		Chat: config.ChatConfig{MaxHistory: 40, MaxMessageChars: 4000},
	}
}

func TestNeedsAWS(t *testing.T) {
	cfg := localConfig(t)
	require.False(t, needsAWS(cfg))

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"s3 storage", func(c *config.Config) { c.Storage.Mode = config.StorageS3 }},
		{"dynamodb storage", func(c *config.Config) { c.Storage.Mode = config.StorageDynamo }},
		{"bedrock provider", func(c *config.Config) { c.Provider.Name = config.ProviderBedrock }},
		{"paramstore persona", func(c *config.Config) { c.Persona.Source = config.PersonaParamStore }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := localConfig(t)
			tc.mutate(cfg)
			require.True(t, needsAWS(cfg))
		})
	}
}

func TestBuildStore_LocalModes(t *testing.T) {
	cfg := localConfig(t)

	cfg.Storage.Mode = config.StorageMemory
	store, err := buildStore(cfg, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, store)

	cfg.Storage.Mode = config.StorageFile
	cfg.Storage.Dir = t.TempDir()
	store, err = buildStore(cfg, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, store)

	cfg.Storage.Mode = config.StorageSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "conversations.db")
	store, err = buildStore(cfg, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, store)

	// Redis clients connect lazily, so construction succeeds without a server.
	cfg.Storage.Mode = config.StorageRedis
	cfg.Storage.RedisAddr = "localhost:6379"
	store, err = buildStore(cfg, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, store)
}

func TestBuildStore_UnknownMode(t *testing.T) {
	cfg := localConfig(t)
	cfg.Storage.Mode = "cassandra"

	_, err := buildStore(cfg, aws.Config{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown storage mode")
}

func TestBuildProvider(t *testing.T) {
	cfg := localConfig(t)

	provider, err := buildProvider(cfg, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, provider)

	cfg.Provider.APIKey = ""
	_, err = buildProvider(cfg, aws.Config{})
	require.Error(t, err)

	cfg.Provider.Name = "palm"
	_, err = buildProvider(cfg, aws.Config{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown provider")
}

func TestBuildPersona(t *testing.T) {
	cfg := localConfig(t)

	loader, err := buildPersona(cfg, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, loader)

	cfg.Persona.Source = "dynamo"
	_, err = buildPersona(cfg, aws.Config{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown persona source")
}

func TestBuildChatService_LocalStack(t *testing.T) {
	svc, err := BuildChatService(context.Background(), localConfig(t))
	require.NoError(t, err)
	require.NotNil(t, svc)
}
