package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdmin = "0x1111111111111111111111111111111111111111"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("environment only", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MINTGATE_AUTH_SUPER_ADMIN", testAdmin)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, BackendMemory, cfg.Storage.Projects)
		assert.Equal(t, "ETH", cfg.Ledger.NativeSymbol)
		assert.Equal(t, testAdmin, cfg.SuperAdminAddress().String())
		assert.False(t, cfg.TracingEnabled())
	})

	t.Run("yaml file then environment override", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeFile(t, dir, "mintgate.yaml", `
server:
  addr: ":9090"
  shutdownTimeout: 3s
auth:
  superAdmin: "`+testAdmin+`"
ledger:
  nativeSymbol: "MATIC"
  startingProjectID: 3
`)
		t.Setenv("MINTGATE_SERVER_ADDR", ":7070")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.Server.Addr)
		assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "MATIC", cfg.Ledger.NativeSymbol)
		assert.Equal(t, uint64(3), cfg.Ledger.StartingProjectID)
	})

	t.Run("dotenv file is read", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, dir, ".env", "MINTGATE_AUTH_SUPER_ADMIN="+testAdmin+"\nMINTGATE_KAFKA_BROKERS=localhost:9092\n")
		t.Cleanup(func() {
			os.Unsetenv("MINTGATE_AUTH_SUPER_ADMIN")
			os.Unsetenv("MINTGATE_KAFKA_BROKERS")
		})

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("broker list is trimmed and deduplicated", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MINTGATE_AUTH_SUPER_ADMIN", testAdmin)
		t.Setenv("MINTGATE_KAFKA_BROKERS", " kafka-1:9092,kafka-2:9092, kafka-1:9092,")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("MINTGATE_AUTH_SUPER_ADMIN", testAdmin)
		_, err := Load("does-not-exist.yaml")
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := Default()
		cfg.Auth.SuperAdmin = testAdmin
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults with admin", mutate: func(*Config) {}},
		{name: "missing admin", mutate: func(c *Config) { c.Auth.SuperAdmin = "" }, wantErr: "superAdmin is required"},
		{name: "malformed admin", mutate: func(c *Config) { c.Auth.SuperAdmin = "0x12" }, wantErr: "auth.superAdmin"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Projects = BackendPostgres }, wantErr: "postgres.dsn"},
		{name: "redis without url", mutate: func(c *Config) { c.Storage.Registry = BackendRedis }, wantErr: "redis.url"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Registry = "etcd" }, wantErr: "unknown registry store"},
		{name: "brokers without topic", mutate: func(c *Config) {
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.Topic = ""
		}, wantErr: "kafka.topic"},
		{name: "rate limit without window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, wantErr: "rateLimit"},
		{name: "rate limit disabled ignores window", mutate: func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.Window = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
