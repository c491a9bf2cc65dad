package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "jwt", cfg.Session.Backend)
	assert.Equal(t, 24, cfg.Session.TTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Nil(t, cfg.Kafka.Brokers)
}

func TestLoad_SliceParsing(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: "production",
			Database:    DatabaseConfig{Driver: "postgres", Password: "secret"},
			Session:     SessionConfig{Backend: "jwt", SecretKey: "a-real-secret"},
			Redis:       RedisConfig{Host: "localhost"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported database driver"},
		{name: "unknown session backend", mutate: func(c *Config) { c.Session.Backend = "cookie" }, wantErr: "unsupported session backend"},
		{name: "redis without host", mutate: func(c *Config) { c.Session.Backend = "redis"; c.Redis.Host = "" }, wantErr: "REDIS_HOST"},
		{name: "default secret in production", mutate: func(c *Config) { c.Session.SecretKey = defaultSessionSecret }, wantErr: "session secret"},
		{name: "missing db password in production", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "database password"},
		{name: "memory driver needs no password", mutate: func(c *Config) { c.Database.Driver = "memory"; c.Database.Password = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_RedactedDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "catalog", Password: "hunter2", Database: "catalog", SSLMode: "disable"}

	assert.Contains(t, d.DSN(), "password=hunter2")
	assert.NotContains(t, d.RedactedDSN(), "hunter2")
	assert.Contains(t, d.RedactedDSN(), "password=*****")
}
