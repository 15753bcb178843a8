package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfig_MergesEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: ":8080"
db:
  driver: postgres
  host: localhost
  port: 5432
  password: ${DB_SECRET}
`)
	writeFile(t, dir, "local.yaml", `
db:
  driver: sqlite
  path: ./local.db
`)
	writeFile(t, dir, "secrets.env", "# comment\nDB_SECRET='s3cr3t'\n")

	raw, err := LoadConfig("local", dir)
	require.NoError(t, err)

	var cfg struct {
		Server ServerConfig `yaml:"server"`
		DB     DBConfig     `yaml:"db"`
	}
	require.NoError(t, Decode(raw, &cfg))

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "./local.db", cfg.DB.Path)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "s3cr3t", cfg.DB.Password)
}

func TestLoadConfig_ProcessEnvPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "mq:\n  url: amqp://${MQ_TEST_HOST}:5672/\nredis:\n  addr: ${UNSET_PLACEHOLDER_X}\n")
	t.Setenv("MQ_TEST_HOST", "rabbit")

	raw, err := LoadConfig("missing-env", dir)
	require.NoError(t, err)

	var cfg struct {
		MQ    MQConfig    `yaml:"mq"`
		Redis RedisConfig `yaml:"redis"`
	}
	require.NoError(t, Decode(raw, &cfg))
	assert.Equal(t, "amqp://rabbit:5672/", cfg.MQ.URL)
	assert.Equal(t, "${UNSET_PLACEHOLDER_X}", cfg.Redis.Addr)
}

func TestLoadConfig_MissingBase(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	assert.ErrorContains(t, err, "base.yaml")
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_ADDR", "redis:6379")

	db := DBConfig{Driver: "postgres", Port: 5432}
	OverrideDBFromEnv(&db)
	assert.Equal(t, "sqlite", db.Driver)
	assert.Equal(t, 6543, db.Port)

	srv := ServerConfig{}
	OverrideServerFromEnv(&srv)
	assert.Equal(t, ":9000", srv.Port)

	rc := RedisConfig{}
	OverrideRedisFromEnv(&rc)
	assert.Equal(t, "redis:6379", rc.Addr)
}

func TestPostgresDSN(t *testing.T) {
	c := DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "tasks"}
	assert.Equal(t, "postgres://u:p@h:5432/tasks?sslmode=disable", c.PostgresDSN())

	c.DSN = "postgres://override"
	assert.Equal(t, "postgres://override", c.PostgresDSN())
}
