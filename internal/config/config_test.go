package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 2333, cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Categories.OpenCreate)
	assert.True(t, cfg.RateLimit.Enable)
	assert.Equal(t, "root:password@tcp(127.0.0.1:3306)/blogd?charset=utf8mb4&loc=Local&parseTime=true", cfg.Database.DSNValue())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URLValue())
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
port: 8080
env: Production
jwt_secret: s3cret
session_ttl: 90m
allowed_origins: ["https://blog.example.com/", " "]
database:
  driver: sqlite
  name: dev
categories:
  open_create: false
backup:
  enable: true
  interval: 6h
  s3:
    enable: true
    bucket: blog-backups
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://blog.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "dev.db", cfg.Database.DSNValue())
	assert.False(t, cfg.Categories.OpenCreate)
	assert.Equal(t, 6*time.Hour, cfg.Backup.Interval)
	assert.Equal(t, "blog-backups", cfg.Backup.S3.Bucket)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "nope: 1",
		"bad port":          "port: 70000",
		"bad driver":        "database:\n  driver: oracle",
		"prod needs secret": "env: production",
		"bad rps":           "rate_limit:\n  enable: true\n  rps: 0",
		"s3 needs bucket":   "backup:\n  s3:\n    enable: true",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDSN, "user:pw@tcp(db:3306)/blog")
	t.Setenv(EnvJWTSecret, "from-env")
	t.Setenv(EnvPort, "9000")

	cfg, err := Parse([]byte("env: production"))
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(db:3306)/blog", cfg.Database.DSNValue())
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestRedisURLValue(t *testing.T) {
	assert.Equal(t, "redis://cache:6380", RedisConfig{URL: "cache:6380"}.URLValue())
	assert.Equal(t, "rediss://:pw@r.example.com:6379/2", RedisConfig{Host: "r.example.com", Port: 6379, DB: 2, Password: "pw", TLS: true}.URLValue())
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
	assert.Equal(t, "backups/{Y}/{m}/{filename}", cfg.Backup.S3.Prefix)
	assert.True(t, cfg.Categories.OpenCreate)
}
