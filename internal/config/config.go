package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDriver     = DriverMySQL
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "blogd"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultSessionTTL = 2 * time.Hour
	defaultRateRPS    = 20

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	EnvDSN       = "BLOGD_DSN"
	EnvRedisURL  = "BLOGD_REDIS_URL"
	EnvJWTSecret = "BLOGD_JWT_SECRET"
	EnvPort      = "BLOGD_PORT"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int              `yaml:"port"`
	Env            string           `yaml:"env"` // development | production
	AllowedOrigins []string         `yaml:"allowed_origins"`
	JWTSecret      string           `yaml:"jwt_secret"`
	SessionTTL     time.Duration    `yaml:"session_ttl"`
	Database       DatabaseConfig   `yaml:"database"`
	Redis          RedisConfig      `yaml:"redis"`
	Paths          PathsConfig      `yaml:"paths"`
	Log            LogConfig        `yaml:"log"`
	RateLimit      RateLimitConfig  `yaml:"rate_limit"`
	Categories     CategoriesConfig `yaml:"categories"`
	Backup         BackupConfig     `yaml:"backup"`
	Metrics        MetricsConfig    `yaml:"metrics"`
}

type DatabaseConfig struct {
	Driver       string            `yaml:"driver"` // mysql | sqlite
	DSN          string            `yaml:"dsn"`
	Host         string            `yaml:"host"`
	Port         int               `yaml:"port"`
	User         string            `yaml:"user"`
	Password     string            `yaml:"password"`
	Name         string            `yaml:"name"`
	Charset      string            `yaml:"charset"`
	ParseTime    bool              `yaml:"parse_time"`
	Loc          string            `yaml:"loc"`
	Params       map[string]string `yaml:"params"`
	AutoMigrate  bool              `yaml:"auto_migrate"`
	MaxOpenConns int               `yaml:"max_open_conns"`
	MaxIdleConns int               `yaml:"max_idle_conns"`
}

type RedisConfig struct {
	Enable   bool   `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type PathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RateLimitConfig struct {
	Enable bool `yaml:"enable"`
	RPS    int  `yaml:"rps"`
}

type CategoriesConfig struct {
	// OpenCreate lets anonymous callers use POST /api/categories.
	OpenCreate bool `yaml:"open_create"`
}

type BackupConfig struct {
	Enable   bool          `yaml:"enable"`
	Interval time.Duration `yaml:"interval"`
	S3       S3Config      `yaml:"s3"`
}

type S3Config struct {
	Enable          bool   `yaml:"enable"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

type MetricsConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

// Load reads and validates the YAML file at configPath.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults, applies env overrides and validates.
// Unknown keys are rejected.
func Parse(content []byte) (*AppConfig, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	applyEnv(&cfg, os.LookupEnv)
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used for keys absent from the file.
func Default() AppConfig {
	return AppConfig{
		Port:       defaultPort,
		Env:        defaultEnv,
		SessionTTL: defaultSessionTTL,
		Database: DatabaseConfig{
			Driver:       defaultDriver,
			Host:         defaultDBHost,
			Port:         defaultDBPort,
			User:         defaultDBUser,
			Password:     defaultDBPassword,
			Name:         defaultDBName,
			Charset:      defaultDBCharset,
			ParseTime:    true,
			Loc:          defaultDBLoc,
			AutoMigrate:  true,
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			Enable: true,
			Host:   defaultRedisHost,
			Port:   defaultRedisPort,
		},
		Paths: PathsConfig{
			Logs:    "logs",
			Backups: "backups",
		},
		Log:        LogConfig{Level: "info"},
		RateLimit:  RateLimitConfig{Enable: true, RPS: defaultRateRPS},
		Categories: CategoriesConfig{OpenCreate: true},
		Backup:     BackupConfig{Interval: 24 * time.Hour},
		Metrics:    MetricsConfig{Enable: true, Path: "/metrics"},
	}
}

func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDSN); ok && strings.TrimSpace(v) != "" {
		cfg.Database.DSN = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRedisURL); ok && strings.TrimSpace(v) != "" {
		cfg.Redis.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvJWTSecret); ok && strings.TrimSpace(v) != "" {
		cfg.JWTSecret = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPort); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Port = port
		}
	}
}

func (c *AppConfig) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = defaultEnv
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	c.Paths.Logs = ResolveRuntimePath(c.Paths.Logs, "logs")
	c.Paths.Backups = ResolveRuntimePath(c.Paths.Backups, "backups")
}

// Validate checks ranges and combinations that cannot be defaulted.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.DSN == "" && (c.Database.Port < 1 || c.Database.Port > 65535) {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Redis.Enable && c.Redis.URL == "" && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid session_ttl %s", c.SessionTTL)
	}
	if c.RateLimit.Enable && c.RateLimit.RPS < 1 {
		return fmt.Errorf("invalid rate_limit.rps %d, expected >= 1", c.RateLimit.RPS)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("jwt_secret is required in production")
	}
	if c.Backup.Enable && c.Backup.Interval < time.Minute {
		return fmt.Errorf("invalid backup.interval %s, expected >= 1m", c.Backup.Interval)
	}
	if c.Backup.S3.Enable && strings.TrimSpace(c.Backup.S3.Bucket) == "" {
		return errors.New("backup.s3.bucket is required when backup.s3.enable is set")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
