package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Environments
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

// Config is built once by Load and never mutated afterwards.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Backup    BackupConfig
}

type ServerConfig struct {
	Port      string `validate:"required"`
	Env       string `validate:"required"`
	LogLevel  string
	PublicDir string
}

type AuthConfig struct {
	User  string `validate:"required"`
	Pass  string `validate:"required"`
	Realm string `validate:"required"`
}

type StorageConfig struct {
	Driver   string `validate:"required,oneof=file postgres"`
	FilePath string `validate:"required_if=Driver file"`
}

type DatabaseConfig struct {
	URLDev  string
	URLProd string
	// URL is the effective connection string for Server.Env
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	LoginPerMin int `validate:"gte=0"`
}

type BackupConfig struct {
	Dir  string
	Keep int `validate:"gte=1"`
}

// RedisEnabled reports whether a redis server was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// SnapshotsEnabled reports whether the snapshot worker should run.
func (c *Config) SnapshotsEnabled() bool {
	return c.RedisEnabled() && c.Backup.Dir != ""
}

// Load reads .env, an optional config.yaml and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readSecret("MCHIC_PASS")
	readSecret("REDIS_PASSWORD")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("server.env", "NODE_ENV", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.public_dir", "PUBLIC_DIR")
	_ = v.BindEnv("auth.user", "MCHIC_USER")
	_ = v.BindEnv("auth.pass", "MCHIC_PASS")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.file_path", "DATA_FILE")
	_ = v.BindEnv("database.url_dev", "DB_URL_DEV")
	_ = v.BindEnv("database.url_prod", "DB_URL_PROD")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("ratelimit.login_per_min", "RATELIMIT_LOGIN_PER_MIN")
	_ = v.BindEnv("backup.dir", "BACKUP_DIR")
	_ = v.BindEnv("backup.keep", "BACKUP_KEEP")

	v.SetDefault("server.port", "4000")
	v.SetDefault("server.env", EnvDev)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.public_dir", "./public")
	v.SetDefault("auth.realm", "Mchic")
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.file_path", "./data/songs.json")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.login_per_min", 10)
	v.SetDefault("backup.keep", 20)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("server.port"),
			Env:       strings.ToLower(v.GetString("server.env")),
			LogLevel:  v.GetString("server.log_level"),
			PublicDir: v.GetString("server.public_dir"),
		},
		Auth: AuthConfig{
			User:  v.GetString("auth.user"),
			Pass:  v.GetString("auth.pass"),
			Realm: v.GetString("auth.realm"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("storage.driver")),
			FilePath: v.GetString("storage.file_path"),
		},
		Database: DatabaseConfig{
			URLDev:  v.GetString("database.url_dev"),
			URLProd: v.GetString("database.url_prod"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMin: v.GetInt("ratelimit.login_per_min"),
		},
		Backup: BackupConfig{
			Dir:  v.GetString("backup.dir"),
			Keep: v.GetInt("backup.keep"),
		},
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finalize derives computed fields and validates the result.
func finalize(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Storage.Driver != DriverPostgres {
		return nil
	}

	raw := cfg.Database.URLDev
	if cfg.Server.Env == EnvProd {
		raw = cfg.Database.URLProd
	}
	if raw == "" {
		if cfg.Server.Env == EnvProd {
			return fmt.Errorf("invalid configuration: DB_URL_PROD is required for the postgres store")
		}
		return fmt.Errorf("invalid configuration: DB_URL_DEV is required for the postgres store")
	}

	dsn, err := withSSLMode(raw, cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("invalid configuration: database url: %w", err)
	}
	cfg.Database.URL = dsn
	return nil
}

// withSSLMode requires TLS outside dev unless the URL already picks a mode.
// "require" encrypts without verifying the server certificate.
func withSSLMode(raw, env string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if q.Get("sslmode") != "" {
		return raw, nil
	}
	if env == EnvDev {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
