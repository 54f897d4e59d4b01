package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"tiffin-app-go/pkg/logger"
)

const (
	CatalogCacheMemory = "memory"
	CatalogCacheRedis  = "redis"
	CatalogCacheOff    = "off"
)

type Config struct {
	HTTPPort           string
	Env                string
	CORSAllowedOrigins []string
	DB                 DBConfig
	Redis              RedisConfig
	CatalogCache       CatalogCacheConfig
	AMQP               AMQPConfig
	Auth               AuthConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	LockTTL   time.Duration
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CatalogCacheConfig struct {
	Mode string
	TTL  time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type AuthConfig struct {
	JWTSecret  string
	JWTIssuer  string
	SkipAuth   bool
	MockUserID string
	MockPhone  string
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := newViper()
	cfg := Config{
		HTTPPort:           v.GetString("HTTP_PORT"),
		Env:                v.GetString("ENV"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			TimeZone:        v.GetString("DB_TIMEZONE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:      strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
			LockTTL:   v.GetDuration("USER_LOCK_TTL"),
		},
		CatalogCache: CatalogCacheConfig{
			Mode: strings.ToLower(strings.TrimSpace(v.GetString("CATALOG_CACHE"))),
			TTL:  v.GetDuration("CATALOG_CACHE_TTL"),
		},
		AMQP: AMQPConfig{
			URL:      strings.TrimSpace(v.GetString("AMQP_URL")),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("AUTH_JWT_SECRET"),
			JWTIssuer:  v.GetString("AUTH_JWT_ISSUER"),
			SkipAuth:   v.GetBool("AUTH_SKIP"),
			MockUserID: v.GetString("AUTH_MOCK_USER_ID"),
			MockPhone:  v.GetString("AUTH_MOCK_PHONE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tiffin_app")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "tiffin")
	v.SetDefault("USER_LOCK_TTL", 10*time.Second)

	v.SetDefault("CATALOG_CACHE", CatalogCacheMemory)
	v.SetDefault("CATALOG_CACHE_TTL", 5*time.Minute)

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "tiffin.notifications")

	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_JWT_ISSUER", "")
	v.SetDefault("AUTH_SKIP", false)
	v.SetDefault("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001")
	v.SetDefault("AUTH_MOCK_PHONE", "+910000000000")
	return v
}

func (c Config) validate() error {
	switch c.CatalogCache.Mode {
	case CatalogCacheMemory, CatalogCacheOff:
	case CatalogCacheRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("CATALOG_CACHE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown CATALOG_CACHE %q", c.CatalogCache.Mode)
	}
	if !c.Auth.SkipAuth && c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required unless AUTH_SKIP is set")
	}
	return nil
}

func splitList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
