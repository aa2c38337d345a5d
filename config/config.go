// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"local", "s3", "r2"}
	validDrivers      = []string{"sqlite", "postgres", "mysql"}
	validStores       = []string{"memory", "redis"}
	validSessions     = []string{"cookie", "redis"}
)

type Config struct {
	App        App
	Host       Host
	Database   Database
	Redis      Redis
	Session    Session
	Cache      Cache
	Accounts   Accounts
	Mail       Mail
	Queue      Queue
	Storage    Storage
	Upload     Upload
	Security   Security
	AWS        AWS
	Cloudflare Cloudflare
}

type App struct {
	LogLevel string
	Secret   string
}

type Host struct {
	Port       int
	Domain     string
	SSLEnabled bool
	CertPath   string
	KeyPath    string
	CORS       []string
}

// Scheme returns http or https depending on whether SSL is on
func (h Host) Scheme() string {
	if h.SSLEnabled {
		return "https"
	}

	return "http"
}

// BaseURL is the absolute root used in links sent by mail
func (h Host) BaseURL() string {
	return h.Scheme() + "://" + h.Domain
}

type Database struct {
	Driver   string
	DSN      string
	Replicas []string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Session struct {
	Store  string
	Name   string
	MaxAge int
}

type Cache struct {
	Store        string
	DashboardTTL time.Duration
}

type Accounts struct {
	ActivationTTL    time.Duration
	PasswordResetTTL time.Duration
	CleanupAfter     time.Duration
	CleanupSchedule  string
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Queue describes the broker connection and retry policy shared by the
// dispatcher in the web tier and the mail worker
type Queue struct {
	Redis       Redis
	Name        string
	Concurrency int
	MaxRetry    int
	RetryDelay  time.Duration
}

type Storage struct {
	Type      string
	LocalPath string
}

type Upload struct {
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

type Security struct {
	RateLimit int
}

type AWS struct {
	AccessKey       string
	SecretAccessKey string
	Region          string
	Bucket          string
}

type Cloudflare struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file, %w", err)
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.secret", "app_secret")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")
	v.BindEnv("database.replicas", "database_replicas")

	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("session.store", "session_store")
	v.BindEnv("session.name", "session_name")
	v.BindEnv("session.max_age", "session_max_age")

	v.BindEnv("cache.store", "cache_store")
	v.BindEnv("cache.dashboard_ttl", "cache_dashboard_ttl")

	v.BindEnv("accounts.activation_ttl", "accounts_activation_ttl")
	v.BindEnv("accounts.password_reset_ttl", "accounts_password_reset_ttl")
	v.BindEnv("accounts.cleanup_after", "accounts_cleanup_after")
	v.BindEnv("accounts.cleanup_schedule", "accounts_cleanup_schedule")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.username", "mail_username")
	v.BindEnv("mail.password", "mail_password")
	v.BindEnv("mail.from", "mail_from")

	v.BindEnv("queue.name", "queue_name")
	v.BindEnv("queue.concurrency", "queue_concurrency")
	v.BindEnv("queue.max_retry", "queue_max_retry")
	v.BindEnv("queue.retry_delay", "queue_retry_delay")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local_path", "storage_local_path")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")

	v.BindEnv("cloudflare.account_id", "cloudflare_account_id")
	v.BindEnv("cloudflare.access_key_id", "cloudflare_access_key_id")
	v.BindEnv("cloudflare.secret_access_key", "cloudflare_secret_access_key")
	v.BindEnv("cloudflare.bucket", "cloudflare_bucket")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "taskcamp.db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.store", "cookie")
	v.SetDefault("session.name", "taskcamp_session")
	v.SetDefault("session.max_age", 60*60*24*14)

	v.SetDefault("cache.store", "memory")
	v.SetDefault("cache.dashboard_ttl", 0)

	v.SetDefault("accounts.activation_ttl", "24h")
	v.SetDefault("accounts.password_reset_ttl", "72h")
	v.SetDefault("accounts.cleanup_after", "168h")
	v.SetDefault("accounts.cleanup_schedule", "@daily")

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "noreply@taskcamp.local")

	v.SetDefault("queue.name", "mail")
	v.SetDefault("queue.concurrency", 2)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("queue.retry_delay", "60s")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "media")

	v.SetDefault("upload.max_size", 50)

	v.SetDefault("security.rate_limit", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg := &Config{
		App: App{
			LogLevel: v.GetString("app.log_level"),
			Secret:   v.GetString("app.secret"),
		},
		Host: Host{
			Port:       v.GetInt("host.port"),
			Domain:     v.GetString("host.domain"),
			SSLEnabled: v.GetBool("host.ssl.enabled"),
			CertPath:   v.GetString("host.ssl.certificate_path"),
			KeyPath:    v.GetString("host.ssl.certificate_key_path"),
			CORS:       splitList(v.GetStringSlice("host.cors")),
		},
		Database: Database{
			Driver:   v.GetString("database.driver"),
			DSN:      v.GetString("database.dsn"),
			Replicas: splitList(v.GetStringSlice("database.replicas")),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: Session{
			Store:  v.GetString("session.store"),
			Name:   v.GetString("session.name"),
			MaxAge: v.GetInt("session.max_age"),
		},
		Cache: Cache{
			Store:        v.GetString("cache.store"),
			DashboardTTL: time.Duration(v.GetInt("cache.dashboard_ttl")) * time.Second,
		},
		Accounts: Accounts{
			ActivationTTL:    v.GetDuration("accounts.activation_ttl"),
			PasswordResetTTL: v.GetDuration("accounts.password_reset_ttl"),
			CleanupAfter:     v.GetDuration("accounts.cleanup_after"),
			CleanupSchedule:  v.GetString("accounts.cleanup_schedule"),
		},
		Mail: Mail{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Storage: Storage{
			Type:      v.GetString("storage.type"),
			LocalPath: v.GetString("storage.local_path"),
		},
		Upload: Upload{
			MaxSize:      v.GetInt64("upload.max_size") << 20,
			AllowedTypes: splitList(v.GetStringSlice("upload.allowed_types")),
		},
		Security: Security{
			RateLimit: v.GetInt("security.rate_limit"),
		},
		AWS: AWS{
			AccessKey:       v.GetString("aws.access_key"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			Region:          v.GetString("aws.region"),
			Bucket:          v.GetString("aws.bucket"),
		},
		Cloudflare: Cloudflare{
			AccountID:       v.GetString("cloudflare.account_id"),
			AccessKeyID:     v.GetString("cloudflare.access_key_id"),
			SecretAccessKey: v.GetString("cloudflare.secret_access_key"),
			Bucket:          v.GetString("cloudflare.bucket"),
		},
	}

	cfg.Queue = Queue{
		Redis:       cfg.Redis,
		Name:        v.GetString("queue.name"),
		Concurrency: v.GetInt("queue.concurrency"),
		MaxRetry:    v.GetInt("queue.max_retry"),
		RetryDelay:  v.GetDuration("queue.retry_delay"),
	}

	if cfg.App.Secret == "" {
		cfg.App.Secret = genSecret()
		zap.L().Warn("No app.secret set, a random one was generated. Sessions won't survive a restart")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(cfg.Upload.AllowedTypes) == 0 {
		zap.L().Warn("No upload.allowed_types specified, any file type will be accepted")
	}

	return cfg, nil
}

// Validate checks the config for values the application can't run with
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if c.Host.SSLEnabled {
		if c.Host.CertPath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.KeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database dsn can't be empty")
	}

	if !slices.Contains(validSessions, c.Session.Store) {
		return errors.New("invalid session store provided")
	}

	if !slices.Contains(validStores, c.Cache.Store) {
		return errors.New("invalid cache store provided")
	}

	if c.Cache.DashboardTTL < 0 {
		return errors.New("cache.dashboard_ttl can't be negative")
	}

	if c.Accounts.ActivationTTL <= 0 {
		return errors.New("accounts.activation_ttl must be bigger than 0")
	}

	if c.Accounts.PasswordResetTTL <= 0 {
		return errors.New("accounts.password_reset_ttl must be bigger than 0")
	}

	if c.Queue.Concurrency <= 0 {
		return errors.New("queue.concurrency must be bigger than 0")
	}

	if c.Queue.MaxRetry < 0 {
		return errors.New("queue.max_retry can't be negative")
	}

	if c.Security.RateLimit <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	switch c.Storage.Type {
	case "r2":
		if c.Cloudflare.AccountID == "" {
			return errors.New("account id can't be empty")
		}
		if c.Cloudflare.AccessKeyID == "" {
			return errors.New("account access id can't be empty")
		}
		if c.Cloudflare.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
		if c.Cloudflare.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
	case "s3":
		if c.AWS.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.AWS.Region == "" {
			return errors.New("region can't be empty")
		}
	case "local":
		if c.Storage.LocalPath == "" {
			return errors.New("storage.local_path can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	return nil
}

// splitList flattens comma separated entries coming from env variables
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}

	return out
}
