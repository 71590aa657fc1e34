package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Export   ExportConfig   `mapstructure:"export"`
	Public   PublicConfig   `mapstructure:"public"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	AutoSave AutoSaveConfig `mapstructure:"autosave"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port                  int `mapstructure:"port"`
	LoginRateLimitPerHour int `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int `mapstructure:"login_lock_threshold"`
	LoginLockTTLMinutes   int `mapstructure:"login_lock_ttl_minutes"`
}

// LoginLockTTL 返回登录锁定时长。
func (a APIConfig) LoginLockTTL() time.Duration {
	return time.Duration(a.LoginLockTTLMinutes) * time.Minute
}

// StoreConfig 选择键值存储后端。
type StoreConfig struct {
	// Backend: memory | redis | postgres
	Backend string `mapstructure:"backend"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr 返回 host:port 形式的地址。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Region           string `mapstructure:"region"`
	Bucket           string `mapstructure:"bucket"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig 包含 JWT 密钥与有效期配置。
type AuthConfig struct {
	PrivateKeyPath   string `mapstructure:"private_key_path"`
	PublicKeyPath    string `mapstructure:"public_key_path"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLHours  int    `mapstructure:"refresh_ttl_hours"`
	CookieDomain     string `mapstructure:"cookie_domain"`
	AllowedWSOrigins string `mapstructure:"allowed_ws_origins"`
}

// AccessTTL 暴露访问令牌有效期。
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMinutes) * time.Minute
}

// RefreshTTL 暴露刷新令牌有效期。
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLHours) * time.Hour
}

// WSOrigins 拆分逗号分隔的 Origin 白名单。
func (a AuthConfig) WSOrigins() []string {
	raw := strings.Split(a.AllowedWSOrigins, ",")
	origins := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ExportConfig 配置文件导出的落盘目录与下载回退。
type ExportConfig struct {
	// Directory 为空时跳过目录选择策略，直接回退到对象存储下载。
	Directory      string `mapstructure:"directory"`
	DownloadPrefix string `mapstructure:"download_prefix"`
	PresignTTLMin  int    `mapstructure:"presign_ttl_minutes"`
}

// PresignTTL 返回下载链接有效期。
func (e ExportConfig) PresignTTL() time.Duration {
	return time.Duration(e.PresignTTLMin) * time.Minute
}

// PublicConfig 配置对外公开简历页的基础 URL。
type PublicConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// ClamdConfig 配置导入文档的病毒扫描（可选，地址为空则跳过）。
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// AutoSaveConfig 配置草稿自动保存的防抖窗口。
type AutoSaveConfig struct {
	DebounceSeconds int `mapstructure:"debounce_seconds"`
}

// Debounce 返回防抖窗口时长。
func (a AutoSaveConfig) Debounce() time.Duration {
	return time.Duration(a.DebounceSeconds) * time.Second
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.login_rate_limit_per_hour", 10)
	v.SetDefault("api.login_lock_threshold", 5)
	v.SetDefault("api.login_lock_ttl_minutes", 15)
	v.SetDefault("store.backend", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumevault")
	v.SetDefault("database.user", "resumevault")
	v.SetDefault("database.password", "resumevault")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "exports")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.access_ttl_minutes", 15)
	v.SetDefault("auth.refresh_ttl_hours", 168)
	v.SetDefault("export.download_prefix", "downloads")
	v.SetDefault("export.presign_ttl_minutes", 5)
	v.SetDefault("public.base_url", "http://localhost:3000")
	v.SetDefault("autosave.debounce_seconds", 2)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                      "API_PORT",
		"api.login_rate_limit_per_hour": "LOGIN_RATE_LIMIT_PER_HOUR",
		"api.login_lock_threshold":      "LOGIN_LOCK_THRESHOLD",
		"api.login_lock_ttl_minutes":    "LOGIN_LOCK_TTL_MINUTES",
		"store.backend":                 "STORE_BACKEND",
		"database.host":                 "DATABASE_HOST",
		"database.port":                 "DATABASE_PORT",
		"database.name":                 "POSTGRES_DB",
		"database.user":                 "POSTGRES_USER",
		"database.password":             "POSTGRES_PASSWORD",
		"database.sslmode":              "DATABASE_SSLMODE",
		"redis.host":                    "REDIS_HOST",
		"redis.port":                    "REDIS_PORT",
		"minio.endpoint":                "MINIO_ENDPOINT",
		"minio.public_endpoint":         "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":           "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":       "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                 "MINIO_USE_SSL",
		"minio.region":                  "MINIO_REGION",
		"minio.bucket":                  "MINIO_BUCKET",
		"minio.bucket_lookup":           "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":      "MINIO_AUTO_CREATE_BUCKET",
		"auth.private_key_path":         "AUTH_PRIVATE_KEY_PATH",
		"auth.public_key_path":          "AUTH_PUBLIC_KEY_PATH",
		"auth.access_ttl_minutes":       "AUTH_ACCESS_TTL_MINUTES",
		"auth.refresh_ttl_hours":        "AUTH_REFRESH_TTL_HOURS",
		"auth.cookie_domain":            "AUTH_COOKIE_DOMAIN",
		"auth.allowed_ws_origins":       "AUTH_ALLOWED_WS_ORIGINS",
		"export.directory":              "EXPORT_DIRECTORY",
		"export.download_prefix":        "EXPORT_DOWNLOAD_PREFIX",
		"export.presign_ttl_minutes":    "EXPORT_PRESIGN_TTL_MINUTES",
		"public.base_url":               "PUBLIC_BASE_URL",
		"clamd.addr":                    "CLAMD_ADDR",
		"autosave.debounce_seconds":     "AUTOSAVE_DEBOUNCE_SECONDS",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	switch cfg.Store.Backend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "postgres" {
		if cfg.Database.Host == "" {
			return errors.New("database host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.Password == "" {
			return errors.New("database password is required")
		}
		if cfg.Database.SSLMode == "" {
			return errors.New("database sslmode is required")
		}
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.AccessTTLMinutes <= 0 {
		return errors.New("auth access ttl must be positive")
	}
	if cfg.Auth.RefreshTTLHours <= 0 {
		return errors.New("auth refresh ttl must be positive")
	}
	if cfg.AutoSave.DebounceSeconds <= 0 {
		return errors.New("autosave debounce must be positive")
	}
	if cfg.Public.BaseURL == "" {
		return errors.New("public base url is required")
	}
	return nil
}
