package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pkgelastic "github.com/pairusuo/blog-backend/pkg/elasticsearch"
	pkgredis "github.com/pairusuo/blog-backend/pkg/redis"
	"github.com/pairusuo/blog-backend/pkg/storage"
	"github.com/pairusuo/blog-backend/pkg/timeutil"
)

// Config is the full application configuration
type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Site     SiteConfig        `yaml:"site"`
	Admin    AdminConfig       `yaml:"admin"`
	Storage  storage.Config    `yaml:"storage"`
	Uploads  UploadsConfig     `yaml:"uploads"`
	Cache    CacheConfig       `yaml:"cache"`
	Redis    pkgredis.Config   `yaml:"redis"`
	Database DatabaseConfig    `yaml:"database"`
	Search   pkgelastic.Config `yaml:"search"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Mode        string   `yaml:"mode"`
	Env         string   `yaml:"env"`
	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// SiteConfig public site identity used by feeds and URLs
type SiteConfig struct {
	URL         string `yaml:"url"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	TimeZone    string `yaml:"time_zone"`
}

// AdminConfig admin API settings
type AdminConfig struct {
	Token          string `yaml:"token"`
	RateLimit      int    `yaml:"rate_limit"`
	RateWindowSecs int    `yaml:"rate_window_seconds"`
}

// UploadsConfig image upload settings. S3 is the primary destination.
type UploadsConfig struct {
	MaxSizeMB int              `yaml:"max_size_mb"`
	LocalDir  string           `yaml:"local_dir"`
	S3        storage.S3Config `yaml:"s3"`
}

// CacheConfig read cache settings
type CacheConfig struct {
	Driver     string `yaml:"driver"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// DatabaseConfig audit log database
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Cache drivers
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Database drivers
const (
	DBSQLite = "sqlite"
	DBMySQL  = "mysql"
	DBNone   = ""
)

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// MaxSizeBytes returns the upload limit in bytes
func (u UploadsConfig) MaxSizeBytes() int64 {
	return int64(u.MaxSizeMB) << 20
}

// RateWindow returns the admin rate limit window
func (a AdminConfig) RateWindow() time.Duration {
	return time.Duration(a.RateWindowSecs) * time.Second
}

// Location loads the configured fixed time zone
func (s SiteConfig) Location() *time.Location {
	loc, err := timeutil.LoadLocation(s.TimeZone)
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// Path returns the config file for APP_ENV (default dev)
func Path() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

// Load reads the YAML file at path, applies defaults and environment overrides, and validates.
// A missing file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Mode: "debug", Env: "development", LogLevel: "info"},
		Site: SiteConfig{
			URL:         "http://localhost:3000",
			Title:       "Blog",
			Description: "Personal blog",
			TimeZone:    timeutil.DefaultZone,
		},
		Admin:    AdminConfig{RateLimit: 60, RateWindowSecs: 60},
		Storage:  storage.Config{Driver: storage.DriverMemory, Seed: true},
		Uploads:  UploadsConfig{MaxSizeMB: 10, LocalDir: "public/uploads"},
		Cache:    CacheConfig{Driver: CacheMemory, TTLSeconds: 300},
		Redis:    pkgredis.Config{Port: 6379, PoolSize: 10},
		Database: DatabaseConfig{Driver: DBSQLite, DSN: "data/audit.db"},
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Site.TimeZone == "" {
		c.Site.TimeZone = d.Site.TimeZone
	}
	c.Site.URL = strings.TrimRight(c.Site.URL, "/")
	if c.Uploads.MaxSizeMB <= 0 {
		c.Uploads.MaxSizeMB = d.Uploads.MaxSizeMB
	}
	if c.Uploads.LocalDir == "" {
		c.Uploads.LocalDir = d.Uploads.LocalDir
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = d.Cache.TTLSeconds
	}
	if c.Admin.RateWindowSecs <= 0 {
		c.Admin.RateWindowSecs = d.Admin.RateWindowSecs
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = storage.DriverMemory
	}
	// uploads share the post bucket unless configured separately
	if !c.Uploads.S3.Configured() && c.Storage.S3.Configured() && c.Storage.S3.CDNURL != "" {
		up := c.Storage.S3
		if c.Storage.Driver == storage.DriverR2 {
			up = up.R2()
		}
		up.BasePath = ""
		c.Uploads.S3 = up
	}
}

func applyEnv(c *Config) {
	setString(&c.Admin.Token, "ADMIN_TOKEN")
	setString(&c.Site.URL, "SITE_URL")
	setString(&c.Site.TimeZone, "TIME_ZONE")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Server.Env, "APP_ENV")
	setString(&c.Server.LogLevel, "LOG_LEVEL")

	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Root, "STORAGE_ROOT")
	setString(&c.Storage.S3.AccountID, "R2_ACCOUNT_ID")
	setString(&c.Storage.S3.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&c.Storage.S3.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&c.Storage.S3.Bucket, "R2_BUCKET")
	setString(&c.Storage.S3.Endpoint, "R2_ENDPOINT")
	setString(&c.Storage.S3.CDNURL, "R2_PUBLIC_BASE")

	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Cache.Driver, "CACHE_DRIVER")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")

	if v := os.Getenv("ELASTICSEARCH_URL"); v != "" {
		c.Search.Addresses = strings.Split(v, ",")
	}
}

// Validate checks driver names and the time zone
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverFS, storage.DriverS3, storage.DriverR2:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == storage.DriverFS && c.Storage.Root == "" {
		return errors.New("storage.root is required for the fs driver")
	}

	switch c.Cache.Driver {
	case CacheRedis, CacheMemory, CacheNone:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Cache.Driver == CacheRedis && !c.Redis.Enabled() {
		return errors.New("cache driver redis requires redis.host")
	}

	switch c.Database.Driver {
	case DBSQLite, DBMySQL, DBNone:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if _, err := timeutil.LoadLocation(c.Site.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone %q: %w", c.Site.TimeZone, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
