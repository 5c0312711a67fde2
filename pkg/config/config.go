// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Environment tags are parsed with caarlos0/env, asset roots may come from a YAML file

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"diagnostic-report-api/core/domain"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Cache contains asset lookup cache configuration
	Cache CacheConfig

	// Log contains logger configuration
	Log LogConfig

	// Assets contains the ordered candidate roots
	Assets AssetConfig `yaml:"assets"`

	// Diagnostics contains side-channel configuration
	Diagnostics DiagnosticsConfig

	// RateLimit contains per-client rate limiting configuration
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string `env:"PORT" envDefault:"8000"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// AllowedOrigins feeds the CORS middleware
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (memory/redis/sqlite)
	Type string `env:"CACHE_TYPE" envDefault:"memory"`

	// LookupTTL bounds how long a remembered asset location is reused
	LookupTTL time.Duration `env:"ASSET_LOOKUP_TTL" envDefault:"5m"`

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig

	// SQLite contains SQLite-specific configuration
	SQLite SQLiteConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`

	// Password is the Redis authentication password
	Password string `env:"REDIS_PASSWORD"`

	// DB is the Redis database number
	DB int `env:"REDIS_DB" envDefault:"0"`
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// DefaultExpiration is the default TTL for cache entries in seconds
	DefaultExpiration int `env:"MEMORY_CACHE_EXPIRATION" envDefault:"3600"`

	// CleanupInterval is how often expired entries are purged, in seconds
	CleanupInterval int `env:"MEMORY_CACHE_CLEANUP" envDefault:"600"`
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file
	Path string `env:"SQLITE_PATH" envDefault:"asset-cache.db"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
}

// AssetConfig holds the candidate roots for both asset entry points
type AssetConfig struct {
	// WorkDir anchors relative roots, defaults to the process working directory
	WorkDir string `env:"ASSET_WORK_DIR" yaml:"work_dir"`

	// ArtifactsDir is the backend output directory used by the default name roots
	ArtifactsDir string `env:"ASSET_ARTIFACTS_DIR" envDefault:"output/markdowns/artifacts" yaml:"artifacts_dir"`

	// BackendImagePath is appended as the last name root when set
	BackendImagePath string `env:"BACKEND_IMAGE_PATH" yaml:"backend_image_path"`

	// ImagesBasePath is prepended as the first path root when set
	ImagesBasePath string `env:"IMAGES_BASE_PATH" yaml:"images_base_path"`

	// NameRoots replaces the default name-only roots when non-empty
	NameRoots []string `env:"ASSET_NAME_ROOTS" envSeparator:"," yaml:"name_roots"`

	// PathRoots replaces the default path-hinted roots when non-empty
	PathRoots []string `env:"ASSET_PATH_ROOTS" envSeparator:"," yaml:"path_roots"`
}

// DiagnosticsConfig holds diagnostic side-channel configuration
type DiagnosticsConfig struct {
	// WebSocketURL is the backend data-channel endpoint, empty disables the client
	WebSocketURL string `env:"DIAGNOSTICS_WS_URL"`

	// ReconnectMin is the first reconnect delay
	ReconnectMin time.Duration `env:"DIAGNOSTICS_RECONNECT_MIN" envDefault:"1s"`

	// ReconnectMax caps the reconnect delay
	ReconnectMax time.Duration `env:"DIAGNOSTICS_RECONNECT_MAX" envDefault:"30s"`
}

// RateLimitConfig holds per-client token bucket settings
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// fileConfig is the subset of configuration accepted from CONFIG_FILE
type fileConfig struct {
	Assets AssetConfig `yaml:"assets"`
}

// LoadFromEnv loads configuration from environment variables, then applies
// the YAML file named by CONFIG_FILE if present.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ApplyFile overlays asset settings from a YAML file. Only fields present in
// the file replace the environment values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	a := fc.Assets
	if a.WorkDir != "" {
		c.Assets.WorkDir = a.WorkDir
	}
	if a.ArtifactsDir != "" {
		c.Assets.ArtifactsDir = a.ArtifactsDir
	}
	if a.BackendImagePath != "" {
		c.Assets.BackendImagePath = a.BackendImagePath
	}
	if a.ImagesBasePath != "" {
		c.Assets.ImagesBasePath = a.ImagesBasePath
	}
	if len(a.NameRoots) > 0 {
		c.Assets.NameRoots = a.NameRoots
	}
	if len(a.PathRoots) > 0 {
		c.Assets.PathRoots = a.PathRoots
	}
	return nil
}

// DefaultNameRoots mirrors the deployment layouts the backend writes images to
func (a AssetConfig) DefaultNameRoots() []string {
	roots := []string{
		filepath.Join("public", "diagnostic-images"),
	}
	if a.ArtifactsDir != "" {
		roots = append(roots,
			filepath.Join("..", a.ArtifactsDir),
			a.ArtifactsDir,
			filepath.Join(os.TempDir(), a.ArtifactsDir),
		)
	}
	if a.BackendImagePath != "" {
		roots = append(roots, a.BackendImagePath)
	}
	return roots
}

// DefaultPathRoots mirrors the layouts used for path-hinted references
func (a AssetConfig) DefaultPathRoots() []string {
	var roots []string
	if a.ImagesBasePath != "" {
		roots = append(roots, a.ImagesBasePath)
	}
	return append(roots,
		filepath.Join("output", "markdowns"),
		filepath.Join("..", "output", "markdowns"),
		filepath.Join("backendtest_temp", "output", "markdowns"),
	)
}

// DeploymentContext builds the explicit resolution context from configuration
func (c *Config) DeploymentContext() (domain.DeploymentContext, error) {
	workDir := c.Assets.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return domain.DeploymentContext{}, fmt.Errorf("determine working directory: %w", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return domain.DeploymentContext{}, fmt.Errorf("resolve working directory: %w", err)
	}

	nameRoots := c.Assets.NameRoots
	if len(nameRoots) == 0 {
		nameRoots = c.Assets.DefaultNameRoots()
	}
	pathRoots := c.Assets.PathRoots
	if len(pathRoots) == 0 {
		pathRoots = c.Assets.DefaultPathRoots()
	}

	return domain.DeploymentContext{
		WorkDir:   workDir,
		NameRoots: append([]string(nil), nameRoots...),
		PathRoots: append([]string(nil), pathRoots...),
	}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	switch c.Cache.Type {
	case "memory", "redis", "sqlite":
	default:
		return errors.New("cache type must be 'memory', 'redis' or 'sqlite'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	if c.Cache.Type == "sqlite" && c.Cache.SQLite.Path == "" {
		return errors.New("sqlite path cannot be empty when using sqlite cache")
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("log format must be 'text' or 'json'")
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate limit must allow at least one request")
	}

	if c.Diagnostics.ReconnectMin <= 0 || c.Diagnostics.ReconnectMax < c.Diagnostics.ReconnectMin {
		return errors.New("diagnostics reconnect delays are inconsistent")
	}

	return nil
}
