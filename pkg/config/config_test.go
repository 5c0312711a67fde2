package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name          string
		envVars       map[string]string
		expectedPort  string
		expectedCache string
	}{
		{
			name:          "defaults when nothing set",
			envVars:       map[string]string{},
			expectedPort:  "8000",
			expectedCache: "memory",
		},
		{
			name:          "uses PORT env var when set",
			envVars:       map[string]string{"PORT": "3000"},
			expectedPort:  "3000",
			expectedCache: "memory",
		},
		{
			name:          "uses CACHE_TYPE env var when set",
			envVars:       map[string]string{"CACHE_TYPE": "sqlite"},
			expectedPort:  "8000",
			expectedCache: "sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPort, cfg.Server.Port)
			assert.Equal(t, tt.expectedCache, cfg.Cache.Type)
			assert.Equal(t, 5*time.Minute, cfg.Cache.LookupTTL)
			assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
		})
	}
}

func TestLoadFromEnv_RootLists(t *testing.T) {
	os.Clearenv()
	t.Setenv("ASSET_NAME_ROOTS", "a,b,c")
	t.Setenv("ASSET_PATH_ROOTS", "/srv/p")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Assets.NameRoots)
	assert.Equal(t, []string{"/srv/p"}, cfg.Assets.PathRoots)
}

func TestLoadFromEnv_ConfigFile(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assets:
  work_dir: /srv/app
  name_roots:
    - public/diagnostic-images
    - /mnt/reports
  path_roots:
    - /mnt/markdowns
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ASSET_NAME_ROOTS", "ignored")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", cfg.Assets.WorkDir)
	assert.Equal(t, []string{"public/diagnostic-images", "/mnt/reports"}, cfg.Assets.NameRoots)
	assert.Equal(t, []string{"/mnt/markdowns"}, cfg.Assets.PathRoots)
}

func TestLoadFromEnv_BadConfigFile(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets: [unclosed"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestDeploymentContext_Defaults(t *testing.T) {
	cfg := &Config{Assets: AssetConfig{
		WorkDir:          "/srv/app",
		ArtifactsDir:     "out/artifacts",
		BackendImagePath: "/data/images",
		ImagesBasePath:   "/data/markdowns",
	}}

	dc, err := cfg.DeploymentContext()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/srv/app"), dc.WorkDir)

	require.Len(t, dc.NameRoots, 5)
	assert.Equal(t, filepath.Join("public", "diagnostic-images"), dc.NameRoots[0])
	assert.Equal(t, "/data/images", dc.NameRoots[len(dc.NameRoots)-1])

	require.Len(t, dc.PathRoots, 4)
	assert.Equal(t, "/data/markdowns", dc.PathRoots[0])
}

func TestDeploymentContext_ExplicitRoots(t *testing.T) {
	cfg := &Config{Assets: AssetConfig{
		WorkDir:   "/srv/app",
		NameRoots: []string{"one", "/two"},
		PathRoots: []string{"three"},
	}}

	dc, err := cfg.DeploymentContext()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "/two"}, dc.NameRoots)
	assert.Equal(t, []string{filepath.Join("/srv/app", "one"), "/two"}, dc.AbsNameRoots())
	assert.Equal(t, []string{filepath.Join("/srv/app", "three")}, dc.AbsPathRoots())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:      ServerConfig{Port: "8000"},
			Cache:       CacheConfig{Type: "memory", SQLite: SQLiteConfig{Path: "x.db"}},
			Log:         LogConfig{Format: "text"},
			RateLimit:   RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
			Diagnostics: DiagnosticsConfig{ReconnectMin: time.Second, ReconnectMax: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"unknown cache", func(c *Config) { c.Cache.Type = "memcached" }, true},
		{"redis without address", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"sqlite", func(c *Config) { c.Cache.Type = "sqlite" }, false},
		{"sqlite without path", func(c *Config) { c.Cache.Type = "sqlite"; c.Cache.SQLite.Path = "" }, true},
		{"json logs", func(c *Config) { c.Log.Format = "JSON" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
		{"inverted backoff", func(c *Config) { c.Diagnostics.ReconnectMax = time.Millisecond }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
