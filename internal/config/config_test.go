package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairusuo/blog-backend/pkg/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, storage.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "Asia/Shanghai", cfg.Site.TimeZone)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxSizeBytes())
	assert.Empty(t, cfg.Admin.Token)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9000
site:
  url: https://example.com/
  title: My Blog
storage:
  driver: fs
  root: /srv/content
cache:
  driver: none
`)

	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("PORT", "9100")
	t.Setenv("ELASTICSEARCH_URL", "http://es1:9200,http://es2:9200")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "https://example.com", cfg.Site.URL)
	assert.Equal(t, "My Blog", cfg.Site.Title)
	assert.Equal(t, "/srv/content", cfg.Storage.Root)
	assert.Equal(t, "s3cret", cfg.Admin.Token)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Search.Addresses)
	assert.Equal(t, CacheNone, cfg.Cache.Driver)
}

func TestLoad_UploadsInheritR2Bucket(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "r2")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET", "blog")
	t.Setenv("R2_PUBLIC_BASE", "https://cdn.example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Uploads.S3.Configured())
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.Uploads.S3.Endpoint)
	assert.Equal(t, "https://cdn.example.com", cfg.Uploads.S3.CDNURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "ftp"}},
		{"fs without root", map[string]string{"STORAGE_DRIVER": "fs"}},
		{"redis cache without host", map[string]string{"CACHE_DRIVER": "redis"}},
		{"unknown db", map[string]string{"DB_DRIVER": "oracle"}},
		{"bad zone", map[string]string{"TIME_ZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "BLOG_TEST_A=from-env\nBLOG_TEST_B=from-env\n")
	writeFile(t, dir, ".env.local", "BLOG_TEST_A=from-local\n")
	t.Setenv("BLOG_TEST_A", "")
	t.Setenv("BLOG_TEST_B", "")
	os.Unsetenv("BLOG_TEST_A")
	os.Unsetenv("BLOG_TEST_B")

	loaded := LoadDotEnv(dir)

	assert.Len(t, loaded, 2)
	assert.Equal(t, "from-local", os.Getenv("BLOG_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("BLOG_TEST_B"))
}
