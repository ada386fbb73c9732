package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	fsStore, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return map[string]Storage{
		"memory":       NewMemory(nil),
		"fs":           fsStore,
		"instrumented": Instrument(NewMemory(nil), "test"),
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			data, ok, err := s.Read(ctx, "posts/en/missing.mdx")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, data)

			exists, err := s.Exists(ctx, "posts/en/missing.mdx")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.Write(ctx, "posts/en/2025/01/a.mdx", []byte("alpha")))
			require.NoError(t, s.Write(ctx, "posts/en/b.mdx", []byte("beta")))
			require.NoError(t, s.Write(ctx, "posts/zh/c.mdx", []byte("gamma")))

			data, ok, err = s.Read(ctx, "posts/en/2025/01/a.mdx")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "alpha", string(data))

			keys, err := s.List(ctx, "posts/en/")
			require.NoError(t, err)
			assert.Equal(t, []string{"posts/en/2025/01/a.mdx", "posts/en/b.mdx"}, keys)

			keys, err = s.List(ctx, "posts/fr/")
			require.NoError(t, err)
			assert.Empty(t, keys)

			require.NoError(t, s.Write(ctx, "posts/en/b.mdx", []byte("beta v2")))
			data, _, err = s.Read(ctx, "posts/en/b.mdx")
			require.NoError(t, err)
			assert.Equal(t, "beta v2", string(data))

			require.NoError(t, s.Delete(ctx, "posts/en/b.mdx"))
			exists, err = s.Exists(ctx, "posts/en/b.mdx")
			require.NoError(t, err)
			assert.False(t, exists)

			// deleting twice is fine
			require.NoError(t, s.Delete(ctx, "posts/en/b.mdx"))
		})
	}
}

func TestMemoryStorage_CopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	buf := []byte("original")
	require.NoError(t, m.Write(ctx, "k.txt", buf))
	buf[0] = 'X'

	data, _, err := m.Read(ctx, "k.txt")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	data[0] = 'Y'
	again, _, _ := m.Read(ctx, "k.txt")
	assert.Equal(t, "original", string(again))
}

func TestDevFixture(t *testing.T) {
	m := NewDevFixture()
	assert.Equal(t, 2, m.Len())

	keys, err := m.List(context.Background(), "posts/zh/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestFileStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStorage(root)
	require.NoError(t, err)

	for _, key := range []string{"../escape.txt", "posts/../../escape.txt", "a\\b", ""} {
		err := s.Write(ctx, key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}

	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorage_WritesUnderRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "/uploads/2025/08/x.png", []byte{1, 2, 3}))

	got, err := os.ReadFile(filepath.Join(root, "uploads", "2025", "08", "x.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	entries, err := os.ReadDir(filepath.Join(root, "uploads", "2025", "08"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestNewFileStorage_RequiresRoot(t *testing.T) {
	_, err := NewFileStorage("")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown; charset=utf-8", ContentType("posts/zh/a.mdx"))
	assert.Equal(t, "image/png", ContentType("uploads/2025/08/a.PNG"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

func TestCleanKey(t *testing.T) {
	k, err := CleanKey("/posts/zh/a.mdx")
	require.NoError(t, err)
	assert.Equal(t, "posts/zh/a.mdx", k)

	_, err = CleanKey("posts/./a.mdx")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(Config{Driver: "memory", Seed: true})
	require.NoError(t, err)
	keys, err := s.List(context.Background(), "posts/zh/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	s, err = New(Config{Driver: "fs", Root: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, s)

	s, err = New(Config{Driver: "r2", S3: S3Config{AccountID: "acc", Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = New(Config{Driver: "ftp"})
	assert.Error(t, err)

	_, err = New(Config{Driver: "s3"})
	assert.Error(t, err, "bucket is required")
}

func TestS3Config_R2(t *testing.T) {
	cfg := S3Config{AccountID: "abc", Bucket: "b"}.R2()
	assert.Equal(t, "https://abc.r2.cloudflarestorage.com", cfg.Endpoint)
	assert.Equal(t, "auto", cfg.Region)
	assert.True(t, cfg.ForcePathStyle)

	custom := S3Config{AccountID: "abc", Endpoint: "https://minio.local", Region: "eu"}.R2()
	assert.Equal(t, "https://minio.local", custom.Endpoint)
	assert.Equal(t, "eu", custom.Region)
}

func TestS3Config_Configured(t *testing.T) {
	assert.False(t, S3Config{}.Configured())
	assert.False(t, S3Config{Bucket: "b", AccessKeyID: "k"}.Configured())
	assert.True(t, S3Config{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s", AccountID: "a"}.Configured())
}

func TestS3Storage_PublicURL(t *testing.T) {
	s, err := NewS3Storage(S3Config{Bucket: "b", CDNURL: "https://cdn.example.com/", BasePath: "/blog/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog/uploads/2025/08/a%20b.png", s.PublicURL("uploads/2025/08/a b.png"))

	bare, err := NewS3Storage(S3Config{Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "", bare.PublicURL("uploads/x.png"))
}
