package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairusuo/blog-backend/pkg/i18n"
	"github.com/pairusuo/blog-backend/pkg/storage"
)

func sourceStore() *storage.MemoryStorage {
	return storage.NewMemory(map[string]string{
		"posts/zh/2025/08/a.mdx": "---\ntitle: \"A\"\n---\n\na\n",
		"posts/zh/2025/08/b.mdx": "---\ntitle: \"B\"\n---\n\nb\n",
		"posts/en/c.mdx":         "---\ntitle: \"C\"\n---\n\nc\n",
		"uploads/2025/08/x.png":  "png",
	})
}

func TestCopyPosts(t *testing.T) {
	src := sourceStore()
	dst := storage.NewMemory(nil)

	report, err := CopyPosts(context.Background(), src, dst, Options{Verify: true})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 3, report.Listed)
	assert.Equal(t, 3, report.Copied)
	assert.Equal(t, 3, report.Verified)
	assert.Equal(t, 3, dst.Len())

	data, ok, err := dst.Read(context.Background(), "posts/en/c.mdx")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), "title: \"C\"")
}

func TestCopyPosts_LocaleAndDryRun(t *testing.T) {
	src := sourceStore()
	dst := storage.NewMemory(nil)

	report, err := CopyPosts(context.Background(), src, dst, Options{Locales: []i18n.Locale{i18n.LocaleEn}, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Listed)
	assert.Zero(t, report.Copied)
	assert.Zero(t, dst.Len())
}

type brokenWrites struct {
	*storage.MemoryStorage
	bad string
}

func (b brokenWrites) Write(ctx context.Context, key string, data []byte) error {
	if key == b.bad {
		return errors.New("disk full")
	}
	return b.MemoryStorage.Write(ctx, key, data)
}

func TestCopyPosts_CollectsFailures(t *testing.T) {
	dst := brokenWrites{MemoryStorage: storage.NewMemory(nil), bad: "posts/zh/2025/08/b.mdx"}

	report, err := CopyPosts(context.Background(), sourceStore(), dst, Options{Workers: 1})
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Copied)
	assert.Equal(t, []string{"posts/zh/2025/08/b.mdx"}, report.Failed)
}
