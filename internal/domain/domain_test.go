package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairusuo/blog-backend/pkg/i18n"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool Post!! 2024", "my-cool-post-2024"},
		{"hello-world", "hello-world"},
		{"  --Hello__World--  ", "hello-world"},
		{"2025/08/My Post", "2025/08/my-post"},
		{"/2025//08/-post-/", "2025/08/post"},
		{"中文 title", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeSlug(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, ValidateSlug(got))
		})
	}
}

func TestSanitizeSlug_Rejects(t *testing.T) {
	for _, in := range []string{"../etc/passwd", "a/../b", "..", "", "!!!", "///"} {
		_, err := SanitizeSlug(in)
		assert.ErrorIs(t, err, ErrInvalidSlug, in)
	}
}

func TestValidateSlug(t *testing.T) {
	assert.True(t, ValidateSlug("2025/08/hello-world"))
	assert.False(t, ValidateSlug("Hello"))
	assert.False(t, ValidateSlug("a//b"))
	assert.False(t, ValidateSlug("/a"))
	assert.False(t, ValidateSlug("a/"))
	assert.False(t, ValidateSlug("../a"))
	assert.False(t, ValidateSlug(""))
}

func TestWithMonthPrefix(t *testing.T) {
	now := time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025/08/hello", WithMonthPrefix("hello", now))
	assert.Equal(t, "notes/hello", WithMonthPrefix("notes/hello", now))
}

func TestParseDraftFlag(t *testing.T) {
	truthy := []any{true, 1, int64(1), uint64(1), 1.0, "true", "TRUE", " yes ", "1"}
	falsy := []any{false, 0, 2, "false", "no", "0", "", nil, []string{"true"}}

	for _, v := range truthy {
		assert.True(t, ParseDraftFlag(v), "%#v", v)
	}
	for _, v := range falsy {
		assert.False(t, ParseDraftFlag(v), "%#v", v)
	}
}

func TestReadingMinutes(t *testing.T) {
	assert.Equal(t, 1, ReadingMinutes(""))
	assert.Equal(t, 1, ReadingMinutes("a few words"))
	assert.Equal(t, 2, ReadingMinutes(strings.Repeat("word ", 201)))
	assert.Equal(t, 2, ReadingMinutes(strings.Repeat("字", 300)))
	assert.Equal(t, 4, CountWords("Hello, 世界 again"))
	assert.Equal(t, 2, CountWords("don't stop-motion"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "posts/en/2025/08/hello.mdx", PostKey(i18n.LocaleEn, "2025/08/hello"))

	slug, ok := SlugFromKey(i18n.LocaleZh, "posts/zh/2025/08/hello.mdx")
	assert.True(t, ok)
	assert.Equal(t, "2025/08/hello", slug)

	_, ok = SlugFromKey(i18n.LocaleZh, "posts/en/hello.mdx")
	assert.False(t, ok)
	_, ok = SlugFromKey(i18n.LocaleZh, "posts/zh/image.png")
	assert.False(t, ok)

	assert.Equal(t, "/blog/a", PublicURL(i18n.LocaleZh, "a"))
	assert.Equal(t, "/en/blog/a", PublicURL(i18n.LocaleEn, "a"))
}
