// Package storage is a small key-value blob abstraction shared by the post
// repository and the upload service. Keys are slash-separated paths such as
// "posts/zh/2025/08/hello.mdx".
package storage

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or escape the backend root
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage is implemented by every backend.
//
// Read reports ok=false with a nil error when the key does not exist, so
// callers can tell a missing object apart from a transport failure.
type Storage interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Read(ctx context.Context, key string) (data []byte, ok bool, err error)
	Write(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ContentType guesses the MIME type stored alongside an object
func ContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	switch ext {
	case ".mdx", ".md":
		return "text/markdown; charset=utf-8"
	case "":
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CleanKey validates a key and strips a leading slash
func CleanKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." {
			return "", ErrInvalidKey
		}
	}
	return key, nil
}
