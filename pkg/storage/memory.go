package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage keeps objects in process memory
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemory creates a memory backend holding a copy of seed
func NewMemory(seed map[string]string) *MemoryStorage {
	m := &MemoryStorage{objects: make(map[string][]byte, len(seed))}
	for k, v := range seed {
		m.objects[k] = []byte(v)
	}
	return m
}

// NewDevFixture returns a memory backend with two sample posts for local runs
func NewDevFixture() *MemoryStorage {
	return NewMemory(map[string]string{
		"posts/zh/2025/08/cloudflare-r2-object-storage.mdx": `---
title: CloudFlare R2 Object Storage的使用
summary: 使用CF的对象存储保存图片
publishedAt: "2025-08-12 13:23:56"
updatedAt: "2025-08-12 13:23:56"
draft: false
---

使用CF的对象存储保存图片的完整指南。
`,
		"posts/zh/2025/08/markdown-basics.mdx": `---
title: Markdown 基础语法全指南（对照 GFM）
summary: 按章节系统介绍 Markdown 基本语法，并给出最佳实践与常见坑。
publishedAt: "2025-08-11 22:39:13"
updatedAt: "2025-08-11 22:39:13"
draft: false
---

按章节系统介绍 Markdown 基本语法的完整指南。
`,
	})
}

// List returns the sorted keys under prefix
func (m *MemoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Read returns a copy of the stored object
func (m *MemoryStorage) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.objects[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Write stores a copy of data under key
func (m *MemoryStorage) Write(_ context.Context, key string, data []byte) error {
	if _, err := CleanKey(key); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = buf
	m.mu.Unlock()
	return nil
}

// Exists reports whether key is present
func (m *MemoryStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Delete removes key; missing keys are ignored
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
