package storage

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var storageOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_storage_operations_total",
		Help: "Storage backend operations by backend, operation and result",
	},
	[]string{"backend", "op", "result"},
)

type instrumented struct {
	next    Storage
	backend string
}

// Instrument wraps s so every call is counted under the given backend label
func Instrument(s Storage, backend string) Storage {
	return &instrumented{next: s, backend: backend}
}

func (i *instrumented) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storageOperations.WithLabelValues(i.backend, op, result).Inc()
}

func (i *instrumented) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := i.next.List(ctx, prefix)
	i.observe("list", err)
	return keys, err
}

func (i *instrumented) Read(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := i.next.Read(ctx, key)
	switch {
	case err != nil:
		i.observe("read", err)
	case !ok:
		storageOperations.WithLabelValues(i.backend, "read", "missing").Inc()
	default:
		i.observe("read", nil)
	}
	return data, ok, err
}

func (i *instrumented) Write(ctx context.Context, key string, data []byte) error {
	err := i.next.Write(ctx, key, data)
	i.observe("write", err)
	return err
}

func (i *instrumented) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := i.next.Exists(ctx, key)
	i.observe("exists", err)
	return ok, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	i.observe("delete", err)
	return err
}
