// Package migration copies post content between storage backends.
package migration

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/pairusuo/blog-backend/pkg/storage"
)

// Options controls a content copy
type Options struct {
	Locales []i18n.Locale
	DryRun  bool
	Verify  bool
	Workers int
}

// Report summarizes a copy
type Report struct {
	Listed     int
	Copied     int
	Verified   int
	Mismatched []string
	Failed     []string
}

// OK reports whether every object was copied (and verified, when asked)
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Mismatched) == 0
}

func (r *Report) String() string {
	return fmt.Sprintf("listed=%d copied=%d verified=%d mismatched=%d failed=%d",
		r.Listed, r.Copied, r.Verified, len(r.Mismatched), len(r.Failed))
}

// CopyPosts copies every post object of the given locales from src to dst.
// Per-object failures are collected in the report; listing failures abort.
func CopyPosts(ctx context.Context, src, dst storage.Storage, opts Options) (*Report, error) {
	locales := opts.Locales
	if len(locales) == 0 {
		locales = i18n.Locales
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	log := pkglogger.GetLogger()

	var keys []string
	for _, locale := range locales {
		listed, err := src.List(ctx, domain.KeyPrefix(locale))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", locale, err)
		}
		keys = append(keys, listed...)
	}
	sort.Strings(keys)

	report := &Report{Listed: len(keys)}
	if opts.DryRun {
		for _, k := range keys {
			log.Info().Str("key", k).Msg("[dry-run] would copy")
		}
		return report, nil
	}

	var mu sync.Mutex
	record := func(f func()) {
		mu.Lock()
		defer mu.Unlock()
		f()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			data, ok, err := src.Read(gctx, key)
			if err != nil || !ok {
				log.Warn().Err(err).Str("key", key).Msg("read failed")
				record(func() { report.Failed = append(report.Failed, key) })
				return nil
			}
			if err := dst.Write(gctx, key, data); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("write failed")
				record(func() { report.Failed = append(report.Failed, key) })
				return nil
			}
			record(func() { report.Copied++ })

			if !opts.Verify {
				return nil
			}
			got, ok, err := dst.Read(gctx, key)
			if err != nil || !ok || !bytes.Equal(got, data) {
				record(func() { report.Mismatched = append(report.Mismatched, key) })
				return nil
			}
			record(func() { report.Verified++ })
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	sort.Strings(report.Failed)
	sort.Strings(report.Mismatched)
	return report, nil
}
