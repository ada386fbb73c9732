package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/pairusuo/blog-backend/internal/config"
	"github.com/pairusuo/blog-backend/internal/migration"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/internal/service"
	pkgelastic "github.com/pairusuo/blog-backend/pkg/elasticsearch"
	"github.com/pairusuo/blog-backend/pkg/i18n"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/pairusuo/blog-backend/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "config file path (default configs/config.<APP_ENV>.yaml)")
	from := flag.String("from", storage.DriverFS, "source storage driver: fs, s3, r2, memory")
	to := flag.String("to", storage.DriverR2, "destination storage driver: fs, s3, r2")
	locale := flag.String("locale", "", "copy one locale only (zh or en)")
	dryRun := flag.Bool("dry-run", false, "list what would be copied without writing")
	verify := flag.Bool("verify", false, "read every copied object back and compare bytes")
	reindex := flag.Bool("reindex", false, "rebuild the search index from the source backend")
	workers := flag.Int("workers", 4, "concurrent copies")
	flag.Parse()

	config.LoadDotEnv(".")
	path := *configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	pkglogger.InitStructured(cfg.Server.Env)
	logger := pkglogger.GetLogger()

	locales := i18n.Locales
	if *locale != "" {
		l, ok := i18n.ParseLocale(*locale)
		if !ok {
			log.Fatalf("Unknown locale %q", *locale)
		}
		locales = []i18n.Locale{l}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openStorage(cfg.Storage, *from)
	if err != nil {
		log.Fatalf("Failed to open source %s: %v", *from, err)
	}

	if *from != *to {
		dst, err := openStorage(cfg.Storage, *to)
		if err != nil {
			log.Fatalf("Failed to open destination %s: %v", *to, err)
		}

		start := time.Now()
		report, err := migration.CopyPosts(ctx, src, dst, migration.Options{
			Locales: locales,
			DryRun:  *dryRun,
			Verify:  *verify,
			Workers: *workers,
		})
		if err != nil {
			log.Fatalf("Copy failed: %v", err)
		}
		logger.Info().
			Str("from", *from).
			Str("to", *to).
			Dur("took", time.Since(start)).
			Msgf("[migrate] %s", report)
		for _, k := range report.Failed {
			logger.Error().Str("key", k).Msg("[migrate] copy failed")
		}
		for _, k := range report.Mismatched {
			logger.Error().Str("key", k).Msg("[migrate] verify mismatch")
		}
		if !report.OK() {
			os.Exit(1)
		}
	}

	if *reindex && !*dryRun {
		runReindex(ctx, cfg, src, locales)
	}
}

// openStorage builds the backend named driver from the shared storage settings
func openStorage(base storage.Config, driver string) (storage.Storage, error) {
	base.Driver = strings.ToLower(driver)
	if base.Driver == storage.DriverMemory {
		base.Seed = true
	}
	return storage.New(base)
}

func runReindex(ctx context.Context, cfg *config.Config, src storage.Storage, locales []i18n.Locale) {
	if !cfg.Search.Enabled() {
		log.Fatalf("Reindex requires ELASTICSEARCH_URL or search.addresses")
	}
	client, err := pkgelastic.NewClient(cfg.Search)
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	repo := repository.NewPostRepository(src, cfg.Site.Location())
	search := service.NewElasticSearchService(ctx, client, repo)
	for _, l := range locales {
		n, err := search.Reindex(ctx, l)
		if err != nil {
			log.Fatalf("Reindex %s failed: %v", l, err)
		}
		log.Printf("[reindex] %s: %d posts", l, n)
	}
}
