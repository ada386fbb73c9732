package storage

import (
	"fmt"
	"strings"

	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
)

// Backend drivers accepted by New
const (
	DriverS3     = "s3"
	DriverR2     = "r2"
	DriverFS     = "fs"
	DriverMemory = "memory"
)

// Config selects and configures a backend
type Config struct {
	Driver string   `yaml:"driver"`
	Root   string   `yaml:"root"` // filesystem root for the fs driver
	Seed   bool     `yaml:"seed"` // memory driver: start with the sample posts
	S3     S3Config `yaml:"s3"`
}

// New builds the configured backend and wraps it with metrics
func New(cfg Config) (Storage, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var (
		s   Storage
		err error
	)
	switch driver {
	case DriverS3:
		s, err = NewS3Storage(cfg.S3)
	case DriverR2:
		s, err = NewS3Storage(cfg.S3.R2())
	case DriverFS, "filesystem":
		driver = DriverFS
		s, err = NewFileStorage(cfg.Root)
	case DriverMemory, "":
		driver = DriverMemory
		if cfg.Seed {
			s = NewDevFixture()
		} else {
			s = NewMemory(nil)
		}
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().Str("driver", driver).Msg("storage backend selected")
	return Instrument(s, driver), nil
}
