package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/domain"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	"github.com/pairusuo/blog-backend/pkg/storage"
)

// Upload destinations
const (
	DestinationR2    = "r2"
	DestinationLocal = "local"
)

// PublicStore is an object store whose keys have public URLs
type PublicStore interface {
	Write(ctx context.Context, key string, data []byte) error
	PublicURL(key string) string
}

// UploadService stores editor images
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, locale string) (*domain.UploadResult, error)
}

type uploadService struct {
	primary PublicStore
	local   storage.Storage
	maxSize int64
	now     func() time.Time
}

// NewUploadService creates an UploadService. primary may be nil; local
// receives keys relative to the directory served at /uploads.
func NewUploadService(primary PublicStore, local storage.Storage, maxSize int64) UploadService {
	return &uploadService{primary: primary, local: local, maxSize: maxSize, now: time.Now}
}

// Upload stores one image. A primary store failure is logged and the local
// store is tried once.
func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader, locale string) (*domain.UploadResult, error) {
	if file == nil {
		return nil, common.Validation("No file")
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, common.Validation(fmt.Sprintf("File too large; limit is %d MB", s.maxSize>>20))
	}

	data, err := readUpload(file, s.maxSize)
	if err != nil {
		return nil, err
	}
	if !isImage(file.Header.Get("Content-Type"), data) {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, common.Validation("Invalid type")
	}

	now := s.now()
	rel := fmt.Sprintf("%04d/%02d/%s", now.Year(), int(now.Month()), randomName()+"."+fileExtension(file.Filename))
	key := "uploads/" + rel
	log := pkglogger.GetLogger()

	if s.primary != nil {
		if err := s.primary.Write(ctx, key, data); err != nil {
			uploadsTotal.WithLabelValues("primary_error").Inc()
			log.Warn().Err(err).Str("key", key).Msg("primary upload failed, falling back to local")
		} else if url := s.primary.PublicURL(key); url != "" {
			uploadsTotal.WithLabelValues(DestinationR2).Inc()
			return &domain.UploadResult{Path: key, URL: url, Key: key, Storage: DestinationR2, Locale: locale}, nil
		}
	}

	if err := s.local.Write(ctx, rel, data); err != nil {
		return nil, common.Storage("Failed to store upload", err)
	}
	uploadsTotal.WithLabelValues(DestinationLocal).Inc()

	url := "/uploads/" + rel
	return &domain.UploadResult{Path: url, URL: url, Key: key, Storage: DestinationLocal, Locale: locale}, nil
}

func readUpload(file *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, common.Validation("No file")
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.Storage("Failed to read upload", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, common.Validation(fmt.Sprintf("File too large; limit is %d MB", limit>>20))
	}
	return data, nil
}

// isImage trusts a declared image/* type and sniffs otherwise
func isImage(declared string, data []byte) bool {
	if strings.HasPrefix(strings.ToLower(declared), "image/") {
		return true
	}
	if declared != "" && declared != "application/octet-stream" {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

func fileExtension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || len(ext) > 8 {
		return "png"
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "png"
		}
	}
	return ext
}

// randomName returns 10 lowercase alphanumerics
func randomName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
