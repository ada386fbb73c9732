package service

import (
	"context"
	"sync"
	"time"

	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/internal/repository"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
)

// AuditService records admin writes. A nil repository disables it.
type AuditService interface {
	Record(entry *domain.AuditLog)
	List(ctx context.Context, action string, page, perPage int) ([]domain.AuditLog, int64, error)
	Enabled() bool
	Close()
}

type auditService struct {
	repo repository.AuditRepository
	wg   sync.WaitGroup
}

// NewAuditService creates an AuditService over repo
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Enabled() bool {
	return s.repo != nil
}

// Record writes the entry in the background
func (s *auditService) Record(entry *domain.AuditLog) {
	if s.repo == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, entry); err != nil {
			pkglogger.GetLogger().Error().Err(err).
				Str("action", entry.Action).
				Str("slug", entry.Slug).
				Msg("audit log write failed")
		}
	}()
}

func (s *auditService) List(ctx context.Context, action string, page, perPage int) ([]domain.AuditLog, int64, error) {
	if s.repo == nil {
		return []domain.AuditLog{}, 0, nil
	}
	return s.repo.List(ctx, action, page, perPage)
}

// Close waits for pending writes
func (s *auditService) Close() {
	s.wg.Wait()
}
