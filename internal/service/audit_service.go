package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// AuditService decouples audit persistence from request handling: entries
// are queued and written by background workers so a slow audit insert never
// delays a response. It satisfies the same writer contract as the
// repository, so callers cannot tell the difference.
type AuditService struct {
	repo   auditWriter
	queue  chan models.AuditLog
	logger *zap.Logger
	wg     sync.WaitGroup

	// mu orders enqueues against Close: the channel is only closed under
	// the write lock, and sends only happen under the read lock after the
	// closed check, so a send can never hit a closed channel.
	mu     sync.RWMutex
	closed bool
}

// NewAuditService starts the worker pool. workers and buffer fall back to
// sane defaults when non-positive.
func NewAuditService(repo auditWriter, workers, buffer int, logger *zap.Logger) *AuditService {
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = workers * 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &AuditService{
		repo:   repo,
		queue:  make(chan models.AuditLog, buffer),
		logger: logger,
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// CreateAuditLog enqueues the entry. When the service is shut down or the
// buffer is full the write happens inline instead of being dropped.
func (s *AuditService) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return s.repo.CreateAuditLog(ctx, entry)
	}

	select {
	case s.queue <- *entry:
		s.mu.RUnlock()
		return nil
	default:
		s.mu.RUnlock()
		return s.repo.CreateAuditLog(ctx, entry)
	}
}

// Close stops accepting entries, drains the queue and waits for workers.
// Safe to call more than once.
func (s *AuditService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *AuditService) worker() {
	defer s.wg.Done()
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.CreateAuditLog(ctx, &entry); err != nil {
			s.logger.Warn("failed to persist audit entry",
				zap.String("action", entry.Action),
				zap.String("resource", entry.Resource),
				zap.Error(err))
		}
		cancel()
	}
}
