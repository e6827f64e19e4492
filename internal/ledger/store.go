package ledger

import (
	"context"
	"sync"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
)

// Store persists bill invoice summaries.
// GetSummary returns nil, nil when the bill has no summary.
type Store interface {
	GetSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error)
	SaveSummary(ctx context.Context, summary *entity.BillInvoiceSummary) error
	DeleteSummary(ctx context.Context, billNo string) error
}

// MemoryStore keeps summaries in a process-local map
type MemoryStore struct {
	mu        sync.RWMutex
	summaries map[string]*entity.BillInvoiceSummary
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{summaries: make(map[string]*entity.BillInvoiceSummary)}
}

// GetSummary returns a copy of the stored summary
func (s *MemoryStore) GetSummary(ctx context.Context, billNo string) (*entity.BillInvoiceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries[billNo].Clone(), nil
}

// SaveSummary stores a copy of the summary, replacing any previous one
func (s *MemoryStore) SaveSummary(ctx context.Context, summary *entity.BillInvoiceSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.BillNo] = summary.Clone()
	return nil
}

// DeleteSummary removes the bill's summary if present
func (s *MemoryStore) DeleteSummary(ctx context.Context, billNo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.summaries, billNo)
	return nil
}
