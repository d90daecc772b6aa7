package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

// ContractRepository reads and updates contract records, always scoped by owner.
type ContractRepository interface {
	Get(ctx context.Context, id, userID string) (*model.Contract, error)
	UpdateSummary(ctx context.Context, id, userID string, summary *string, summaryPath string) error
	Close() error
}

// ContractStore is an in-memory ContractRepository for local runs and tests.
type ContractStore struct {
	contracts    map[string]*model.Contract
	mu           sync.RWMutex
	maxContracts int // Maximum contracts to keep, 0 = unlimited
}

var _ ContractRepository = (*ContractStore)(nil)

func NewContractStore(maxContracts int) *ContractStore {
	if maxContracts < 0 {
		maxContracts = 0
	}
	return &ContractStore{
		contracts:    make(map[string]*model.Contract),
		maxContracts: maxContracts,
	}
}

func (s *ContractStore) Save(contract *model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *contract
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	s.contracts[c.ID] = &c

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

// Get returns a copy of the contract when it exists and belongs to userID.
func (s *ContractStore) Get(_ context.Context, id, userID string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok || c.UserID != userID {
		return nil, ErrContractNotFound
	}
	out := *c
	return &out, nil
}

func (s *ContractStore) UpdateSummary(_ context.Context, id, userID string, summary *string, summaryPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[id]
	if !ok || c.UserID != userID {
		return ErrContractNotFound
	}

	if summary != nil {
		v := *summary
		c.Summary = &v
	} else {
		c.Summary = nil
	}
	if summaryPath != "" {
		c.SummaryPath = &summaryPath
	} else {
		c.SummaryPath = nil
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (s *ContractStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contracts, id)
}

// Count returns the number of contracts in the store
func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}

func (s *ContractStore) Close() error { return nil }

// cleanupIfNeeded removes oldest contracts if store exceeds maxContracts
// Must be called with lock held
func (s *ContractStore) cleanupIfNeeded() {
	if s.maxContracts <= 0 || len(s.contracts) <= s.maxContracts {
		return
	}

	contracts := make([]*model.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})

	removeCount := len(contracts) - s.maxContracts
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old contract",
			"contract_id", contracts[i].ID,
			"created_at", contracts[i].CreatedAt,
		)
		delete(s.contracts, contracts[i].ID)
	}
}
