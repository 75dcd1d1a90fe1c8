package services

import (
	"context"
	"fmt"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/models"
	"github.com/samruddhi/pipecut/internal/store"
)

// StatsService provides inventory statistics
type StatsService struct {
	store *store.LeftoverStore
}

// NewStatsService creates a new stats service
func NewStatsService(leftovers *store.LeftoverStore) *StatsService {
	return &StatsService{store: leftovers}
}

// GetInventoryStats summarizes stored leftovers. Usable means long enough
// to be worth cutting from, by the same rule that classifies plan scrap.
func (s *StatsService) GetInventoryStats(ctx context.Context) (*models.InventoryStats, error) {
	st, err := s.store.Stats(ctx, cutting.ScrapUsableMinMM)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory stats: %w", err)
	}
	return st, nil
}
