package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/logger"
	"github.com/samruddhi/pipecut/internal/metrics"
	"github.com/samruddhi/pipecut/internal/models"
	"github.com/samruddhi/pipecut/internal/store"
)

// SingleRequest asks for Quantity pieces of CutLength from raw pipes of RawLength
type SingleRequest struct {
	RawLength float64 `json:"raw_length" binding:"required,gt=0,lte=1000000"`
	CutLength float64 `json:"cut_length" binding:"required,gt=0,lte=1000000"`
	Quantity  int     `json:"quantity" binding:"required,gt=0,lte=10000"`
	DryRun    bool    `json:"dry_run"`
}

// MultiRequest asks for several piece lengths at once
type MultiRequest struct {
	Cuts   []models.CutRequirement `json:"cuts" binding:"required,min=1,dive"`
	DryRun bool                    `json:"dry_run"`
}

// PlannerService runs cutting plans against the leftover inventory.
// Inventory reads and the changes derived from them are serialized, so two
// plans in one process never consume the same leftover.
type PlannerService struct {
	mu    sync.Mutex
	store *store.LeftoverStore
}

// NewPlannerService creates a new planner service
func NewPlannerService(leftovers *store.LeftoverStore) *PlannerService {
	return &PlannerService{store: leftovers}
}

// Single plans one piece length, leftovers first, and unless DryRun is set
// removes consumed leftovers and stores new scrap.
func (s *PlannerService) Single(ctx context.Context, req SingleRequest) (*cutting.SinglePlan, error) {
	if !cutting.ValidLength(req.RawLength) || !cutting.ValidLength(req.CutLength) {
		return nil, fmt.Errorf("%w: raw %v mm, cut %v mm", cutting.ErrInvalidLength, req.RawLength, req.CutLength)
	}
	if req.Quantity > cutting.MaxPieces {
		return nil, fmt.Errorf("%w: %d, at most %d", cutting.ErrTooManyPieces, req.Quantity, cutting.MaxPieces)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	plan := cutting.PlanSingle(req.RawLength, req.CutLength, req.Quantity, inventory)
	logger.Debug("Single plan: %d of %d pieces of %.2f mm, %d segments",
		plan.PiecesProduced, req.Quantity, req.CutLength, len(plan.Segments))

	if err := s.apply(ctx, plan.InventoryChanges(), req.DryRun); err != nil {
		return nil, err
	}

	metrics.PlansTotal.WithLabelValues("single", strconv.FormatBool(!req.DryRun)).Inc()
	metrics.PiecesProduced.WithLabelValues("single").Add(float64(plan.PiecesProduced))
	return plan, nil
}

// Multi plans several piece lengths over leftovers and standard raw pipes
func (s *PlannerService) Multi(ctx context.Context, req MultiRequest) (*cutting.MultiPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	plan, err := cutting.PlanMulti(req.Cuts, inventory)
	if err != nil {
		return nil, err
	}
	logger.Debug("Multi plan: %d pipes, %.2f mm scrap", plan.TotalPipes, plan.TotalScrap)

	if err := s.apply(ctx, plan.InventoryChanges(), req.DryRun); err != nil {
		return nil, err
	}

	pieces := 0
	for _, p := range plan.Pipes {
		pieces += p.NumCuts
	}
	metrics.PlansTotal.WithLabelValues("multi", strconv.FormatBool(!req.DryRun)).Inc()
	metrics.PiecesProduced.WithLabelValues("multi").Add(float64(pieces))
	return plan, nil
}

func (s *PlannerService) apply(ctx context.Context, change models.InventoryChange, dryRun bool) error {
	if dryRun || change.Empty() {
		return nil
	}
	if err := s.store.Apply(ctx, change); err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	metrics.RecordInventory(len(change.DeleteIDs), len(change.InsertScraps))
	logger.Info("Inventory updated: %d leftovers used, %d scraps stored",
		len(change.DeleteIDs), len(change.InsertScraps))
	return nil
}

// Inventory lists stored leftovers, largest first
func (s *PlannerService) Inventory(ctx context.Context) ([]*models.Leftover, error) {
	return s.store.List(ctx)
}

// Suggestions lists leftovers long enough to be offered for the next plan
func (s *PlannerService) Suggestions(ctx context.Context) ([]*models.Leftover, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Leftover, 0, len(all))
	for _, l := range all {
		if l.Length >= cutting.ScrapSaveThresholdMM {
			out = append(out, l)
		}
	}
	return out, nil
}

// AddLeftover stores a leftover by hand
func (s *PlannerService) AddLeftover(ctx context.Context, length float64) (int64, error) {
	if !cutting.ValidLength(length) {
		return 0, fmt.Errorf("%w: %v mm", cutting.ErrInvalidLength, length)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Insert(ctx, length)
	if err != nil {
		return 0, err
	}
	metrics.RecordInventory(0, 1)
	return id, nil
}

// RemoveLeftover deletes one leftover
func (s *PlannerService) RemoveLeftover(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordInventory(1, 0)
	return nil
}

// ClearInventory deletes every leftover
func (s *PlannerService) ClearInventory(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	metrics.RecordInventory(n, 0)
	logger.Info("Inventory cleared: %d leftovers removed", n)
	return n, nil
}
