package cutting

import (
	"fmt"
	"sort"

	"github.com/samruddhi/pipecut/internal/models"
)

// Pipe is one pipe or leftover in a multi-size plan
type Pipe struct {
	Number     int        `json:"pipe_number"`
	Label      string     `json:"pipe_label"`
	Capacity   float64    `json:"capacity"`
	Cuts       []float64  `json:"cuts"`
	NumCuts    int        `json:"num_cuts"`
	KerfMM     float64    `json:"kerf_mm"`
	Used       float64    `json:"used"`
	Scrap      float64    `json:"scrap"`
	ScrapClass ScrapClass `json:"scrap_class"`
	IsLeftover bool       `json:"is_leftover"`
	LeftoverID *int64     `json:"leftover_id,omitempty"`
}

// MultiPlan is the result of packing several piece lengths
type MultiPlan struct {
	Pipes             []Pipe  `json:"pipes"`
	TotalPipes        int     `json:"total_pipes"`
	TotalUsed         float64 `json:"total_used"`
	TotalScrap        float64 `json:"total_scrap"`
	TotalKerf         float64 `json:"total_kerf"`
	RawLength         float64 `json:"raw_length"`
	LastPipeOverLimit bool    `json:"last_pipe_over_limit"`
}

type openPipe struct {
	capacity   float64
	remaining  float64
	cuts       []float64
	leftover   bool
	leftoverID int64
}

// PlanMulti packs the required pieces, longest first. Leftovers (expected
// largest first) are always preferred: a piece goes to the best-fitting
// leftover if any can hold it, otherwise to the best-fitting open raw pipe,
// otherwise to a new StandardRawLengthMM pipe. A raw pipe whose remainder
// is still usable is not cut down to an unusable remainder.
//
// Taking pieces off the final pipe can only enlarge its scrap, so the
// LastPipeScrapMaxMM rule is reported through LastPipeOverLimit rather
// than enforced by moving cuts.
//
// Rows with a non-positive length or quantity are ignored. A length that is
// not finite or above MaxLengthMM returns ErrInvalidLength, more than
// MaxPieces pieces in total returns ErrTooManyPieces.
func PlanMulti(requirements []models.CutRequirement, leftovers []*models.Leftover) (*MultiPlan, error) {
	plan := &MultiPlan{Pipes: []Pipe{}, RawLength: StandardRawLengthMM}

	total := 0
	for _, req := range requirements {
		if req.Quantity > MaxPieces {
			return nil, fmt.Errorf("%w: %d pieces of %.2f mm, at most %d", ErrTooManyPieces, req.Quantity, req.Length, MaxPieces)
		}
		if req.Length <= 0 || req.Quantity <= 0 {
			continue
		}
		if !ValidLength(req.Length) {
			return nil, fmt.Errorf("%w: %v mm", ErrInvalidLength, req.Length)
		}
		total += req.Quantity
	}
	if total > MaxPieces {
		return nil, fmt.Errorf("%w: %d pieces, at most %d", ErrTooManyPieces, total, MaxPieces)
	}

	flat := make([]float64, 0, total)
	for _, req := range requirements {
		length := Round2(req.Length)
		if length <= 0 || req.Quantity <= 0 {
			continue
		}
		for i := 0; i < req.Quantity; i++ {
			flat = append(flat, length)
		}
	}
	if len(flat) == 0 {
		return plan, nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(flat)))

	var pipes []*openPipe
	for _, l := range leftovers {
		length := Round2(l.Length)
		if !ValidLength(length) {
			continue
		}
		pipes = append(pipes, &openPipe{
			capacity:   length,
			remaining:  length,
			leftover:   true,
			leftoverID: l.ID,
		})
	}

	for _, cut := range flat {
		needed := cut + KerfMM

		leftoverFits := false
		for _, p := range pipes {
			if p.leftover && p.remaining >= needed {
				leftoverFits = true
				break
			}
		}

		var best *openPipe
		var bestAfter float64
		for _, p := range pipes {
			if p.remaining < needed || (leftoverFits && !p.leftover) {
				continue
			}
			after := p.remaining - needed
			if !p.leftover && len(p.cuts) > 0 && isUsable(p.remaining) && !isUsable(after) {
				continue
			}
			if best == nil || after < bestAfter {
				best, bestAfter = p, after
			}
		}

		if best != nil {
			best.cuts = append(best.cuts, cut)
			best.remaining = Round2(bestAfter)
			continue
		}

		if needed > StandardRawLengthMM {
			return nil, fmt.Errorf("%w: %.2f mm plus %.0f mm kerf does not fit %.0f mm", ErrCutTooLong, cut, KerfMM, StandardRawLengthMM)
		}
		pipes = append(pipes, &openPipe{
			capacity:  StandardRawLengthMM,
			remaining: Round2(StandardRawLengthMM - needed),
			cuts:      []float64{cut},
		})
	}

	var totalUsed, totalScrap, totalKerf float64
	for i, p := range pipes {
		numCuts := len(p.cuts)
		piecesOnly := 0.0
		for _, c := range p.cuts {
			piecesOnly += c
		}
		kerf := Round2(float64(numCuts) * KerfMM)
		used := Round2(piecesOnly + kerf)
		scrap := Round2(p.remaining)

		pipe := Pipe{
			Number:     i + 1,
			Capacity:   p.capacity,
			Cuts:       append([]float64{}, p.cuts...),
			NumCuts:    numCuts,
			KerfMM:     kerf,
			Used:       used,
			Scrap:      scrap,
			ScrapClass: ClassifyScrap(scrap),
			IsLeftover: p.leftover,
		}
		if p.leftover {
			id := p.leftoverID
			pipe.LeftoverID = &id
			pipe.Label = fmt.Sprintf("Leftover %.0f mm", p.capacity)
		} else {
			pipe.Label = fmt.Sprintf("Raw pipe (%.0f mm)", StandardRawLengthMM)
		}

		totalUsed += used
		totalScrap += scrap
		totalKerf += kerf
		plan.Pipes = append(plan.Pipes, pipe)
	}

	plan.TotalPipes = len(plan.Pipes)
	plan.TotalUsed = Round2(totalUsed)
	plan.TotalScrap = Round2(totalScrap)
	plan.TotalKerf = Round2(totalKerf)
	if n := len(plan.Pipes); n > 0 && plan.Pipes[n-1].Scrap > LastPipeScrapMaxMM {
		plan.LastPipeOverLimit = true
	}

	return plan, nil
}

// InventoryChanges deletes every leftover that received cuts and keeps
// remainders of at least ScrapSaveThresholdMM. Leftovers without cuts are
// untouched.
func (p *MultiPlan) InventoryChanges() models.InventoryChange {
	change := models.InventoryChange{DeleteIDs: []int64{}, InsertScraps: []float64{}}
	for _, pipe := range p.Pipes {
		if pipe.IsLeftover && pipe.NumCuts == 0 {
			continue
		}
		if pipe.IsLeftover && pipe.LeftoverID != nil {
			change.DeleteIDs = append(change.DeleteIDs, *pipe.LeftoverID)
		}
		if pipe.Scrap >= ScrapSaveThresholdMM {
			change.InsertScraps = append(change.InsertScraps, pipe.Scrap)
		}
	}
	return change
}
