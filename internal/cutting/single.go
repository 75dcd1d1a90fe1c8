package cutting

import (
	"fmt"

	"github.com/samruddhi/pipecut/internal/models"
)

// SourceKind tells where a segment's material came from
type SourceKind string

const (
	SourceLeftover SourceKind = "leftover"
	SourceRaw      SourceKind = "raw"
)

// Segment is the work done on one pipe or leftover
type Segment struct {
	Kind         SourceKind `json:"kind"`
	Source       string     `json:"source"`
	SourceLength float64    `json:"source_length"`
	LeftoverID   *int64     `json:"leftover_id,omitempty"`
	Pieces       int        `json:"pieces"`
	CutLength    float64    `json:"cut_length"`
	Remaining    float64    `json:"remaining"`
}

// SinglePlan is the result of cutting one piece length from many sources
type SinglePlan struct {
	Requested            int       `json:"requested"`
	PiecesProduced       int       `json:"pieces_produced"`
	Shortfall            int       `json:"shortfall"`
	MaterialUsed         float64   `json:"material_used"`
	MaterialUsedInclKerf float64   `json:"material_used_incl_kerf"`
	KerfTotal            float64   `json:"kerf_total_mm"`
	ScrapSaved           []float64 `json:"scrap_saved"`
	UsedLeftover         bool      `json:"used_leftover"`
	UsedLeftoverIDs      []int64   `json:"used_leftover_ids"`
	Segments             []Segment `json:"segments"`
	SuggestedRaw         *float64  `json:"suggested_raw,omitempty"`
}

type source struct {
	kind       SourceKind
	length     float64
	leftoverID *int64
}

func (s source) label() string {
	if s.kind == SourceLeftover {
		return fmt.Sprintf("Leftover (%.2f mm)", s.length)
	}
	return fmt.Sprintf("Raw pipe (%.2f mm)", s.length)
}

// PlanSingle cuts quantity pieces of cutLength. Leftovers (expected largest
// first) are consumed before raw pipes of rawLength, one source at a time.
// Leftovers too short for one piece plus kerf are skipped and left alone.
// If a fresh raw pipe cannot hold one piece the plan stops short and
// reports the shortfall. Lengths outside ValidLength or a quantity above
// MaxPieces yield an empty plan.
func PlanSingle(rawLength, cutLength float64, quantity int, leftovers []*models.Leftover) *SinglePlan {
	cut := Round2(cutLength)
	raw := Round2(rawLength)

	plan := &SinglePlan{
		Requested:       quantity,
		ScrapSaved:      []float64{},
		UsedLeftoverIDs: []int64{},
		Segments:        []Segment{},
	}
	if !ValidLength(cut) || !ValidLength(raw) || quantity <= 0 || quantity > MaxPieces {
		plan.Requested = 0
		return plan
	}

	needed := cut + KerfMM
	next := 0
	nextSource := func() source {
		for next < len(leftovers) {
			l := leftovers[next]
			next++
			if ValidLength(l.Length) && l.Length >= needed {
				id := l.ID
				return source{kind: SourceLeftover, length: l.Length, leftoverID: &id}
			}
		}
		return source{kind: SourceRaw, length: raw}
	}

	cur := nextSource()
	available := cur.length
	pieces := 0
	remaining := quantity

	closeSource := func() {
		left := Round2(available)
		plan.Segments = append(plan.Segments, Segment{
			Kind:         cur.kind,
			Source:       cur.label(),
			SourceLength: cur.length,
			LeftoverID:   cur.leftoverID,
			Pieces:       pieces,
			CutLength:    cut,
			Remaining:    left,
		})
		if left >= ScrapSaveThresholdMM {
			plan.ScrapSaved = append(plan.ScrapSaved, left)
		}
		if cur.leftoverID != nil {
			plan.UsedLeftoverIDs = append(plan.UsedLeftoverIDs, *cur.leftoverID)
			plan.UsedLeftover = true
		}
	}

	for remaining > 0 {
		if available >= needed {
			pieces++
			remaining--
			available = Round2(available - needed)
			continue
		}

		// An untouched source is neither recorded nor turned into scrap.
		if pieces > 0 {
			closeSource()
		}
		pieces = 0
		cur = nextSource()
		available = cur.length
		if available < needed {
			break
		}
	}
	if pieces > 0 {
		closeSource()
	}

	for _, seg := range plan.Segments {
		plan.PiecesProduced += seg.Pieces
	}
	plan.Shortfall = quantity - plan.PiecesProduced
	plan.MaterialUsed = Round2(float64(plan.PiecesProduced) * cut)
	plan.MaterialUsedInclKerf = Round2(float64(plan.PiecesProduced) * needed)
	plan.KerfTotal = Round2(float64(plan.PiecesProduced) * KerfMM)

	if n := len(plan.Segments); n > 0 {
		last := plan.Segments[n-1]
		if last.Kind == SourceRaw && last.Remaining > 0 {
			suggested := Round2(last.Remaining)
			plan.SuggestedRaw = &suggested
		}
	}

	return plan
}

// InventoryChanges returns the leftovers consumed and the scraps to keep
func (p *SinglePlan) InventoryChanges() models.InventoryChange {
	return models.InventoryChange{
		DeleteIDs:    append([]int64(nil), p.UsedLeftoverIDs...),
		InsertScraps: append([]float64(nil), p.ScrapSaved...),
	}
}
