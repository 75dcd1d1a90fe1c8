package models

import (
	"time"
)

// Leftover is a stored pipe remnant available for future plans
type Leftover struct {
	ID        int64     `json:"id"`
	Length    float64   `json:"length"` // mm
	CreatedAt time.Time `json:"created_at"`
}

// CutRequirement asks for Quantity pieces of Length mm
type CutRequirement struct {
	Length   float64 `json:"length" binding:"required,gt=0,lte=1000000"`
	Quantity int     `json:"quantity" binding:"required,gt=0,lte=10000"`
}

// InventoryChange lists what a plan does to the leftover inventory
type InventoryChange struct {
	DeleteIDs    []int64   `json:"delete_ids"`
	InsertScraps []float64 `json:"insert_scraps"`
}

// Empty reports whether the change touches nothing
func (c InventoryChange) Empty() bool {
	return len(c.DeleteIDs) == 0 && len(c.InsertScraps) == 0
}
