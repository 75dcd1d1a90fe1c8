package models

// InventoryStats summarizes the stored leftovers
type InventoryStats struct {
	Count       int     `json:"count"`
	TotalLength float64 `json:"total_length"`
	Longest     float64 `json:"longest"`
	Shortest    float64 `json:"shortest"`
	Usable      int     `json:"usable"`
	NotUsable   int     `json:"not_usable"`
}
