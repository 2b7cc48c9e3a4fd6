package models

// Category is one entry of the closed per-account category set. Name
// matching against model output is exact and case-sensitive.
type Category struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	MCCs []string `json:"mccs"`
}
