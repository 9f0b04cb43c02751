// Package types contains common types used across the application
package types

// Entry represents a standings row: a participant's local score and its
// 1-based position.
type Entry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Stars int    `json:"stars"`
}
