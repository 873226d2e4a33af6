package collection

import (
	"fmt"

	"scentlog/internal/csvio"
	"scentlog/internal/merge"
)

// ImportResult reports a committed import.
type ImportResult struct {
	Mode      merge.Mode        `json:"mode"`
	Added     int               `json:"added"`
	Updated   int               `json:"updated"`
	Collapsed int               `json:"collapsed"`
	Skipped   int               `json:"skipped"`
	Dropped   int               `json:"dropped"`
	Total     int               `json:"total"`
	Rejected  []csvio.Rejection `json:"rejected,omitempty"`
}

// Summary is the one-line message shown to the user.
func (r ImportResult) Summary() string {
	if r.Mode == merge.ModeOverwrite {
		return fmt.Sprintf("Imported %d perfumes (Overwritten).", r.Total)
	}
	return fmt.Sprintf("Import success: %d added, %d updated.", r.Added, r.Updated)
}

// RepairResult reports a committed field repair.
type RepairResult struct {
	Records int `json:"records"`
	Fields  int `json:"fields"`
	Ignored int `json:"ignored"`
}

// Summary is the one-line message shown to the user.
func (r RepairResult) Summary() string {
	if r.Fields == 0 {
		return "No field changes to save."
	}
	return fmt.Sprintf("Saved %d field updates across %d perfumes.", r.Fields, r.Records)
}
