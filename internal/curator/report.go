package curator

import "fmt"

// Report summarizes a partition run: counts and ratios of valid versus
// invalid records. It is a read-only projection over the partitioner's
// output.
type Report struct {
	Total   int `json:"total"`
	Valid   int `json:"valid_count"`
	Invalid int `json:"invalid_count"`

	// Violations counts quarantined-record violations per field, for
	// observability. Nil when the batch was fully valid.
	Violations map[string]int `json:"violations_by_field,omitempty"`
}

// Summarize builds a report from the partitioner's counts.
func Summarize(total, valid, invalid int) Report {
	return Report{Total: total, Valid: valid, Invalid: invalid}
}

// ValidRatio returns valid/total. The second return is false when the batch
// was empty and no ratio is defined.
func (r Report) ValidRatio() (float64, bool) {
	if r.Total == 0 {
		return 0, false
	}
	return float64(r.Valid) / float64(r.Total), true
}

// InvalidRatio returns invalid/total, false when undefined.
func (r Report) InvalidRatio() (float64, bool) {
	if r.Total == 0 {
		return 0, false
	}
	return float64(r.Invalid) / float64(r.Total), true
}

// ValidPercent renders the valid ratio as "97.40%", or "n/a" for an empty
// batch.
func (r Report) ValidPercent() string {
	ratio, ok := r.ValidRatio()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// InvalidPercent renders the invalid ratio, or "n/a" for an empty batch.
func (r Report) InvalidPercent() string {
	ratio, ok := r.InvalidRatio()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", ratio*100)
}

func (r Report) String() string {
	return fmt.Sprintf("total=%d valid=%d (%s) invalid=%d (%s)",
		r.Total, r.Valid, r.ValidPercent(), r.Invalid, r.InvalidPercent())
}
