// Package notify emits run-completion events to an optional HTTP endpoint.
package notify

import (
	"time"
)

// Event is a run-completion notification.
type Event struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`

	Run      RunInfo               `json:"run"`
	Outputs  map[string]OutputInfo `json:"outputs"`
	Producer ProducerInfo          `json:"producer"`
}

// RunInfo identifies the run being reported.
type RunInfo struct {
	Dataset     string `json:"dataset"`
	RunDate     string `json:"run_date"`
	Total       int    `json:"total_records"`
	Curated     int    `json:"curated_records"`
	Quarantined int    `json:"quarantined_records"`
}

// OutputInfo contains checksum and metadata for a single output file.
type OutputInfo struct {
	Checksum    string `json:"checksum"`
	RowCount    int64  `json:"row_count"`
	ByteSize    int64  `json:"byte_size"`
	StoragePath string `json:"storage_path"`
}

// ProducerInfo identifies the software that produced the data.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha"`
}
