package domain

import "time"

// PreparedSource records the last successful preparation of a library's source tree.
type PreparedSource struct {
	Library   string    `json:"library"`
	Version   string    `json:"version"`
	SourceDir string    `json:"source_dir"`
	Archive   string    `json:"archive"`
	Patches   []string  `json:"patches,omitempty"`
	TreeHash  string    `json:"tree_hash"`
	Timestamp time.Time `json:"timestamp"`
}
