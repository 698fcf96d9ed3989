package schema

import "github.com/dshills/scorebias/internal/stats"

// Report is the top-level output of a run.
type Report struct {
	Tool    string         `json:"tool"`
	Version string         `json:"version"`
	RunID   string         `json:"run_id"`
	Input   Input          `json:"input"`
	Before  stats.Summary  `json:"before"`
	After   *stats.Summary `json:"after,omitempty"` // nil for describe-only runs
	Meta    Meta           `json:"meta"`
}

// Input captures the parameters used for this run.
type Input struct {
	File    string `json:"file"`
	Hash    string `json:"hash"` // SHA-256 of the raw input
	Variant string `json:"variant,omitempty"`
	Seed    uint64 `json:"seed"`
	Mode    Mode   `json:"mode"`
	Workers int    `json:"workers,omitempty"`
}

// Meta holds counts derived from the run.
type Meta struct {
	Records             int `json:"records"`
	Supporters          int `json:"supporters"`
	NonSupporters       int `json:"non_supporters"`
	ChangedSatisfaction int `json:"changed_satisfaction"`
	ChangedPerformance  int `json:"changed_performance"`
}

// Mode names how draws were assigned to records.
type Mode string

const (
	// ModeDescribe reports statistics without transforming.
	ModeDescribe Mode = "describe"
	// ModeSequential draws from one stream in record order.
	ModeSequential Mode = "sequential"
	// ModeSharded draws from one stream per record index.
	ModeSharded Mode = "sharded"
)
