package models

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary holds the aggregate counts of one classification pass.
type RunSummary struct {
	Total      int `json:"total" db:"total"`
	Classified int `json:"classified" db:"classified"`
	Exact      int `json:"exact" db:"exact_count"`
	Merged     int `json:"merged" db:"merged_count"`
	Far        int `json:"far" db:"far_count"`
	Unmatched  int `json:"unmatched" db:"unmatched_count"`
	Duplicates int `json:"duplicates" db:"duplicate_count"`
}

// Run is a persisted classification pass over one palette file.
type Run struct {
	RunID     string    `json:"runId" db:"run_id"`
	Source    string    `json:"source" db:"source"`
	Digest    string    `json:"digest" db:"digest"`
	Families  int       `json:"families" db:"family_count"`
	Others    int       `json:"others" db:"other_count"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	RunSummary
}

// BucketStat is the per-bucket tally stored for a run.
type BucketStat struct {
	ID           string     `json:"id" db:"id"`
	RunID        string     `json:"runId" db:"run_id"`
	BucketKind   BucketKind `json:"bucketKind" db:"bucket_kind"`
	BucketID     string     `json:"bucketId" db:"bucket_id"`
	Count        int        `json:"count" db:"member_count"`
	Duplicates   int        `json:"duplicates" db:"duplicate_count"`
	MaxDistance  float64    `json:"maxDistance" db:"max_distance"`
	MeanDistance float64    `json:"meanDistance" db:"mean_distance"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// RunDetail is a run together with its stored records.
type RunDetail struct {
	Run     Run              `json:"run"`
	Records []Classification `json:"records"`
}

// GenerateRunID creates a new unique ID for a run
func GenerateRunID() string {
	return uuid.New().String()
}

// NewRun stamps a summary with a fresh id and creation time.
func NewRun(source, digest string, families, others int, summary RunSummary) Run {
	return Run{
		RunID:      GenerateRunID(),
		Source:     source,
		Digest:     digest,
		Families:   families,
		Others:     others,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		RunSummary: summary,
	}
}
