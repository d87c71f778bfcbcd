package consolidation

import (
	"sort"

	"github.com/color-game/consolidation/models"
)

// Thresholds are the presentation cutoffs of the summary bands. Every band
// compares the distance rounded to one decimal (models.RoundDistance), not
// the raw CIEDE2000 value: a raw 0.04 rounds to 0.0 and is exact, while a raw
// 0.06 rounds to 0.1 and is merged. The same holds at every cutoff, so 4.96
// is not merged and 14.96 is unmatched. Bands flag colours for review; they
// never change which bucket a colour is in.
type Thresholds struct {
	Exact     float64 `json:"exact"`
	Merged    float64 `json:"merged"`
	Far       float64 `json:"far"`
	Unmatched float64 `json:"unmatched"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Exact: 0.1, Merged: 5, Far: 10, Unmatched: 15}
}

// IsExact reports round(d) < Exact.
func (t Thresholds) IsExact(d float64) bool {
	return models.RoundDistance(d) < t.Exact
}

// IsMerged reports Exact <= round(d) < Merged.
func (t Thresholds) IsMerged(d float64) bool {
	r := models.RoundDistance(d)
	return r >= t.Exact && r < t.Merged
}

// IsFar reports round(d) >= Far.
func (t Thresholds) IsFar(d float64) bool {
	return models.RoundDistance(d) >= t.Far
}

// IsUnmatched reports round(d) >= Unmatched.
func (t Thresholds) IsUnmatched(d float64) bool {
	return models.RoundDistance(d) >= t.Unmatched
}

// Summary holds the aggregate counts of a classification.
type Summary struct {
	models.RunSummary
	ByKind map[models.BucketKind]int `json:"byKind"`
}

// Summarize counts records by distance band. Unmatched records are also
// counted as far and as classified.
func Summarize(input int, records []models.Classification, t Thresholds) Summary {
	s := Summary{
		RunSummary: models.RunSummary{Total: input, Classified: len(records)},
		ByKind: map[models.BucketKind]int{
			models.BucketScaleFamily:    0,
			models.BucketOtherSingleton: 0,
		},
	}
	for _, rec := range records {
		s.ByKind[rec.BucketKind]++
		switch {
		case t.IsExact(rec.Distance):
			s.Exact++
		case t.IsMerged(rec.Distance):
			s.Merged++
		}
		if t.IsFar(rec.Distance) {
			s.Far++
		}
		if t.IsUnmatched(rec.Distance) {
			s.Unmatched++
		}
		if rec.IsDuplicate {
			s.Duplicates++
		}
	}
	return s
}

// Unmatched returns records at or beyond the unmatched threshold, farthest
// first. They stay classified into their nearest bucket.
func Unmatched(records []models.Classification, t Thresholds) []models.Classification {
	var out []models.Classification
	for _, rec := range records {
		if t.IsUnmatched(rec.Distance) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance > out[j].Distance
	})
	return out
}

// BucketStats tallies each non-empty group for storage.
func BucketStats(runID string, groups []BucketGroup) []models.BucketStat {
	var stats []models.BucketStat
	for _, g := range groups {
		if g.Len() == 0 {
			continue
		}
		stat := models.BucketStat{
			RunID:      runID,
			BucketKind: g.Kind,
			BucketID:   g.ID,
			Count:      g.Len(),
		}
		var sum float64
		for _, m := range g.Members {
			sum += m.Distance
			if m.Distance > stat.MaxDistance {
				stat.MaxDistance = m.Distance
			}
			if m.IsDuplicate {
				stat.Duplicates++
			}
		}
		stat.MeanDistance = sum / float64(g.Len())
		stats = append(stats, stat)
	}
	return stats
}
