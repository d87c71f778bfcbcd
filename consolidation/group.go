package consolidation

import (
	"sort"

	"github.com/color-game/consolidation/models"
)

// BucketGroup is the set of legacy colours that landed in one bucket.
type BucketGroup struct {
	Kind    models.BucketKind       `json:"kind"`
	ID      string                  `json:"id"`
	Members []models.Classification `json:"members"`
}

func (g BucketGroup) Len() int {
	return len(g.Members)
}

// ByStep returns the members assigned to step, nearest first.
func (g BucketGroup) ByStep(step models.Step) []models.Classification {
	var out []models.Classification
	for _, m := range g.Members {
		if m.Step != nil && *m.Step == step {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].StepDistance < *out[j].StepDistance
	})
	return out
}

// SortedByDistance returns the members nearest first.
func (g BucketGroup) SortedByDistance() []models.Classification {
	out := append([]models.Classification(nil), g.Members...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// GroupByBucket partitions records into one group per family and then one
// per other token, in palette order. Empty groups are kept. Members keep
// record order. Records naming a bucket the palette does not know are
// grouped after the known ones rather than dropped.
func GroupByBucket(p models.Palette, records []models.Classification) []BucketGroup {
	groups := make([]BucketGroup, 0, len(p.Families)+len(p.Others))
	index := make(map[bucketKey]int, cap(groups))
	for _, f := range p.Families {
		index[bucketKey{models.BucketScaleFamily, f.ID}] = len(groups)
		groups = append(groups, BucketGroup{Kind: models.BucketScaleFamily, ID: f.ID})
	}
	for _, o := range p.Others {
		index[bucketKey{models.BucketOtherSingleton, o.ID}] = len(groups)
		groups = append(groups, BucketGroup{Kind: models.BucketOtherSingleton, ID: o.ID})
	}

	for _, rec := range records {
		key := bucketKey{rec.BucketKind, rec.BucketID}
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, BucketGroup{Kind: rec.BucketKind, ID: rec.BucketID})
		}
		groups[gi].Members = append(groups[gi].Members, rec)
	}
	return groups
}

type bucketKey struct {
	kind models.BucketKind
	id   string
}
