package consolidation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

// DefaultMarkers flag a legacy note as a known duplicate.
var DefaultMarkers = []string{"duplicate", "alias"}

// IsDuplicate reports whether note contains any marker, ignoring case.
func IsDuplicate(note string, markers []string) bool {
	lower := strings.ToLower(note)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

type candidate struct {
	kind      models.BucketKind
	bucketID  string
	familyIdx int
	hex       string
	lab       colormath.LAB
}

type stepCandidate struct {
	step models.Step
	hex  string
	lab  colormath.LAB
}

// Classifier assigns legacy colours to the nearest family reference or other
// token. Candidates are scanned in configuration order and only a strictly
// smaller distance replaces the current best, so the first candidate wins a
// tie.
type Classifier struct {
	Families []models.Family
	Others   []models.OtherToken
	Markers  []string
	Workers  int

	candidates []candidate
	steps      [][]stepCandidate
}

type ClassifierOption func(*Classifier)

func WithMarkers(markers ...string) ClassifierOption {
	return func(c *Classifier) {
		c.Markers = markers
	}
}

// WithWorkers sets how many goroutines share the legacy list. Values below
// one mean GOMAXPROCS.
func WithWorkers(n int) ClassifierOption {
	return func(c *Classifier) {
		c.Workers = n
	}
}

// NewClassifier prepares the candidate list. Families should already carry
// their synthesized scales.
func NewClassifier(families []models.Family, others []models.OtherToken, opts ...ClassifierOption) (*Classifier, error) {
	c := &Classifier{
		Families: families,
		Others:   others,
		Markers:  DefaultMarkers,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.steps = make([][]stepCandidate, len(families))
	for fi, f := range families {
		if len(f.Refs) == 0 {
			return nil, &InvariantViolation{Invariant: InvariantNonEmptyRefs, Expected: 1, Actual: 0, Entry: f.ID}
		}
		for _, ref := range f.Refs {
			cand, err := newCandidate(models.BucketScaleFamily, f.ID, ref)
			if err != nil {
				return nil, fmt.Errorf("family %s: %w", f.ID, err)
			}
			cand.familyIdx = fi
			c.candidates = append(c.candidates, cand)
		}
		for _, s := range f.FinalSolid {
			lab, err := colormath.HexToLAB(s.Hex)
			if err != nil {
				return nil, fmt.Errorf("family %s step %d: %w", f.ID, s.Step, err)
			}
			c.steps[fi] = append(c.steps[fi], stepCandidate{step: s.Step, hex: s.Hex, lab: lab})
		}
	}
	for _, o := range others {
		cand, err := newCandidate(models.BucketOtherSingleton, o.ID, o.Hex)
		if err != nil {
			return nil, fmt.Errorf("other %s: %w", o.ID, err)
		}
		cand.familyIdx = -1
		c.candidates = append(c.candidates, cand)
	}

	if len(c.candidates) == 0 {
		return nil, &InvariantViolation{Invariant: InvariantNonEmptyRefs, Expected: 1, Actual: 0, Entry: "palette"}
	}
	return c, nil
}

func newCandidate(kind models.BucketKind, id, hex string) (candidate, error) {
	rgb, err := colormath.HexToRGB(hex)
	if err != nil {
		return candidate{}, err
	}
	return candidate{
		kind:     kind,
		bucketID: id,
		hex:      rgb.Hex(),
		lab:      colormath.RGBToLAB(rgb),
	}, nil
}

func (c *Classifier) workers(n int) int {
	w := c.Workers
	if w < 1 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Classify returns one record per legacy colour, in input order. The list is
// sharded across workers; each writes only its own slots. A malformed hex
// aborts the whole pass.
func (c *Classifier) Classify(ctx context.Context, legacy []models.LegacyColor) ([]models.Classification, error) {
	out := make([]models.Classification, len(legacy))
	if len(legacy) == 0 {
		return out, nil
	}

	workers := c.workers(len(legacy))
	chunk := (len(legacy) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(legacy); start += chunk {
		end := min(start+chunk, len(legacy))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := c.classifyOne(i, legacy[i])
				if err != nil {
					return err
				}
				out[i] = rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ClassifyOne matches a single colour outside of any batch.
func (c *Classifier) ClassifyOne(lc models.LegacyColor) (models.Classification, error) {
	return c.classifyOne(0, lc)
}

func (c *Classifier) classifyOne(index int, lc models.LegacyColor) (models.Classification, error) {
	rgb, err := colormath.HexToRGB(lc.Hex)
	if err != nil {
		return models.Classification{}, fmt.Errorf("legacy colour %q: %w", lc.Name, err)
	}
	lab := colormath.RGBToLAB(rgb)

	best := -1
	bestDistance := math.Inf(1)
	for i := range c.candidates {
		d := colormath.CIEDE2000(lab, c.candidates[i].lab)
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}
	winner := c.candidates[best]

	rec := models.Classification{
		Index:       index,
		Name:        lc.Name,
		Hex:         rgb.Hex(),
		Note:        lc.Note,
		IsDuplicate: IsDuplicate(lc.Note, c.Markers),
		BucketKind:  winner.kind,
		BucketID:    winner.bucketID,
		RefHex:      winner.hex,
		Distance:    bestDistance,
	}

	if winner.kind == models.BucketScaleFamily {
		if steps := c.steps[winner.familyIdx]; len(steps) > 0 {
			bestStep := -1
			bestStepDistance := math.Inf(1)
			for i := range steps {
				d := colormath.CIEDE2000(lab, steps[i].lab)
				if d < bestStepDistance {
					bestStep, bestStepDistance = i, d
				}
			}
			step := steps[bestStep].step
			rec.Step = &step
			rec.StepDistance = &bestStepDistance
		}
	}
	return rec, nil
}
