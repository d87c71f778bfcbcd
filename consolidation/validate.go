package consolidation

import (
	"fmt"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

// ValidatePalette checks the static configuration before any matching runs:
// every family has at least one ref, existing solid colours sit on canonical
// steps, bucket ids are unique across families and other tokens, and every
// colour parses.
func ValidatePalette(p models.Palette) error {
	seen := make(map[string]bool, len(p.Families)+len(p.Others))
	for _, f := range p.Families {
		if seen[f.ID] {
			return &InvariantViolation{Invariant: InvariantUniqueIDs, Expected: 1, Actual: 2, Entry: f.ID}
		}
		seen[f.ID] = true

		if len(f.Refs) == 0 {
			return &InvariantViolation{Invariant: InvariantNonEmptyRefs, Expected: 1, Actual: 0, Entry: f.ID}
		}
		if off := offScaleSteps(f); off > 0 {
			return &InvariantViolation{Invariant: InvariantSolidSteps, Expected: 0, Actual: off, Entry: f.ID}
		}
		for _, hex := range familyColours(f) {
			if _, err := colormath.HexToRGB(hex); err != nil {
				return fmt.Errorf("family %s: %w", f.ID, err)
			}
		}
	}
	for _, o := range p.Others {
		if seen[o.ID] {
			return &InvariantViolation{Invariant: InvariantUniqueIDs, Expected: 1, Actual: 2, Entry: o.ID}
		}
		seen[o.ID] = true

		if _, err := colormath.HexToRGB(o.Hex); err != nil {
			return fmt.Errorf("other %s: %w", o.ID, err)
		}
	}
	for _, lc := range p.Legacy {
		if _, err := colormath.HexToRGB(lc.Hex); err != nil {
			return fmt.Errorf("legacy colour %q: %w", lc.Name, err)
		}
	}
	return nil
}

// offScaleSteps counts existing solid colours that scale synthesis would
// never read.
func offScaleSteps(f models.Family) int {
	n := 0
	for step := range f.ExistingSolid {
		if !step.IsCanonical() {
			n++
		}
	}
	return n
}

func familyColours(f models.Family) []string {
	colours := append([]string(nil), f.Refs...)
	if f.Base100 != "" {
		colours = append(colours, f.Base100)
	}
	if f.AlphaBase != "" {
		colours = append(colours, f.AlphaBase)
	}
	for _, hex := range f.ExistingSolid {
		colours = append(colours, hex)
	}
	for _, et := range f.ExtraTokens {
		colours = append(colours, et.Hex)
	}
	return colours
}

// VerifyAccounting checks that classification partitioned the input without
// loss: one record per input colour, each in exactly one known bucket, with
// indexes covering 0..input-1 once each.
func VerifyAccounting(input int, records []models.Classification) error {
	if len(records) != input {
		return &InvariantViolation{Invariant: InvariantConservation, Expected: input, Actual: len(records)}
	}

	seen := make([]bool, input)
	for _, rec := range records {
		if rec.BucketID == "" || !rec.BucketKind.Valid() {
			return &InvariantViolation{Invariant: InvariantBucketAssign, Expected: 1, Actual: 0, Entry: rec.Name}
		}
		if rec.Index < 0 || rec.Index >= input || seen[rec.Index] {
			return &InvariantViolation{Invariant: InvariantIndexCover, Expected: input, Actual: rec.Index, Entry: rec.Name}
		}
		seen[rec.Index] = true
	}
	return nil
}
