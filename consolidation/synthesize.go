package consolidation

import (
	"fmt"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

// SynthesizeScales returns copies of families with FinalSolid attached.
// Existing step colours are kept verbatim and tagged base; missing steps are
// blended from Base100 and tagged proposed. Families without a Base100, or
// flagged SkipSolidScale, get no scale.
func SynthesizeScales(families []models.Family) ([]models.Family, error) {
	out := make([]models.Family, len(families))
	for i, f := range families {
		f.FinalSolid = nil
		if f.Base100 != "" && !f.SkipSolidScale {
			scale, err := synthesizeScale(f)
			if err != nil {
				return nil, fmt.Errorf("family %s: %w", f.ID, err)
			}
			f.FinalSolid = scale
		}
		out[i] = f
	}
	return out, nil
}

func synthesizeScale(f models.Family) ([]models.SolidStep, error) {
	scale := make([]models.SolidStep, 0, len(models.Steps))
	for _, step := range models.Steps {
		if existing, ok := f.ExistingSolid[step]; ok {
			hex, err := colormath.CanonicalHex(existing)
			if err != nil {
				return nil, err
			}
			scale = append(scale, models.SolidStep{Step: step, Hex: hex, Tag: models.SourceBase})
			continue
		}

		hex, err := colormath.BlendOnWhite(f.Base100, step.Fraction())
		if err != nil {
			return nil, err
		}
		scale = append(scale, models.SolidStep{Step: step, Hex: hex, Tag: models.SourceProposed})
	}
	return scale, nil
}
