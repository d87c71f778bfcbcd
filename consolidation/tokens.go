package consolidation

import (
	"fmt"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

func SolidTokenName(familyID string, step models.Step) string {
	return fmt.Sprintf("%s_%d", familyID, step)
}

func AlphaTokenName(familyID string, step models.Step) string {
	return fmt.Sprintf("%s_alpha_%d", familyID, step)
}

// ExportTokens builds the design-token set of one family: the solid steps
// when the family has a scale, then every alpha step as #AARRGGBB when it
// has an alpha base. Names and order depend only on the input.
func ExportTokens(f models.Family) (models.TokenSet, error) {
	tokens := models.TokenSet{}
	if f.HasScale() && !f.SkipSolidScale {
		for _, s := range f.FinalSolid {
			tokens = append(tokens, models.Token{
				Name:       SolidTokenName(f.ID, s.Step),
				TokenValue: models.TokenValue{Type: models.TokenTypeColor, Value: s.Hex},
			})
		}
	}

	if f.AlphaBase != "" {
		for _, step := range f.AlphaSteps() {
			av, _ := f.AlphaFraction(step)
			value, err := colormath.AlphaHex(f.AlphaBase, av)
			if err != nil {
				return nil, fmt.Errorf("family %s alpha %d: %w", f.ID, step, err)
			}
			tokens = append(tokens, models.Token{
				Name:       AlphaTokenName(f.ID, step),
				TokenValue: models.TokenValue{Type: models.TokenTypeColor, Value: value},
			})
		}
	}
	return tokens, nil
}

// FamilyTokens pairs a family id with its token export.
type FamilyTokens struct {
	FamilyID string          `json:"familyId"`
	Tokens   models.TokenSet `json:"tokens"`
}

// ExportAllTokens exports every family in order.
func ExportAllTokens(families []models.Family) ([]FamilyTokens, error) {
	out := make([]FamilyTokens, 0, len(families))
	for _, f := range families {
		tokens, err := ExportTokens(f)
		if err != nil {
			return nil, err
		}
		out = append(out, FamilyTokens{FamilyID: f.ID, Tokens: tokens})
	}
	return out, nil
}

// AlphaSwatch is one step of a family's alpha scale, materialised on white.
type AlphaSwatch struct {
	Step     models.Step `json:"step"`
	Fraction float64     `json:"fraction"`
	Solid    string      `json:"solid"`
	Alpha    string      `json:"alpha"`
	Existing bool        `json:"existing"`
}

// AlphaScale materialises the alpha scale of f. It is empty when f has no
// alpha base.
func AlphaScale(f models.Family) ([]AlphaSwatch, error) {
	if f.AlphaBase == "" {
		return nil, nil
	}
	steps := f.AlphaSteps()
	out := make([]AlphaSwatch, 0, len(steps))
	for _, step := range steps {
		av, existing := f.AlphaFraction(step)
		solid, err := colormath.BlendOnWhite(f.AlphaBase, av)
		if err != nil {
			return nil, fmt.Errorf("family %s alpha %d: %w", f.ID, step, err)
		}
		alpha, err := colormath.AlphaHex(f.AlphaBase, av)
		if err != nil {
			return nil, fmt.Errorf("family %s alpha %d: %w", f.ID, step, err)
		}
		out = append(out, AlphaSwatch{Step: step, Fraction: av, Solid: solid, Alpha: alpha, Existing: existing})
	}
	return out, nil
}

// Strip returns the six preview colours of a family: its solid scale, or the
// alpha base blended at the canonical steps when it has no scale.
func Strip(f models.Family) ([]string, error) {
	if f.HasScale() {
		strip := make([]string, 0, len(f.FinalSolid))
		for _, s := range f.FinalSolid {
			strip = append(strip, s.Hex)
		}
		return strip, nil
	}
	if f.AlphaBase == "" {
		return nil, nil
	}

	strip := make([]string, 0, len(models.Steps))
	for _, step := range models.Steps {
		hex, err := colormath.BlendOnWhite(f.AlphaBase, step.Fraction())
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", f.ID, err)
		}
		strip = append(strip, hex)
	}
	return strip, nil
}
