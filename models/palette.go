package models

import "sort"

// Step is a percentage position on an opacity scale.
type Step int

// Steps are the six canonical scale steps, strongest first.
var Steps = []Step{100, 80, 60, 40, 20, 10}

// IsCanonical reports whether s is one of Steps.
func (s Step) IsCanonical() bool {
	for _, c := range Steps {
		if s == c {
			return true
		}
	}
	return false
}

// Fraction returns the step as an opacity in [0,1].
func (s Step) Fraction() float64 {
	return float64(s) / 100
}

// SourceTag records where a solid scale colour came from.
type SourceTag string

const (
	SourceBase     SourceTag = "base"
	SourceProposed SourceTag = "proposed"
)

type SolidStep struct {
	Step Step      `json:"step"`
	Hex  string    `json:"hex"`
	Tag  SourceTag `json:"tag"`
}

// ExtraToken is a standalone token listed with a family but kept outside its
// scale, such as a button state.
type ExtraToken struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Family is a curated colour group. Refs drive matching; FinalSolid is
// attached by scale synthesis and is empty until then.
type Family struct {
	ID                string           `json:"id"`
	Description       string           `json:"description"`
	Base100           string           `json:"base100,omitempty"`
	CrossName         string           `json:"crossName,omitempty"`
	ExistingSolid     map[Step]string  `json:"existingSolid,omitempty"`
	AlphaBase         string           `json:"alphaBase,omitempty"`
	AlphaLabel        string           `json:"alphaLabel,omitempty"`
	AlphaExisting     map[Step]float64 `json:"alphaExisting,omitempty"`
	Refs              []string         `json:"refs"`
	ExtraTokens       []ExtraToken     `json:"extraTokens,omitempty"`
	ExtraTokensReason string           `json:"extraTokensReason,omitempty"`
	IsNew             bool             `json:"isNew"`
	SkipSolidScale    bool             `json:"skipSolidScale"`
	FinalSolid        []SolidStep      `json:"finalSolid,omitempty"`
}

// HasScale reports whether the family carries a materialised solid scale.
func (f Family) HasScale() bool {
	return len(f.FinalSolid) > 0
}

func (f Family) SolidAt(step Step) (SolidStep, bool) {
	for _, s := range f.FinalSolid {
		if s.Step == step {
			return s, true
		}
	}
	return SolidStep{}, false
}

// AlphaSteps is the union of the canonical steps and the steps that already
// exist on the alpha scale, strongest first.
func (f Family) AlphaSteps() []Step {
	seen := make(map[Step]bool, len(Steps)+len(f.AlphaExisting))
	steps := make([]Step, 0, len(Steps)+len(f.AlphaExisting))
	for _, s := range Steps {
		seen[s] = true
		steps = append(steps, s)
	}
	for s := range f.AlphaExisting {
		if !seen[s] {
			seen[s] = true
			steps = append(steps, s)
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		return steps[i] > steps[j]
	})
	return steps
}

// AlphaFraction returns the opacity used for step on the alpha scale and
// whether it comes from an existing value rather than step/100.
func (f Family) AlphaFraction(step Step) (float64, bool) {
	if av, ok := f.AlphaExisting[step]; ok {
		return av, true
	}
	return step.Fraction(), false
}

// OtherToken is a singleton colour with no scale.
type OtherToken struct {
	ID  string `json:"id"`
	Hex string `json:"hex"`
}

type LegacyColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	Note string `json:"note,omitempty"`
}

// Palette is the full consolidation input. Slice order is significant:
// exact distance ties go to whichever candidate comes first.
type Palette struct {
	Families []Family      `json:"families"`
	Others   []OtherToken  `json:"others"`
	Legacy   []LegacyColor `json:"legacy,omitempty"`
}

func (p Palette) Family(id string) (Family, bool) {
	for _, f := range p.Families {
		if f.ID == id {
			return f, true
		}
	}
	return Family{}, false
}

func (p Palette) Other(id string) (OtherToken, bool) {
	for _, o := range p.Others {
		if o.ID == id {
			return o, true
		}
	}
	return OtherToken{}, false
}
