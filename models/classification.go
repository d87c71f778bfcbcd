package models

import "math"

// BucketKind is the type of bucket a legacy colour was assigned to.
type BucketKind string

const (
	BucketScaleFamily    BucketKind = "scale-family"
	BucketOtherSingleton BucketKind = "other-singleton"
)

func (k BucketKind) Valid() bool {
	return k == BucketScaleFamily || k == BucketOtherSingleton
}

// Classification is the result of matching one legacy colour. Step and
// StepDistance are set only when the winning family has a solid scale.
type Classification struct {
	Index        int        `json:"index"`
	Name         string     `json:"name"`
	Hex          string     `json:"hex"`
	Note         string     `json:"note,omitempty"`
	IsDuplicate  bool       `json:"isDuplicate"`
	BucketKind   BucketKind `json:"bucketKind"`
	BucketID     string     `json:"bucketId"`
	RefHex       string     `json:"refHex"`
	Distance     float64    `json:"distance"`
	Step         *Step      `json:"step,omitempty"`
	StepDistance *float64   `json:"stepDistance,omitempty"`
}

// RoundedDistance is the distance at one decimal, the precision reports use.
func (c Classification) RoundedDistance() float64 {
	return RoundDistance(c.Distance)
}

// RoundedStepDistance returns the step distance at one decimal, or false when
// the record has no step.
func (c Classification) RoundedStepDistance() (float64, bool) {
	if c.StepDistance == nil {
		return 0, false
	}
	return RoundDistance(*c.StepDistance), true
}

func RoundDistance(d float64) float64 {
	return math.Round(d*10) / 10
}
