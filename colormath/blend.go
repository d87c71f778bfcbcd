package colormath

import (
	"fmt"
	"math"
)

// ScaleSteps are the canonical opacity steps, strongest first.
var ScaleSteps = []int{100, 80, 60, 40, 20, 10}

// BlendOnWhite composites hex at the given opacity over opaque white in
// sRGB space, returning the equivalent solid colour. Each channel is
// base*alpha + 255*(1-alpha), rounded half up. Alpha is clamped into [0,1].
func BlendOnWhite(hex string, alpha float64) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return "", err
	}
	alpha = math.Max(0, math.Min(1, alpha))
	return RGBToHex(
		blendChannel(c.R, alpha),
		blendChannel(c.G, alpha),
		blendChannel(c.B, alpha),
	), nil
}

func blendChannel(c uint8, alpha float64) int {
	return int(float64(c)*alpha + 255*(1-alpha) + 0.5)
}

// GenerateScale blends hex on white at every canonical step.
func GenerateScale(hex string) (map[int]string, error) {
	scale := make(map[int]string, len(ScaleSteps))
	for _, step := range ScaleSteps {
		blended, err := BlendOnWhite(hex, float64(step)/100)
		if err != nil {
			return nil, err
		}
		scale[step] = blended
	}
	return scale, nil
}

// AlphaHex returns the #AARRGGBB form of hex at the given opacity.
func AlphaHex(hex string, alpha float64) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return "", err
	}
	a := int(math.Round(math.Max(0, math.Min(1, alpha)) * 255))
	return fmt.Sprintf("#%02X%02X%02X%02X", a, c.R, c.G, c.B), nil
}
