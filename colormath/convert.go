package colormath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// D65 reference white used for the XYZ -> LAB transfer.
const (
	whiteX = 0.95047
	whiteY = 1.0
	whiteZ = 1.08883

	labEpsilon = 0.008856
)

// RGB is an 8-bit-per-channel sRGB colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as #RRGGBB.
func (c RGB) Hex() string {
	return RGBToHex(int(c.R), int(c.G), int(c.B))
}

// LAB is a CIE L*a*b* triple.
type LAB struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// HexToRGB parses a hex colour. A leading # is optional and an 8-digit
// AARRGGBB value has its alpha byte discarded.
func HexToRGB(hex string) (RGB, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) == 8 {
		digits = digits[2:]
	}
	if len(digits) != 6 {
		return RGB{}, &FormatError{Input: hex, Reason: fmt.Sprintf("expected 6 hex digits, got %d", len(digits))}
	}

	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(digits[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGB{}, &FormatError{Input: hex, Reason: "invalid hex digit", Err: err}
		}
		channels[i] = uint8(v)
	}

	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// RGBToHex formats the channels as #RRGGBB, clamping each into [0,255].
func RGBToHex(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", clampChannel(r), clampChannel(g), clampChannel(b))
}

// CanonicalHex normalises a hex string to #RRGGBB uppercase.
func CanonicalHex(hex string) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// SRGBToLinear decodes an 8-bit sRGB channel into linear light in [0,1].
func SRGBToLinear(channel uint8) float64 {
	c := float64(channel) / 255.0
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes linear light back into an 8-bit channel value.
// Input outside [0,1] is clamped first.
func LinearToSRGB(v float64) int {
	v = math.Max(0, math.Min(1, v))
	var c float64
	if v <= 0.0031308 {
		c = 12.92 * v
	} else {
		c = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return int(c*255 + 0.5)
}

// RGBToXYZ converts an sRGB colour to CIE XYZ (D65, Y of white = 1).
func RGBToXYZ(c RGB) (x, y, z float64) {
	rl, gl, bl := SRGBToLinear(c.R), SRGBToLinear(c.G), SRGBToLinear(c.B)
	x = rl*0.4124564 + gl*0.3575761 + bl*0.1804375
	y = rl*0.2126729 + gl*0.7151522 + bl*0.0721750
	z = rl*0.0193339 + gl*0.1191920 + bl*0.9503041
	return x, y, z
}

// XYZToLAB converts XYZ to CIE LAB relative to the D65 white point.
func XYZToLAB(x, y, z float64) LAB {
	fx := labCompress(x / whiteX)
	fy := labCompress(y / whiteY)
	fz := labCompress(z / whiteZ)
	return LAB{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

func labCompress(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// RGBToLAB converts an sRGB colour to LAB via XYZ.
func RGBToLAB(c RGB) LAB {
	return XYZToLAB(RGBToXYZ(c))
}

// HexToLAB parses hex and converts it to LAB.
func HexToLAB(hex string) (LAB, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return LAB{}, err
	}
	return RGBToLAB(c), nil
}

// TextColor picks a readable label colour to print on top of a swatch.
func TextColor(hex string) (string, error) {
	c, err := HexToRGB(hex)
	if err != nil {
		return "", err
	}
	if 0.299*float64(c.R)+0.587*float64(c.G)+0.114*float64(c.B) < 160 {
		return "#FFFFFF", nil
	}
	return "rgba(0,0,0,.55)", nil
}
