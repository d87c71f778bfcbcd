package models

import (
	"github.com/color-game/consolidation/colormath"
	"github.com/lucasb-eyer/go-colorful"
)

// Swatch is a colour expanded into the notations a UI needs to render it.
type Swatch struct {
	Hex  string    `json:"hex"`
	RGB  SwatchRGB `json:"rgb"`
	HSL  SwatchHSL `json:"hsl"`
	HSV  SwatchHSV `json:"hsv"`
	LAB  SwatchLAB `json:"lab"`
	Text string    `json:"text"`
}

type SwatchRGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

type SwatchHSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

type SwatchHSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

type SwatchLAB struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// NewSwatch builds a Swatch from any hex form HexToRGB accepts.
func NewSwatch(hex string) (Swatch, error) {
	rgb, err := colormath.HexToRGB(hex)
	if err != nil {
		return Swatch{}, err
	}
	canonical := rgb.Hex()

	c, err := colorful.Hex(canonical)
	if err != nil {
		return Swatch{}, err
	}
	h, s, l := c.Hsl()
	hv, sv, v := c.Hsv()
	lab := colormath.RGBToLAB(rgb)

	text, err := colormath.TextColor(canonical)
	if err != nil {
		return Swatch{}, err
	}

	return Swatch{
		Hex:  canonical,
		RGB:  SwatchRGB{R: int(rgb.R), G: int(rgb.G), B: int(rgb.B)},
		HSL:  SwatchHSL{H: h, S: s, L: l},
		HSV:  SwatchHSV{H: hv, S: sv, V: v},
		LAB:  SwatchLAB{L: lab.L, A: lab.A, B: lab.B},
		Text: text,
	}, nil
}
