package colormath

import "math"

// pow25to7 is 25^7, the chroma normaliser shared by G and R_C.
const pow25to7 = 6103515625.0

func deg(rad float64) float64 { return rad * 180 / math.Pi }
func rad(deg float64) float64 { return deg * math.Pi / 180 }

// hueDegrees returns atan2(b, a) in degrees, in [0, 360).
func hueDegrees(b, a float64) float64 {
	h := math.Mod(deg(math.Atan2(b, a)), 360)
	if h < 0 {
		h += 360
	}
	return h
}

// CIEDE2000 returns the CIE 2000 colour difference between two LAB colours
// with unit weighting factors (kL = kC = kH = 1).
func CIEDE2000(lab1, lab2 LAB) float64 {
	l1, a1, b1 := lab1.L, lab1.A, lab1.B
	l2, a2, b2 := lab2.L, lab2.A, lab2.B

	avgL := (l1 + l2) / 2
	c1 := math.Sqrt(a1*a1 + b1*b1)
	c2 := math.Sqrt(a2*a2 + b2*b2)
	avgC := (c1 + c2) / 2

	avgC7 := math.Pow(avgC, 7)
	g := 0.5 * (1 - math.Sqrt(avgC7/(avgC7+pow25to7)))

	a1p := a1 * (1 + g)
	a2p := a2 * (1 + g)
	c1p := math.Sqrt(a1p*a1p + b1*b1)
	c2p := math.Sqrt(a2p*a2p + b2*b2)
	avgCp := (c1p + c2p) / 2

	h1p := hueDegrees(b1, a1p)
	h2p := hueDegrees(b2, a2p)

	var avgHp float64
	switch {
	case math.Abs(h1p-h2p) <= 180:
		avgHp = (h1p + h2p) / 2
	case h1p+h2p < 360:
		avgHp = (h1p + h2p + 360) / 2
	default:
		avgHp = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(rad(avgHp-30)) +
		0.24*math.Cos(rad(2*avgHp)) +
		0.32*math.Cos(rad(3*avgHp+6)) -
		0.20*math.Cos(rad(4*avgHp-63))

	var dhp float64
	switch diff := h2p - h1p; {
	case math.Abs(diff) <= 180:
		dhp = diff
	case diff > 180:
		dhp = diff - 360
	default:
		dhp = diff + 360
	}

	dLp := l2 - l1
	dCp := c2p - c1p
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(rad(dhp/2))

	sl := 1 + 0.015*(avgL-50)*(avgL-50)/math.Sqrt(20+(avgL-50)*(avgL-50))
	sc := 1 + 0.045*avgCp
	sh := 1 + 0.015*avgCp*t

	dTheta := 30 * math.Exp(-math.Pow((avgHp-275)/25, 2))
	avgCp7 := math.Pow(avgCp, 7)
	rc := 2 * math.Sqrt(avgCp7/(avgCp7+pow25to7))
	rt := -rc * math.Sin(rad(2*dTheta))

	lTerm := dLp / sl
	cTerm := dCp / sc
	hTerm := dHp / sh
	return math.Sqrt(lTerm*lTerm + cTerm*cTerm + hTerm*hTerm + rt*cTerm*hTerm)
}

// DistanceHex is CIEDE2000 between two hex colours.
func DistanceHex(a, b string) (float64, error) {
	labA, err := HexToLAB(a)
	if err != nil {
		return 0, err
	}
	labB, err := HexToLAB(b)
	if err != nil {
		return 0, err
	}
	return CIEDE2000(labA, labB), nil
}
