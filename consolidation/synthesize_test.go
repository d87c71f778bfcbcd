package consolidation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

func celestialBlue() models.Family {
	return models.Family{
		ID:        "celestial_blue",
		Base100:   "#0D99F6",
		AlphaBase: "#0D99F6",
		ExistingSolid: map[models.Step]string{
			100: "#3AAFFF", 80: "#75C7FF", 60: "#9DD7FF", 40: "#C4E7FF", 20: "#EBF7FF",
		},
		AlphaExisting: map[models.Step]float64{100: 1.0, 80: 0.8, 60: 0.6, 20: 0.2, 10: 0.1},
		Refs:          []string{"#3AAFFF", "#75C7FF", "#9DD7FF", "#C4E7FF", "#EBF7FF", "#0D99F6"},
	}
}

func TestSynthesizeScalesPrefersExisting(t *testing.T) {
	families, err := SynthesizeScales([]models.Family{celestialBlue()})
	require.NoError(t, err)
	require.Len(t, families, 1)

	assert.Equal(t, []models.SolidStep{
		{Step: 100, Hex: "#3AAFFF", Tag: models.SourceBase},
		{Step: 80, Hex: "#75C7FF", Tag: models.SourceBase},
		{Step: 60, Hex: "#9DD7FF", Tag: models.SourceBase},
		{Step: 40, Hex: "#C4E7FF", Tag: models.SourceBase},
		{Step: 20, Hex: "#EBF7FF", Tag: models.SourceBase},
		{Step: 10, Hex: "#E7F5FE", Tag: models.SourceProposed},
	}, families[0].FinalSolid)

	blended, err := colormath.BlendOnWhite("#0D99F6", 0.10)
	require.NoError(t, err)
	s, ok := families[0].SolidAt(10)
	require.True(t, ok)
	assert.Equal(t, blended, s.Hex)
}

func TestSynthesizeScalesAllProposed(t *testing.T) {
	families, err := SynthesizeScales([]models.Family{{ID: "ultra_violet", Base100: "#746AA3", Refs: []string{"#746AA3"}}})
	require.NoError(t, err)

	var hexes []string
	for _, s := range families[0].FinalSolid {
		assert.Equal(t, models.SourceProposed, s.Tag)
		hexes = append(hexes, s.Hex)
	}
	assert.Equal(t, []string{"#746AA3", "#9088B5", "#ACA6C8", "#C7C3DA", "#E3E1ED", "#F1F0F6"}, hexes)
}

func TestSynthesizeScalesSkips(t *testing.T) {
	input := []models.Family{
		{ID: "white", Base100: "#FFFFFF", SkipSolidScale: true, Refs: []string{"#FFFFFF"}},
		{ID: "alpha_only", AlphaBase: "#2F2F45", Refs: []string{"#2F2F45"}},
		{ID: "stale", Base100: "#000000", Refs: []string{"#000000"}, SkipSolidScale: true,
			FinalSolid: []models.SolidStep{{Step: 100, Hex: "#000000"}}},
	}
	families, err := SynthesizeScales(input)
	require.NoError(t, err)
	for _, f := range families {
		assert.False(t, f.HasScale(), f.ID)
	}
}

func TestSynthesizeScalesDoesNotMutateInput(t *testing.T) {
	input := []models.Family{celestialBlue()}
	_, err := SynthesizeScales(input)
	require.NoError(t, err)
	assert.Nil(t, input[0].FinalSolid)
}

func TestSynthesizeScalesBadHex(t *testing.T) {
	_, err := SynthesizeScales([]models.Family{{ID: "broken", Base100: "#07068", Refs: []string{"#070688"}}})
	require.Error(t, err)
	var fe *colormath.FormatError
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "broken")

	_, err = SynthesizeScales([]models.Family{{
		ID: "bad_existing", Base100: "#070688", Refs: []string{"#070688"},
		ExistingSolid: map[models.Step]string{80: "zz"},
	}})
	assert.Error(t, err)
}
