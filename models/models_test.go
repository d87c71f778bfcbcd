package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaSteps(t *testing.T) {
	spaceCadet := Family{
		ID: "space_cadet",
		AlphaExisting: map[Step]float64{
			100: 1.0, 80: 0.8, 65: 0.65, 60: 0.6, 40: 0.4,
			25: 0.25, 20: 0.2, 10: 0.1, 9: 0.09, 4: 0.04,
		},
	}
	assert.Equal(t, []Step{100, 80, 65, 60, 40, 25, 20, 10, 9, 4}, spaceCadet.AlphaSteps())

	bare := Family{ID: "bare"}
	assert.Equal(t, Steps, bare.AlphaSteps())

	av, existing := spaceCadet.AlphaFraction(65)
	assert.True(t, existing)
	assert.Equal(t, 0.65, av)

	av, existing = Family{AlphaExisting: map[Step]float64{100: 1}}.AlphaFraction(40)
	assert.False(t, existing)
	assert.Equal(t, 0.4, av)
}

func TestFamilySolidAt(t *testing.T) {
	f := Family{FinalSolid: []SolidStep{
		{Step: 100, Hex: "#3AAFFF", Tag: SourceBase},
		{Step: 10, Hex: "#E7F5FE", Tag: SourceProposed},
	}}
	assert.True(t, f.HasScale())

	s, ok := f.SolidAt(10)
	require.True(t, ok)
	assert.Equal(t, "#E7F5FE", s.Hex)
	assert.Equal(t, SourceProposed, s.Tag)

	_, ok = f.SolidAt(50)
	assert.False(t, ok)
	assert.False(t, Family{}.HasScale())
}

func TestStepIsCanonical(t *testing.T) {
	for _, s := range Steps {
		assert.True(t, s.IsCanonical(), "step %d", s)
	}
	for _, s := range []Step{0, 15, 50, 90, 101} {
		assert.False(t, s.IsCanonical(), "step %d", s)
	}
}

func TestPaletteLookup(t *testing.T) {
	p := Palette{
		Families: []Family{{ID: "white"}, {ID: "black"}},
		Others:   []OtherToken{{ID: "pearl", Hex: "#FFF3EC"}},
	}
	f, ok := p.Family("black")
	require.True(t, ok)
	assert.Equal(t, "black", f.ID)

	_, ok = p.Family("pearl")
	assert.False(t, ok)

	o, ok := p.Other("pearl")
	require.True(t, ok)
	assert.Equal(t, "#FFF3EC", o.Hex)
}

func TestClassificationRounding(t *testing.T) {
	step := Step(80)
	sd := 13.288674816312918
	c := Classification{Distance: 15.943664231810224, Step: &step, StepDistance: &sd}
	assert.Equal(t, 15.9, c.RoundedDistance())

	rounded, ok := c.RoundedStepDistance()
	require.True(t, ok)
	assert.Equal(t, 13.3, rounded)

	_, ok = Classification{}.RoundedStepDistance()
	assert.False(t, ok)

	assert.Equal(t, 0.0, RoundDistance(0.04))
	assert.Equal(t, 0.1, RoundDistance(0.05000001))
	assert.True(t, BucketScaleFamily.Valid())
	assert.False(t, BucketKind("unmatched").Valid())
}

func TestTokenSetKeepsOrder(t *testing.T) {
	set := TokenSet{
		{Name: "celestial_blue_100", TokenValue: TokenValue{Type: TokenTypeColor, Value: "#3AAFFF"}},
		{Name: "celestial_blue_10", TokenValue: TokenValue{Type: TokenTypeColor, Value: "#E7F5FE"}},
		{Name: "celestial_blue_alpha_100", TokenValue: TokenValue{Type: TokenTypeColor, Value: "#FF0D99F6"}},
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t,
		`{"celestial_blue_100":{"$type":"color","$value":"#3AAFFF"},`+
			`"celestial_blue_10":{"$type":"color","$value":"#E7F5FE"},`+
			`"celestial_blue_alpha_100":{"$type":"color","$value":"#FF0D99F6"}}`,
		string(data))

	var decoded TokenSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set, decoded)
	assert.Equal(t, []string{"celestial_blue_100", "celestial_blue_10", "celestial_blue_alpha_100"}, decoded.Names())

	v, ok := decoded.Get("celestial_blue_10")
	require.True(t, ok)
	assert.Equal(t, "#E7F5FE", v.Value)

	empty, err := json.Marshal(TokenSet{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &decoded))
}

func TestSwatch(t *testing.T) {
	s, err := NewSwatch("#0d99f6")
	require.NoError(t, err)
	assert.Equal(t, "#0D99F6", s.Hex)
	assert.Equal(t, SwatchRGB{R: 13, G: 153, B: 246}, s.RGB)
	assert.InDelta(t, 203.95, s.HSL.H, 0.01)
	assert.InDelta(t, 0.5078, s.HSL.L, 0.001)
	assert.InDelta(t, 246.0/255, s.HSV.V, 1e-9)
	assert.InDelta(t, 61.236, s.LAB.L, 0.001)
	assert.Equal(t, "#FFFFFF", s.Text)

	light, err := NewSwatch("#FFECA6")
	require.NoError(t, err)
	assert.Equal(t, "rgba(0,0,0,.55)", light.Text)

	_, err = NewSwatch("#12")
	assert.Error(t, err)
}

func TestAccessToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token, err := NewAccessToken("admin", "secret", expiry)
	require.NoError(t, err)

	claims, err := ValidateJWTToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, Admin, claims.Kind)

	_, err = ValidateJWTToken(token, "other-secret")
	assert.Error(t, err)

	expired, err := NewAccessToken("admin", "secret", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ValidateJWTToken(expired, "secret")
	assert.Error(t, err)
}

func TestCheckCredentials(t *testing.T) {
	hash, err := GenerateHash("hunter2")
	require.NoError(t, err)

	assert.NoError(t, CheckCredentials(AdminCredentials{Username: "admin", Password: "hunter2"}, "admin", hash))
	assert.ErrorIs(t, CheckCredentials(AdminCredentials{Username: "admin", Password: "nope"}, "admin", hash), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckCredentials(AdminCredentials{Username: "root", Password: "hunter2"}, "admin", hash), ErrInvalidCredentials)
	assert.Error(t, CheckCredentials(AdminCredentials{Username: "admin", Password: "hunter2"}, "admin", ""))

	_, err = GenerateHash("")
	assert.Error(t, err)
}

func TestNewRun(t *testing.T) {
	r := NewRun("data/palette.toml", "abc", 20, 6, RunSummary{Total: 220, Classified: 220})
	assert.Len(t, r.RunID, 36)
	assert.Equal(t, 220, r.Total)
	assert.False(t, r.CreatedAt.IsZero())
	assert.NotEqual(t, r.RunID, NewRun("x", "y", 0, 0, RunSummary{}).RunID)
}
