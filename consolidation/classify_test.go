package consolidation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

func newTestClassifier(t *testing.T, families []models.Family, others []models.OtherToken, opts ...ClassifierOption) *Classifier {
	t.Helper()
	synthesized, err := SynthesizeScales(families)
	require.NoError(t, err)
	c, err := NewClassifier(synthesized, others, opts...)
	require.NoError(t, err)
	return c
}

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		note string
		want bool
	}{
		{"duplicate of chili_red", true},
		{"Duplicate", true},
		{"ALIAS of celestial_blue", true},
		{"80% alpha", false},
		{"", false},
		{"typo #07068", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDuplicate(tt.note, DefaultMarkers), tt.note)
	}
	assert.True(t, IsDuplicate("same as pearl", []string{"Same As"}))
	assert.False(t, IsDuplicate("anything", []string{""}))
}

func TestClassifyFirstCandidateWinsTies(t *testing.T) {
	families := []models.Family{
		{ID: "first", Refs: []string{"#00FF00", "#ff0000"}},
		{ID: "second", Refs: []string{"#FF0000"}},
	}
	others := []models.OtherToken{{ID: "red", Hex: "#FF0000"}}
	c := newTestClassifier(t, families, others)

	records, err := c.Classify(context.Background(), []models.LegacyColor{{Name: "red", Hex: "#FF0000"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.BucketScaleFamily, records[0].BucketKind)
	assert.Equal(t, "first", records[0].BucketID)
	assert.Equal(t, "#FF0000", records[0].RefHex)
	assert.Zero(t, records[0].Distance)
	assert.Nil(t, records[0].Step)
}

func TestClassifyOtherSingleton(t *testing.T) {
	c := newTestClassifier(t,
		[]models.Family{{ID: "black", Base100: "#000000", Refs: []string{"#000000"}}},
		[]models.OtherToken{{ID: "pearl", Hex: "#FFF3EC"}},
	)

	rec, err := c.ClassifyOne(models.LegacyColor{Name: "_FFF3EC", Hex: "#fff3ec", Note: "duplicate of pearl"})
	require.NoError(t, err)
	assert.Equal(t, models.BucketOtherSingleton, rec.BucketKind)
	assert.Equal(t, "pearl", rec.BucketID)
	assert.Equal(t, "#FFF3EC", rec.Hex)
	assert.True(t, rec.IsDuplicate)
	assert.Nil(t, rec.Step)
	assert.Nil(t, rec.StepDistance)
}

func TestClassifyAssignsNearestStep(t *testing.T) {
	c := newTestClassifier(t, []models.Family{celestialBlue()}, nil)

	records, err := c.Classify(context.Background(), []models.LegacyColor{
		{Name: "celestial_blue", Hex: "#0D99F6"},
		{Name: "_C4E7FF", Hex: "#C4E7FF"},
		{Name: "_E7F5FE", Hex: "#E7F5FE"},
	})
	require.NoError(t, err)

	require.NotNil(t, records[0].Step)
	assert.Equal(t, models.Step(100), *records[0].Step)
	assert.InDelta(t, 6.65450450194157, *records[0].StepDistance, 1e-9)
	assert.Zero(t, records[0].Distance)

	require.NotNil(t, records[1].Step)
	assert.Equal(t, models.Step(40), *records[1].Step)
	assert.Zero(t, *records[1].StepDistance)

	require.NotNil(t, records[2].Step)
	assert.Equal(t, models.Step(10), *records[2].Step)
	assert.Zero(t, *records[2].StepDistance)
}

func TestClassifyStepTieGoesToStrongerStep(t *testing.T) {
	c := newTestClassifier(t, []models.Family{{
		ID:            "flat",
		Base100:       "#FF0000",
		ExistingSolid: map[models.Step]string{100: "#FF0000", 80: "#FF0000"},
		Refs:          []string{"#FF0000"},
	}}, nil)

	rec, err := c.ClassifyOne(models.LegacyColor{Name: "red", Hex: "#FF0000"})
	require.NoError(t, err)
	require.NotNil(t, rec.Step)
	assert.Equal(t, models.Step(100), *rec.Step)
}

func TestClassifyIdenticalHexIsDeterministic(t *testing.T) {
	c := newTestClassifier(t, []models.Family{celestialBlue()}, []models.OtherToken{{ID: "pearl", Hex: "#FFF3EC"}})

	records, err := c.Classify(context.Background(), []models.LegacyColor{
		{Name: "celestial_blue", Hex: "#0D99F6"},
		{Name: "_0D99F6", Hex: "#0D99F6", Note: "duplicate of celestial_blue"},
	})
	require.NoError(t, err)

	a, b := records[0], records[1]
	assert.Equal(t, a.BucketID, b.BucketID)
	assert.Equal(t, a.RefHex, b.RefHex)
	assert.Equal(t, a.Distance, b.Distance)
	assert.Equal(t, *a.Step, *b.Step)
	assert.Equal(t, *a.StepDistance, *b.StepDistance)
	assert.False(t, a.IsDuplicate)
	assert.True(t, b.IsDuplicate)
}

func TestClassifyWhiteAlpha(t *testing.T) {
	c := newTestClassifier(t, []models.Family{
		celestialBlue(),
		{
			ID:             "white",
			Base100:        "#FFFFFF",
			AlphaBase:      "#FFFFFF",
			AlphaExisting:  map[models.Step]float64{100: 1.0, 80: 0.8},
			SkipSolidScale: true,
			Refs:           []string{"#FFFFFF"},
		},
	}, []models.OtherToken{{ID: "anti_flash_white", Hex: "#F2F3F7"}})

	rec, err := c.ClassifyOne(models.LegacyColor{Name: "white80", Hex: "#FFFFFF", Note: "80% alpha"})
	require.NoError(t, err)
	assert.Equal(t, "white", rec.BucketID)
	assert.Equal(t, models.BucketScaleFamily, rec.BucketKind)
	assert.Zero(t, rec.Distance)
	assert.Nil(t, rec.Step)
	assert.False(t, rec.IsDuplicate)
}

func TestClassifyMalformedHexIsFatal(t *testing.T) {
	c := newTestClassifier(t, []models.Family{celestialBlue()}, nil)

	_, err := c.Classify(context.Background(), []models.LegacyColor{
		{Name: "ok", Hex: "#0D99F6"},
		{Name: "payment_typo", Hex: "#07068"},
	})
	require.Error(t, err)
	var fe *colormath.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "#07068", fe.Input)
	assert.Contains(t, err.Error(), "payment_typo")
}

func TestClassifyCancelled(t *testing.T) {
	c := newTestClassifier(t, []models.Family{celestialBlue()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, []models.LegacyColor{{Name: "x", Hex: "#0D99F6"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyEmpty(t *testing.T) {
	c := newTestClassifier(t, []models.Family{celestialBlue()}, nil)
	records, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestClassifyWorkersAgree(t *testing.T) {
	families := []models.Family{
		celestialBlue(),
		{ID: "warm_brown", Base100: "#8A4646", Refs: []string{"#B07664", "#8A4646", "#C06D63"}},
		{ID: "space_cadet", Base100: "#2F2F45", Refs: []string{"#2F2F45"}},
	}
	others := []models.OtherToken{{ID: "sugar", Hex: "#FFE6DC"}, {ID: "blond", Hex: "#FFEDBF"}}

	var legacy []models.LegacyColor
	for i := 0; i < 97; i++ {
		legacy = append(legacy, models.LegacyColor{
			Name: fmt.Sprintf("c%02d", i),
			Hex:  colormath.RGBToHex(i*37%256, i*91%256, i*53%256),
		})
	}

	baseline, err := newTestClassifier(t, families, others, WithWorkers(1)).Classify(context.Background(), legacy)
	require.NoError(t, err)
	require.NoError(t, VerifyAccounting(len(legacy), baseline))

	for _, workers := range []int{0, 2, 3, 8, 200} {
		got, err := newTestClassifier(t, families, others, WithWorkers(workers)).Classify(context.Background(), legacy)
		require.NoError(t, err)
		assert.Equal(t, baseline, got, "workers=%d", workers)
	}

	for i, rec := range baseline {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, legacy[i].Name, rec.Name)
	}
}

func TestNewClassifierRejectsEmptyRefs(t *testing.T) {
	_, err := NewClassifier([]models.Family{{ID: "ghost"}}, nil)
	var iv *InvariantViolation
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, InvariantNonEmptyRefs, iv.Invariant)
	assert.Equal(t, "ghost", iv.Entry)

	_, err = NewClassifier(nil, nil)
	require.True(t, errors.As(err, &iv))

	_, err = NewClassifier(nil, []models.OtherToken{{ID: "bad", Hex: "#GG0000"}})
	assert.Error(t, err)
}

func TestWithMarkers(t *testing.T) {
	c := newTestClassifier(t, []models.Family{celestialBlue()}, nil, WithMarkers("same as"))
	rec, err := c.ClassifyOne(models.LegacyColor{Name: "x", Hex: "#0D99F6", Note: "Same as celestial_blue"})
	require.NoError(t, err)
	assert.True(t, rec.IsDuplicate)

	rec, err = c.ClassifyOne(models.LegacyColor{Name: "y", Hex: "#0D99F6", Note: "duplicate"})
	require.NoError(t, err)
	assert.False(t, rec.IsDuplicate)
}
