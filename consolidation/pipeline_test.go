package consolidation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/color-game/consolidation/catalog"
	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/models"
)

func quietPipeline(workers int) *Pipeline {
	p := NewPipeline(DefaultThresholds(), workers)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return p
}

func loadBundled(t *testing.T) models.Palette {
	t.Helper()
	src, err := catalog.Load(filepath.Join("..", "data", "palette.toml"))
	require.NoError(t, err)
	return src.Palette
}

func recordByName(t *testing.T, records []models.Classification, name string) models.Classification {
	t.Helper()
	for _, r := range records {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no record named %s", name)
	return models.Classification{}
}

func TestPipelineBundledPalette(t *testing.T) {
	palette := loadBundled(t)
	report, err := quietPipeline(4).Run(context.Background(), palette)
	require.NoError(t, err)

	require.Len(t, report.Records, 220)
	assert.Equal(t, 220, report.Summary.Total)
	assert.Equal(t, 220, report.Summary.Classified)
	assert.Equal(t, 99, report.Summary.Exact)
	assert.Equal(t, 73, report.Summary.Merged)
	assert.Equal(t, 12, report.Summary.Far)
	assert.Equal(t, 3, report.Summary.Unmatched)
	assert.Equal(t, 66, report.Summary.Duplicates)
	assert.Equal(t, 205, report.Summary.ByKind[models.BucketScaleFamily])
	assert.Equal(t, 15, report.Summary.ByKind[models.BucketOtherSingleton])

	counts := make(map[string]int)
	var order []string
	for _, g := range report.Groups {
		counts[g.ID] = g.Len()
		order = append(order, g.ID)
	}
	assert.Equal(t, []string{
		"celestial_blue", "majorelle_blue", "ultra_violet", "bright_pink", "chili_red",
		"lime_green", "robin_egg_blue", "green", "yellow", "orange_bright", "deep_purple",
		"space_cadet", "white", "black", "rich_black", "dark_navy", "dark_indigo",
		"grey_neutral", "magenta", "warm_brown",
		"anti_flash_white", "sugar", "pearl", "orange", "blond", "lemonade",
	}, order)
	assert.Equal(t, map[string]int{
		"celestial_blue": 18, "majorelle_blue": 37, "ultra_violet": 3, "bright_pink": 14,
		"chili_red": 7, "lime_green": 4, "robin_egg_blue": 12, "green": 13, "yellow": 13,
		"orange_bright": 8, "deep_purple": 13, "space_cadet": 9, "white": 5, "black": 3,
		"rich_black": 3, "dark_navy": 14, "dark_indigo": 16, "grey_neutral": 7, "magenta": 2,
		"warm_brown": 4, "anti_flash_white": 11, "sugar": 1, "pearl": 1, "orange": 0,
		"blond": 2, "lemonade": 0,
	}, counts)

	require.Len(t, report.Unmatched, 3)
	assert.Equal(t, "_A0587F", report.Unmatched[0].Name)
	assert.Equal(t, "main_deep_marine", report.Unmatched[1].Name)
	assert.Equal(t, "_1368C9", report.Unmatched[2].Name)
	assert.InDelta(t, 15.943664231810224, report.Unmatched[0].Distance, 1e-9)
	assert.InDelta(t, 15.18184065800864, report.Unmatched[1].Distance, 1e-9)
}

func TestPipelineBundledRecords(t *testing.T) {
	report, err := quietPipeline(3).Run(context.Background(), loadBundled(t))
	require.NoError(t, err)

	tests := []struct {
		name         string
		bucket       string
		kind         models.BucketKind
		ref          string
		distance     float64
		step         models.Step
		stepDistance float64
	}{
		{"celestial_blue", "celestial_blue", models.BucketScaleFamily, "#0D99F6", 0, 100, 6.65450450194157},
		{"_0D99F6", "celestial_blue", models.BucketScaleFamily, "#0D99F6", 0, 100, 6.65450450194157},
		{"payment_ultramarine", "dark_indigo", models.BucketScaleFamily, "#221073", 3.856103544770993, 100, 3.856103544770993},
		{"majorelle_blue_10_alpha", "majorelle_blue", models.BucketScaleFamily, "#634AD6", 0, 60, 0},
		{"orange", "orange_bright", models.BucketScaleFamily, "#FF965A", 0, 100, 8.192390317591567},
		{"lemonade", "yellow", models.BucketScaleFamily, "#FFCC00", 0, 100, 2.6831412780467603},
		{"_A0587F", "warm_brown", models.BucketScaleFamily, "#8A4646", 15.943664231810224, 80, 13.288674816312918},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordByName(t, report.Records, tt.name)
			assert.Equal(t, tt.bucket, rec.BucketID)
			assert.Equal(t, tt.kind, rec.BucketKind)
			assert.Equal(t, tt.ref, rec.RefHex)
			assert.InDelta(t, tt.distance, rec.Distance, 1e-9)
			require.NotNil(t, rec.Step)
			assert.Equal(t, tt.step, *rec.Step)
			assert.InDelta(t, tt.stepDistance, *rec.StepDistance, 1e-9)
		})
	}

	white80 := recordByName(t, report.Records, "white80")
	assert.Equal(t, "white", white80.BucketID)
	assert.Zero(t, white80.Distance)
	assert.Nil(t, white80.Step)

	pearl := recordByName(t, report.Records, "_FFF3EC")
	assert.Equal(t, models.BucketOtherSingleton, pearl.BucketKind)
	assert.Equal(t, "pearl", pearl.BucketID)
	assert.True(t, pearl.IsDuplicate)

	celestial, ok := models.Palette{Families: report.Families}.Family("celestial_blue")
	require.True(t, ok)
	s, ok := celestial.SolidAt(10)
	require.True(t, ok)
	assert.Equal(t, models.SolidStep{Step: 10, Hex: "#E7F5FE", Tag: models.SourceProposed}, s)
}

func TestPipelineWorkerCountDoesNotChangeResult(t *testing.T) {
	palette := loadBundled(t)
	one, err := quietPipeline(1).Run(context.Background(), palette)
	require.NoError(t, err)
	many, err := quietPipeline(16).Run(context.Background(), palette)
	require.NoError(t, err)
	assert.Equal(t, one.Records, many.Records)
	assert.Equal(t, one.Summary, many.Summary)
}

func TestPipelineFailures(t *testing.T) {
	palette := loadBundled(t)

	broken := palette
	broken.Legacy = append(append([]models.LegacyColor(nil), palette.Legacy...), models.LegacyColor{Name: "payment_typo", Hex: "#07068"})
	_, err := quietPipeline(2).Run(context.Background(), broken)
	var fe *colormath.FormatError
	assert.True(t, errors.As(err, &fe))

	noRefs := palette
	noRefs.Families = append([]models.Family(nil), palette.Families...)
	noRefs.Families[3].Refs = nil
	_, err = quietPipeline(2).Run(context.Background(), noRefs)
	var iv *InvariantViolation
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, InvariantNonEmptyRefs, iv.Invariant)
	assert.Equal(t, "bright_pink", iv.Entry)
}
