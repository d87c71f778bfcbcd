package consolidation

import (
	"context"
	"log/slog"
	"time"

	"github.com/color-game/consolidation/models"
)

// Report is the full outcome of one consolidation pass.
type Report struct {
	Families  []models.Family         `json:"families"`
	Others    []models.OtherToken     `json:"others"`
	Records   []models.Classification `json:"records"`
	Groups    []BucketGroup           `json:"groups"`
	Summary   Summary                 `json:"summary"`
	Unmatched []models.Classification `json:"unmatched"`
}

// Pipeline runs validation, scale synthesis, classification, accounting,
// grouping and summary in that order.
type Pipeline struct {
	Thresholds Thresholds
	Workers    int
	Markers    []string
	Logger     *slog.Logger
}

func NewPipeline(t Thresholds, workers int) *Pipeline {
	return &Pipeline{
		Thresholds: t,
		Workers:    workers,
		Markers:    DefaultMarkers,
		Logger:     slog.Default(),
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Run consolidates palette.Legacy against the palette's families and others.
// Any error means the report must not be used.
func (p *Pipeline) Run(ctx context.Context, palette models.Palette) (Report, error) {
	log := p.logger()
	started := time.Now()

	if err := ValidatePalette(palette); err != nil {
		return Report{}, err
	}

	families, err := SynthesizeScales(palette.Families)
	if err != nil {
		return Report{}, err
	}

	markers := p.Markers
	if markers == nil {
		markers = DefaultMarkers
	}
	classifier, err := NewClassifier(families, palette.Others, WithMarkers(markers...), WithWorkers(p.Workers))
	if err != nil {
		return Report{}, err
	}

	records, err := classifier.Classify(ctx, palette.Legacy)
	if err != nil {
		return Report{}, err
	}

	if err := VerifyAccounting(len(palette.Legacy), records); err != nil {
		log.Error("accounting failed", "input", len(palette.Legacy), "records", len(records), "error", err)
		return Report{}, err
	}

	resolved := models.Palette{Families: families, Others: palette.Others, Legacy: palette.Legacy}
	report := Report{
		Families:  families,
		Others:    palette.Others,
		Records:   records,
		Groups:    GroupByBucket(resolved, records),
		Summary:   Summarize(len(palette.Legacy), records, p.Thresholds),
		Unmatched: Unmatched(records, p.Thresholds),
	}

	log.Info("consolidation complete",
		"families", len(families),
		"others", len(palette.Others),
		"legacy", len(palette.Legacy),
		"exact", report.Summary.Exact,
		"merged", report.Summary.Merged,
		"far", report.Summary.Far,
		"unmatched", report.Summary.Unmatched,
		"took", time.Since(started),
	)
	return report, nil
}
