package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/color-game/consolidation/consolidation"
	"github.com/color-game/consolidation/datastore"
	"github.com/color-game/consolidation/models"
	"github.com/color-game/consolidation/scheduler"
)

type Config struct {
	HTTPPort          string
	DatabaseType      string
	DatabaseHost      string
	DatabaseUser      string
	DatabasePassword  string
	DatabaseName      string
	SSLMode           string
	JwtSecret         string
	JwtAccessDuration int // seconds
	JwtDomain         string
	AdminUsername     string
	AdminPasswordHash string
	AllowedOrigins    []string
	DevMode           bool
	PalettePath       string
	Workers           int
	RescanInterval    time.Duration
	Thresholds        consolidation.Thresholds
}

// PaletteSource holds the currently loaded palette and can record runs of it.
// *scheduler.Scheduler implements it.
type PaletteSource interface {
	Snapshot() (scheduler.Snapshot, bool)
	Rescan(ctx context.Context) (models.Run, bool, error)
	RunNow(ctx context.Context) (models.Run, error)
}

type Application struct {
	Config          Config
	RunRepo         datastore.RunRepository
	BucketStatsRepo datastore.BucketStatsRepository
	Palettes        PaletteSource
	Pipeline        *consolidation.Pipeline
	Logger          *slog.Logger
}

func (app *Application) logger() *slog.Logger {
	if app.Logger == nil {
		return slog.Default()
	}
	return app.Logger
}
