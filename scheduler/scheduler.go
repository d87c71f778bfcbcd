package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/color-game/consolidation/catalog"
	"github.com/color-game/consolidation/consolidation"
	"github.com/color-game/consolidation/datastore"
	"github.com/color-game/consolidation/models"
)

// Snapshot is the most recently loaded palette and its consolidation.
type Snapshot struct {
	Source   catalog.Source
	Report   consolidation.Report
	LoadedAt time.Time
}

// Scheduler keeps the stored runs in step with the palette file. It reloads
// the file whenever it changes on disk, and on a fallback interval, and
// records a new run whenever the file's digest differs from the latest run.
type Scheduler struct {
	PalettePath     string
	Interval        time.Duration
	Pipeline        *consolidation.Pipeline
	RunRepo         datastore.RunRepository
	BucketStatsRepo datastore.BucketStatsRepository
	Logger          *slog.Logger

	// rescanMu serialises loads and writes; mu only guards snapshot.
	rescanMu sync.Mutex
	mu       sync.Mutex
	snapshot *Snapshot

	watcher *fsnotify.Watcher
	ticker  *time.Ticker
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(path string, pipeline *consolidation.Pipeline, runs datastore.RunRepository, stats datastore.BucketStatsRepository) *Scheduler {
	return &Scheduler{
		PalettePath:     path,
		Interval:        10 * time.Minute,
		Pipeline:        pipeline,
		RunRepo:         runs,
		BucketStatsRepo: stats,
		Logger:          slog.Default(),
	}
}

// Start loads the palette once, then watches it until Stop is called. A
// failing first load is returned; later failures are only logged and the
// previous snapshot stays current.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, _, err := s.Rescan(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(s.PalettePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.PalettePath, err)
	}

	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	s.watcher = watcher
	s.ticker = time.NewTicker(interval)
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx)

	s.Logger.Info("scheduler started", "palette", s.PalettePath, "interval", interval)
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	target := filepath.Clean(s.PalettePath)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.rescanAndLog(ctx, "file change")
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.Logger.Warn("watcher error", "error", err)
		case <-s.ticker.C:
			s.rescanAndLog(ctx, "interval")
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) rescanAndLog(ctx context.Context, reason string) {
	run, created, err := s.Rescan(ctx)
	if err != nil {
		s.Logger.Error("palette rescan failed", "reason", reason, "error", err)
		return
	}
	if created {
		s.Logger.Info("recorded new run", "reason", reason, "run_id", run.RunID, "digest", run.Digest)
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	s.ticker.Stop()
	s.watcher.Close()
	s.wg.Wait()
	s.done = nil
	s.Logger.Info("scheduler stopped")
}

// Snapshot returns the last successfully loaded palette.
func (s *Scheduler) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// Rescan reloads the palette file and records a run when its digest differs
// from the latest stored run. The returned bool is true when a run was created.
func (s *Scheduler) Rescan(ctx context.Context) (models.Run, bool, error) {
	s.rescanMu.Lock()
	defer s.rescanMu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return models.Run{}, false, err
	}

	latest, err := s.RunRepo.GetLatest()
	switch {
	case err == nil && latest.Digest == snap.Source.Digest:
		s.Logger.Debug("palette unchanged", "digest", snap.Source.Digest, "run_id", latest.RunID)
		return latest, false, nil
	case err != nil && !datastore.IsNoRows(err):
		return models.Run{}, false, fmt.Errorf("look up latest run: %w", err)
	}

	run, err := Record(s.RunRepo, s.BucketStatsRepo, snap.Source, snap.Report)
	if err != nil {
		return models.Run{}, false, err
	}
	return run, true, nil
}

// RunNow reloads the palette and records a run whether or not it changed.
func (s *Scheduler) RunNow(ctx context.Context) (models.Run, error) {
	s.rescanMu.Lock()
	defer s.rescanMu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return models.Run{}, err
	}
	return Record(s.RunRepo, s.BucketStatsRepo, snap.Source, snap.Report)
}

// load must be called with s.rescanMu held.
func (s *Scheduler) load(ctx context.Context) (Snapshot, error) {
	src, err := catalog.Load(s.PalettePath)
	if err != nil {
		return Snapshot{}, err
	}
	report, err := s.Pipeline.Run(ctx, src.Palette)
	if err != nil {
		return Snapshot{}, fmt.Errorf("consolidate %s: %w", src.Path, err)
	}

	snap := Snapshot{Source: src, Report: report, LoadedAt: time.Now().UTC()}
	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()
	return snap, nil
}

// Record stores a consolidation report as a new run along with its records
// and per-bucket tallies. A run whose tallies cannot all be written is
// removed again so the next rescan sees no run for the digest and retries.
func Record(runs datastore.RunRepository, stats datastore.BucketStatsRepository, src catalog.Source, report consolidation.Report) (models.Run, error) {
	if runs == nil || stats == nil {
		return models.Run{}, errors.New("no repositories configured")
	}

	run := models.NewRun(src.Path, src.Digest, len(report.Families), len(report.Others), report.Summary.RunSummary)
	run, err := runs.Create(run, report.Records)
	if err != nil {
		return models.Run{}, fmt.Errorf("store run: %w", err)
	}

	for _, stat := range consolidation.BucketStats(run.RunID, report.Groups) {
		if _, err := stats.CreateOrUpdate(stat); err != nil {
			err = fmt.Errorf("store bucket %s: %w", stat.BucketID, err)
			if delErr := runs.Delete(run.RunID); delErr != nil {
				return models.Run{}, errors.Join(err, fmt.Errorf("remove incomplete run %s: %w", run.RunID, delErr))
			}
			return models.Run{}, err
		}
	}
	return run, nil
}
