package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/color-game/consolidation/consolidation"
	"github.com/color-game/consolidation/datastore"
	"github.com/color-game/consolidation/models"
)

type runsResponse struct {
	Runs []models.Run `json:"runs"`
}

type runGroupsResponse struct {
	Run    models.Run                  `json:"run"`
	Groups []consolidation.BucketGroup `json:"groups"`
}

type runUnmatchedResponse struct {
	Run        models.Run               `json:"run"`
	Thresholds consolidation.Thresholds `json:"thresholds"`
	Unmatched  []models.Classification  `json:"unmatched"`
}

type runStatsResponse struct {
	Run     models.Run          `json:"run"`
	Buckets []models.BucketStat `json:"buckets"`
}

type rescanResponse struct {
	Run     models.Run `json:"run"`
	Created bool       `json:"created"`
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}

// lookupRun resolves ?id= and writes the error response itself when it fails.
func (app *Application) lookupRun(w http.ResponseWriter, r *http.Request) (models.Run, bool) {
	runID := r.URL.Query().Get("id")
	if runID == "" {
		app.badRequest(w, r, errors.New("id is required"))
		return models.Run{}, false
	}

	run, err := app.RunRepo.Get(runID)
	if datastore.IsNoRows(err) {
		app.notFound(w, r, fmt.Errorf("no run %q", runID))
		return models.Run{}, false
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return models.Run{}, false
	}
	return run, true
}

// runPalette gives the bucket order used to group stored records. Buckets no
// longer in the loaded palette are kept after the known ones.
func (app *Application) runPalette() models.Palette {
	snap, ok := app.Palettes.Snapshot()
	if !ok {
		return models.Palette{}
	}
	return models.Palette{Families: snap.Report.Families, Others: snap.Report.Others}
}

// GET /v1/runs
func (app *Application) getRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	runs, err := app.RunRepo.GetAll(limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

// GET /v1/runs/get?id=
func (app *Application) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	run, ok := app.lookupRun(w, r)
	if !ok {
		return
	}
	records, err := app.RunRepo.Records(run.RunID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RunDetail{Run: run, Records: records})
}

// GET /v1/runs/groups?id=
func (app *Application) getRunGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	run, ok := app.lookupRun(w, r)
	if !ok {
		return
	}
	records, err := app.RunRepo.Records(run.RunID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, runGroupsResponse{
		Run:    run,
		Groups: consolidation.GroupByBucket(app.runPalette(), records),
	})
}

// GET /v1/runs/unmatched?id=
func (app *Application) getRunUnmatched(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	run, ok := app.lookupRun(w, r)
	if !ok {
		return
	}
	records, err := app.RunRepo.Records(run.RunID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, runUnmatchedResponse{
		Run:        run,
		Thresholds: app.Config.Thresholds,
		Unmatched:  consolidation.Unmatched(records, app.Config.Thresholds),
	})
}

// GET /v1/runs/stats?id=
func (app *Application) getRunStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	run, ok := app.lookupRun(w, r)
	if !ok {
		return
	}
	stats, err := app.BucketStatsRepo.GetByRun(run.RunID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runStatsResponse{Run: run, Buckets: stats})
}

// GET /v1/buckets/history?id=&limit=
func (app *Application) getBucketHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	bucketID := r.URL.Query().Get("id")
	if bucketID == "" {
		app.badRequest(w, r, errors.New("id is required"))
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	history, err := app.BucketStatsRepo.GetHistory(bucketID, limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// POST /v1/admin/runs/create
func (app *Application) createRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	run, err := app.Palettes.RunNow(r.Context())
	if err != nil {
		app.consolidationFailed(w, r, err)
		return
	}

	app.logger().Info("run created", "run_id", run.RunID, "digest", run.Digest)
	writeJSON(w, http.StatusCreated, run)
}

// POST /v1/admin/runs/delete?id=
func (app *Application) deleteRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	runID := r.URL.Query().Get("id")
	if runID == "" {
		app.badRequest(w, r, errors.New("id is required"))
		return
	}

	err := app.RunRepo.Delete(runID)
	if datastore.IsNoRows(err) {
		app.notFound(w, r, fmt.Errorf("no run %q", runID))
		return
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger().Info("run deleted", "run_id", runID)
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/admin/palette/reload
func (app *Application) reloadPalette(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	run, created, err := app.Palettes.Rescan(r.Context())
	if err != nil {
		app.consolidationFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rescanResponse{Run: run, Created: created})
}
