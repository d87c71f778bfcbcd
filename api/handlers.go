package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/color-game/consolidation/colormath"
	"github.com/color-game/consolidation/consolidation"
	"github.com/color-game/consolidation/models"
)

const maxClassifyBody = 1 << 20

type familyView struct {
	models.Family
	AlphaScale []consolidation.AlphaSwatch `json:"alphaScale"`
	Strip      []models.Swatch             `json:"strip"`
}

type otherView struct {
	models.OtherToken
	Swatch models.Swatch `json:"swatch"`
}

type paletteResponse struct {
	Source   string       `json:"source"`
	Digest   string       `json:"digest"`
	LoadedAt time.Time    `json:"loadedAt"`
	Families []familyView `json:"families"`
	Others   []otherView  `json:"others"`
}

type distanceResponse struct {
	A        models.Swatch `json:"a"`
	B        models.Swatch `json:"b"`
	Distance float64       `json:"distance"`
	Rounded  float64       `json:"rounded"`
}

type classifyRequest struct {
	Families []models.Family      `json:"families,omitempty"`
	Others   []models.OtherToken  `json:"others,omitempty"`
	Legacy   []models.LegacyColor `json:"legacy"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// GET /
func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Palette Consolidation API")
}

// GET /v1/palette
func (app *Application) getPalette(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	snap, ok := app.Palettes.Snapshot()
	if !ok {
		app.paletteUnavailable(w, r)
		return
	}

	resp := paletteResponse{
		Source:   snap.Source.Path,
		Digest:   snap.Source.Digest,
		LoadedAt: snap.LoadedAt,
		Families: make([]familyView, 0, len(snap.Report.Families)),
		Others:   make([]otherView, 0, len(snap.Report.Others)),
	}

	for _, f := range snap.Report.Families {
		alpha, err := consolidation.AlphaScale(f)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		strip, err := consolidation.Strip(f)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		swatches := make([]models.Swatch, 0, len(strip))
		for _, hex := range strip {
			s, err := models.NewSwatch(hex)
			if err != nil {
				app.internalServerError(w, r, err)
				return
			}
			swatches = append(swatches, s)
		}
		resp.Families = append(resp.Families, familyView{Family: f, AlphaScale: alpha, Strip: swatches})
	}

	for _, o := range snap.Report.Others {
		s, err := models.NewSwatch(o.Hex)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		resp.Others = append(resp.Others, otherView{OtherToken: o, Swatch: s})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/palette/tokens?family=
func (app *Application) getTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	snap, ok := app.Palettes.Snapshot()
	if !ok {
		app.paletteUnavailable(w, r)
		return
	}

	familyID := r.URL.Query().Get("family")
	if familyID == "" {
		all, err := consolidation.ExportAllTokens(snap.Report.Families)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
		return
	}

	family, ok := models.Palette{Families: snap.Report.Families}.Family(familyID)
	if !ok {
		app.notFound(w, r, fmt.Errorf("no family %q", familyID))
		return
	}
	tokens, err := consolidation.ExportTokens(family)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// GET /v1/distance?a=&b=
func (app *Application) getDistance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	q := r.URL.Query()
	a, errA := models.NewSwatch(q.Get("a"))
	b, errB := models.NewSwatch(q.Get("b"))
	if err := errors.Join(errA, errB); err != nil {
		app.badRequest(w, r, err)
		return
	}

	d, err := colormath.DistanceHex(a.Hex, b.Hex)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, distanceResponse{A: a, B: b, Distance: d, Rounded: models.RoundDistance(d)})
}

// POST /v1/classify
// Classifies the posted legacy colours against the posted families and
// others, or against the loaded palette when none are posted. Nothing is stored.
func (app *Application) classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	req := classifyRequest{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	if len(req.Legacy) == 0 {
		app.badRequest(w, r, errors.New("legacy is required"))
		return
	}

	palette := models.Palette{Families: req.Families, Others: req.Others, Legacy: req.Legacy}
	if len(req.Families) == 0 && len(req.Others) == 0 {
		snap, ok := app.Palettes.Snapshot()
		if !ok {
			app.paletteUnavailable(w, r)
			return
		}
		palette.Families = snap.Source.Palette.Families
		palette.Others = snap.Source.Palette.Others
	}

	report, err := app.Pipeline.Run(r.Context(), palette)
	if err != nil {
		app.consolidationFailed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (app *Application) consolidationFailed(w http.ResponseWriter, r *http.Request, err error) {
	var fe *colormath.FormatError
	var iv *consolidation.InvariantViolation
	switch {
	case errors.As(err, &fe):
		app.badRequest(w, r, err)
	case errors.As(err, &iv):
		app.invariantViolated(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
