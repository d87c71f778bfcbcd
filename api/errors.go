package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
)

// Helper function to get caller information
func getCallerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "[unknown]"
	}
	return fmt.Sprintf("[%s:%d]", filepath.Base(file), line)
}

type HandlerError struct {
	ErrorName        string `json:"errorName"`
	Description      string `json:"description"`
	PossibleSolution string `json:"possibleSolution"`
	CallerInfo       string `json:"callerInfo"`
}

var ErrGET = fmt.Errorf("GET method required for this endpoint")
var ErrPOST = fmt.Errorf("POST method required for this endpoint")
var ErrInvalidPrivelege = fmt.Errorf("invalid authentication privileges")
var ErrNoPalette = fmt.Errorf("no palette has been loaded")

func writeHandlerError(w http.ResponseWriter, status int, herr HandlerError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(herr)
}

func (app *Application) invalidCredentials(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusUnauthorized, HandlerError{
		ErrorName:        "Error Authorizing User",
		Description:      err.Error(),
		PossibleSolution: "Retry with proper credentials",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) invalidAuthorization(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusUnauthorized, HandlerError{
		ErrorName:        "Error Authenticating for Endpoint",
		Description:      "Invalid Authentication",
		PossibleSolution: "Check your headers and ensure you're submitting a valid token",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) requireGetMethod(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Allow", http.MethodGet)
	writeHandlerError(w, http.StatusMethodNotAllowed, HandlerError{
		ErrorName:        "GET Method Required",
		Description:      err.Error() + " you used: " + r.Method,
		PossibleSolution: "Use GET method",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) requirePostMethod(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Allow", http.MethodPost)
	writeHandlerError(w, http.StatusMethodNotAllowed, HandlerError{
		ErrorName:        "Post Method Required",
		Description:      err.Error() + " you used: " + r.Method,
		PossibleSolution: "Use POST method",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) badJSONRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusBadRequest, HandlerError{
		ErrorName:        "Error Parsing JSON",
		Description:      err.Error(),
		PossibleSolution: "Double check your JSON formatting",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger().Error("internal server error", "path", r.URL.Path, "error", err)
	writeHandlerError(w, http.StatusInternalServerError, HandlerError{
		ErrorName:        "Internal Server Error",
		Description:      err.Error(),
		PossibleSolution: "Internal Server Error requiring support",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusBadRequest, HandlerError{
		ErrorName:        "Bad Request",
		Description:      err.Error(),
		PossibleSolution: "Check your request parameters",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) notFound(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusNotFound, HandlerError{
		ErrorName:        "Not Found",
		Description:      err.Error(),
		PossibleSolution: "Check the id you requested",
		CallerInfo:       getCallerInfo(),
	})
}

// invariantViolated reports a consolidation that failed its accounting or
// input checks. The run is not stored.
func (app *Application) invariantViolated(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusUnprocessableEntity, HandlerError{
		ErrorName:        "Consolidation Rejected",
		Description:      err.Error(),
		PossibleSolution: "Fix the palette input and retry",
		CallerInfo:       getCallerInfo(),
	})
}

func (app *Application) paletteUnavailable(w http.ResponseWriter, r *http.Request) {
	writeHandlerError(w, http.StatusServiceUnavailable, HandlerError{
		ErrorName:        "Palette Unavailable",
		Description:      ErrNoPalette.Error(),
		PossibleSolution: "Check the palette file and reload it",
		CallerInfo:       getCallerInfo(),
	})
}
