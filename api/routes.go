package api

import (
	"net/http"
	"regexp"
	"strings"
)

var localhostPattern = regexp.MustCompile(`^localhost:\d+$`)

func cleanOrigin(origin string) string {
	cleanedOrigin := strings.TrimPrefix(origin, "https://")
	cleanedOrigin = strings.TrimPrefix(cleanedOrigin, "http://")
	if idx := strings.Index(cleanedOrigin, "/"); idx != -1 {
		cleanedOrigin = cleanedOrigin[:idx]
	}
	return cleanedOrigin
}

func isAllowedOrigin(origin string, allowedOrigins []string, devMode bool) bool {
	cleanedRequest := cleanOrigin(origin)

	// Allow localhost for development
	if devMode && localhostPattern.MatchString(cleanedRequest) {
		return true
	}

	for _, allowed := range allowedOrigins {
		if cleanOrigin(allowed) == cleanedRequest {
			return true
		}
	}

	return false
}

func wrapMuxWithCorsAndOrigins(mux *http.ServeMux, app *Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == "" {
			origin = r.Header.Get("Referer")
		}

		if origin == "" || isAllowedOrigin(origin, app.Config.AllowedOrigins, app.Config.DevMode) {
			handleCors(mux.ServeHTTP)(w, r)
			return
		}

		app.logger().Warn("rejected origin", "origin", origin, "path", r.URL.Path)
		writeHandlerError(w, http.StatusForbidden, HandlerError{
			ErrorName:        "Origin Not Allowed",
			Description:      "origin not allowed: " + cleanOrigin(origin),
			PossibleSolution: "add the origin to ALLOWED_ORIGINS",
		})
	})
}

func (app *Application) BuildRoutes(mux *http.ServeMux) *http.ServeMux {
	finalMux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("/", app.home)
	mux.HandleFunc("/v1/auth/login", app.login)
	mux.HandleFunc("/v1/auth/logout", app.logout)
	mux.HandleFunc("/v1/palette", app.getPalette)
	mux.HandleFunc("/v1/palette/tokens", app.getTokens)
	mux.HandleFunc("/v1/distance", app.getDistance)
	mux.HandleFunc("/v1/classify", app.classify)
	mux.HandleFunc("/v1/runs", app.getRuns)
	mux.HandleFunc("/v1/runs/get", app.getRun)
	mux.HandleFunc("/v1/runs/groups", app.getRunGroups)
	mux.HandleFunc("/v1/runs/unmatched", app.getRunUnmatched)
	mux.HandleFunc("/v1/runs/stats", app.getRunStats)
	mux.HandleFunc("/v1/buckets/history", app.getBucketHistory)

	// Admin endpoints
	mux.HandleFunc("/v1/admin/runs/create", app.requireAdmin(app.createRun))
	mux.HandleFunc("/v1/admin/runs/delete", app.requireAdmin(app.deleteRun))
	mux.HandleFunc("/v1/admin/palette/reload", app.requireAdmin(app.reloadPalette))

	finalMux.Handle("/", app.logRequests(wrapMuxWithCorsAndOrigins(mux, app)))

	return finalMux
}
