package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/color-game/consolidation/models"
)

func handleCors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Access-Control-Allow-Credentials, Access-Control-Allow-Origin, Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		h.ServeHTTP(w, r)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logRequests records method, path, status and latency of every request at
// debug level; failures are already logged by the error helpers.
func (app *Application) logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(sw, r)
		app.logger().Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"elapsed", time.Since(started),
		)
	})
}

// adminFromJWT reads and validates the access token cookie
func (app *Application) adminFromJWT(r *http.Request) (*models.JWTClaims, error) {
	cookie, err := r.Cookie(models.JWT.ACCESS_COOKIE_NAME)
	if err != nil {
		return nil, errors.New("no JWT cookie found")
	}

	claims, err := models.ValidateJWTToken(cookie.Value, app.Config.JwtSecret)
	if err != nil {
		return nil, err
	}

	// Tokens outlive a renamed admin account otherwise.
	if claims.Username != app.Config.AdminUsername {
		return nil, errors.New("unknown account")
	}
	return claims, nil
}

// Verify the caller holds an admin access token
func (app *Application) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := app.adminFromJWT(r)
		if err != nil {
			app.invalidAuthorization(w, r, err)
			return
		}

		if claims.Kind != models.Admin {
			app.invalidAuthorization(w, r, ErrInvalidPrivelege)
			return
		}

		h.ServeHTTP(w, r)
	}
}
