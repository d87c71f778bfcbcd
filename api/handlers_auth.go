package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/color-game/consolidation/models"
)

func (app *Application) accessCookie(value string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if app.Config.JwtDomain == "" {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     models.JWT.ACCESS_COOKIE_NAME,
		Value:    value,
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/",
		Domain:   app.Config.JwtDomain,
		Expires:  expires,
	}
}

// POST /v1/auth/login
func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	creds := models.AdminCredentials{}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		app.badJSONRequest(w, r, errors.New("username and password are required"))
		return
	}

	if err := models.CheckCredentials(creds, app.Config.AdminUsername, app.Config.AdminPasswordHash); err != nil {
		app.logger().Warn("admin login rejected", "username", creds.Username)
		app.invalidCredentials(w, r, err)
		return
	}

	accessExpiry := time.Now().Add(time.Second * time.Duration(app.Config.JwtAccessDuration))
	token, err := models.NewAccessToken(creds.Username, app.Config.JwtSecret, accessExpiry)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	http.SetCookie(w, app.accessCookie(token, accessExpiry))

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Username: creds.Username,
		Kind:     models.Admin,
		Expiry:   accessExpiry.UTC(),
	})
}

// POST /v1/auth/logout
func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	cookie := app.accessCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	w.WriteHeader(http.StatusNoContent)
}
