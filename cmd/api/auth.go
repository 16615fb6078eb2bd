package main

import (
	"errors"
	"net/http"

	"github.com/ClementeCano/ReViews/internal/session"
)

type LoginPayload struct {
	Token string `json:"token" validate:"required"`
}

// loginHandler verifies the Google-issued ID token and establishes a
// session holding the claims plus a snapshot of the raw credential.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New("token is required"))
		return
	}

	claims, err := app.verifier.Verify(r.Context(), payload.Token)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	sess := &session.Session{
		User: session.User{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
			Picture: claims.Picture,
		},
		Token:     payload.Token,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}

	if err := app.sessions.Establish(w, r, sess); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	http.Redirect(w, r, "/reviews", http.StatusSeeOther)
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// homeHandler renders the landing page with the OAuth client ID, or sends
// an already-authenticated client straight to the review browser.
func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	if user := app.sessions.CurrentUser(w, r); user != nil {
		http.Redirect(w, r, "/reviews", http.StatusSeeOther)
		return
	}

	app.render(w, r, "index.html", map[string]any{
		"ClientID": app.config.clientID,
	})
}
