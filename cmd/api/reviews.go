package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ClementeCano/ReViews/internal/params"
	"github.com/ClementeCano/ReViews/internal/session"
	"github.com/ClementeCano/ReViews/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 10 << 20 // 10mb

type CreateReviewPayload struct {
	Name    string `validate:"required,max=255"`
	Address string `validate:"required,max=255"`
	Rating  int    `validate:"min=0,max=5"`
}

// listReviewsHandler renders the review browser: every review newest first,
// with an optionally pre-selected one.
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := app.requireSession(w, r)
	if err != nil {
		return
	}

	window := params.ParseList(r.URL.Query())

	reviews, err := app.store.Reviews.List(r.Context(), window.Limit, window.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	var selected *store.Review
	if id := r.URL.Query().Get("selected"); id != "" {
		for i := range reviews {
			if reviews[i].ID.Hex() == id {
				selected = &reviews[i]
				break
			}
		}
		if selected == nil {
			// Fallback lookup for a review outside the current page. Both a
			// malformed and an unknown identifier collapse to "no selection"
			// here, and only here.
			review, err := app.store.Reviews.GetByID(r.Context(), id)
			if err == nil {
				selected = review
			} else if !errors.Is(err, store.ErrInvalidID) && !errors.Is(err, store.ErrNotFound) {
				app.internalServerError(w, r, err)
				return
			}
		}
	}

	app.render(w, r, "mapa.html", map[string]any{
		"User":     sess.User,
		"Reviews":  reviews,
		"Selected": selected,
		"Page":     window.Page,
	})
}

// createReviewHandler geocodes the submitted address, uploads any images and
// persists the review with the author copied from the session.
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := app.requireSession(w, r)
	if err != nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		app.badRequestResponse(w, r, errors.New("rating must be an integer"))
		return
	}

	payload := CreateReviewPayload{
		Name:    r.FormValue("name"),
		Address: r.FormValue("address"),
		Rating:  rating,
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New("name and address are required and rating must be between 0 and 5"))
		return
	}

	point, err := app.geocoder.Geocode(r.Context(), payload.Address)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if point == nil {
		app.badRequestResponse(w, r, errors.New("address could not be geocoded"))
		return
	}

	imageURLs, err := app.uploader.UploadAll(r.Context(), r.MultipartForm.File["images"])
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	review := &store.Review{
		Name:           payload.Name,
		Address:        payload.Address,
		Latitude:       point.Lat,
		Longitude:      point.Lon,
		Rating:         payload.Rating,
		AuthorEmail:    sess.User.Email,
		AuthorName:     sess.User.Name,
		Token:          sess.Token,
		TokenIssuedAt:  timePtr(sess.IssuedAt),
		TokenExpiresAt: timePtr(sess.ExpiresAt),
		Images:         imageURLs,
	}

	id, err := app.store.Reviews.Create(r.Context(), review)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	http.Redirect(w, r, "/reviews?selected="+id, http.StatusSeeOther)
}

// getReviewHandler returns a single review as JSON. A malformed identifier
// is a client error, a well-formed unknown one is not found.
func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := app.requireSession(w, r); err != nil {
		return
	}

	id := chi.URLParam(r, "reviewID")

	review, err := app.store.Reviews.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidID):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// requireSession writes the 401 itself so handlers can simply return.
func (app *application) requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	sess, err := app.sessions.RequireUser(w, r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return nil, err
	}
	return sess, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
