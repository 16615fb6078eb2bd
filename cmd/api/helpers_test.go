package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ClementeCano/ReViews/internal/auth"
	"github.com/ClementeCano/ReViews/internal/geo"
	"github.com/ClementeCano/ReViews/internal/session"
	"github.com/ClementeCano/ReViews/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const goodToken = "good-token"

// fakeReviewStore keeps reviews in memory and honors the repository
// contract: generated IDs, server-side created_at, newest-first listing,
// invalid-vs-missing identifier distinction.
type fakeReviewStore struct {
	mu      sync.Mutex
	reviews []store.Review
	clock   time.Time
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *fakeReviewStore) Create(_ context.Context, review *store.Review) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = s.clock.Add(time.Second)
	review.ID = primitive.NewObjectID()
	review.CreatedAt = s.clock
	if review.Images == nil {
		review.Images = []string{}
	}
	s.reviews = append(s.reviews, *review)
	return review.ID.Hex(), nil
}

func (s *fakeReviewStore) List(_ context.Context, limit, offset int) ([]store.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.Review, len(s.reviews))
	copy(out, s.reviews)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	if offset >= len(out) {
		return []store.Review{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeReviewStore) GetByID(_ context.Context, id string) (*store.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reviews {
		if s.reviews[i].ID == oid {
			review := s.reviews[i]
			return &review, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeReviewStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, rawToken string) (*auth.Claims, error) {
	if rawToken != goodToken {
		return nil, auth.ErrInvalidToken
	}
	now := time.Now().UTC()
	return &auth.Claims{
		Subject:   "google-sub-1",
		Email:     "ana@example.com",
		Name:      "Ana",
		Picture:   "https://example.com/ana.png",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}

type fakeGeocoder struct{}

func (fakeGeocoder) Geocode(_ context.Context, address string) (*geo.Point, error) {
	if address == "unknown address" {
		return nil, nil
	}
	return &geo.Point{Lat: 40.4168, Lon: -3.7038}, nil
}

type fakeUploader struct{}

func (fakeUploader) UploadAll(_ context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := []string{}
	for _, f := range files {
		if f == nil || f.Filename == "" || f.Size == 0 {
			continue
		}
		urls = append(urls, "https://media.example.com/reviews/"+f.Filename)
	}
	return urls, nil
}

// failingUploader simulates the media host rejecting a batch.
type failingUploader struct{}

func (failingUploader) UploadAll(context.Context, []*multipart.FileHeader) ([]string, error) {
	return nil, errors.New("media host unavailable")
}

func newTestApplication(t *testing.T) (*application, *fakeReviewStore) {
	t.Helper()

	templates, err := parseTemplates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	reviews := newFakeReviewStore()
	app := &application{
		config: config{
			addr:     ":0",
			env:      "test",
			clientID: "client-123.apps.googleusercontent.com",
		},
		store:     store.Storage{Reviews: reviews},
		logger:    zap.NewNop().Sugar(),
		sessions:  session.NewManager([]byte("0123456789abcdef0123456789abcdef"), false),
		verifier:  fakeVerifier{},
		geocoder:  fakeGeocoder{},
		uploader:  fakeUploader{},
		templates: templates,
	}
	return app, reviews
}

func execute(app *application, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)
	return rr
}

// login runs the real login flow and returns the session cookie.
func login(t *testing.T, app *application) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"token": goodToken})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := execute(app, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rr.Code)
	}

	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("login set no session cookie")
	return nil
}

// reviewForm builds a multipart form for POST /reviews with no files.
func reviewForm(t *testing.T, name, address, rating string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for field, value := range map[string]string{
		"name":    name,
		"address": address,
		"rating":  rating,
	} {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("write field %s: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return buf, mw.FormDataContentType()
}

// reviewFormWithImage builds a multipart form carrying one image file.
func reviewFormWithImage(t *testing.T, name, address, rating, filename string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for field, value := range map[string]string{
		"name":    name,
		"address": address,
		"rating":  rating,
	} {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("write field %s: %v", field, err)
		}
	}
	fw, err := mw.CreateFormFile("images", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("fake image bytes")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func postReview(t *testing.T, app *application, cookie *http.Cookie, name, address, rating string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := reviewForm(t, name, address, rating)
	req := httptest.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return execute(app, req)
}
