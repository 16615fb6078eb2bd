package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNominatimClient_Geocode(t *testing.T) {
	t.Run("first_result_parsed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "1" {
				t.Errorf("limit = %q, want 1", got)
			}
			if got := r.URL.Query().Get("q"); got != "123 Main St" {
				t.Errorf("q = %q, want 123 Main St", got)
			}
			if got := r.Header.Get("User-Agent"); got != "ReViews/1.0" {
				t.Errorf("user-agent = %q", got)
			}
			w.Write([]byte(`[{"lat":"40.4168","lon":"-3.7038"}]`))
		}))
		defer srv.Close()

		point, err := NewNominatimClient(srv.URL).Geocode(context.Background(), "123 Main St")
		if err != nil {
			t.Fatalf("geocode: %v", err)
		}
		if point == nil {
			t.Fatal("expected a point")
		}
		if point.Lat != 40.4168 || point.Lon != -3.7038 {
			t.Errorf("point = %+v", point)
		}
	})

	t.Run("zero_results_is_absent_not_error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		point, err := NewNominatimClient(srv.URL).Geocode(context.Background(), "nowhere at all")
		if err != nil {
			t.Fatalf("geocode: %v", err)
		}
		if point != nil {
			t.Errorf("point = %+v, want nil", point)
		}
	})

	t.Run("non_200_propagates_as_error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		if _, err := NewNominatimClient(srv.URL).Geocode(context.Background(), "x"); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("malformed_coordinates_propagate_as_error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"lat":"not-a-number","lon":"0"}]`))
		}))
		defer srv.Close()

		if _, err := NewNominatimClient(srv.URL).Geocode(context.Background(), "x"); err == nil {
			t.Fatal("expected an error")
		}
	})
}
