package freepik

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/stockimport/internal/config"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/resources" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-freepik-api-key"); got != "fp-key" {
			t.Errorf("api key header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("term") != "red jersey" || q.Get("page") != "2" || q.Get("limit") != "60" || q.Get("order") != "relevance" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"title":"Red jersey","image":{"source":{"url":"https://img.freepik.com/a.jpg"}}},
			{"title":"No image"}
		],"meta":{"current_page":2}}`))
	}))
	defer srv.Close()

	c := NewClient(config.FreepikConfig{APIKey: "fp-key", BaseURL: srv.URL}, srv.Client(), zaptest.NewLogger(t))
	res, err := c.Search(context.Background(), "red jersey", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Images) != 2 {
		t.Fatalf("got %d images", len(res.Images))
	}
	if res.Images[0].SourceURL != "https://img.freepik.com/a.jpg" || res.Images[0].Title != "Red jersey" {
		t.Fatalf("first image = %+v", res.Images[0])
	}
	if res.Images[1].SourceURL != "" {
		t.Fatalf("missing source should stay empty, got %q", res.Images[1].SourceURL)
	}
	if string(res.Meta) != `{"current_page":2}` {
		t.Fatalf("meta = %s", res.Meta)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	c := NewClient(config.FreepikConfig{APIKey: "bad", BaseURL: srv.URL}, srv.Client(), nil)
	_, err := c.Search(context.Background(), "jersey", 1)
	var up *apperrors.ErrUpstream
	if !errors.As(err, &up) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if up.StatusCode != http.StatusUnauthorized || string(up.Body) != `{"message":"Invalid API key"}` {
		t.Fatalf("unexpected upstream error %+v", up)
	}
}
