package githubapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-github/v68/github"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	gh := github.NewClient(ts.Client())
	base, err := gh.BaseURL.Parse(ts.URL + "/")
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}
	gh.BaseURL = base

	return &Client{gh: gh}
}

func TestCommitsForDate(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello-world/commits" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("since") == "" || q.Get("until") == "" {
			t.Errorf("missing since/until, got query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"sha":"a1"},{"sha":"b2"},{"sha":"c3"}]`))
	})

	day := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	got, err := c.CommitsForDate(context.Background(), "octocat/hello-world", day)
	if err != nil {
		t.Fatalf("CommitsForDate: %v", err)
	}
	if got != 3 {
		t.Errorf("got %d commits, want 3", got)
	}
}

func TestCommitsForDateAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.CommitsForDate(context.Background(), "octocat/hello-world", time.Now())
	if err == nil {
		t.Fatal("expected error on non-OK response, got nil")
	}
}

func TestCommitsForDateBadRepo(t *testing.T) {
	c := NewClient()
	if _, err := c.CommitsForDate(context.Background(), "no-owner", time.Now()); err == nil {
		t.Fatal("expected error for repository without owner, got nil")
	}
}
