package e2e

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/health", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	result := parseJSON(t, resp)
	if result["status"] != "ok" {
		t.Errorf("expected status ok, got %v", result["status"])
	}
	if result["provider"] != "mock" {
		t.Errorf("expected mock provider fallback, got %v", result["provider"])
	}
}

func TestCatalog(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/catalog", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	genres, _ := result["genres"].([]interface{})
	moods, _ := result["moods"].([]interface{})
	if len(genres) != 10 {
		t.Errorf("expected 10 genres, got %d", len(genres))
	}
	if len(moods) != 9 {
		t.Errorf("expected 9 moods, got %d", len(moods))
	}

	first, _ := genres[0].(map[string]interface{})
	if first["value"] != "Cinematic" || first["icon"] != "music-2" {
		t.Errorf("unexpected first genre: %v", first)
	}
}
