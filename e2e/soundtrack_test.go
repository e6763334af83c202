package e2e

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestSoundtrackGenerate_Success(t *testing.T) {
	ta := setupApp(t)

	body := `{"genre": "Cinematic", "mood": "Epic", "lengthMinutes": 2}`

	resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", body, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	desc, ok := result["description"].(string)
	if !ok || desc == "" {
		t.Fatal("expected non-empty 'description'")
	}
	for _, want := range []string{"Cinematic", "epic", "2 minutes"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description %q does not contain %q", desc, want)
		}
	}
	if _, ok := result["audioDataUri"]; ok {
		t.Error("mock provider should not return audio")
	}
}

func TestSoundtrackGenerate_DefaultLength(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", `{"genre": "Jazz", "mood": "Calm"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if desc, _ := result["description"].(string); !strings.Contains(desc, "1 minutes") {
		t.Errorf("expected default length of 1 minute, got %q", desc)
	}
}

func TestSoundtrackGenerate_ValidationErrors(t *testing.T) {
	ta := setupApp(t)

	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"length too long", `{"genre": "Jazz", "mood": "Calm", "lengthMinutes": 4}`, "lengthMinutes", "Track length must be between 1 and 3 minutes."},
		{"length zero", `{"genre": "Jazz", "mood": "Calm", "lengthMinutes": 0}`, "lengthMinutes", "Track length must be between 1 and 3 minutes."},
		{"missing genre", `{"mood": "Calm"}`, "genre", "Please select a genre."},
		{"empty mood", `{"genre": "Jazz", "mood": ""}`, "mood", "Please select a mood."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", tt.body, nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}

			assertStatus(t, resp, http.StatusBadRequest)

			errObj := errorBody(t, resp)
			if errObj["code"] != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %v", errObj["code"])
			}
			details, _ := errObj["details"].(map[string]interface{})
			if details[tt.field] != tt.msg {
				t.Errorf("expected %s message %q, got %v", tt.field, tt.msg, details[tt.field])
			}
		})
	}
}

func TestSoundtrackGenerate_InvalidBody(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", `{not json`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestSoundtrackGenerate_MissingDescriptionIsAIError(t *testing.T) {
	ta := setupAppWithProvider(t, &stubProvider{output: `{"audioDataUri": "data:audio/wav;base64,UklGRg=="}`})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", `{"genre": "Jazz", "mood": "Calm"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadGateway)

	errObj := errorBody(t, resp)
	if errObj["code"] != "AI_ERROR" {
		t.Errorf("expected AI_ERROR, got %v", errObj["code"])
	}
	if msg, _ := errObj["message"].(string); !strings.Contains(msg, `"description"`) {
		t.Errorf("expected message to name the missing field, got %q", msg)
	}
}

func TestSoundtrackGenerate_ProviderFailure(t *testing.T) {
	ta := setupAppWithProvider(t, &stubProvider{err: errors.New("upstream timeout")})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", `{"genre": "Jazz", "mood": "Calm"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadGateway)
}

func TestSoundtrackGenerate_WithAudio(t *testing.T) {
	ta := setupAppWithProvider(t, &stubProvider{output: `{"description": "Pads", "audioDataUri": "data:audio/wav;base64,UklGRg=="}`})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/soundtrack/generate", `{"genre": "Ambient", "mood": "Calm", "lengthMinutes": 3}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["audioDataUri"] != "data:audio/wav;base64,UklGRg==" {
		t.Errorf("unexpected audioDataUri: %v", result["audioDataUri"])
	}
}
