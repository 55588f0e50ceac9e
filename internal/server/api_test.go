package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kapu/socialforge-go/internal/domain"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAPIGetProfile(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var p domain.Profile
	decodeJSON(t, rec.Body, &p)
	if p != domain.DefaultProfile() {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestAPIPutProfileReplacesRecord(t *testing.T) {
	env := newTestEnv(t)
	body := `{"fullName":"Layla Haddad","bio":"","coverPhotoUrl":"a","profilePhotoUrl":"b",
		"location":"","workplace":"","education":"","friendsCount":5,"followersCount":7,
		"joinDate":"May 2020","isVerified":false,"language":"ar"}`

	rec := env.do(t, jsonRequest(http.MethodPut, "/api/profile", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	got := env.store.Get()
	if got.FullName != "Layla Haddad" || got.Language != domain.LanguageArabic || got.Location != "" {
		t.Fatalf("expected full replacement, got %+v", got)
	}
}

func TestAPIPutProfileRejectsThirdLanguage(t *testing.T) {
	env := newTestEnv(t)
	before := env.store.Get()

	rec := env.do(t, jsonRequest(http.MethodPut, "/api/profile", `{"fullName":"X","language":"fr"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Code != "VALIDATION_ERROR" || resp.Field != "language" {
		t.Fatalf("unexpected error body %+v", resp)
	}
	if env.store.Get() != before {
		t.Fatalf("record must not change")
	}
}

func TestAPIPutProfileRejectsBadJSON(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, jsonRequest(http.MethodPut, "/api/profile", `{`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAPIPostEdit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/profile/edits", `{"field":"followersCount","value":"12abc"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var p domain.Profile
	decodeJSON(t, rec.Body, &p)
	if p.FollowersCount != 12 {
		t.Fatalf("expected leading digits to be kept, got %d", p.FollowersCount)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/profile/edits", `{"field":"language","value":"toggle"}`))
	decodeJSON(t, rec.Body, &p)
	if p.Language != domain.LanguageArabic {
		t.Fatalf("expected toggle to ar, got %s", p.Language)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/profile/edits", `{"field":"nickname","value":"x"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestAPIBioDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	before := env.store.Get()

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/bio", `{"tone":"funny","name":"Layla"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp bioResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Tone != domain.ToneFunny || resp.Bio != fallbackBio {
		t.Fatalf("unexpected bio response %+v", resp)
	}
	if env.store.Get() != before {
		t.Fatalf("bio preview must not modify the record")
	}

	if rec := env.do(t, jsonRequest(http.MethodPost, "/api/bio", `{"tone":"angry"}`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tone, got %d", rec.Code)
	}
}

func TestAPIGenerateBioJob(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/profile/bio", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp bioJobResponse
	decodeJSON(t, rec.Body, &resp)
	if !resp.Applied || resp.Profile.Bio != fallbackBio || env.store.Get().Bio != fallbackBio {
		t.Fatalf("expected fallback bio to be applied, got %+v", resp)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	var state stateResponse
	decodeJSON(t, rec.Body, &state)
	if state.Busy || state.BioState != "idle" || state.Version != env.store.Version() {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestAPISuggestions(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/bio/suggestions", ""))

	var got []struct {
		Tone string `json:"tone"`
		Text string `json:"text"`
	}
	decodeJSON(t, rec.Body, &got)
	if len(got) != 3 || got[0].Tone != "professional" || got[2].Tone != "poetic" {
		t.Fatalf("unexpected suggestions %+v", got)
	}
}

func TestAPICORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/profile", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PUT")

	rec := env.do(t, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", got)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
