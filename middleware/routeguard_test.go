package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newGuardedServer(t *testing.T) http.Handler {
	t.Helper()
	guard := NewRouteGuard([]string{"es", "en"})
	return guard.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Path", r.URL.Path)
		w.Header().Set("X-Locale", GetLocaleFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouteGuard_ProtectedWithoutAuthRedirectsToLogin(t *testing.T) {
	w := get(newGuardedServer(t), "/dashboard")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	if loc.Path != "/es/login" {
		t.Fatalf("expected /es/login, got %s", loc.Path)
	}
	if from := loc.Query().Get("from"); from != "/dashboard" {
		t.Fatalf("expected from=/dashboard, got %q", from)
	}
}

func TestRouteGuard_ProtectedWithSessionCookiePassesThrough(t *testing.T) {
	w := get(newGuardedServer(t), "/en/predictions",
		&http.Cookie{Name: SessionCookieName, Value: "some.jwt.token"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (location %s)", w.Code, w.Header().Get("Location"))
	}
	if got := w.Header().Get("X-Path"); got != "/predictions" {
		t.Fatalf("locale prefix not stripped: %s", got)
	}
	if got := w.Header().Get("X-Locale"); got != "en" {
		t.Fatalf("expected locale en, got %s", got)
	}
}

func TestRouteGuard_AuthOnlyWhileAuthenticatedRedirectsToDashboard(t *testing.T) {
	w := get(newGuardedServer(t), "/en/login",
		&http.Cookie{Name: SessionCookieName, Value: "some.jwt.token"})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/en/dashboard" {
		t.Fatalf("expected /en/dashboard, got %s", loc)
	}
}

func TestRouteGuard_FallbackStateCookieAuthenticates(t *testing.T) {
	state := url.QueryEscape(`{"state":{"userId":42,"accessToken":"tok"}}`)
	w := get(newGuardedServer(t), "/leaderboard",
		&http.Cookie{Name: StateCookieName, Value: state})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (location %s)", w.Code, w.Header().Get("Location"))
	}
}

func TestRouteGuard_MalformedStateCookieIsUnauthenticated(t *testing.T) {
	for _, value := range []string{
		"not-json",
		url.QueryEscape(`{"state":{}}`),
		url.QueryEscape(`{"state":{"userId":null,"accessToken":"tok"}}`),
		url.QueryEscape(`{"state":{"userId":42,"accessToken":""}}`),
	} {
		w := get(newGuardedServer(t), "/teams",
			&http.Cookie{Name: StateCookieName, Value: value})
		if w.Code != http.StatusFound {
			t.Fatalf("cookie %q: expected redirect, got %d", value, w.Code)
		}
	}
}

func TestRouteGuard_SessionCookieWinsOverState(t *testing.T) {
	auth := ResolveAuthentication(httptest.NewRequest(http.MethodGet, "/", nil))
	if auth.Authenticated {
		t.Fatal("empty request must not authenticate")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "jwt"})
	req.AddCookie(&http.Cookie{Name: StateCookieName, Value: url.QueryEscape(`{"state":{"userId":"7","accessToken":"tok"}}`)})
	auth = ResolveAuthentication(req)
	if !auth.Authenticated || auth.Source != SessionCookieName {
		t.Fatalf("session cookie should decide first, got %+v", auth)
	}
}

func TestRouteGuard_StateCookieStringUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: StateCookieName, Value: url.QueryEscape(`{"state":{"userId":"7","accessToken":"tok"}}`)})
	auth := ResolveAuthentication(req)
	if !auth.Authenticated || auth.UserID != "7" {
		t.Fatalf("expected authenticated with user 7, got %+v", auth)
	}
}

func TestRouteGuard_NeutralPathPassesThroughUnauthenticated(t *testing.T) {
	w := get(newGuardedServer(t), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouteGuard_LocaleFromAcceptLanguage(t *testing.T) {
	h := newGuardedServer(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc == nil || loc.Path != "/en/login" {
		t.Fatalf("expected /en/login, got %v", w.Header().Get("Location"))
	}
}

func TestRouteGuard_PrefixMatchesWholeSegmentsOnly(t *testing.T) {
	// /teamsheet is not under /teams.
	w := get(newGuardedServer(t), "/teamsheet")
	if w.Code != http.StatusOK {
		t.Fatalf("expected pass-through for /teamsheet, got %d", w.Code)
	}
}
