package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const (
	// SessionCookieName is the HTTP-only cookie set on login. The guard
	// only checks presence; the token itself is verified on API routes.
	SessionCookieName = "accessToken"

	// StateCookieName is the client-readable fallback written by the
	// front-end store. It carries a JSON blob with state.userId and
	// state.accessToken.
	StateCookieName = "porraza-auth-state"

	localeCookieName = "porraza-locale"
)

// protectedPrefixes require authentication.
var protectedPrefixes = []string{
	"/dashboard",
	"/projects",
	"/analytics",
	"/settings",
	"/predictions",
	"/schedule",
	"/stadiums",
	"/teams",
	"/leagues",
	"/leaderboard",
	"/rules",
}

// authOnlyPrefixes are only reachable while logged out.
var authOnlyPrefixes = []string{
	"/login",
	"/signup",
}

// Authentication is the outcome of resolving the request's cookies.
type Authentication struct {
	Authenticated bool
	UserID        string
	Source        string
}

// authStrategy inspects the request and reports whether it could decide.
// Strategies run in order; the first decisive one wins.
type authStrategy func(r *http.Request) (Authentication, bool)

var authStrategies = []authStrategy{
	sessionCookieStrategy,
	stateCookieStrategy,
}

// ResolveAuthentication runs the cookie strategies in order: the
// HTTP-only session cookie first, then the client-readable state cookie.
// A malformed state cookie counts as unauthenticated, never as an error.
func ResolveAuthentication(r *http.Request) Authentication {
	for _, strategy := range authStrategies {
		if auth, ok := strategy(r); ok {
			return auth
		}
	}
	return Authentication{}
}

func sessionCookieStrategy(r *http.Request) (Authentication, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return Authentication{}, false
	}
	return Authentication{Authenticated: true, Source: SessionCookieName}, true
}

type stateCookiePayload struct {
	State struct {
		UserID      json.RawMessage `json:"userId"`
		AccessToken string          `json:"accessToken"`
	} `json:"state"`
}

func stateCookieStrategy(r *http.Request) (Authentication, bool) {
	c, err := r.Cookie(StateCookieName)
	if err != nil || c.Value == "" {
		return Authentication{}, false
	}

	raw := c.Value
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}

	var payload stateCookiePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Authentication{}, false
	}

	userID := strings.Trim(string(payload.State.UserID), `"`)
	if userID == "" || userID == "null" || payload.State.AccessToken == "" {
		return Authentication{}, false
	}

	return Authentication{Authenticated: true, UserID: userID, Source: StateCookieName}, true
}

// RouteGuard gates the page routes: it resolves the locale, classifies
// the locale-stripped path and redirects based on authentication state.
type RouteGuard struct {
	locales       []string
	defaultLocale string
}

// NewRouteGuard builds a guard for the given locales; the first entry is
// the default.
func NewRouteGuard(locales []string) *RouteGuard {
	if len(locales) == 0 {
		locales = []string{"es"}
	}
	return &RouteGuard{locales: locales, defaultLocale: locales[0]}
}

func (g *RouteGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale, path := g.resolveLocale(r)
		auth := ResolveAuthentication(r)

		switch {
		case hasAnyPrefix(path, protectedPrefixes) && !auth.Authenticated:
			target := "/" + locale + "/login?" + url.Values{"from": {path}}.Encode()
			http.Redirect(w, r, target, http.StatusFound)
			return
		case hasAnyPrefix(path, authOnlyPrefixes) && auth.Authenticated:
			http.Redirect(w, r, "/"+locale+"/dashboard", http.StatusFound)
			return
		}

		// Pass through with the locale normalized out of the path.
		ctx := context.WithValue(r.Context(), localeContextKey, locale)
		r2 := r.Clone(ctx)
		r2.URL.Path = path
		next.ServeHTTP(w, r2)
	})
}

// resolveLocale picks the active locale (path prefix, then the locale
// cookie, then Accept-Language, then the default) and returns it along
// with the locale-stripped path.
func (g *RouteGuard) resolveLocale(r *http.Request) (string, string) {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	for _, locale := range g.locales {
		prefix := "/" + locale
		if path == prefix {
			return locale, "/"
		}
		if strings.HasPrefix(path, prefix+"/") {
			return locale, strings.TrimPrefix(path, prefix)
		}
	}

	if c, err := r.Cookie(localeCookieName); err == nil && g.supported(c.Value) {
		return c.Value, path
	}

	if locale := g.matchAcceptLanguage(r.Header.Get("Accept-Language")); locale != "" {
		return locale, path
	}

	return g.defaultLocale, path
}

func (g *RouteGuard) supported(locale string) bool {
	for _, l := range g.locales {
		if l == locale {
			return true
		}
	}
	return false
}

func (g *RouteGuard) matchAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if g.supported(base) {
			return base
		}
	}
	return ""
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
