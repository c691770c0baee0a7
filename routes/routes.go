package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/porraza/porraza-server/handlers"
	"github.com/porraza/porraza-server/middleware"
	"github.com/porraza/porraza-server/models"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Dashboard   *handlers.DashboardHandler
	Prediction  *handlers.PredictionHandler
	Bracket     *handlers.BracketHandler
	Match       *handlers.MatchHandler
	Leaderboard *handlers.LeaderboardHandler
	League      *handlers.LeagueHandler
	Team        *handlers.TeamHandler
	Stadium     *handlers.StadiumHandler
	WebSocket   *handlers.WebSocketHandler
	Pages       *handlers.PagesHandler
	Docs        *handlers.DocsHandler
}

// SetupRoutes mounts the API under /api, the websocket endpoint under
// /ws, the swagger UI under /swagger and every remaining path on the
// guarded page handler.
func SetupRoutes(router *chi.Mux, h Handlers, auth *middleware.Authenticator, guard *middleware.RouteGuard) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.Auth.Signup)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Get("/teams", h.Team.List)
		r.Get("/teams/{teamID}", h.Team.GetByID)
		r.Get("/stadiums", h.Stadium.List)
		r.Get("/stadiums/{stadiumID}", h.Stadium.GetByID)
		r.Get("/matches", h.Match.List)
		r.Get("/matches/{matchID}", h.Match.GetByID)
		r.Get("/leaderboard", h.Leaderboard.Global)

		// Routes below require a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/users/me", h.User.Me)
			r.Post("/users/me/avatar", h.User.UploadAvatar)
			r.Get("/dashboard", h.Dashboard.Summary)
			r.Get("/bracket", h.Bracket.GetView)
			r.Get("/predictions/{phase}", h.Prediction.ListByPhase)
			r.Put("/predictions/{phase}", h.Prediction.Save)

			r.Route("/leagues", func(r chi.Router) {
				r.Get("/", h.League.ListMine)
				r.Post("/", h.League.Create)
				r.Post("/join", h.League.Join)
				r.Get("/{leagueID}/leaderboard", h.League.Leaderboard)
			})

			// Tournament administration.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(string(models.RoleAdmin)))

				r.Post("/matches", h.Match.Create)
				r.Put("/matches/{matchID}/result", h.Match.RecordResult)
				r.Post("/teams", h.Team.Create)
				r.Post("/teams/{teamID}/crest", h.Team.UploadCrest)
				r.Post("/stadiums", h.Stadium.Create)
				r.Post("/stadiums/{stadiumID}/photo", h.Stadium.UploadPhoto)
			})
		})
	})

	router.Get("/ws/{room}", h.WebSocket.ServeWs)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	router.Get("/swagger/doc.json", h.Docs.OpenAPI)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Everything else is a page route: the guard resolves the locale,
	// applies the auth redirects and hands the request to the app shell.
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		guard.Handler(http.HandlerFunc(h.Pages.ServeApp)).ServeHTTP(w, r)
	})
}
