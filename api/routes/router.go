package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/characters-analyzer/backend/api/controllers"
	"github.com/characters-analyzer/backend/api/middleware"
	"github.com/characters-analyzer/backend/internal/artifacts"
	"github.com/characters-analyzer/backend/internal/auth"
	"github.com/characters-analyzer/backend/internal/characters"
	"github.com/characters-analyzer/backend/pkg/config"
	"github.com/characters-analyzer/backend/pkg/db"
	"github.com/characters-analyzer/backend/pkg/logger"
	"github.com/characters-analyzer/backend/pkg/metrics"
	"github.com/characters-analyzer/backend/pkg/redis"
)

// Dependencies are the collaborators the HTTP layer is built from.
// Redis is optional; without it auth rate limiting is disabled.
type Dependencies struct {
	Config            *config.Config
	Logger            *logger.Logger
	DB                db.Pinger
	Redis             *redis.Client
	Metrics           *metrics.HTTPMetrics
	Gatherer          prometheus.Gatherer
	AuthService       auth.Service
	CharactersService characters.Service
	ArtifactsService  artifacts.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins()),
	)

	signInPolicy := middleware.NewAuthRateLimitPolicy(
		"sign_in",
		cfg.AuthRateLimit.SignInWindow,
		cfg.AuthRateLimit.SignInIPLimit,
		cfg.AuthRateLimit.SignInUsernameLimit,
	)
	signUpPolicy := middleware.NewAuthRateLimitPolicy(
		"sign_up",
		cfg.AuthRateLimit.SignUpWindow,
		cfg.AuthRateLimit.SignUpIPLimit,
		cfg.AuthRateLimit.SignUpUsernameLimit,
	)
	signInLimit := middleware.AuthRateLimit(signInPolicy, nil, logg)
	signUpLimit := middleware.AuthRateLimit(signUpPolicy, nil, logg)
	readiness := map[string]controllers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		signInLimit = middleware.AuthRateLimit(signInPolicy, deps.Redis, logg)
		signUpLimit = middleware.AuthRateLimit(signUpPolicy, deps.Redis, logg)
		readiness["redis"] = deps.Redis
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/", controllers.RootInfo(cfg))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(readiness, logg))
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(signUpLimit).Post("/sign_up", controllers.AuthSignUp(deps.AuthService, deps.Metrics, logg))
		r.With(signInLimit).Post("/sign_in", controllers.AuthSignIn(deps.AuthService, deps.Metrics, logg))
		r.Get("/refresh", controllers.AuthRefresh(deps.AuthService, deps.Metrics, logg))
		r.With(middleware.Auth(deps.AuthService, logg)).Post("/sign_out", controllers.AuthSignOut(deps.AuthService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService, logg))

		r.Get("/users/me", controllers.UsersMe(logg))

		r.Route("/characters", func(r chi.Router) {
			r.Get("/get", controllers.CharactersList(deps.CharactersService, logg))
			r.Get("/catalog", controllers.CharactersCatalog(deps.CharactersService, logg))
			r.Post("/append", controllers.CharactersAppend(deps.CharactersService, logg))
			r.Put("/put/{id}", controllers.CharactersUpdate(deps.CharactersService, logg))
			r.Delete("/delete/{id}", controllers.CharactersDelete(deps.CharactersService, logg))
		})

		r.Route("/artifacts", func(r chi.Router) {
			r.Post("/append", controllers.ArtifactsAppend(deps.ArtifactsService, logg))
			r.Get("/get", controllers.ArtifactsList(deps.ArtifactsService, logg))
		})
	})

	return r
}
