package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "petclinic/docs"
	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/middleware"
	"petclinic/internal/platform/logger"
	"petclinic/internal/ports/auth"
)

type Options struct {
	Services *clinic.Services
	Users    *users.Service

	// Con SecurityEnable=false no se exige autenticación (modo dev).
	SecurityEnable bool

	Logger logger.Logger

	// Opcional: si viene, se expone en /metrics.
	Metrics prometheus.Gatherer
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)

	var authn auth.Authenticator
	if opts.SecurityEnable && opts.Users != nil {
		authn = opts.Users
	}
	r.Use(middleware.AuthContext(authn))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(api chi.Router) {
		clinic.RegisterRoutes(api, opts.Services)
		users.RegisterRoutes(api, opts.Users)
	})

	return r
}
