package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"querygguf/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModes() types.ModesResponse
	Mode(position int) (types.ModeView, error)
	Command(position int) (types.CommandResponse, error)
}

// NewMux returns the read-only API router.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/modes", func(w http.ResponseWriter, r *http.Request) {
		resp := svc.ListModes()
		observeModes(len(resp.Modes))
		writeJSON(w, resp)
	})

	r.Get("/modes/{n}", func(w http.ResponseWriter, r *http.Request) {
		n, err := positionParam(r)
		if err == nil {
			var v types.ModeView
			if v, err = svc.Mode(n); err == nil {
				writeJSON(w, v)
				return
			}
		}
		writeJSONError(w, statusFor(err), err.Error())
	})

	r.Get("/modes/{n}/command", func(w http.ResponseWriter, r *http.Request) {
		n, err := positionParam(r)
		if err == nil {
			var c types.CommandResponse
			if c, err = svc.Command(n); err == nil {
				writeJSON(w, c)
				return
			}
		}
		writeJSONError(w, statusFor(err), err.Error())
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func positionParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "n")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequestError{msg: "invalid mode number: " + raw}
	}
	return n, nil
}
