package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
)

// Routes is implemented by every handler group.
type Routes interface {
	Register(r chi.Router, g *auth.Gate)
}

type Deps struct {
	Log         zerolog.Logger
	Gate        *auth.Gate
	CORSOrigins []string
	Timeout     time.Duration
	Handlers    []Routes
}

func NewRouter(d Deps) *chi.Mux {
	if d.Timeout <= 0 {
		d.Timeout = 15 * time.Second
	}
	if d.Gate.Deny == nil {
		d.Gate.Deny = writeError
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(hlog.NewHandler(d.Log), requestLogger, accessLog)
	if origins := credentialedOrigins(d.Log, d.CORSOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}
	r.Use(middleware.Timeout(d.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	for _, h := range d.Handlers {
		h.Register(r, d.Gate)
	}
	return r
}

// credentialedOrigins drops wildcards: the session cookie must never be
// readable from an arbitrary origin. No origins means same-origin only.
func credentialedOrigins(log zerolog.Logger, in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		if strings.Contains(o, "*") {
			log.Warn().Str("origin", o).Msg("wildcard CORS origin ignored")
			continue
		}
		out = append(out, o)
	}
	return out
}

// requestLogger tags the request logger with chi's request id and carries
// the id into emitted events as the trace id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		l := hlog.FromRequest(r).With().Str("req_id", id).Logger()
		ctx := l.WithContext(r.Context())
		ctx = orders.WithTraceID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})
