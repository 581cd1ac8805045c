package handler

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activities-signup/internal/service"
)

// NewRouter builds the chi router with the global middleware stack and every
// route the service exposes. static holds the browser client served under
// /static.
func NewRouter(svc *service.ActivityService, static fs.FS, log *zap.Logger) *chi.Mux {
	if log == nil {
		log = zap.NewNop()
	}
	h := NewActivityHandler(svc)

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(log))
	r.Use(CORS)
	r.Use(Metrics)

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
	})
	r.Get("/health", HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/openapi.json", OpenAPIJSON)
	r.Get("/openapi.yaml", OpenAPIYAML)
	r.Get("/docs", SwaggerUI)
	r.Get("/redoc", ReDoc)

	r.Get("/activities", h.ListActivities)
	r.Post("/activities/{activity_name}/signup", h.Signup)
	r.Delete("/activities/{activity_name}/participants/{email}", h.Unregister)

	if static != nil {
		r.Get("/static/*", StaticFiles(static))
	}

	return r
}

// StaticFiles serves files from fsys by the path below /static/. Directories
// and missing files answer with the JSON 404 body.
func StaticFiles(fsys fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
		if name == "" {
			name = "index.html"
		}

		f, err := fsys.Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				NotFound(w, r)
				return
			}
			writeError(w, http.StatusInternalServerError, detailInternal)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			NotFound(w, r)
			return
		}
		rs, ok := f.(io.ReadSeeker)
		if !ok {
			writeError(w, http.StatusInternalServerError, detailInternal)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), rs)
	}
}
