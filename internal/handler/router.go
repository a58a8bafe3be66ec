package handler

import (
	"context"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request by the router, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Routes mounts the dlex site under root: the JSON endpoints, the "top" page
// and every other static file of staticDir.
func Routes(h *OrderHandler, root, staticDir string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if root != "/" {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, root+"/top", http.StatusFound)
		})
	}

	files := http.StripPrefix(root, http.FileServer(http.Dir(staticDir)))
	r.Route(root, func(r chi.Router) {
		r.HandleFunc("/"+EndpointGetOrder, h.GetOrder)
		r.HandleFunc("/"+EndpointAddOrder, h.AddOrder)
		r.HandleFunc("/"+EndpointOperation, h.Operation)
		r.HandleFunc("/"+EndpointDelete, h.DeleteOrders)
		r.Get("/top", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
		})
		r.Get("/*", files.ServeHTTP)
	})

	return r
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Printf("msg=http_request request_id=%s method=%s path=%s status=%d duration_ms=%d",
				RequestID(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start).Milliseconds())
		})
	}
}
