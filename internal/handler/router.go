package handler

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/storage"
)

const (
	maxRequestBytes = 1 << 20
	maxUploadBytes  = 1 << 30
)

// RouterOptions configures the local HTTP surface.
type RouterOptions struct {
	AllowedOrigins []string
	// Uploads receives PUTs to presigned local URLs. Nil disables the route.
	Uploads storage.ObjectStore
	Now     func() time.Time
}

// NewRouter exposes the entry points over HTTP for local runs.
func NewRouter(h Handler, opts RouterOptions, log logger.Logger) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, message(http.StatusOK, "ok"))
	})
	router.Post("/upload-url", serve(h.IssueUploadTarget))
	router.Post("/summary", serve(h.FetchResult))
	router.Post("/start", serve(h.StartProcessing))
	router.Post("/run", serve(h.RunPipeline))

	if opts.Uploads != nil {
		router.Put(storage.ObjectsRoute+"/{bucket}/*", uploadObject(opts.Uploads, opts.Now, log))
	}

	return router
}

func serve(fn Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			writeResponse(w, message(http.StatusBadRequest, "Invalid request body."))
			return
		}
		writeResponse(w, fn(r.Context(), body))
	}
}

// uploadObject accepts the body of a presigned local upload.
func uploadObject(store storage.ObjectStore, now func() time.Time, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bucket, err1 := url.PathUnescape(chi.URLParam(r, "bucket"))
		key, err2 := url.PathUnescape(chi.URLParam(r, "*"))
		if err1 != nil || err2 != nil || key == "" || storage.ValidKey(key) != nil {
			writeResponse(w, message(http.StatusBadRequest, "Invalid object path."))
			return
		}
		q := r.URL.Query()

		if storage.Expired(q.Get("expires"), now()) {
			writeResponse(w, message(http.StatusForbidden, "Upload URL expired."))
			return
		}
		contentType := q.Get("content_type")
		if ct := r.Header.Get("Content-Type"); contentType != "" && ct != "" && ct != contentType {
			writeResponse(w, message(http.StatusForbidden, "Content-Type does not match the signed upload."))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			writeResponse(w, message(http.StatusBadRequest, "Invalid request body."))
			return
		}

		if err := store.Put(r.Context(), bucket, key, body, contentType); err != nil {
			log.Error(r.Context(), "Failed to store upload %s/%s: %v", bucket, key, err)
			writeResponse(w, message(http.StatusInternalServerError, "Internal server error."))
			return
		}

		log.Info(r.Context(), "Stored upload %s/%s (%d bytes)", bucket, key, len(body))
		w.WriteHeader(http.StatusOK)
	}
}

func writeResponse(w http.ResponseWriter, r Response) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(r.StatusCode)
	io.WriteString(w, r.Body)
}
