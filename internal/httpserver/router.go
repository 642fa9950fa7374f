package httpserver

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"rnm-aggregator/api/dto"
	"rnm-aggregator/internal/manager"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ответы короче gzipThreshold байт отдаются без сжатия.
const (
	gzipThreshold         = 500
	baseAPIPath           = "/api"
	charactersPath        = baseAPIPath + "/characters"
	locationsPath         = baseAPIPath + "/locations"
	episodesPath          = baseAPIPath + "/episodes"
	dimensionPath         = baseAPIPath + "/dimension/{name}"
	locationPath          = baseAPIPath + "/location/{name}"
	episodePath           = baseAPIPath + "/episode/{idOrName}"
	characterPath         = baseAPIPath + "/character/{id}"
	metricsPath           = "/metrics"
	metricsHealthPath     = "/health"
	contentTypeJSON       = "application/json"
	headerContentEncoding = "Content-Encoding"
	headerAcceptEncoding  = "Accept-Encoding"
	headerVary            = "Vary"
	encodingGzip          = "gzip"
)

// NewRouter возвращает http.Handler с зарегистрированными эндпоинтами.
func NewRouter(m manager.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(MetricsMiddleware)
	r.Use(compressGzip(gzipThreshold))

	r.Method(http.MethodGet, metricsPath, promhttp.Handler())

	r.Get(charactersPath, func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}
		writeJSON(w, m.ListCharacters(r.Context(), page))
	})
	r.Get(locationsPath, func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}
		writeJSON(w, m.ListLocations(r.Context(), page))
	})
	r.Get(episodesPath, func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}
		writeJSON(w, m.ListEpisodes(r.Context(), page))
	})

	r.Get(dimensionPath, func(w http.ResponseWriter, r *http.Request) {
		name, ok := pathParam(w, r, "name")
		if !ok {
			return
		}
		writeJSON(w, dto.DimensionCharacters{
			Dimension:  name,
			Characters: m.CharactersByDimension(r.Context(), name),
		})
	})
	r.Get(locationPath, func(w http.ResponseWriter, r *http.Request) {
		name, ok := pathParam(w, r, "name")
		if !ok {
			return
		}
		writeJSON(w, m.CharactersByLocation(r.Context(), name))
	})
	r.Get(episodePath, func(w http.ResponseWriter, r *http.Request) {
		idOrName, ok := pathParam(w, r, "idOrName")
		if !ok {
			return
		}
		writeJSON(w, m.CharactersByEpisode(r.Context(), idOrName))
	})
	r.Get(characterPath, func(w http.ResponseWriter, r *http.Request) {
		raw, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "character id must be an integer", http.StatusBadRequest)
			return
		}
		writeJSON(w, m.CharacterDetail(r.Context(), id))
	})

	return r
}

// NewMetricRouter - отдельный роутер для порта метрик.
func NewMetricRouter() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, metricsPath, promhttp.Handler())
	r.Get(metricsHealthPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "UP"})
	})
	return r
}

// pathParam достаёт параметр маршрута. Если у запроса есть RawPath, chi матчит
// по нему и значение приходит в percent-encoding (например "Earth%20(C-137)").
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, true
	}
	v, err := url.PathUnescape(v)
	if err != nil {
		http.Error(w, "invalid "+key, http.StatusBadRequest)
		return "", false
	}
	return v, true
}

// parsePage: отсутствующий page - первая страница, нечисловой - 400.
func parsePage(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "page must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return page, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw(alert.Prefix("encode error"), "error", err)
	}
}

// ---- middleware ----

type bufferResponseWriter struct {
	http.ResponseWriter
	code int
	buf  strings.Builder
	once sync.Once
}

func (b *bufferResponseWriter) WriteHeader(statusCode int) {
	b.once.Do(func() { b.code = statusCode })
}

func (b *bufferResponseWriter) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func compressGzip(threshold int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == metricsPath || !strings.Contains(r.Header.Get(headerAcceptEncoding), encodingGzip) {
				next.ServeHTTP(w, r)
				return
			}
			brw := &bufferResponseWriter{ResponseWriter: w}
			next.ServeHTTP(brw, r)

			if brw.code == 0 {
				brw.code = http.StatusOK
			}

			data := brw.buf.String()
			if len(data) < threshold {
				w.WriteHeader(brw.code)
				io.WriteString(w, data)
				return
			}

			w.Header().Set(headerContentEncoding, encodingGzip)
			w.Header().Set(headerVary, headerAcceptEncoding)
			w.Header().Del("Content-Length")
			w.WriteHeader(brw.code)
			gz := gzip.NewWriter(w)
			if _, err := gz.Write([]byte(data)); err != nil {
				zap.S().Errorw(alert.Prefix("gzip write error"), "error", err)
			}
			gz.Close()
		})
	}
}
