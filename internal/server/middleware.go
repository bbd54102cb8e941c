package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/netutil/httputil"
	"github.com/MrEthical07/fittrack"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HdrRequestID is the header carrying the request id.
const HdrRequestID = "X-Request-Id"

// maxRequestIDLen bounds client-supplied request ids.
const maxRequestIDLen = 64

// withMiddlewares wraps h so that the last middleware runs first.
func withMiddlewares(h http.Handler, mws ...httputil.Middleware) (wrapped http.Handler) {
	wrapped = h
	for _, mw := range mws {
		wrapped = mw.Wrap(wrapped)
	}

	return wrapped
}

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned to the request.
func RequestIDFromContext(ctx context.Context) (id string, ok bool) {
	id, ok = ctx.Value(requestIDKey{}).(string)

	return id, ok
}

// requestInfoMiddleware assigns a request id and passes the client address
// and user agent to the engine for audit records.
type requestInfoMiddleware struct{}

// type check
var _ httputil.Middleware = requestInfoMiddleware{}

// Wrap implements the [httputil.Middleware] interface for
// requestInfoMiddleware.
func (requestInfoMiddleware) Wrap(h http.Handler) (wrapped http.Handler) {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HdrRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HdrRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = fittrack.WithClientIP(ctx, remoteIP(r))
		ctx = fittrack.WithUserAgent(ctx, r.Header.Get(httphdr.UserAgent))

		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func remoteIP(r *http.Request) (ip string) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// recoverMiddleware turns handler panics into logged 500 responses.
type recoverMiddleware struct {
	logger *slog.Logger
}

// type check
var _ httputil.Middleware = (*recoverMiddleware)(nil)

// Wrap implements the [httputil.Middleware] interface for *recoverMiddleware.
func (mw *recoverMiddleware) Wrap(h http.Handler) (wrapped http.Handler) {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if v := recover(); v != nil {
				slogutil.PrintRecovered(r.Context(), mw.logger, v)
				if !rec.wroteHeader {
					writeInternal(w)
				}
			}
		}()

		h.ServeHTTP(rec, r)
	})
}

// httpMetrics counts requests by route pattern and status code.
type httpMetrics struct {
	mux      *http.ServeMux
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// type check
var _ httputil.Middleware = (*httpMetrics)(nil)

func newHTTPMetrics(reg prometheus.Registerer, mux *http.ServeMux) (m *httpMetrics) {
	f := promauto.With(reg)

	return &httpMetrics{
		mux: mux,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fittrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Counter of HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fittrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by route.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"route"}),
	}
}

// Wrap implements the [httputil.Middleware] interface for *httpMetrics.
func (m *httpMetrics) Wrap(h http.Handler) (wrapped http.Handler) {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, route := m.mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		h.ServeHTTP(rec, r)

		m.requests.WithLabelValues(route, strconv.Itoa(rec.status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter

	code        int
	wroteHeader bool
}

// WriteHeader implements the [http.ResponseWriter] interface for
// *statusRecorder.
func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.code = code
		rec.wroteHeader = true
	}

	rec.ResponseWriter.WriteHeader(code)
}

// Write implements the [http.ResponseWriter] interface for *statusRecorder.
func (rec *statusRecorder) Write(b []byte) (n int, err error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}

	return rec.ResponseWriter.Write(b)
}

// Unwrap lets [http.ResponseController] reach the underlying writer.
func (rec *statusRecorder) Unwrap() (rw http.ResponseWriter) {
	return rec.ResponseWriter
}

func (rec *statusRecorder) status() (code int) {
	if !rec.wroteHeader {
		return http.StatusOK
	}

	return rec.code
}
