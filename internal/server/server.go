// Package server implements the wirescope HTTP API.
//
// The API consists of POST /api/proxy, which executes a request on
// behalf of the web UI, GET /api/health and the /api/storage routes
// exposing a key/value store. Every other path is served by the
// OPTIONAL static handler, which serves the web UI itself.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/wirescope/wirescope/internal/kvstore"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/runtimex"
	"github.com/wirescope/wirescope/internal/version"
	"golang.org/x/time/rate"
)

// Options contains the options for NewHandler.
type Options struct {
	// Executor is the MANDATORY request executor.
	Executor Executor

	// Logger is the MANDATORY base logger.
	Logger model.Logger

	// ProxyDisabled OPTIONALLY disables request execution.
	ProxyDisabled bool

	// RateLimitRPS is the OPTIONAL number of /api/proxy requests per
	// second allowed for each client. Zero disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the OPTIONAL token bucket size. Values lower
	// than one are treated as one.
	RateLimitBurst int

	// Static is the OPTIONAL handler for all the other paths.
	Static http.Handler

	// Store is the OPTIONAL key/value store. When nil, we do not
	// register the /api/storage routes.
	Store kvstore.Store
}

// healthResponse is the response of GET /api/health.
type healthResponse struct {
	Status       string `json:"status"`
	ProxyEnabled bool   `json:"proxyEnabled"`
}

// NewHandler creates the [http.Handler] serving the wirescope API.
func NewHandler(opts *Options) http.Handler {
	runtimex.PanicIfNil(opts.Executor, "opts.Executor is nil")
	runtimex.PanicIfNil(opts.Logger, "opts.Logger is nil")

	mux := http.NewServeMux()

	var proxy http.Handler = &ProxyHandler{
		Disabled:          opts.ProxyDisabled,
		Executor:          opts.Executor,
		MaxAcceptableBody: MaxAcceptableBodySize,
	}
	if opts.RateLimitRPS > 0 {
		proxy = NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), max(opts.RateLimitBurst, 1)).Wrap(proxy)
	}
	mux.Handle("/api/proxy", proxy)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, &healthResponse{
			Status:       "ok",
			ProxyEnabled: !opts.ProxyDisabled,
		})
	})

	if opts.Store != nil {
		(&StorageHandler{Store: opts.Store}).Register(mux)
	}

	if opts.Static != nil {
		mux.Handle("/", opts.Static)
	}

	return cors.AllowAll().Handler(withRequestLogger(opts.Logger, &atomic.Int64{}, mux))
}

type requestLoggerKey struct{}

// withRequestLogger assigns an ID to each request, returns it using the
// X-Request-Id header and adds a logger tagged with the ID to the context.
func withRequestLogger(base model.Logger, indexer *atomic.Int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.Must(uuid.NewRandom()).String()
		w.Header().Set("X-Request-Id", id)
		w.Header().Set("Server", fmt.Sprintf("wirescope/%s", version.Version))
		prefix := fmt.Sprintf("<#%d %s> ", indexer.Add(1), id[:8])
		logger := model.NewPrefixLogger(prefix, base)
		ctx := context.WithValue(req.Context(), requestLoggerKey{}, logger)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// requestLogger returns the logger bound to the context or model.DiscardLogger.
func requestLogger(ctx context.Context) model.Logger {
	logger, _ := ctx.Value(requestLoggerKey{}).(model.Logger)
	return model.ValidLoggerOrDefault(logger)
}

// writeJSON serializes v and writes it using the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	// Note: we assume that json.Marshal cannot fail because we only
	// serialize clearly-serializable data structures.
	data, err := json.Marshal(v)
	runtimex.PanicOnError(err, "json.Marshal failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
