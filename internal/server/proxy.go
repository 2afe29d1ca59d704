package server

//
// The /api/proxy handler
//

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// MaxAcceptableBodySize is the maximum acceptable body size for incoming
// /api/proxy requests.
const MaxAcceptableBodySize = 1 << 24

// Executor executes a model.ProxyRequest. The proxy.Executor type
// implements this interface.
type Executor interface {
	Execute(ctx context.Context, req *model.ProxyRequest) *model.ProxyResponse
}

// ProxyHandler is an [http.Handler] executing the requests
// posted by the web UI and returning the annotated results.
type ProxyHandler struct {
	// Disabled OPTIONALLY disables request execution.
	Disabled bool

	// Executor is the MANDATORY executor.
	Executor Executor

	// MaxAcceptableBody is the MANDATORY maximum acceptable request body.
	MaxAcceptableBody int64
}

var _ http.Handler = &ProxyHandler{}

// ServeHTTP implements http.Handler.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// track the number of in-flight requests
	metricRequestsInflight.Inc()
	defer metricRequestsInflight.Dec()

	logger := requestLogger(req.Context())

	// we only handle the POST method
	if req.Method != http.MethodPost {
		metricRequestsCount.WithLabelValues("405", "").Inc()
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// short circuit when the proxy is disabled
	if h.Disabled {
		logger.Debug("proxy: execution is disabled")
		h.reply(w, http.StatusOK, model.NewErrorResponse(
			model.ErrCodeProxyDisabled, "Proxy requests are disabled on this server"))
		return
	}

	// read and parse request body
	reader := io.LimitReader(req.Body, h.MaxAcceptableBody+1)
	data, err := netxlite.ReadAllContext(req.Context(), reader)
	if err != nil {
		h.reply(w, http.StatusBadRequest, model.NewErrorResponse(
			model.ErrCodeBadRequest, fmt.Sprintf("Cannot read request body: %s", err.Error())))
		return
	}
	if int64(len(data)) > h.MaxAcceptableBody {
		h.reply(w, http.StatusBadRequest, model.NewErrorResponse(
			model.ErrCodeBadRequest, "Request body too large"))
		return
	}
	var preq model.ProxyRequest
	if err := json.Unmarshal(data, &preq); err != nil {
		h.reply(w, http.StatusBadRequest, model.NewErrorResponse(
			model.ErrCodeBadRequest, fmt.Sprintf("Cannot parse request body: %s", err.Error())))
		return
	}

	// execute the given request
	logger.Debugf("proxy: %s %s", preq.Method, preq.URL)
	started := time.Now()
	presp := h.Executor.Execute(req.Context(), &preq)
	elapsed := time.Since(started)

	// track the time required to produce a response
	metricExecuteDurationSeconds.Observe(elapsed.Seconds())

	if presp.Success {
		observePhases(&presp.Data.Timing)
		logger.Debugf("proxy: %s %s => %d", preq.Method, preq.URL, presp.Data.Status)
	} else {
		logger.Warnf("proxy: %s %s failed: %s: %s", preq.Method, preq.URL, presp.Error.Code, presp.Error.Message)
	}
	h.reply(w, http.StatusOK, presp)
}

// reply writes the given response using the given status code.
func (h *ProxyHandler) reply(w http.ResponseWriter, status int, presp *model.ProxyResponse) {
	code := "OK"
	if !presp.Success {
		code = presp.Error.Code
	}
	metricRequestsCount.WithLabelValues(strconv.Itoa(status), code).Inc()
	writeJSON(w, status, presp)
}
