package engine

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/harmock/pkg/httputil"
	"github.com/getmockd/harmock/pkg/logging"
	"github.com/getmockd/harmock/pkg/metrics"
	"github.com/getmockd/harmock/pkg/mock"
)

// RequestIDHeader carries the identifier assigned to every handled request.
const RequestIDHeader = "X-Request-Id"

// Handler answers live requests for one authority from its exemplar set.
// The set is read-only, so a Handler is safe for concurrent use.
type Handler struct {
	set            *mock.ExemplarSet
	authority      string
	preserveStatus bool
	log            *slog.Logger
	metrics        *metrics.MockMetrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the operational logger.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithPreserveStatus serves the recorded status code instead of 200.
func WithPreserveStatus(preserve bool) HandlerOption {
	return func(h *Handler) {
		h.preserveStatus = preserve
	}
}

// WithHandlerMetrics records request outcomes.
func WithHandlerMetrics(m *metrics.MockMetrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a Handler for set.
func NewHandler(set *mock.ExemplarSet, opts ...HandlerOption) *Handler {
	h := &Handler{
		set: set,
		log: logging.Nop(),
	}
	if set != nil {
		h.authority = set.Authority
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP matches the request against the exemplars and replays the first
// match with the live values substituted in.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.NewString()
	w.Header().Set(RequestIDHeader, reqID)
	log := h.log.With("request_id", reqID, "method", r.Method, "path", r.URL.Path)

	outcome := metrics.OutcomeFault
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error("panic while handling request", "panic", rec)
			httputil.WriteInternalError(w, fmt.Sprint(rec))
		}
		h.metrics.Observe(h.authority, r.Method, outcome, time.Since(start))
	}()

	outcome = h.handle(w, r, log)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, log *slog.Logger) string {
	if !methodAllowed(r.Method) {
		httputil.WriteMethodNotAllowed(w, allowHeader)
		log.Debug("method not allowed")
		return metrics.OutcomeMethodNotAllowed
	}

	fields, err := actualFields(r)
	if err != nil {
		log.Warn("failed to read request fields", "error", err)
		httputil.WriteInternalError(w, err.Error())
		return metrics.OutcomeFault
	}

	exemplar, ok := h.set.Lookup(fields, requestHeaders(r))
	if !ok {
		log.Debug("no matching exemplar", "fields", len(fields))
		httputil.WriteNoMatch(w)
		return metrics.OutcomeNoMatch
	}

	body, mimeType := exemplar.Render(fields)

	status := http.StatusOK
	if h.preserveStatus && exemplar.Response.Status >= 100 && exemplar.Response.Status <= 999 {
		status = exemplar.Response.Status
	}
	httputil.WriteBody(w, status, mimeType, body)
	log.Debug("served exemplar", "transaction", exemplar.Transaction, "status", status)
	return metrics.OutcomeMatched
}
