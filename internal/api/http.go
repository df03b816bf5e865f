package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/logging"
	"github.com/agbru/billcheck/internal/metrics"
)

// DefaultBaseURL is the backend location used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// Operation names used in errors, logs, spans and metrics.
const (
	OpHealth      = "health"
	OpUpload      = "upload"
	OpExtract     = "extract"
	OpSearch      = "search"
	OpGetHospital = "get_hospital"
	OpCompare     = "compare"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const maxErrorBody = 64 << 10

// Option configures the HTTP client.
type Option func(*httpClient)

// WithBaseURL sets the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request deadline. It applies to a copy, so a
// client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithRateLimit throttles outgoing requests to rps per second. Zero disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l logging.Logger) Option {
	return func(c *httpClient) {
		c.logger = l
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *httpClient) {
		c.metrics = r
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *httpClient) {
		c.tracer = t
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// NewClient creates a backend client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logging.Nop(),
		tracer: otel.Tracer("github.com/agbru/billcheck/internal/api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, OpHealth, http.MethodGet, "/health", nil, "", &out)
	return out, err
}

func (c *httpClient) Upload(ctx context.Context, name string, data []byte) (UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return UploadResponse{}, c.localError(OpUpload, eris.Wrap(err, "api: create multipart part"))
	}
	if _, err := part.Write(data); err != nil {
		return UploadResponse{}, c.localError(OpUpload, eris.Wrap(err, "api: write multipart body"))
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, c.localError(OpUpload, eris.Wrap(err, "api: close multipart writer"))
	}

	var out UploadResponse
	err = c.do(ctx, OpUpload, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType(), &out)
	return out, err
}

func (c *httpClient) Extract(ctx context.Context, fileID string) (ExtractResponse, error) {
	body, err := json.Marshal(ExtractRequest{FileID: fileID})
	if err != nil {
		return ExtractResponse{}, c.localError(OpExtract, eris.Wrap(err, "api: encode extract request"))
	}
	var out ExtractResponse
	err = c.do(ctx, OpExtract, http.MethodPost, "/api/extract", bytes.NewReader(body), "application/json", &out)
	return out, err
}

func (c *httpClient) SearchHospitals(ctx context.Context, query string) ([]billing.Facility, error) {
	path := "/api/hospitals"
	if q := strings.TrimSpace(query); q != "" {
		path += "?" + url.Values{"search": {q}}.Encode()
	}
	var out HospitalListResponse
	if err := c.do(ctx, OpSearch, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	if out.Hospitals == nil {
		out.Hospitals = []billing.Facility{}
	}
	return out.Hospitals, nil
}

func (c *httpClient) GetHospital(ctx context.Context, id string) (billing.Facility, error) {
	var out billing.Facility
	err := c.do(ctx, OpGetHospital, http.MethodGet, "/api/hospitals/"+url.PathEscape(id), nil, "", &out)
	return out, err
}

func (c *httpClient) Compare(ctx context.Context, req CompareRequest) (billing.ComparisonResult, error) {
	if req.LineItems == nil {
		req.LineItems = []billing.LineItem{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return billing.ComparisonResult{}, c.localError(OpCompare, eris.Wrap(err, "api: encode compare request"))
	}
	var out billing.ComparisonResult
	err = c.do(ctx, OpCompare, http.MethodPost, "/api/compare", bytes.NewReader(body), "application/json", &out)
	return out, err
}

// do performs one request and decodes a 2xx JSON body into out. Every
// failure is returned as an apperrors.TransportError.
func (c *httpClient) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "billcheck.api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("billcheck.request_id", requestID))

	start := time.Now()
	done := c.metrics.StartRequest()
	status := 0
	defer func() {
		done()
		elapsed := time.Since(start)
		c.metrics.ObserveRequest(op, elapsed, err)
		fields := []logging.Field{
			logging.String("op", op),
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
			logging.String("request_id", requestID),
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Debug("api request failed", append(fields, logging.Err(err))...)
			return
		}
		c.logger.Debug("api request", fields...)
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return apperrors.TransportError{Operation: op, Message: werr.Error(), Cause: eris.Wrap(werr, "api: rate limiter")}
		}
	}

	req, rerr := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if rerr != nil {
		return c.localError(op, eris.Wrap(rerr, "api: create request"))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, derr := c.http.Do(req)
	if derr != nil {
		// Keep ctx errors reachable through errors.Is for cancellation handling.
		if ctx.Err() != nil {
			derr = ctx.Err()
		}
		return apperrors.TransportError{
			Operation: op,
			Message:   derr.Error(),
			Cause:     eris.Wrapf(derr, "api: %s %s", method, path),
		}
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status < 200 || status > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.TransportError{
			Operation:  op,
			StatusCode: status,
			Message:    errorDetail(status, raw),
			Cause:      eris.Errorf("api: %s %s: unexpected status %d", method, path, status),
		}
	}

	if out == nil {
		return nil
	}
	if jerr := json.NewDecoder(resp.Body).Decode(out); jerr != nil {
		return apperrors.TransportError{
			Operation:  op,
			StatusCode: status,
			Message:    "invalid response body",
			Cause:      eris.Wrap(jerr, "api: decode response"),
		}
	}
	return nil
}

func (c *httpClient) localError(op string, err error) error {
	return apperrors.TransportError{Operation: op, Message: err.Error(), Cause: err}
}

// errorDetail extracts the backend's "detail" message. Validation errors
// carry a list of objects instead of a string; their "msg" fields are joined.
func errorDetail(status int, raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}
