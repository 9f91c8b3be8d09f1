// Package invoker performs one logical HTTP call against the gateway with a
// bounded retry loop.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fitsim/internal/stats"
	"fitsim/internal/telemetry"
)

const (
	Version          = "1.0"
	DefaultUserAgent = "fitsim/" + Version

	HeaderRequestID = "X-Request-ID"
)

// RetryPolicy bounds every call. It is built once and never mutated.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Timeout     time.Duration
}

// Budget is the longest a single call can block.
func (p RetryPolicy) Budget() time.Duration {
	return time.Duration(p.MaxAttempts) * (p.Timeout + p.Delay)
}

// Request describes one logical call relative to the base URL.
type Request struct {
	Method       string
	Path         string
	Body         any // nil, []byte or a JSON-encodable value
	RequiresAuth bool
	Token        string
}

// Invoker is the call surface used by the pipeline stages.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Outcome, error)
}

type Client struct {
	baseURL string
	policy  RetryPolicy
	http    *http.Client
	log     *zap.Logger
	stats   *stats.Stats
	tracer  trace.Tracer
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

func WithStats(s *stats.Stats) Option { return func(c *Client) { c.stats = s } }

// WithHTTPClient replaces the underlying client. Its Timeout is overwritten
// with the policy timeout.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func New(baseURL string, policy RetryPolicy, opts ...Option) *Client {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
		http:    &http.Client{Transport: t},
		log:     zap.NewNop(),
		tracer:  telemetry.Tracer("fitsim/invoker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Timeout = policy.Timeout
	return c
}

func (c *Client) Policy() RetryPolicy { return c.policy }

func (c *Client) BaseURL() string { return c.baseURL }

var errClientStatus = errors.New("client error status")

// Invoke runs req with the retry policy. A 4xx outcome is returned after one
// attempt. A 5xx that survives every attempt is returned with a nil error.
// A transport failure on the last attempt, or a ctx cancelled before any
// response arrived, yields a *TransportError.
func (c *Client) Invoke(ctx context.Context, req Request) (Outcome, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	payload, err := encodeBody(req.Body)
	if err != nil {
		return Outcome{Method: method, Path: req.Path, Class: ClassClientError, Err: err},
			fmt.Errorf("encode %s %s body: %w", method, req.Path, err)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", req.Path),
		))
	defer span.End()

	requestID := uuid.NewString()
	started := time.Now()

	var (
		last     Outcome
		attempts int
	)
	op := func() (Outcome, error) {
		attempts++
		out := c.attempt(ctx, method, req, payload, requestID)
		out.Attempts = attempts
		last = out

		switch {
		case out.OK():
			return out, nil
		case !out.Retryable():
			return out, backoff.Permanent(fmt.Errorf("%w %d", errClientStatus, out.StatusCode))
		case out.Class == ClassServerError:
			return out, fmt.Errorf("server error status %d", out.StatusCode)
		default:
			return out, out.Err
		}
	}

	notify := func(err error, next time.Duration) {
		c.log.Warn("retrying request",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", c.policy.MaxAttempts),
			zap.Int("status", last.StatusCode),
			zap.Duration("next_in", next),
			zap.Error(err),
		)
	}

	_, _ = backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.policy.Delay)),
		backoff.WithMaxTries(uint(c.policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(2*c.policy.Budget()+time.Minute),
		backoff.WithNotify(notify),
	)

	last.Attempts = attempts
	last.Latency = time.Since(started)

	var callErr error
	// A response that did arrive keeps its class even if ctx ended later.
	if cerr := ctx.Err(); cerr != nil && last.StatusCode == 0 {
		last.Class = ClassTransportFailure
		last.Err = cerr
	}
	if last.Class == ClassTransportFailure {
		callErr = &TransportError{Method: method, Path: req.Path, Attempts: attempts, Err: last.Err}
	}

	c.record(last)
	span.SetAttributes(
		attribute.Int("http.response.status_code", last.StatusCode),
		attribute.Int("fitsim.attempts", attempts),
		attribute.String("fitsim.class", last.Class.String()),
	)
	if last.Class != ClassSuccess {
		span.SetStatus(codes.Error, last.Class.String())
	}
	if callErr != nil {
		span.RecordError(callErr)
	}
	return last, callErr
}

func (c *Client) attempt(ctx context.Context, method string, req Request, payload []byte, requestID string) Outcome {
	out := Outcome{Method: method, Path: req.Path, RequestID: requestID}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		out.Class = ClassTransportFailure
		out.Err = err
		return out
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", DefaultUserAgent)
	httpReq.Header.Set(HeaderRequestID, requestID)
	if req.RequiresAuth && req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		out.Class = ClassTransportFailure
		out.Err = err
		return out
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Class = ClassTransportFailure
		out.Err = fmt.Errorf("read body: %w", err)
		return out
	}

	out.StatusCode = resp.StatusCode
	out.Body = b
	out.Class = Classify(resp.StatusCode)
	return out
}

func (c *Client) record(out Outcome) {
	if c.stats == nil {
		return
	}
	c.stats.Add(stats.Result{
		Attempts:  out.Attempts,
		Latency:   out.Latency,
		Success:   out.Class == ClassSuccess,
		Client:    out.Class == ClassClientError,
		Server:    out.Class == ClassServerError,
		Transport: out.Class == ClassTransportFailure,
	})
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(b)
	}
}
