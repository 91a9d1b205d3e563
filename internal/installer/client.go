// Package installer is a typed client for the assisted installer REST API.
//
// Every failure is normalised into an *errors.APIError carrying the HTTP status
// and a human-readable reason. The client never retries: reads may be retried
// by the user, and mutations stay at-most-once.
package installer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/metrics"
)

// BasePath is the installer API prefix
const BasePath = "/api/assisted-install/v1"

// SessionExpiredReason is reported when the bearer token is past its expiry
const SessionExpiredReason = "Your session has expired. Please log in again."

// maxErrorBody bounds how much of an error answer is read
const maxErrorBody = 1 << 20

// Options configures a Client
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            logger.Interface
}

// Client talks to one assisted installer service
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	logger  logger.Interface
	now     func() time.Time
}

// New creates a client. A zero RequestsPerSecond disables pacing.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		timeout: timeout,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log.WithField("component", "installer"),
		now:     time.Now,
	}
}

// NewFromConfig creates a client from the installer section of the config
func NewFromConfig(cfg config.InstallerConfig, log logger.Interface) *Client {
	return New(Options{
		BaseURL:           cfg.BaseURL,
		Token:             cfg.Token,
		Timeout:           cfg.GetTimeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            log,
	})
}

type tokenKey struct{}

// WithToken makes requests issued with ctx use token instead of the configured one
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the token attached to ctx by WithToken
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := TokenFrom(ctx); ok {
		return token
	}
	return c.token
}

// checkToken fails fast on a JWT whose exp claim has passed. Opaque tokens
// and tokens without exp are sent as they are.
func (c *Client) checkToken(op, token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !c.now().Before(exp.Time) {
		return errors.NewAPIError(op, errors.KindAuth, 0, SessionExpiredReason, errors.ErrUnauthorized)
	}
	return nil
}

// checkID rejects ids that are not UUIDs before any request is built
func checkID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError(field, id, "must be a valid UUID")
	}
	return nil
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
	// absolute URL outside the installer; no credentials are attached
	external string
}

// do sends a request and decodes a JSON answer into out when out is not nil
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.send(ctx, r)
	if err != nil {
		c.observe(r, start, err)
		return err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = errors.NewAPIError(r.op, errors.KindNetwork, 0, "request cancelled", ctxErr)
			} else {
				err = errors.NewAPIError(r.op, errors.KindMalformed, resp.StatusCode,
					"The installer service returned an unexpected response.", err)
			}
			c.observe(r, start, err)
			return err
		}
	}
	c.observe(r, start, nil)
	return nil
}

// stream sends a request and copies the answer body to w
func (c *Client) stream(ctx context.Context, r request, w io.Writer) (int64, error) {
	start := time.Now()
	resp, err := c.send(ctx, r)
	if err != nil {
		c.observe(r, start, err)
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		err = errors.NewAPIError(r.op, errors.KindNetwork, 0, "download interrupted", err)
	}
	c.observe(r, start, err)
	return n, err
}

// send performs the round trip and normalises every failure, including
// error statuses. On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	token := ""
	if r.external == "" {
		token = c.tokenFor(ctx)
		if token != "" {
			if err := c.checkToken(r.op, token); err != nil {
				return nil, err
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewAPIError(r.op, errors.KindNetwork, 0, "request cancelled", err)
	}

	target := r.external
	if target == "" {
		target = c.baseURL + BasePath + r.path
		if len(r.query) > 0 {
			target += "?" + r.query.Encode()
		}
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		reason := "Failed to reach the installer service."
		if ctx.Err() != nil {
			reason = "request cancelled"
			err = ctx.Err()
		}
		return nil, errors.NewAPIError(r.op, errors.KindNetwork, 0, reason,
			errors.NewNetworkError(req.URL.Host, r.method, err))
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, errorFromResponse(r.op, resp)
	}
	return resp, nil
}

// errorFromResponse turns an error answer into an APIError. The reason comes
// from the body's reason (or message) field; 5xx answers without one get a
// generic retry message, and other unreadable bodies the status text.
func errorFromResponse(op string, resp *http.Response) *errors.APIError {
	kind := errors.KindClient
	if resp.StatusCode >= 500 {
		kind = errors.KindServer
	}

	var reason string
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var body struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil {
			reason = body.Reason
			if reason == "" {
				reason = body.Message
			}
		}
	}

	if reason == "" {
		if kind == errors.KindServer {
			reason = errors.ServerFailureReason
		} else {
			reason = http.StatusText(resp.StatusCode)
		}
	}
	return errors.NewAPIError(op, kind, resp.StatusCode, reason, nil)
}

func (c *Client) observe(r request, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind := errors.KindOf(err); kind != "" {
			outcome = string(kind)
		} else if errors.Is(err, errors.ErrInvalidInput) {
			outcome = "validation"
		}
	}
	metrics.ObserveInstallerRequest(r.op, outcome, elapsed)

	entry := c.logger.WithFields(map[string]interface{}{
		"operation": r.op,
		"method":    r.method,
		"path":      r.path,
		"duration":  elapsed,
	})
	if err != nil {
		entry.WithError(err).Debug("installer request failed", "status", errors.StatusCode(err))
		return
	}
	entry.Debug("installer request")
}
