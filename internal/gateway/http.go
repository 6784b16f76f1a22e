package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/pkg/retry"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errMalformedResponse = errors.New("malformed response body")

// HTTPClient talks to the upstream transactions service over JSON/HTTP.
type HTTPClient struct {
	baseURL  *url.URL
	client   *http.Client
	retry    retry.Config
	breakers *Breakers
	logger   zerolog.Logger
}

type HTTPOption func(*HTTPClient)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.client = c }
}

func WithRetry(cfg retry.Config) HTTPOption {
	return func(h *HTTPClient) { h.retry = cfg }
}

func WithBreakers(b *Breakers) HTTPOption {
	return func(h *HTTPClient) { h.breakers = b }
}

func WithLogger(l zerolog.Logger) HTTPOption {
	return func(h *HTTPClient) { h.logger = l }
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}

	h := &HTTPClient{
		baseURL: u,
		client:  &http.Client{Timeout: 10 * time.Second},
		retry:   retry.DefaultConfig(),
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	h.retry.RetryIf = retryable
	return h, nil
}

func (h *HTTPClient) Employees(ctx context.Context) ([]employee.Employee, error) {
	var out []EmployeeJSON
	if err := h.get(ctx, EndpointEmployees, "/employees", nil, &out); err != nil {
		return nil, err
	}
	return EmployeesFromJSON(out), nil
}

func (h *HTTPClient) Transactions(ctx context.Context, pageToken *string) (transaction.Page, error) {
	query := url.Values{}
	if pageToken != nil {
		query.Set("page_token", *pageToken)
	}

	var out PageJSON
	if err := h.get(ctx, EndpointTransactions, "/transactions", query, &out); err != nil {
		return transaction.Page{}, err
	}
	return PageFromJSON(out), nil
}

func (h *HTTPClient) TransactionsByEmployee(ctx context.Context, employeeID string) ([]transaction.Transaction, error) {
	if employee.IsSentinelID(employeeID) {
		return nil, domainErrors.ErrInvalidSelection
	}

	var out []TransactionJSON
	path := "/employees/" + url.PathEscape(employeeID) + "/transactions"
	if err := h.get(ctx, EndpointEmployeeTransactions, path, nil, &out); err != nil {
		return nil, err
	}
	return TransactionsFromJSON(out), nil
}

// get calls path, which must already be escaped, below the base URL.
func (h *HTTPClient) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := *h.baseURL
	u.RawPath = h.baseURL.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return fmt.Errorf("build upstream path: %w", err)
	}
	u.Path = unescaped
	u.RawQuery = query.Encode()

	cfg := h.retry
	cfg.OnRetry = func(n uint, err error) {
		h.logger.Warn().Err(err).Str("endpoint", endpoint).Uint("attempt", n+1).Msg("Retrying upstream request")
	}

	call := func() error {
		return retry.Do(ctx, cfg, func() error {
			return h.do(ctx, endpoint, u.String(), out)
		})
	}
	if h.breakers == nil {
		return call()
	}
	return h.breakers.Execute(endpoint, call)
}

func (h *HTTPClient) do(ctx context.Context, endpoint, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return domainErrors.NewUpstreamError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	h.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Upstream request completed")

	switch {
	case resp.StatusCode == http.StatusNotFound && endpoint == EndpointEmployeeTransactions:
		return domainErrors.NewUpstreamError(endpoint, resp.StatusCode, domainErrors.ErrEmployeeNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return domainErrors.NewUpstreamError(endpoint, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domainErrors.NewUpstreamError(endpoint, 0, fmt.Errorf("%w: %v", errMalformedResponse, err))
	}
	return nil
}

// retryable reports whether an upstream failure may succeed on another attempt:
// transport errors, 5xx and 429. 4xx and bad bodies are final; cancellation
// is handled by the retry loop itself.
func retryable(err error) bool {
	if errors.Is(err, errMalformedResponse) {
		return false
	}
	var upstream *domainErrors.UpstreamError
	if !errors.As(err, &upstream) {
		return false
	}
	if upstream.StatusCode == 0 {
		return true
	}
	return upstream.StatusCode >= 500 || upstream.StatusCode == http.StatusTooManyRequests
}
