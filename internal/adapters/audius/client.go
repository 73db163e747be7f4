package audius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/karl2522/audiora/backend/internal/core/ports"
)

// appName is required on every Audius API request.
const appName = "Audiora"

const (
	defaultTimeout   = 10 * time.Second
	retryAttempts    = 3
	retryBaseDelay   = 500 * time.Millisecond
	defaultRate      = 10 // requests per second across all mirrors
	defaultRateBurst = 5
)

// DefaultMirrors are the public Audius discovery providers, tried in order.
var DefaultMirrors = []string{
	"https://discoveryprovider.audius.co",
	"https://discoveryprovider2.audius.co",
	"https://discoveryprovider3.audius.co",
}

// Config tunes the Audius client. Zero values fall back to defaults.
type Config struct {
	Mirrors    []string
	HTTPClient *http.Client
	RateLimit  rate.Limit
	Logger     zerolog.Logger
}

// Client is the Audius track catalog. It fails over across discovery-provider
// mirrors and retries transient server errors with exponential backoff.
type Client struct {
	mirrors    []string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

var _ ports.TrackCatalog = (*Client)(nil)

// NewClient constructs an Audius client.
func NewClient(cfg Config) *Client {
	mirrors := cfg.Mirrors
	if len(mirrors) == 0 {
		mirrors = DefaultMirrors
	}
	trimmed := make([]string, len(mirrors))
	for i, m := range mirrors {
		trimmed[i] = strings.TrimRight(m, "/")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRate
	}

	return &Client{
		mirrors:    trimmed,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, defaultRateBurst),
		logger:     cfg.Logger.With().Str("component", "audius").Logger(),
	}
}

// statusError marks a non-2xx response. These are retried on the same mirror;
// transport errors fail over to the next mirror instead.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("audius: status %d", e.code)
}

// getJSON fetches endpoint from the first mirror that answers, decoding the
// response into out. Every mirror exhausted means ErrProviderUnavailable.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	var lastErr error
	for _, mirror := range c.mirrors {
		mirror := mirror
		err := retry.Do(
			func() error {
				return c.getOnce(ctx, mirror+endpoint, out)
			},
			retry.Context(ctx),
			retry.Attempts(retryAttempts),
			retry.Delay(retryBaseDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				var se *statusError
				return errors.As(err, &se)
			}),
			retry.OnRetry(func(n uint, err error) {
				c.logger.Warn().Err(err).Str("mirror", mirror).Uint("attempt", n+1).Msg("retrying request")
			}),
		)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("audius: %w", ctx.Err())
		}
		lastErr = err
		c.logger.Warn().Err(err).Str("mirror", mirror).Msg("mirror failed, trying next")
	}
	return &ports.ProviderUnavailableError{Endpoint: endpoint, Err: lastErr}
}

func (c *Client) getOnce(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func baseParams() url.Values {
	v := url.Values{}
	v.Set("app_name", appName)
	return v
}
