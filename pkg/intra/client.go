package intra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.intra.42.fr/v2"

	// PageSize is the per_page value sent with every paged request.
	PageSize = 100

	defaultRetryAttempts = 5
	defaultInitialWait   = time.Second
)

// Termination tells the fetcher how an endpoint signals its last page.
type Termination int

const (
	// UntilEmpty stops on the first empty page.
	UntilEmpty Termination = iota
	// UntilShort also stops after a page holding fewer than PageSize records.
	UntilShort
)

// Endpoint is a paged API resource. Name is used as the metrics label so
// that ids embedded in Path do not blow up label cardinality.
type Endpoint struct {
	Name        string
	Path        string
	Termination Termination
}

// Notifier receives progress messages, e.g. a terminal spinner.
type Notifier interface {
	Status(msg string)
}

type Options struct {
	BaseURL       string
	Logger        *zap.Logger
	RetryAttempts int
	InitialWait   time.Duration
	Sleep         func(time.Duration)
	Notifier      Notifier
	Metrics       *Metrics
}

type Option func(*Options)

func WithBaseURL(base string) Option {
	return func(o *Options) { o.BaseURL = base }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithRetry(attempts int, initialWait time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.InitialWait = initialWait
	}
}

// WithSleep replaces time.Sleep for backoff waits.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *Options) { o.Sleep = sleep }
}

func WithNotifier(n Notifier) Option {
	return func(o *Options) { o.Notifier = n }
}

func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// Client fetches resources from the intra API one request at a time.
type Client struct {
	http    *http.Client
	baseURL string
	opts    Options
	logger  *zap.Logger
}

// New creates a Client on top of an already authenticated http.Client.
func New(httpClient *http.Client, opts ...Option) (*Client, error) {
	options := Options{
		BaseURL:       DefaultBaseURL,
		RetryAttempts: defaultRetryAttempts,
		InitialWait:   defaultInitialWait,
		Sleep:         time.Sleep,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	if options.BaseURL == "" {
		return nil, fmt.Errorf("base url cannot be empty")
	}
	if _, err := url.Parse(options.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", options.BaseURL, err)
	}
	if options.RetryAttempts < 1 {
		return nil, fmt.Errorf("retry attempts must be at least 1, got %d", options.RetryAttempts)
	}
	if options.Sleep == nil {
		options.Sleep = time.Sleep
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		opts:    options,
		logger:  logger.Named("intra"),
	}, nil
}

// SetNotifier swaps the progress sink; nil detaches it.
func (c *Client) SetNotifier(n Notifier) {
	c.opts.Notifier = n
}

// FetchAll requests ep page by page, starting at 1, and returns every record
// in server order. The terminating empty page is never part of the result.
func (c *Client) FetchAll(ctx context.Context, ep Endpoint, filter url.Values) ([]json.RawMessage, error) {
	var records []json.RawMessage

	for page := 1; ; page++ {
		params := cloneValues(filter)
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(PageSize))

		body, err := c.do(ctx, ep.Name, ep.Path, params)
		if err != nil {
			return nil, err
		}

		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("decode page %d of %s: %w", page, ep.Path, err)
		}
		if len(batch) == 0 {
			break
		}

		records = append(records, batch...)
		c.opts.Metrics.observeRecords(ep.Name, len(batch))
		c.logger.Debug("page fetched",
			zap.String("endpoint", ep.Name),
			zap.Int("page", page),
			zap.Int("records", len(batch)))

		if ep.Termination == UntilShort && len(batch) < PageSize {
			break
		}
	}

	return records, nil
}

// Get fetches a single resource into dest using the same retry policy as FetchAll.
func (c *Client) Get(ctx context.Context, name, path string, params url.Values, dest any) error {
	body, err := c.do(ctx, name, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do performs one logical request. A 429 retries the exact same URL after a
// doubling wait; any other non-2xx status fails at once.
func (c *Client) do(ctx context.Context, name, path string, params url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	wait := c.opts.InitialWait
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status, body, err := c.send(ctx, target)
		if err != nil {
			return nil, &RequestError{Kind: ErrRequestFailed, URL: target, Attempts: attempt, Err: err}
		}
		c.opts.Metrics.observeRequest(name, status)

		switch {
		case status == http.StatusTooManyRequests:
			c.opts.Metrics.observeRateLimit(name)
			if attempt >= c.opts.RetryAttempts {
				c.logger.Error("rate limit retries exhausted",
					zap.String("url", target),
					zap.Int("attempts", attempt))
				return nil, &RequestError{Kind: ErrRequestExhausted, URL: target, Status: status, Attempts: attempt}
			}

			c.logger.Warn("rate limit hit",
				zap.String("url", target),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
			c.notify(fmt.Sprintf("rate limit hit, retrying in %s", wait))

			c.opts.Sleep(wait)
			wait *= 2

		case status < 200 || status > 299:
			return nil, &RequestError{Kind: ErrRequestFailed, URL: target, Status: status, Attempts: attempt}

		default:
			return body, nil
		}
	}
}

func (c *Client) send(ctx context.Context, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) notify(msg string) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.Status(msg)
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
