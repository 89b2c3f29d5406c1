// Package salesforce reads and writes Lead records over the Salesforce REST API.
package salesforce

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each API call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Client defines the Salesforce API operations used by the briefing sink.
type Client interface {
	Query(ctx context.Context, soql string, out any) error
	UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

// ClientOption configures the Salesforce client.
type ClientOption func(*sfClient)

// WithRateLimit sets a per-second rate limit for API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sfClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithTimeout sets the HTTP timeout applied to every API call. The
// underlying library takes no context, so this is the only bound on a call
// once it has started.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *sfClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// withLibraryOptions passes extra options to the library on every login.
func withLibraryOptions(opts ...gosf.Option) ClientOption {
	return func(c *sfClient) { c.extra = append(c.extra, opts...) }
}

// sfClient authenticates lazily. A failed login is kept out of the cache, so
// the next call logs in again and a recovered org needs no restart.
type sfClient struct {
	creds   gosf.Creds
	timeout time.Duration
	extra   []gosf.Option
	limiter *rate.Limiter

	mu sync.Mutex
	sf *gosf.Salesforce
}

// Connect logs in with creds and returns a Client. The Client is returned
// even when the login fails, together with that error; every later call
// retries the login before it runs.
func Connect(creds gosf.Creds, opts ...ClientOption) (Client, error) {
	c := &sfClient{creds: creds, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	_, err := c.session()
	return c, err
}

func (c *sfClient) session() (*gosf.Salesforce, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sf != nil {
		return c.sf, nil
	}
	opts := append([]gosf.Option{gosf.WithHTTPTimeout(c.timeout)}, c.extra...)
	sf, err := gosf.Init(c.creds, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "sf: login")
	}
	c.sf = sf
	return sf, nil
}

// begin waits for the rate limiter and returns a logged-in session.
func (c *sfClient) begin(ctx context.Context) (*gosf.Salesforce, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "sf: rate limit")
		}
	}
	return c.session()
}

func (c *sfClient) Query(ctx context.Context, soql string, out any) error {
	sf, err := c.begin(ctx)
	if err != nil {
		return err
	}
	if err := sf.Query(soql, out); err != nil {
		return eris.Wrap(err, "sf: query")
	}
	return nil
}

func (c *sfClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	sf, err := c.begin(ctx)
	if err != nil {
		return err
	}
	record := maps.Clone(fields)
	if record == nil {
		record = map[string]any{}
	}
	record["Id"] = id
	if err := sf.UpdateOne(sObjectName, record); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update %s %s", sObjectName, id))
	}
	return nil
}
