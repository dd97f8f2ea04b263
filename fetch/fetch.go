// Outbound lookups used by response handlers: JSON and feed documents over HTTP, and events from
// relays. Failures are returned to the caller, which decides on its own fallback text.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolat/nostr-unyu/fetch/cachestore"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/nostr/relay"
	"github.com/nikolat/nostr-unyu/textutil"
	"github.com/nikolat/nostr-unyu/util"
	"github.com/nikolat/nostr-unyu/util/ssrf"

	"github.com/carlmjohnson/versioninfo"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

// upper bound on any single response body
const maxBodySize = 4 << 20

type Fetcher interface {
	// Fetches a URL and decodes the JSON body into v. A positive ttl caches the raw body.
	FetchJSON(ctx context.Context, url string, ttl time.Duration, v any) error
	// Fetches and parses an RSS, Atom or RDF feed. Feeds are cached for [FeedTTL].
	FetchFeed(ctx context.Context, url string) (*Feed, error)
	// Queries each relay until EOSE and returns the union of matching events, de-duplicated by id.
	QueryEvents(ctx context.Context, relays []string, filters ...nostr.Filter) ([]*nostr.Event, error)
	// Returns the newest matching event across the relays, or nil if there is none.
	QueryLatest(ctx context.Context, relays []string, filter nostr.Filter) (*nostr.Event, error)
}

type Publisher interface {
	Publish(ctx context.Context, relays []string, evt *nostr.Event) error
}

var ErrHTTPStatus = errors.New("unexpected HTTP status")

var FeedTTL = 10 * time.Minute

type Feed struct {
	Title string
	Items []FeedItem
}

type FeedItem struct {
	Title string
	Link  string
}

type ClientConfig struct {
	Logger *slog.Logger
	// optional; defaults to [util.RobustHTTPClient]
	HTTPClient *http.Client
	// optional; responses are not cached without one
	Cache cachestore.CacheStore
	// outbound HTTP requests per second; zero means unlimited
	RateLimit float64
	// refuse to dial private and loopback addresses; ignored with a custom HTTPClient
	PublicOnly bool
}

// Implements [Fetcher] and [Publisher].
type Client struct {
	Logger     *slog.Logger
	HTTPClient *http.Client
	Cache      cachestore.CacheStore
	Limiter    *rate.Limiter
	UserAgent  string
}

var _ Fetcher = (*Client)(nil)
var _ Publisher = (*Client)(nil)

func NewClient(config ClientConfig) *Client {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fetch")
	hc := config.HTTPClient
	if hc == nil {
		var opts []util.Option
		if config.PublicOnly {
			opts = append(opts, util.WithTransport(ssrf.PublicOnlyTransport()))
		}
		hc = util.RobustHTTPClient(logger, opts...)
	}
	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	return &Client{
		Logger:     logger,
		HTTPClient: hc,
		Cache:      config.Cache,
		Limiter:    rate.NewLimiter(limit, 1),
		UserAgent:  fmt.Sprintf("unyu/%s", versioninfo.Short()),
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// Fetches a body, going through the cache when there is one and ttl is positive.
func (c *Client) getCached(ctx context.Context, name, url string, ttl time.Duration) ([]byte, error) {
	if c.Cache == nil || ttl <= 0 {
		return c.get(ctx, url)
	}
	key := textutil.HashOfString(url)
	val, err := c.Cache.Get(ctx, name, key)
	if err == nil {
		return []byte(val), nil
	}
	if !errors.Is(err, cachestore.ErrMiss) {
		c.Logger.Warn("cache read failed", "url", url, "err", err)
	}
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, name, key, string(body), ttl); err != nil {
		c.Logger.Warn("cache write failed", "url", url, "err", err)
	}
	return body, nil
}

func (c *Client) FetchJSON(ctx context.Context, url string, ttl time.Duration, v any) error {
	body, err := c.getCached(ctx, "json", url, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding JSON from %s: %w", url, err)
	}
	return nil
}

func (c *Client) FetchFeed(ctx context.Context, url string) (*Feed, error) {
	body, err := c.getCached(ctx, "feed", url, FeedTTL)
	if err != nil {
		return nil, err
	}
	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", url, err)
	}
	feed := &Feed{Title: parsed.Title}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Items = append(feed.Items, FeedItem{
			Title: item.Title,
			Link:  item.Link,
		})
	}
	return feed, nil
}

func (c *Client) QueryEvents(ctx context.Context, relays []string, filters ...nostr.Filter) ([]*nostr.Event, error) {
	var out []*nostr.Event
	seen := make(map[string]bool)
	var lastErr error
	ok := 0
	for _, u := range relays {
		r, err := relay.Connect(ctx, u, c.Logger)
		if err != nil {
			c.Logger.Warn("skipping relay", "relay", u, "err", err)
			lastErr = err
			continue
		}
		for _, f := range filters {
			events, err := r.QuerySync(ctx, f)
			if err != nil {
				c.Logger.Warn("relay query failed", "relay", u, "err", err)
				lastErr = err
			}
			for _, evt := range events {
				if !seen[evt.ID] {
					seen[evt.ID] = true
					out = append(out, evt)
				}
			}
		}
		r.Close()
		ok++
	}
	if ok == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (c *Client) QueryLatest(ctx context.Context, relays []string, filter nostr.Filter) (*nostr.Event, error) {
	events, err := c.QueryEvents(ctx, relays, filter)
	if err != nil {
		return nil, err
	}
	return relay.Latest(events), nil
}

// Publishes to every relay. Succeeds if at least one relay accepted the event.
func (c *Client) Publish(ctx context.Context, relays []string, evt *nostr.Event) error {
	var lastErr error
	accepted := 0
	for _, u := range relays {
		r, err := relay.Connect(ctx, u, c.Logger)
		if err != nil {
			lastErr = err
			continue
		}
		err = r.Publish(ctx, evt)
		r.Close()
		if err != nil {
			c.Logger.Warn("publish failed", "relay", u, "id", evt.ID, "err", err)
			lastErr = err
			continue
		}
		accepted++
	}
	if accepted == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no relays to publish to")
		}
		return lastErr
	}
	return nil
}
