package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolat/nostr-unyu/fetch/cachestore"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/nostr/relay/relaytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>ゴースト新着</title>
<item><title>うにゅう</title><link>https://example.com/ghost/unyu</link></item>
<item><title>さくら</title><link>https://example.com/ghost/sakura</link></item>
</channel>
</rss>`

func testClient(t *testing.T) (*Client, *atomic.Int32, string) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/area.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"offices": {"130000": {"name": "東京都"}}}`)
	})
	mux.HandleFunc("/feed.rss", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, testRSS)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		Cache:      cachestore.NewMemCacheStore(100, time.Hour),
	})
	return c, &hits, srv.URL
}

func TestFetchJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	c, hits, base := testClient(t)

	var area struct {
		Offices map[string]struct {
			Name string `json:"name"`
		} `json:"offices"`
	}
	require.NoError(t, c.FetchJSON(ctx, base+"/area.json", 0, &area))
	assert.Equal("東京都", area.Offices["130000"].Name)
	require.NoError(t, c.FetchJSON(ctx, base+"/area.json", 0, &area))
	assert.Equal(int32(2), hits.Load())

	// cached
	require.NoError(t, c.FetchJSON(ctx, base+"/area.json", time.Minute, &area))
	require.NoError(t, c.FetchJSON(ctx, base+"/area.json", time.Minute, &area))
	assert.Equal(int32(3), hits.Load())

	err := c.FetchJSON(ctx, base+"/broken", 0, &area)
	assert.ErrorIs(err, ErrHTTPStatus)
	assert.Error(c.FetchJSON(ctx, base+"/feed.rss", 0, &area))
}

func TestFetchFeed(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	c, hits, base := testClient(t)

	feed, err := c.FetchFeed(ctx, base+"/feed.rss")
	require.NoError(t, err)
	assert.Equal("ゴースト新着", feed.Title)
	require.Len(t, feed.Items, 2)
	assert.Equal(FeedItem{Title: "うにゅう", Link: "https://example.com/ghost/unyu"}, feed.Items[0])

	_, err = c.FetchFeed(ctx, base+"/feed.rss")
	require.NoError(t, err)
	assert.Equal(int32(1), hits.Load())

	_, err = c.FetchFeed(ctx, base+"/broken")
	assert.ErrorIs(err, ErrHTTPStatus)
}

func TestQueryAndPublish(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r1 := relaytest.Start(t,
		&nostr.Event{ID: "p-old", Kind: 0, PubKey: "alice", CreatedAt: 1},
		&nostr.Event{ID: "note", Kind: 1, PubKey: "alice", CreatedAt: 5},
	)
	r2 := relaytest.Start(t,
		&nostr.Event{ID: "p-old", Kind: 0, PubKey: "alice", CreatedAt: 1},
		&nostr.Event{ID: "p-new", Kind: 0, PubKey: "alice", CreatedAt: 3},
	)
	c := NewClient(ClientConfig{})

	events, err := c.QueryEvents(ctx, []string{r1.URL, r2.URL}, nostr.Filter{Kinds: []int{0}, Authors: []string{"alice"}})
	require.NoError(t, err)
	assert.Len(events, 2)

	latest, err := c.QueryLatest(ctx, []string{r1.URL, "ws://127.0.0.1:1", r2.URL}, nostr.Filter{Kinds: []int{0}})
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal("p-new", latest.ID)

	latest, err = c.QueryLatest(ctx, []string{r1.URL}, nostr.Filter{Kinds: []int{7}})
	assert.NoError(err)
	assert.Nil(latest)

	_, err = c.QueryEvents(ctx, []string{"ws://127.0.0.1:1"}, nostr.Filter{})
	assert.Error(err)

	assert.NoError(c.Publish(ctx, []string{"ws://127.0.0.1:1", r1.URL}, &nostr.Event{ID: "x", Content: "hi"}))
	assert.Len(r1.Published(), 1)
	assert.Error(c.Publish(ctx, []string{r2.URL}, &nostr.Event{ID: "y", Content: "reject"}))
}
