package relay

import (
	"context"
	"testing"
	"time"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/nostr/relay/relaytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQuerySync(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored := []*nostr.Event{
		{ID: "a", Kind: 0, PubKey: "p1", CreatedAt: 10},
		{ID: "b", Kind: 0, PubKey: "p1", CreatedAt: 30},
		{ID: "c", Kind: 1, PubKey: "p1", CreatedAt: 20},
	}
	url := relaytest.Start(t, stored...).URL

	r, err := Connect(ctx, url, nil)
	require.NoError(t, err)
	defer r.Close()

	events, err := r.QuerySync(ctx, nostr.Filter{Kinds: []int{0}, Authors: []string{"p1"}})
	require.NoError(t, err)
	// the kind 1 event does not match and is dropped client-side
	assert.Len(events, 2)
	assert.Equal("b", Latest(events).ID)
}

func TestPublish(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fr := relaytest.Start(t)
	r, err := Connect(ctx, fr.URL, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.NoError(r.Publish(ctx, &nostr.Event{ID: "x1", Content: "hello"}))
	assert.Error(r.Publish(ctx, &nostr.Event{ID: "x2", Content: "reject"}))

	assert.Len(fr.Published(), 1)
}

func TestQueryLatest(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url1 := relaytest.Start(t, &nostr.Event{ID: "old", Kind: 0, CreatedAt: 1}).URL
	url2 := relaytest.Start(t, &nostr.Event{ID: "new", Kind: 0, CreatedAt: 2}).URL

	latest := QueryLatest(ctx, []string{url1, "ws://127.0.0.1:1", url2}, nostr.Filter{Kinds: []int{0}}, nil)
	require.NotNil(t, latest)
	assert.Equal("new", latest.ID)
}

func TestClosedRelay(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	r, err := Connect(ctx, relaytest.Start(t).URL, nil)
	require.NoError(t, err)
	assert.NoError(r.Close())
	assert.ErrorIs(r.Publish(ctx, &nostr.Event{ID: "x"}), ErrClosed)
}
