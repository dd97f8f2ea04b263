package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/nikolat/nostr-unyu/art"
	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/zap"

	"github.com/stretchr/testify/require"
)

// 2023-11-14 22:13:20 UTC, 07:13 the next morning in Japan
var testNow = time.Unix(1700000000, 0)

type zeroRand struct{}

func (zeroRand) IntN(n int) int { return 0 }

// replays a fixed sequence of draws; fails the test if more are asked for
type scriptedRand struct {
	t     *testing.T
	draws []int
	i     int
}

func (s *scriptedRand) IntN(n int) int {
	if s.i >= len(s.draws) {
		s.t.Fatalf("random source exhausted after %d draws", s.i)
	}
	v := s.draws[s.i]
	s.i++
	require.Less(s.t, v, n)
	return v
}

func script(t *testing.T, draws ...int) *scriptedRand {
	return &scriptedRand{t: t, draws: draws}
}

type fakeFetcher struct {
	json   map[string]any
	feeds  map[string]*fetch.Feed
	events []*nostr.Event

	fetched []string
	queries [][]nostr.Filter
}

func (f *fakeFetcher) FetchJSON(ctx context.Context, url string, ttl time.Duration, v any) error {
	f.fetched = append(f.fetched, url)
	body, ok := f.json[url]
	if !ok {
		return fmt.Errorf("%w: 404 for %s", fetch.ErrHTTPStatus, url)
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (f *fakeFetcher) FetchFeed(ctx context.Context, url string) (*fetch.Feed, error) {
	f.fetched = append(f.fetched, url)
	feed, ok := f.feeds[url]
	if !ok {
		return nil, fmt.Errorf("%w: 404 for %s", fetch.ErrHTTPStatus, url)
	}
	return feed, nil
}

func (f *fakeFetcher) QueryEvents(ctx context.Context, relays []string, filters ...nostr.Filter) ([]*nostr.Event, error) {
	f.queries = append(f.queries, filters)
	var out []*nostr.Event
	for _, evt := range f.events {
		if slices.ContainsFunc(filters, func(flt nostr.Filter) bool { return flt.Matches(evt) }) {
			out = append(out, evt)
		}
	}
	return out, nil
}

func (f *fakeFetcher) QueryLatest(ctx context.Context, relays []string, filter nostr.Filter) (*nostr.Event, error) {
	evts, err := f.QueryEvents(ctx, relays, filter)
	if err != nil {
		return nil, err
	}
	var latest *nostr.Event
	for _, evt := range evts {
		if latest == nil || evt.CreatedAt > latest.CreatedAt {
			latest = evt
		}
	}
	return latest, nil
}

type zapCall struct {
	target  *nostr.Event
	sats    int64
	comment string
}

type fakeZapper struct {
	profile  *nostr.Event
	endpoint *zap.Endpoint
	err      error
	zaps     []zapCall
}

func (z *fakeZapper) Zap(ctx context.Context, target *nostr.Event, sats int64, comment string) error {
	if z.err != nil {
		return z.err
	}
	z.zaps = append(z.zaps, zapCall{target: target, sats: sats, comment: comment})
	return nil
}

func (z *fakeZapper) Profile(ctx context.Context, pubkey string, relays []string) (*nostr.Event, error) {
	if z.profile == nil {
		return nil, fmt.Errorf("no profile for %s", pubkey)
	}
	return z.profile, nil
}

func (z *fakeZapper) Endpoint(ctx context.Context, profile *nostr.Event) (*zap.Endpoint, error) {
	if z.endpoint == nil {
		return nil, fmt.Errorf("no endpoint")
	}
	return z.endpoint, nil
}

func newSigner(t *testing.T) *nostr.PlainKeySigner {
	sk, err := nostr.GenerateSecretKey()
	require.NoError(t, err)
	s, err := nostr.NewPlainKeySigner(sk)
	require.NoError(t, err)
	return s
}

type fixture struct {
	bot     *nostr.PlainKeySigner
	user    *nostr.PlainKeySigner
	fetcher *fakeFetcher
	zapper  *fakeZapper
	r       *Responder
}

func setup(t *testing.T, rnd art.Rand) *fixture {
	f := &fixture{
		bot:     newSigner(t),
		user:    newSigner(t),
		fetcher: &fakeFetcher{},
		zapper:  &fakeZapper{},
	}
	if rnd == nil {
		rnd = zeroRand{}
	}
	f.r = NewResponder(Config{
		Signer:  f.bot,
		Fetcher: f.fetcher,
		Zapper:  f.zapper,
		Rand:    rnd,
		Now:     func() time.Time { return testNow },
	})
	return f
}

// Signs an event from the fixture's user.
func (f *fixture) event(t *testing.T, kind int, content string, tags ...nostr.Tag) *nostr.Event {
	if tags == nil {
		tags = nostr.Tags{}
	}
	evt, err := f.user.SignEvent(nostr.EventTemplate{
		Kind:      kind,
		CreatedAt: testNow.Unix() - 60,
		Tags:      tags,
		Content:   content,
	})
	require.NoError(t, err)
	return evt
}

func (f *fixture) respond(t *testing.T, evt *nostr.Event, mode Mode) []nostr.EventTemplate {
	out, err := f.r.SelectResponse(context.Background(), evt, mode)
	require.NoError(t, err)
	return out
}

// Responds and requires exactly one event.
func (f *fixture) respondOne(t *testing.T, evt *nostr.Event, mode Mode) nostr.EventTemplate {
	out := f.respond(t, evt, mode)
	require.Len(t, out, 1)
	return out[0]
}

func rootTag(evt *nostr.Event) nostr.Tag {
	return nostr.Tag{"e", evt.ID, "", "root", evt.PubKey}
}

// channel message tags rooted at one of the compiled-in channels
func channelRoot() nostr.Tag {
	return nostr.Tag{"e", "8206e76969256cd33277eeb00a45e445504dfb321788b5c3cc5d23b561765a74", "", "root"}
}
