package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/util"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/websocket"
)

var ErrClosed = errors.New("relay connection closed")

// Minimal NIP-01 relay client: a single websocket connection multiplexing subscriptions and
// publishes. Safe for concurrent use.
type Relay struct {
	URL    string
	Logger *slog.Logger

	conn      *websocket.Conn
	writeLk   sync.Mutex
	lk        sync.Mutex
	subs      map[string]*Subscription
	oks       map[string]chan okResult
	subSerial atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

type okResult struct {
	ok      bool
	message string
}

// Live subscription. Events are delivered on Events until the subscription is closed;
// EndOfStoredEvents is closed when the relay sends EOSE.
type Subscription struct {
	ID                string
	Events            chan *nostr.Event
	EndOfStoredEvents chan struct{}

	relay     *Relay
	filters   []nostr.Filter
	done      chan struct{}
	eoseOnce  sync.Once
	closeOnce sync.Once
}

func Connect(ctx context.Context, url string, logger *slog.Logger) (*Relay, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wsURL := util.WebsocketUrlForHost(url)
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, http.Header{
		"User-Agent": []string{fmt.Sprintf("unyu/%s", versioninfo.Short())},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to relay %s: %w", wsURL, err)
	}
	r := &Relay{
		URL:    wsURL,
		Logger: logger.With("relay", wsURL),
		conn:   conn,
		subs:   make(map[string]*Subscription),
		oks:    make(map[string]chan okResult),
		done:   make(chan struct{}),
	}
	go r.readLoop()
	go r.pingLoop()
	return r, nil
}

func (r *Relay) pingLoop() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := r.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				r.Logger.Warn("failed to ping relay", "err", err)
			}
		case <-r.done:
			return
		}
	}
}

func (r *Relay) readLoop() {
	defer r.Close()
	for {
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			select {
			case <-r.done:
			default:
				r.Logger.Debug("relay read loop ended", "err", err)
			}
			return
		}
		if err := r.handleMessage(msg); err != nil {
			r.Logger.Warn("bad message from relay", "err", err)
		}
	}
}

func (r *Relay) handleMessage(msg []byte) error {
	var env []json.RawMessage
	if err := json.Unmarshal(msg, &env); err != nil {
		return fmt.Errorf("parsing envelope: %w", err)
	}
	if len(env) < 2 {
		return fmt.Errorf("short envelope")
	}
	var label string
	if err := json.Unmarshal(env[0], &label); err != nil {
		return fmt.Errorf("parsing envelope label: %w", err)
	}
	switch label {
	case "EVENT":
		if len(env) < 3 {
			return fmt.Errorf("short EVENT envelope")
		}
		var subID string
		if err := json.Unmarshal(env[1], &subID); err != nil {
			return err
		}
		var evt nostr.Event
		if err := json.Unmarshal(env[2], &evt); err != nil {
			return fmt.Errorf("parsing event: %w", err)
		}
		sub := r.getSub(subID)
		if sub == nil {
			return nil
		}
		if !sub.matches(&evt) {
			r.Logger.Debug("dropping event not matching filters", "sub", subID, "id", evt.ID)
			return nil
		}
		select {
		case sub.Events <- &evt:
		case <-sub.done:
		case <-r.done:
		}
	case "EOSE":
		var subID string
		if err := json.Unmarshal(env[1], &subID); err != nil {
			return err
		}
		if sub := r.getSub(subID); sub != nil {
			sub.eoseOnce.Do(func() { close(sub.EndOfStoredEvents) })
		}
	case "CLOSED":
		var subID string
		if err := json.Unmarshal(env[1], &subID); err != nil {
			return err
		}
		if sub := r.getSub(subID); sub != nil {
			sub.finish()
		}
	case "OK":
		if len(env) < 3 {
			return fmt.Errorf("short OK envelope")
		}
		var id string
		var ok bool
		var message string
		if err := json.Unmarshal(env[1], &id); err != nil {
			return err
		}
		if err := json.Unmarshal(env[2], &ok); err != nil {
			return err
		}
		if len(env) > 3 {
			_ = json.Unmarshal(env[3], &message)
		}
		r.lk.Lock()
		ch := r.oks[id]
		delete(r.oks, id)
		r.lk.Unlock()
		if ch != nil {
			ch <- okResult{ok: ok, message: message}
		}
	case "NOTICE":
		var notice string
		_ = json.Unmarshal(env[1], &notice)
		r.Logger.Info("relay notice", "notice", notice)
	}
	return nil
}

func (r *Relay) getSub(id string) *Subscription {
	r.lk.Lock()
	defer r.lk.Unlock()
	return r.subs[id]
}

func (r *Relay) write(v any) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	r.writeLk.Lock()
	defer r.writeLk.Unlock()
	return r.conn.WriteJSON(v)
}

// Opens a subscription with the given filters.
func (r *Relay) Subscribe(ctx context.Context, filters []nostr.Filter) (*Subscription, error) {
	sub := &Subscription{
		ID:                "unyu:" + strconv.FormatInt(r.subSerial.Add(1), 10),
		Events:            make(chan *nostr.Event, 16),
		EndOfStoredEvents: make(chan struct{}),
		relay:             r,
		filters:           filters,
		done:              make(chan struct{}),
	}
	r.lk.Lock()
	r.subs[sub.ID] = sub
	r.lk.Unlock()

	req := []any{"REQ", sub.ID}
	for _, f := range filters {
		req = append(req, f)
	}
	if err := r.write(req); err != nil {
		sub.finish()
		return nil, fmt.Errorf("sending REQ: %w", err)
	}
	return sub, nil
}

func (s *Subscription) matches(evt *nostr.Event) bool {
	for _, f := range s.filters {
		if f.Matches(evt) {
			return true
		}
	}
	return len(s.filters) == 0
}

func (s *Subscription) finish() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.relay.lk.Lock()
		delete(s.relay.subs, s.ID)
		s.relay.lk.Unlock()
	})
}

// Sends CLOSE to the relay and stops delivery.
func (s *Subscription) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	if err := s.relay.write([]any{"CLOSE", s.ID}); err != nil && !errors.Is(err, ErrClosed) {
		s.relay.Logger.Debug("failed to send CLOSE", "sub", s.ID, "err", err)
	}
	s.finish()
}

// Done is closed when the subscription ends, either locally or by the relay.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Collects all stored events matching the filter, returning once the relay signals EOSE.
func (r *Relay) QuerySync(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error) {
	sub, err := r.Subscribe(ctx, []nostr.Filter{filter})
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	var out []*nostr.Event
	for {
		select {
		case evt := <-sub.Events:
			out = append(out, evt)
		case <-sub.EndOfStoredEvents:
			// drain anything that raced ahead of EOSE
			for {
				select {
				case evt := <-sub.Events:
					out = append(out, evt)
				default:
					return out, nil
				}
			}
		case <-sub.done:
			return out, nil
		case <-r.done:
			return out, ErrClosed
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
}

// Publishes an event and waits for the relay's OK.
func (r *Relay) Publish(ctx context.Context, evt *nostr.Event) error {
	ch := make(chan okResult, 1)
	r.lk.Lock()
	r.oks[evt.ID] = ch
	r.lk.Unlock()
	defer func() {
		r.lk.Lock()
		delete(r.oks, evt.ID)
		r.lk.Unlock()
	}()

	if err := r.write([]any{"EVENT", evt}); err != nil {
		return fmt.Errorf("sending EVENT: %w", err)
	}
	select {
	case res := <-ch:
		if !res.ok {
			return fmt.Errorf("relay rejected event %s: %s", evt.ID, res.message)
		}
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.writeLk.Lock()
		_ = r.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		r.writeLk.Unlock()
		err = r.conn.Close()
	})
	return err
}

// Returns the event with the greatest created_at, or nil.
func Latest(events []*nostr.Event) *nostr.Event {
	var latest *nostr.Event
	for _, evt := range events {
		if latest == nil || evt.CreatedAt > latest.CreatedAt {
			latest = evt
		}
	}
	return latest
}

// Connects to each relay in turn, queries, and returns the newest matching event across all of
// them. Relays that fail are skipped. Returns nil if nothing was found.
func QueryLatest(ctx context.Context, urls []string, filter nostr.Filter, logger *slog.Logger) *nostr.Event {
	if logger == nil {
		logger = slog.Default()
	}
	var found []*nostr.Event
	for _, u := range urls {
		r, err := Connect(ctx, u, logger)
		if err != nil {
			logger.Warn("skipping relay", "relay", u, "err", err)
			continue
		}
		events, err := r.QuerySync(ctx, filter)
		r.Close()
		if err != nil {
			logger.Warn("relay query failed", "relay", u, "err", err)
		}
		found = append(found, events...)
	}
	return Latest(found)
}
