// In-memory relay for tests: answers REQ from a fixed event list and records published events.
package relaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nikolat/nostr-unyu/nostr"

	"github.com/gorilla/websocket"
)

type Relay struct {
	URL string

	lk        sync.Mutex
	stored    []*nostr.Event
	published []*nostr.Event
	// if set, EVENT messages are answered with OK false
	RejectAll bool
}

// Starts a relay serving the given events. Stored events are sent for every REQ regardless of
// filters; the client filters locally. Events with content "reject" are refused.
func Start(t *testing.T, stored ...*nostr.Event) *Relay {
	r := &Relay{stored: stored}
	srv := httptest.NewServer(r.handler(t))
	t.Cleanup(srv.Close)
	r.URL = "ws://" + strings.TrimPrefix(srv.URL, "http://")
	return r
}

func (r *Relay) Store(evts ...*nostr.Event) {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.stored = append(r.stored, evts...)
}

func (r *Relay) Published() []*nostr.Event {
	r.lk.Lock()
	defer r.lk.Unlock()
	return append([]*nostr.Event(nil), r.published...)
}

func (r *Relay) handler(t *testing.T) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			t.Logf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env []json.RawMessage
			if err := json.Unmarshal(msg, &env); err != nil || len(env) < 2 {
				return
			}
			var label string
			_ = json.Unmarshal(env[0], &label)
			switch label {
			case "REQ":
				var subID string
				_ = json.Unmarshal(env[1], &subID)
				r.lk.Lock()
				stored := append([]*nostr.Event(nil), r.stored...)
				r.lk.Unlock()
				for _, evt := range stored {
					_ = conn.WriteJSON([]any{"EVENT", subID, evt})
				}
				_ = conn.WriteJSON([]any{"EOSE", subID})
			case "EVENT":
				var evt nostr.Event
				_ = json.Unmarshal(env[1], &evt)
				ok := evt.Content != "reject" && !r.RejectAll
				if ok {
					r.lk.Lock()
					r.published = append(r.published, &evt)
					r.lk.Unlock()
				}
				_ = conn.WriteJSON([]any{"OK", evt.ID, ok, ""})
			}
		}
	}
}
