package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/responder"
	"github.com/nikolat/nostr-unyu/zap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Unix(1700000000, 0)

type firstRand struct{}

func (firstRand) IntN(n int) int { return 0 }

type fakeInvoicer struct {
	profileErr error
	requests   []nostr.ZapRequestParams
}

func (f *fakeInvoicer) Profile(ctx context.Context, pubkey string, relays []string) (*nostr.Event, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &nostr.Event{PubKey: pubkey, Kind: nostr.KindProfileMetadata}, nil
}

func (f *fakeInvoicer) Endpoint(ctx context.Context, profile *nostr.Event) (*zap.Endpoint, error) {
	return &zap.Endpoint{URL: "https://example.com/.well-known/lnurlp/unyu"}, nil
}

func (f *fakeInvoicer) Invoice(ctx context.Context, ep *zap.Endpoint, req nostr.ZapRequestParams) (string, error) {
	f.requests = append(f.requests, req)
	return "lnbc500n1fake", nil
}

type testEnv struct {
	bot      *nostr.PlainKeySigner
	user     *nostr.PlainKeySigner
	invoicer *fakeInvoicer
	srv      *httptest.Server

	// requests seen by the fake webhook
	webhookAuth []string
	webhookBody [][]byte
}

func newSigner(t *testing.T) *nostr.PlainKeySigner {
	sk, err := nostr.GenerateSecretKey()
	require.NoError(t, err)
	s, err := nostr.NewPlainKeySigner(sk)
	require.NoError(t, err)
	return s
}

func newTestEnv(t *testing.T) *testEnv {
	te := &testEnv{
		bot:      newSigner(t),
		user:     newSigner(t),
		invoicer: &fakeInvoicer{},
	}
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		te.webhookAuth = append(te.webhookAuth, r.Header.Get("Authorization"))
		te.webhookBody = append(te.webhookBody, body)
		w.Write([]byte("ok"))
	}))
	t.Cleanup(webhook.Close)

	r := responder.NewResponder(responder.Config{
		Signer: te.bot,
		Rand:   firstRand{},
		Now:    func() time.Time { return testNow },
	})
	srv, err := NewServer(Config{
		Responder:    r,
		Signer:       te.bot,
		Invoicer:     te.invoicer,
		WebhookURL:   webhook.URL,
		WebhookAuth:  "unyu:secret",
		VerifyEvents: true,
		Now:          func() time.Time { return testNow },
	})
	require.NoError(t, err)
	te.srv = httptest.NewServer(srv)
	t.Cleanup(te.srv.Close)
	return te
}

func (te *testEnv) event(t *testing.T, content string) *nostr.Event {
	evt, err := te.user.SignEvent(nostr.EventTemplate{
		Kind:      nostr.KindTextNote,
		CreatedAt: testNow.Unix() - 10,
		Tags:      nostr.Tags{},
		Content:   content,
	})
	require.NoError(t, err)
	return evt
}

func (te *testEnv) post(t *testing.T, mode string, body string) (int, []byte) {
	resp, err := http.Post(te.srv.URL+"/api/"+mode, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (te *testEnv) get(t *testing.T, path string, q url.Values) (int, []byte) {
	resp, err := http.Get(te.srv.URL + path + "?" + q.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func mustJSON(t *testing.T, v any) string {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func errorOf(t *testing.T, body []byte) string {
	var ge GenericError
	require.NoError(t, json.Unmarshal(body, &ge))
	return ge.Error
}

func TestHealthcheck(t *testing.T) {
	te := newTestEnv(t)

	resp, err := http.Get(te.srv.URL + "/_health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleEventSingle(t *testing.T) {
	assert := assert.New(t)
	te := newTestEnv(t)
	evt := te.event(t, "ちくわ大明神")

	code, body := te.post(t, "normal", mustJSON(t, evt))
	require.Equal(t, http.StatusOK, code, string(body))

	var out nostr.Event
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal("誰や今の", out.Content)
	assert.Equal(te.bot.GetPublicKey(), out.PubKey)
	assert.True(nostr.VerifyEvent(&out))
}

func TestHandleEventPair(t *testing.T) {
	assert := assert.New(t)
	te := newTestEnv(t)

	code, body := te.post(t, "normal", mustJSON(t, te.event(t, "これでいいか？")))
	require.Equal(t, http.StatusOK, code, string(body))

	var out []nostr.Event
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out, 2)
	assert.Equal(nostr.KindProfileMetadata, out[0].Kind)
	assert.Equal("ええで", out[1].Content)
}

func TestHandleEventNoReply(t *testing.T) {
	te := newTestEnv(t)
	code, body := te.post(t, "normal", mustJSON(t, te.event(t, "今日はいい天気")))
	assert.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, body)
}

func TestHandleEventRejects(t *testing.T) {
	te := newTestEnv(t)

	tampered := te.event(t, "ちくわ大明神")
	tampered.Sig = strings.Repeat("0", 128)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"not json", "{", "JSON parse failed"},
		{"bad id", `{"id":"xyz","kind":1}`, "Invalid event"},
		{"bad signature", mustJSON(t, tampered), "Unverified event"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, body := te.post(t, "reply", c.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, c.want, errorOf(t, body))
		})
	}
}

func TestHandleEventFault(t *testing.T) {
	te := newTestEnv(t)
	evt, err := te.user.SignEvent(nostr.EventTemplate{
		Kind:      nostr.KindReaction,
		CreatedAt: testNow.Unix(),
		Tags:      nostr.Tags{},
		Content:   "ちくわ大明神",
	})
	require.NoError(t, err)

	code, body := te.post(t, "normal", mustJSON(t, evt))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, errorOf(t, body), responder.ErrUnsupportedKind.Error())
}

func TestHandleEventRouting(t *testing.T) {
	te := newTestEnv(t)

	code, _ := te.post(t, "everything", "{}")
	assert.Equal(t, http.StatusNotFound, code)

	resp, err := http.Get(te.srv.URL + "/api/reply")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestQueryFav(t *testing.T) {
	assert := assert.New(t)
	te := newTestEnv(t)
	target := te.event(t, "ほげ")
	note, err := nostr.EncodeNote(target.ID)
	require.NoError(t, err)
	npub, err := nostr.EncodePublicKey(target.PubKey)
	require.NoError(t, err)

	code, body := te.get(t, "/api/query_fav", url.Values{"note": {note}, "npub": {npub}, "kind": {"1"}})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal("ok", string(body))

	require.Len(t, te.webhookAuth, 1)
	assert.Equal("Basic "+base64.StdEncoding.EncodeToString([]byte("unyu:secret")), te.webhookAuth[0])
	var reaction nostr.Event
	require.NoError(t, json.Unmarshal(te.webhookBody[0], &reaction))
	assert.True(nostr.VerifyEvent(&reaction))
	assert.Equal(nostr.KindReaction, reaction.Kind)
	assert.Equal("⭐", reaction.Content)
	assert.Equal(nostr.Tags{{"e", target.ID}, {"p", target.PubKey}, {"k", "1"}}, reaction.Tags)
	assert.Equal(testNow.Unix(), reaction.CreatedAt)
}

func TestQueryFavValidation(t *testing.T) {
	te := newTestEnv(t)

	code, body := te.get(t, "/api/query_fav", url.Values{"id": {"abc"}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "id and pubkey are required", errorOf(t, body))

	code, body = te.get(t, "/api/query_fav", url.Values{"id": {"abc"}, "pubkey": {"def"}, "kind": {"seven"}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "kind is not integer", errorOf(t, body))
	assert.Empty(t, te.webhookBody)
}

func TestQueryZap(t *testing.T) {
	assert := assert.New(t)
	te := newTestEnv(t)
	target := te.event(t, "ほげ")
	nevent, err := nostr.EncodeEvent(nostr.EventPointer{ID: target.ID, Author: target.PubKey})
	require.NoError(t, err)

	code, body := te.get(t, "/api/query_zap", url.Values{"nevent": {nevent}, "sats": {"21"}, "comment": {"おおきに"}})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal("lnbc500n1fake", string(body))

	require.Len(t, te.invoicer.requests, 1)
	req := te.invoicer.requests[0]
	assert.Equal(target.PubKey, req.Recipient)
	assert.Equal(target.ID, req.EventID)
	assert.Equal(int64(21_000), req.AmountMsats)
	assert.Equal("おおきに", req.Comment)
}

func TestQueryZapValidation(t *testing.T) {
	te := newTestEnv(t)

	code, body := te.get(t, "/api/query_zap", url.Values{"sats": {"many"}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "sats is not integer", errorOf(t, body))

	code, body = te.get(t, "/api/query_zap", url.Values{})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "pubkey is null", errorOf(t, body))

	te.invoicer.profileErr = errors.New("no profile")
	code, body = te.get(t, "/api/query_zap", url.Values{"pubkey": {te.user.GetPublicKey()}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Zap endpoint is null", errorOf(t, body))
}

func TestRulesTree(t *testing.T) {
	tree, err := rulesTree(responder.DefaultRules(), true)
	require.NoError(t, err)
	out := tree.String()
	assert.Contains(t, out, "normal")
	assert.Contains(t, out, "may-i")
	assert.Contains(t, out, "question")
	assert.Contains(t, out, "content-warning")
}
