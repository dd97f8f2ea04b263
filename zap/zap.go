// Sends lightning zaps on behalf of the bot: resolves a recipient's LNURL-pay endpoint from their
// profile, requests a NIP-57 invoice, and pays it through a NIP-47 wallet connection.
package zap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"

	"github.com/google/go-querystring/query"
)

var (
	ErrWalletNotConfigured = errors.New("wallet connection is not configured")
	ErrNoProfile           = errors.New("profile not found")
	ErrNoInvoice           = errors.New("no invoice in LNURL callback response")
)

// a recent zap from the bot to the same recipient suppresses another one
const recentZapWindow = 10 * time.Minute

var (
	DefaultProfileRelays   = []string{"wss://yabu.me/"}
	DefaultZapCheckRelays  = []string{"wss://yabu.me/"}
	DefaultBroadcastRelays = []string{
		"wss://relay-jp.nostr.wirednet.jp/",
		"wss://relay.nostr.wirednet.jp/",
		"wss://yabu.me/",
	}
)

type Config struct {
	Logger *slog.Logger
	Signer nostr.Signer
	// nil disables paying; endpoint lookups and invoices still work
	Wallet    *nostr.WalletConnectURI
	Fetcher   fetch.Fetcher
	Publisher fetch.Publisher
	// relays searched for profiles (kind 0)
	ProfileRelays []string
	// relays searched for the recipient's latest zap receipt
	ZapCheckRelays []string
	// relays listed in zap requests, where the receipt should be published
	BroadcastRelays []string
	Now             func() time.Time
}

type Zapper struct {
	logger          *slog.Logger
	signer          nostr.Signer
	wallet          *nostr.WalletConnectURI
	fetcher         fetch.Fetcher
	publisher       fetch.Publisher
	profileRelays   []string
	zapCheckRelays  []string
	broadcastRelays []string
	now             func() time.Time
}

func NewZapper(config Config) *Zapper {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ProfileRelays == nil {
		config.ProfileRelays = DefaultProfileRelays
	}
	if config.ZapCheckRelays == nil {
		config.ZapCheckRelays = DefaultZapCheckRelays
	}
	if config.BroadcastRelays == nil {
		config.BroadcastRelays = DefaultBroadcastRelays
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Zapper{
		logger:          config.Logger.With("component", "zap"),
		signer:          config.Signer,
		wallet:          config.Wallet,
		fetcher:         config.Fetcher,
		publisher:       config.Publisher,
		profileRelays:   config.ProfileRelays,
		zapCheckRelays:  config.ZapCheckRelays,
		broadcastRelays: config.BroadcastRelays,
		now:             config.Now,
	}
}

// Resolved LNURL-pay endpoint of a profile.
type Endpoint struct {
	// the LNURL-pay metadata URL derived from lud16 or lud06
	URL string
	nostr.LNURLPayResponse
}

// Fetches the newest kind 0 event of pubkey from relays (the profile relays when nil).
func (z *Zapper) Profile(ctx context.Context, pubkey string, relays []string) (*nostr.Event, error) {
	if relays == nil {
		relays = z.profileRelays
	}
	evt, err := z.fetcher.QueryLatest(ctx, relays, nostr.Filter{
		Kinds:   []int{nostr.KindProfileMetadata},
		Authors: []string{pubkey},
	})
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	if evt == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProfile, pubkey)
	}
	return evt, nil
}

// Resolves the zap endpoint of a profile event.
func (z *Zapper) Endpoint(ctx context.Context, profile *nostr.Event) (*Endpoint, error) {
	meta, err := nostr.ParseProfileMetadata(profile)
	if err != nil {
		return nil, err
	}
	lnurl, err := meta.LNURLPayURL()
	if err != nil {
		return nil, err
	}
	ep := Endpoint{URL: lnurl}
	if err := z.fetcher.FetchJSON(ctx, lnurl, 0, &ep.LNURLPayResponse); err != nil {
		return nil, fmt.Errorf("fetching LNURL-pay endpoint: %w", err)
	}
	if ep.Callback == "" {
		return nil, fmt.Errorf("%w: no callback at %s", nostr.ErrNoZapEndpoint, lnurl)
	}
	return &ep, nil
}

func encodeEvent(evt *nostr.Event) (string, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type callbackParams struct {
	Amount int64  `url:"amount"`
	Nostr  string `url:"nostr"`
}

type invoiceResponse struct {
	PR     string `json:"pr"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Signs the zap request and exchanges it for a bolt11 invoice at the endpoint's callback.
func (z *Zapper) Invoice(ctx context.Context, ep *Endpoint, req nostr.ZapRequestParams) (string, error) {
	signed, err := z.signer.SignEvent(nostr.MakeZapRequest(req))
	if err != nil {
		return "", fmt.Errorf("signing zap request: %w", err)
	}
	raw, err := encodeEvent(signed)
	if err != nil {
		return "", err
	}
	cb, err := url.Parse(ep.Callback)
	if err != nil {
		return "", fmt.Errorf("bad LNURL callback %q: %w", ep.Callback, err)
	}
	params, err := query.Values(callbackParams{
		Amount: req.AmountMsats,
		Nostr:  raw,
	})
	if err != nil {
		return "", err
	}
	q := cb.Query()
	for k, vs := range params {
		q[k] = vs
	}
	cb.RawQuery = q.Encode()

	var resp invoiceResponse
	if err := z.fetcher.FetchJSON(ctx, cb.String(), 0, &resp); err != nil {
		return "", fmt.Errorf("fetching invoice: %w", err)
	}
	if resp.PR == "" {
		return "", fmt.Errorf("%w: %s", ErrNoInvoice, resp.Reason)
	}
	return resp.PR, nil
}

// Reports whether the recipient's newest zap receipt is recent and came from the bot.
func (z *Zapper) recentlyZapped(ctx context.Context, pubkey string) bool {
	last, err := z.fetcher.QueryLatest(ctx, z.zapCheckRelays, nostr.Filter{
		Kinds: []int{nostr.KindZap},
		Tags:  map[string][]string{"p": {pubkey}},
		Limit: 1,
	})
	if err != nil || last == nil {
		return false
	}
	if z.now().Unix()-last.CreatedAt >= int64(recentZapWindow/time.Second) {
		return false
	}
	req, err := nostr.ZapRequestFromReceipt(last)
	if err != nil {
		return false
	}
	return req.PubKey == z.signer.GetPublicKey()
}

// Zaps the author of target. When target is itself a zap request, the zap goes to its author
// without referencing the request. Returns nil without paying if the bot zapped the same
// recipient within the last ten minutes.
func (z *Zapper) Zap(ctx context.Context, target *nostr.Event, sats int64, comment string) error {
	if z.wallet == nil {
		return ErrWalletNotConfigured
	}
	profile, err := z.Profile(ctx, target.PubKey, nil)
	if err != nil {
		return err
	}
	ep, err := z.Endpoint(ctx, profile)
	if err != nil {
		return err
	}
	if z.recentlyZapped(ctx, target.PubKey) {
		z.logger.Info("skipping zap, recently zapped", "pubkey", target.PubKey)
		return nil
	}

	eventID := target.ID
	if target.Kind == nostr.KindZapRequest {
		eventID = ""
	}
	invoice, err := z.Invoice(ctx, ep, nostr.ZapRequestParams{
		Recipient:   target.PubKey,
		EventID:     eventID,
		AmountMsats: sats * 1000,
		Comment:     comment,
		Relays:      z.broadcastRelays,
		CreatedAt:   z.now().Unix(),
	})
	if err != nil {
		return err
	}
	pay, err := nostr.MakeNWCPayInvoice(z.wallet, invoice, z.now().Unix())
	if err != nil {
		return err
	}
	if err := z.publisher.Publish(ctx, []string{z.wallet.Relay}, pay); err != nil {
		return fmt.Errorf("publishing wallet request: %w", err)
	}
	z.logger.Info("zapped", "pubkey", target.PubKey, "sats", sats)
	return nil
}
