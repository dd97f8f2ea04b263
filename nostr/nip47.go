package nostr

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidWalletConnect = errors.New("invalid wallet connect URI")

// Parsed `nostr+walletconnect://<wallet pubkey>?relay=<url>&secret=<hex>` connection string.
type WalletConnectURI struct {
	WalletPubKey string
	Relay        string
	Secret       []byte
}

func ParseWalletConnectURI(raw string) (*WalletConnectURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWalletConnect, err)
	}
	if u.Scheme != "nostr+walletconnect" && u.Scheme != "nostrwalletconnect" {
		return nil, fmt.Errorf("%w: unexpected scheme %q", ErrInvalidWalletConnect, u.Scheme)
	}
	pubkey := u.Host
	if pubkey == "" {
		pubkey = strings.TrimPrefix(u.Opaque, "//")
	}
	if pubkey == "" {
		pubkey = strings.TrimPrefix(u.Path, "/")
	}
	relay := u.Query().Get("relay")
	secret := u.Query().Get("secret")
	if !IsHex32(pubkey) || relay == "" || secret == "" {
		return nil, fmt.Errorf("%w: missing pubkey, relay or secret", ErrInvalidWalletConnect)
	}
	seckey, err := hex.DecodeString(secret)
	if err != nil || len(seckey) != 32 {
		return nil, fmt.Errorf("%w: bad secret", ErrInvalidWalletConnect)
	}
	return &WalletConnectURI{
		WalletPubKey: pubkey,
		Relay:        relay,
		Secret:       seckey,
	}, nil
}

type nwcRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// Builds and signs a NIP-47 `pay_invoice` request, encrypted to the wallet service with the
// connection secret.
func MakeNWCPayInvoice(wc *WalletConnectURI, invoice string, createdAt int64) (*Event, error) {
	signer, err := NewPlainKeySigner(wc.Secret)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(nwcRequest{
		Method: "pay_invoice",
		Params: map[string]any{"invoice": invoice},
	})
	if err != nil {
		return nil, err
	}
	content, err := signer.Encrypt(string(body), wc.WalletPubKey)
	if err != nil {
		return nil, fmt.Errorf("encrypting NWC request: %w", err)
	}
	return signer.SignEvent(EventTemplate{
		Kind:      KindNWCRequest,
		CreatedAt: createdAt,
		Tags:      Tags{{"p", wc.WalletPubKey}},
		Content:   content,
	})
}
