package nostr

import (
	"encoding/hex"
	"fmt"

	gonostr "github.com/nbd-wtf/go-nostr"
)

// Signs event templates on behalf of a single identity.
type Signer interface {
	// Returns the hex-encoded x-only public key.
	GetPublicKey() string
	// Fills in pubkey, id and signature.
	SignEvent(t EventTemplate) (*Event, error)
}

// Implements [Signer] with secret key material naively held in memory.
type PlainKeySigner struct {
	secHex string
	pubHex string
}

var _ Signer = (*PlainKeySigner)(nil)

// Creates a new random 32-byte secret key.
func GenerateSecretKey() ([]byte, error) {
	sk, err := hex.DecodeString(gonostr.GeneratePrivateKey())
	if err != nil {
		return nil, fmt.Errorf("secp256k1 key generation failed: %w", err)
	}
	return sk, nil
}

func NewPlainKeySigner(seckey []byte) (*PlainKeySigner, error) {
	if len(seckey) != 32 {
		return nil, fmt.Errorf("invalid secret key length: %d", len(seckey))
	}
	if isZero(seckey) {
		return nil, fmt.Errorf("invalid secret key: zero scalar")
	}
	secHex := hex.EncodeToString(seckey)
	pubHex, err := gonostr.GetPublicKey(secHex)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	return &PlainKeySigner{
		secHex: secHex,
		pubHex: pubHex,
	}, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Parses either an `nsec1...` string or a 64-character hex secret key.
func ParseSecretKey(s string) ([]byte, error) {
	if IsHex32(s) {
		return hex.DecodeString(s)
	}
	prefix, val, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if prefix != PrefixNsec {
		return nil, fmt.Errorf("secret key is not `nsec`")
	}
	return hex.DecodeString(val.(string))
}

func (s *PlainKeySigner) GetPublicKey() string {
	return s.pubHex
}

func (s *PlainKeySigner) SignEvent(t EventTemplate) (*Event, error) {
	w := gonostr.Event{
		CreatedAt: gonostr.Timestamp(t.CreatedAt),
		Kind:      t.Kind,
		Tags:      wireTags(t.Tags),
		Content:   t.Content,
	}
	if err := w.Sign(s.secHex); err != nil {
		return nil, fmt.Errorf("signing event: %w", err)
	}
	return &Event{
		ID:        w.ID,
		PubKey:    w.PubKey,
		CreatedAt: t.CreatedAt,
		Kind:      t.Kind,
		Tags:      fromWireTags(w.Tags),
		Content:   t.Content,
		Sig:       w.Sig,
	}, nil
}

// Checks that the event id matches its content and that the BIP-340 signature is valid for the
// event's pubkey.
func VerifyEvent(evt *Event) bool {
	if !ValidateEvent(evt) {
		return false
	}
	w := evt.wire()
	ok, err := w.CheckSignature()
	return err == nil && ok
}
