package nostr

import (
	"errors"
	"fmt"
	"regexp"

	gonostr "github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

const (
	PrefixNpub     = "npub"
	PrefixNsec     = "nsec"
	PrefixNote     = "note"
	PrefixNevent   = "nevent"
	PrefixNaddr    = "naddr"
	PrefixNprofile = "nprofile"
)

var ErrInvalidEntity = errors.New("invalid NIP-19 entity")

// Matches a NIP-19 entity anywhere in a string, optionally with a `nostr:` URI prefix.
var EntityRegex = regexp.MustCompile(`(?:nostr:)?((?:npub|nsec|note|nevent|naddr|nprofile)1[02-9ac-hj-np-z]+)`)

// Reference to an event, as carried by `nevent`. Kind is read when present but never written.
type EventPointer struct {
	ID     string
	Relays []string
	Author string
	Kind   int
}

// Reference to an addressable event, as carried by `naddr`.
type EntityPointer struct {
	PublicKey  string
	Kind       int
	Identifier string
	Relays     []string
}

// Reference to a profile, as carried by `nprofile`.
type ProfilePointer struct {
	PublicKey string
	Relays    []string
}

// Returns the `kind:pubkey:d` address string used by `a` tags.
func (ep EntityPointer) AsTagReference() string {
	return fmt.Sprintf("%d:%s:%s", ep.Kind, ep.PublicKey, ep.Identifier)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
}

func EncodePublicKey(pubHex string) (string, error) {
	if !IsHex32(pubHex) {
		return "", fmt.Errorf("%w: npub value must be 32 bytes of hex", ErrInvalidEntity)
	}
	return nip19.EncodePublicKey(pubHex)
}

func EncodePrivateKey(secHex string) (string, error) {
	if !IsHex32(secHex) {
		return "", fmt.Errorf("%w: nsec value must be 32 bytes of hex", ErrInvalidEntity)
	}
	return nip19.EncodePrivateKey(secHex)
}

func EncodeNote(idHex string) (string, error) {
	if !IsHex32(idHex) {
		return "", fmt.Errorf("%w: note value must be 32 bytes of hex", ErrInvalidEntity)
	}
	return nip19.EncodeNote(idHex)
}

func EncodeEvent(ptr EventPointer) (string, error) {
	if !IsHex32(ptr.ID) {
		return "", fmt.Errorf("%w: nevent id must be 32 bytes of hex", ErrInvalidEntity)
	}
	if ptr.Author != "" && !IsHex32(ptr.Author) {
		return "", fmt.Errorf("%w: nevent author must be 32 bytes of hex", ErrInvalidEntity)
	}
	code, err := nip19.EncodeEvent(ptr.ID, ptr.Relays, ptr.Author)
	if err != nil {
		return "", invalid(err)
	}
	return code, nil
}

func EncodeEntity(ptr EntityPointer) (string, error) {
	if !IsHex32(ptr.PublicKey) {
		return "", fmt.Errorf("%w: naddr author must be 32 bytes of hex", ErrInvalidEntity)
	}
	code, err := nip19.EncodeEntity(ptr.PublicKey, ptr.Kind, ptr.Identifier, ptr.Relays)
	if err != nil {
		return "", invalid(err)
	}
	return code, nil
}

func EncodeProfile(ptr ProfilePointer) (string, error) {
	if !IsHex32(ptr.PublicKey) {
		return "", fmt.Errorf("%w: nprofile pubkey must be 32 bytes of hex", ErrInvalidEntity)
	}
	code, err := nip19.EncodeProfile(ptr.PublicKey, ptr.Relays)
	if err != nil {
		return "", invalid(err)
	}
	return code, nil
}

// Decodes a NIP-19 entity. The returned value is a hex string for npub/nsec/note, and an
// [EventPointer], [EntityPointer] or [ProfilePointer] for the TLV forms.
func Decode(code string) (string, any, error) {
	prefix, val, err := nip19.Decode(code)
	if err != nil {
		return "", nil, invalid(err)
	}

	switch v := val.(type) {
	case *gonostr.EventPointer:
		val = *v
	case *gonostr.EntityPointer:
		val = *v
	case *gonostr.ProfilePointer:
		val = *v
	}
	switch v := val.(type) {
	case string:
		if !IsHex32(v) {
			return "", nil, fmt.Errorf("%w: %s data must be 32 bytes", ErrInvalidEntity, prefix)
		}
		return prefix, v, nil
	case gonostr.EventPointer:
		if v.ID == "" {
			return "", nil, fmt.Errorf("%w: nevent missing id", ErrInvalidEntity)
		}
		return prefix, EventPointer{ID: v.ID, Relays: v.Relays, Author: v.Author, Kind: v.Kind}, nil
	case gonostr.EntityPointer:
		if v.PublicKey == "" {
			return "", nil, fmt.Errorf("%w: naddr missing author", ErrInvalidEntity)
		}
		return prefix, EntityPointer{PublicKey: v.PublicKey, Kind: v.Kind, Identifier: v.Identifier, Relays: v.Relays}, nil
	case gonostr.ProfilePointer:
		if v.PublicKey == "" {
			return "", nil, fmt.Errorf("%w: nprofile missing pubkey", ErrInvalidEntity)
		}
		return prefix, ProfilePointer{PublicKey: v.PublicKey, Relays: v.Relays}, nil
	}
	return "", nil, fmt.Errorf("%w: unknown prefix %q", ErrInvalidEntity, prefix)
}
