package nostr

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
	gonostr "github.com/nbd-wtf/go-nostr"
)

// Event kinds the bot reads or writes.
const (
	KindProfileMetadata    = 0
	KindTextNote           = 1
	KindDeletion           = 5
	KindReaction           = 7
	KindBadgeAward         = 8
	KindExternalReaction   = 17
	KindChannelMessage     = 42
	KindPoll               = 1068
	KindZapRequest         = 9734
	KindZap                = 9735
	KindUserEmojiList      = 10030
	KindNWCRequest         = 23194
	KindBadgeDefinition    = 30009
	KindEmojiSet           = 30030
	KindLongFormContent    = 30023
	KindAddressableMinimum = 30000
)

// A single event tag. The first element is the type discriminator ("e", "p", "q", ...), the
// remaining elements are positional payload.
type Tag []string

// Returns the discriminator, or empty string for an empty tag.
func (t Tag) Key() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Returns the first payload element, or empty string.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

func (t Tag) Clone() Tag {
	if t == nil {
		return nil
	}
	out := make(Tag, len(t))
	copy(out, t)
	return out
}

type Tags []Tag

// Returns the first tag matching the predicate, or nil.
func (tags Tags) Find(match func(Tag) bool) Tag {
	for _, t := range tags {
		if match(t) {
			return t
		}
	}
	return nil
}

// Returns every tag matching the predicate, preserving order.
func (tags Tags) Filter(match func(Tag) bool) Tags {
	var out Tags
	for _, t := range tags {
		if match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Returns the first tag with the given key and at least one payload element.
func (tags Tags) GetFirst(key string) Tag {
	return tags.Find(func(t Tag) bool {
		return len(t) >= 2 && t[0] == key
	})
}

// Finds the NIP-10 marked thread root: `["e", <id>, <relay>, "root", ...]`.
func (tags Tags) FindRoot() Tag {
	return tags.Find(func(t Tag) bool {
		return len(t) >= 4 && t[0] == "e" && t[3] == "root"
	})
}

// Deep copy, so callers can append to the result without aliasing an immutable event.
func (tags Tags) Clone() Tags {
	if tags == nil {
		return nil
	}
	out := make(Tags, len(tags))
	for i, t := range tags {
		out[i] = t.Clone()
	}
	return out
}

// A signed (or at least identified) event, as received from or published to relays.
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// An unsigned event, as produced by the responder.
type EventTemplate struct {
	Kind      int    `json:"kind"`
	CreatedAt int64  `json:"created_at"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
}

// Canonical NIP-01 serialization: `[0,<pubkey>,<created_at>,<kind>,<tags>,<content>]`
func Serialize(pubkey string, createdAt int64, kind int, tags Tags, content string) []byte {
	evt := gonostr.Event{
		PubKey:    pubkey,
		CreatedAt: gonostr.Timestamp(createdAt),
		Kind:      kind,
		Tags:      wireTags(tags),
		Content:   content,
	}
	return evt.Serialize()
}

func wireTags(tags Tags) gonostr.Tags {
	out := make(gonostr.Tags, len(tags))
	for i, t := range tags {
		out[i] = gonostr.Tag(t)
	}
	return out
}

func fromWireTags(tags gonostr.Tags) Tags {
	out := make(Tags, len(tags))
	for i, t := range tags {
		out[i] = Tag(t)
	}
	return out
}

func (evt *Event) wire() gonostr.Event {
	return gonostr.Event{
		ID:        evt.ID,
		PubKey:    evt.PubKey,
		CreatedAt: gonostr.Timestamp(evt.CreatedAt),
		Kind:      evt.Kind,
		Tags:      wireTags(evt.Tags),
		Content:   evt.Content,
		Sig:       evt.Sig,
	}
}

// Computes the NIP-01 event id that the given author would produce for the template. Does not
// require the secret key, so callers can reference an event before it is signed.
func ComputeID(pubkey string, t EventTemplate) string {
	h := sha256.Sum256(Serialize(pubkey, t.CreatedAt, t.Kind, t.Tags, t.Content))
	return hex.EncodeToString(h[:])
}

func (evt *Event) Serialize() []byte {
	return Serialize(evt.PubKey, evt.CreatedAt, evt.Kind, evt.Tags, evt.Content)
}

func (evt *Event) GetID() string {
	h := sha256.Sum256(evt.Serialize())
	return hex.EncodeToString(h[:])
}

func (evt *Event) Template() EventTemplate {
	return EventTemplate{
		Kind:      evt.Kind,
		CreatedAt: evt.CreatedAt,
		Tags:      evt.Tags,
		Content:   evt.Content,
	}
}

// Checks the structural shape of an event: lower-case hex id, pubkey and signature of the right
// lengths, non-negative kind, and that the id matches the serialized content.
func ValidateEvent(evt *Event) bool {
	if evt == nil {
		return false
	}
	if !isLowerHex(evt.ID, 64) || !isLowerHex(evt.PubKey, 64) || !isLowerHex(evt.Sig, 128) {
		return false
	}
	if evt.Kind < 0 || evt.CreatedAt < 0 {
		return false
	}
	for _, t := range evt.Tags {
		if t == nil {
			return false
		}
	}
	return evt.GetID() == evt.ID
}

func isLowerHex(s string, size int) bool {
	if len(s) != size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(('0' <= c && c <= '9') || ('a' <= c && c <= 'f')) {
			return false
		}
	}
	return true
}

// Returns true if the string is a 64-character lower-case hex value (an event id or pubkey).
func IsHex32(s string) bool {
	return isLowerHex(s, 64)
}
