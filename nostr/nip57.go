package nostr

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

var ErrNoZapEndpoint = errors.New("profile has no lightning address")

// Subset of kind 0 profile content relevant to the bot.
type ProfileMetadata struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Website     string `json:"website,omitempty"`
	NIP05       string `json:"nip05,omitempty"`
	LUD06       string `json:"lud06,omitempty"`
	LUD16       string `json:"lud16,omitempty"`
	Bot         bool   `json:"bot,omitempty"`
}

func ParseProfileMetadata(evt *Event) (*ProfileMetadata, error) {
	if evt == nil || evt.Kind != KindProfileMetadata {
		return nil, fmt.Errorf("not a profile metadata event")
	}
	var meta ProfileMetadata
	if err := json.Unmarshal([]byte(evt.Content), &meta); err != nil {
		return nil, fmt.Errorf("parsing profile content: %w", err)
	}
	return &meta, nil
}

var lud16Regex = regexp.MustCompile(`^([^@]+)@([^@]+)$`)

// Returns the LNURL-pay metadata URL for the profile: lud16 (`name@domain`) takes priority,
// otherwise lud06 is bech32-decoded.
func (m *ProfileMetadata) LNURLPayURL() (string, error) {
	if m.LUD16 != "" {
		match := lud16Regex.FindStringSubmatch(m.LUD16)
		if match == nil {
			return "", fmt.Errorf("%w: malformed lud16 %q", ErrNoZapEndpoint, m.LUD16)
		}
		return fmt.Sprintf("https://%s/.well-known/lnurlp/%s", match[2], match[1]), nil
	}
	if m.LUD06 != "" {
		return DecodeLNURL(m.LUD06)
	}
	return "", ErrNoZapEndpoint
}

// Decodes a bech32 `lnurl1...` string into the URL it carries.
func DecodeLNURL(lnurl string) (string, error) {
	hrp, data5, err := bech32.DecodeNoLimit(strings.ToLower(lnurl))
	if err != nil {
		return "", fmt.Errorf("decoding lnurl: %w", err)
	}
	if hrp != "lnurl" {
		return "", fmt.Errorf("unexpected lnurl prefix %q", hrp)
	}
	data, err := bech32.ConvertBits(data5, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("decoding lnurl: %w", err)
	}
	return string(data), nil
}

// LNURL-pay (LUD-06) endpoint description, with the NIP-57 extension fields.
type LNURLPayResponse struct {
	Callback    string `json:"callback"`
	MinSendable int64  `json:"minSendable"`
	MaxSendable int64  `json:"maxSendable"`
	AllowsNostr bool   `json:"allowsNostr"`
	NostrPubkey string `json:"nostrPubkey"`
	Tag         string `json:"tag"`
}

type ZapRequestParams struct {
	Recipient   string
	EventID     string
	AmountMsats int64
	Comment     string
	Relays      []string
	CreatedAt   int64
}

// Builds an unsigned kind 9734 zap request.
func MakeZapRequest(p ZapRequestParams) EventTemplate {
	relays := Tag{"relays"}
	relays = append(relays, p.Relays...)
	tags := Tags{
		{"p", p.Recipient},
		{"amount", strconv.FormatInt(p.AmountMsats, 10)},
		relays,
	}
	if p.EventID != "" {
		tags = append(tags, Tag{"e", p.EventID})
	}
	return EventTemplate{
		Kind:      KindZapRequest,
		CreatedAt: p.CreatedAt,
		Tags:      tags,
		Content:   p.Comment,
	}
}

// Extracts and parses the zap request embedded in a zap receipt's `description` tag.
func ZapRequestFromReceipt(receipt *Event) (*Event, error) {
	desc := receipt.Tags.GetFirst("description")
	if desc == nil {
		return nil, fmt.Errorf("zap receipt has no description")
	}
	var req Event
	if err := json.Unmarshal([]byte(desc[1]), &req); err != nil {
		return nil, fmt.Errorf("parsing zap request: %w", err)
	}
	return &req, nil
}

// Returns the zap request's `amount` tag in millisatoshis.
func ZapRequestAmount(req *Event) (int64, bool) {
	tag := req.Tags.GetFirst("amount")
	if tag == nil {
		return 0, false
	}
	for _, c := range tag[1] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(tag[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
