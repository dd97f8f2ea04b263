package responder

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/textutil"
)

var (
	nsecRegex    = regexp.MustCompile(`nsec1\w{5,58}`)
	surfaceRegex = regexp.MustCompile(`^\\s\[(\d+)\]`)
)

const (
	secretLeakText = `\s[11]お前……秘密鍵を漏らすのは……あかんに決まっとるやろ！！`

	// control contents a handler emits to request a companion event
	markerBadge = `\![*]`
	markerPoll  = `\__q`
)

// Surfaces that have a matching profile picture.
var profileSurfaces = map[int]bool{10: true, 11: true}

func (r *Responder) assemble(evt *nostr.Event, mode Mode, reply *Reply) ([]nostr.EventTemplate, error) {
	res := nostr.EventTemplate{
		Kind:      reply.Kind,
		CreatedAt: evt.CreatedAt + 1,
		Tags:      reply.Tags,
		Content:   reply.Content,
	}
	if res.Kind == 0 {
		res.Kind = evt.Kind
	}
	if reply.Delay != nil {
		res.CreatedAt = delayed(evt.CreatedAt, *reply.Delay)
	}
	if res.Tags == nil {
		res.Tags = nostr.Tags{}
	}

	if (mode == ModeNormal || mode == ModeReply) && nsecRegex.MatchString(evt.Content) {
		tags, err := ModeTags(evt, mode)
		if err != nil {
			return nil, err
		}
		res = nostr.EventTemplate{
			Kind:      evt.Kind,
			CreatedAt: evt.CreatedAt + 1,
			Tags:      tags,
			Content:   secretLeakText,
		}
	}

	if m := surfaceRegex.FindStringSubmatch(res.Content); m != nil {
		surface, err := strconv.Atoi(m[1])
		if err == nil && profileSurfaces[surface] {
			profile, err := r.profileTemplate(evt, surface)
			if err != nil {
				return nil, err
			}
			res.Content = strings.TrimPrefix(res.Content, m[0])
			return []nostr.EventTemplate{profile, res}, nil
		}
	}

	switch res.Content {
	case markerBadge:
		badge := nostr.EventTemplate{
			Kind:      nostr.KindBadgeAward,
			CreatedAt: evt.CreatedAt + 1,
			Tags: nostr.Tags{
				{"a", badgeDefinition, BadgeRelays[0]},
				{"p", evt.PubKey},
			},
			Content: "",
		}
		ref, err := r.companionRef(badge, BadgeRelays)
		if err != nil {
			return nil, err
		}
		res.Content = "ワイのバッジやで\nnostr:" + ref.nevent
		res.Tags = append(res.Tags, nostr.Tag{"q", ref.id, BadgeRelays[0], ref.pubkey})
		return []nostr.EventTemplate{badge, res}, nil
	case markerPoll:
		poll, ok := r.pollTemplate(evt, PollRelays)
		if !ok {
			// the poll rule checks the shape before emitting the marker
			return nil, fmt.Errorf("poll marker for an event without a poll")
		}
		ref, err := r.companionRef(poll, PollRelays)
		if err != nil {
			return nil, err
		}
		res.Content = "アンケートやで\nnostr:" + ref.nevent
		res.Tags = append(res.Tags, nostr.Tag{"q", ref.id, PollRelays[0], ref.pubkey})
		return []nostr.EventTemplate{poll, res}, nil
	}
	return []nostr.EventTemplate{res}, nil
}

type companion struct {
	id     string
	pubkey string
	nevent string
}

// Computes the id the companion will have once signed, and its nevent reference.
func (r *Responder) companionRef(t nostr.EventTemplate, relays []string) (companion, error) {
	pub := r.signer.GetPublicKey()
	id := nostr.ComputeID(pub, t)
	nevent, err := nostr.EncodeEvent(nostr.EventPointer{
		ID:     id,
		Relays: relays,
		Author: pub,
		Kind:   t.Kind,
	})
	if err != nil {
		return companion{}, err
	}
	return companion{id: id, pubkey: pub, nevent: nevent}, nil
}

type birthday struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

type botProfile struct {
	About       string   `json:"about"`
	Bot         bool     `json:"bot"`
	DisplayName string   `json:"display_name"`
	LUD16       string   `json:"lud16"`
	Name        string   `json:"name"`
	NIP05       string   `json:"nip05"`
	Picture     string   `json:"picture"`
	Website     string   `json:"website"`
	Birthday    birthday `json:"birthday"`
}

// Profile update that swaps the bot's picture to the given surface. The birthday is always today.
func (r *Responder) profileTemplate(evt *nostr.Event, surface int) (nostr.EventTemplate, error) {
	today := r.now().In(jst)
	content, err := json.Marshal(botProfile{
		About:       fmt.Sprintf("うにゅうやで\n※自動返信BOTです\n管理者: nostr:%s\nアイコン: nostr:%s さん", npubDon, npubAwayuki),
		Bot:         true,
		DisplayName: "うにゅう",
		LUD16:       "nikolat@coinos.io",
		Name:        "unyu",
		NIP05:       "unyu@nikolat.github.io",
		Picture:     fmt.Sprintf("https://nikolat.github.io/avatar/unyu-%d.png", surface),
		Website:     "https://nikolat.github.io/",
		Birthday:    birthday{Month: int(today.Month()), Day: today.Day()},
	})
	if err != nil {
		return nostr.EventTemplate{}, err
	}
	return nostr.EventTemplate{
		Kind:      nostr.KindProfileMetadata,
		CreatedAt: evt.CreatedAt + 1,
		Tags:      nostr.Tags{},
		Content:   string(content),
	}, nil
}

type pollSpec struct {
	question string
	options  []string
	multiple bool
}

// Saturates instead of wrapping past the largest timestamp.
func delayed(createdAt, delay int64) int64 {
	if delay > 0 && createdAt > math.MaxInt64-delay {
		return math.MaxInt64
	}
	return createdAt + delay
}

// Reads a poll from text: the second non-option line is the question and `- item` lines are the
// options. A first line mentioning 複数 makes it multiple choice.
func parsePoll(content string) (pollSpec, bool) {
	lines := strings.Split(content, "\n")
	var plain []string
	var poll pollSpec
	for _, l := range lines {
		if strings.HasPrefix(l, "-") {
			poll.options = append(poll.options, strings.TrimSpace(strings.Replace(l, "-", "", 1)))
			continue
		}
		plain = append(plain, l)
	}
	if len(plain) < 2 || len(poll.options) < 2 {
		return pollSpec{}, false
	}
	poll.question = plain[1]
	poll.multiple = strings.Contains(lines[0], "複数")
	return poll, true
}

const (
	pollDuration    = 24 * 60 * 60
	optionIDLength  = 9
	optionIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)

func (r *Responder) randomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = optionIDCharset[r.rand.IntN(len(optionIDCharset))]
	}
	return string(b)
}

func (r *Responder) pollTemplate(evt *nostr.Event, relays []string) (nostr.EventTemplate, bool) {
	poll, ok := parsePoll(evt.Content)
	if !ok {
		return nostr.EventTemplate{}, false
	}
	var tags nostr.Tags
	for _, opt := range poll.options {
		tags = append(tags, nostr.Tag{"option", r.randomString(optionIDLength), opt})
	}
	for _, relay := range relays {
		tags = append(tags, nostr.Tag{"relay", relay})
	}
	pollType := "singlechoice"
	if poll.multiple {
		pollType = "multiplechoice"
	}
	tags = append(tags,
		nostr.Tag{"polltype", pollType},
		nostr.Tag{"endsAt", strconv.FormatInt(evt.CreatedAt+pollDuration, 10)},
	)
	for _, t := range textutil.EmojiTags(evt.Tags) {
		tags = append(tags, t.Clone())
	}
	return nostr.EventTemplate{
		Kind:      nostr.KindPoll,
		CreatedAt: evt.CreatedAt + 1,
		Tags:      tags,
		Content:   poll.question,
	}, true
}
