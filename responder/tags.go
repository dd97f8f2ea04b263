package responder

import (
	"fmt"
	"strconv"

	"github.com/nikolat/nostr-unyu/nostr"
)

// Addressed reply: thread root (copied, or synthesized from the source event), reply marker, the
// source's other mentions, then the source author.
func ReplyTags(evt *nostr.Event) nostr.Tags {
	return threadTags(evt, true)
}

// Ambient reply: same threading as [ReplyTags] without any `p` tags.
func AmbientTags(evt *nostr.Event) nostr.Tags {
	return threadTags(evt, false)
}

func threadTags(evt *nostr.Event, addPTag bool) nostr.Tags {
	var tags nostr.Tags
	if root := evt.Tags.FindRoot(); root != nil {
		tags = append(tags, root.Clone(), nostr.Tag{"e", evt.ID, "", "reply", evt.PubKey})
	} else {
		tags = append(tags, nostr.Tag{"e", evt.ID, "", "root", evt.PubKey})
	}
	if !addPTag {
		return tags
	}
	seen := map[string]bool{evt.PubKey: true}
	for _, t := range evt.Tags {
		if len(t) < 2 || t[0] != "p" || seen[t[1]] {
			continue
		}
		seen[t[1]] = true
		tags = append(tags, t.Clone())
	}
	return append(tags, nostr.Tag{"p", evt.PubKey})
}

// Quote reference to the source event. Channel messages keep their channel root.
func QuoteTags(evt *nostr.Event) (nostr.Tags, error) {
	q := nostr.Tags{
		{"q", evt.ID, "", evt.PubKey},
		{"p", evt.PubKey},
	}
	switch evt.Kind {
	case nostr.KindTextNote:
		return q, nil
	case nostr.KindChannelMessage:
		root := evt.Tags.FindRoot()
		if root == nil {
			return nil, ErrRootNotFound
		}
		return append(nostr.Tags{root.Clone()}, q...), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedKind, evt.Kind)
}

// Reaction target: event id, author and kind.
func FavoriteTags(evt *nostr.Event) nostr.Tags {
	return nostr.Tags{
		{"e", evt.ID},
		{"p", evt.PubKey},
		{"k", strconv.Itoa(evt.Kind)},
	}
}

// Default strategy of a rule-table mode: ambient for Normal, addressed for Reply.
func ModeTags(evt *nostr.Event, mode Mode) (nostr.Tags, error) {
	switch mode {
	case ModeNormal:
		return AmbientTags(evt), nil
	case ModeReply:
		return ReplyTags(evt), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
}
