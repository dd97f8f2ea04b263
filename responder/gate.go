package responder

import (
	"context"
	"fmt"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/setstore"
)

const (
	// channel ids (kind 40 event ids) where channel messages are answered
	SetAllowedChannels = "allowed-channels"
	// hex pubkeys that are never answered
	SetDeniedAuthors = "denied-authors"
	// tag names that make an event off-limits
	SetDisallowedTags = "disallowed-tags"
)

// Compiled-in gate configuration.
func DefaultSets() *setstore.MemSetStore {
	s := setstore.NewMemSetStore()
	s.Add(SetAllowedChannels,
		"be8e52c0c70ec5390779202b27d9d6fc7286d0e9a2bc91c001d6838d40bafa4a", // Nostr伺か部
		"8206e76969256cd33277eeb00a45e445504dfb321788b5c3cc5d23b561765a74", // うにゅうハウス開発
		"330fc57e48e39427dd5ea555b0741a3f715a55e10f8bb6616c27ec92ebc5e64b", // カスタム絵文字の川
		"c8d5c2709a5670d6f621ac8020ac3e4fc3057a4961a15319f7c0818309407723", // Nostr麻雀開発部
		"5b0703f5add2bb9e636bcae1ef7870ba6a591a93b6b556aca0f14b0919006598",
		"addfe50481fb4edcf4ca42faaf0fa28e4b4caa36409f37f0cf0c1c6bf4acb3b5",
		"e3e2fef762933fb7d4dd59d215a9616911d958cbf0ae0401cbf9b1a9764d2915",
	)
	s.Add(SetDeniedAuthors, pubkeyJantaku)
	s.Add(SetDisallowedTags, "content-warning", "proxy")
	return s
}

// Decides whether the bot may respond to evt at all. Kinds the bot is never routed are faults.
func (r *Responder) admit(ctx context.Context, evt *nostr.Event) (bool, error) {
	denied, err := r.sets.InSet(ctx, SetDeniedAuthors, evt.PubKey)
	if err != nil {
		return false, err
	}
	if denied {
		return false, nil
	}
	for _, t := range evt.Tags {
		if len(t) < 1 {
			continue
		}
		bad, err := r.sets.InSet(ctx, SetDisallowedTags, t[0])
		if err != nil {
			return false, err
		}
		if bad {
			return false, nil
		}
	}

	switch evt.Kind {
	case nostr.KindTextNote, nostr.KindZap:
		return true, nil
	case nostr.KindChannelMessage:
		root := evt.Tags.FindRoot()
		if root == nil {
			return false, ErrRootNotFound
		}
		return r.sets.InSet(ctx, SetAllowedChannels, root[1])
	}
	return false, fmt.Errorf("%w: %d", ErrUnsupportedKind, evt.Kind)
}
