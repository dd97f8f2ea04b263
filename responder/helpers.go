package responder

import (
	"context"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
)

// Answers with one of choices, threaded as an addressed reply.
func canned(choices ...string) HandlerFunc {
	return func(ctx context.Context, rc *RuleContext) (*Reply, error) {
		return &Reply{Content: rc.Any(choices...), Tags: rc.ReplyTags()}, nil
	}
}

// Like [canned] but threaded with the mode's default tags.
func cannedMode(choices ...string) HandlerFunc {
	return func(ctx context.Context, rc *RuleContext) (*Reply, error) {
		tags, err := rc.ModeTags()
		if err != nil {
			return nil, err
		}
		return &Reply{Content: rc.Any(choices...), Tags: tags}, nil
	}
}

// Answers with the URLs, one per line, each also referenced by an `r` tag.
func links(urls ...string) HandlerFunc {
	return func(ctx context.Context, rc *RuleContext) (*Reply, error) {
		return &Reply{Content: strings.Join(urls, "\n"), Tags: withLinks(rc.ReplyTags(), urls...)}, nil
	}
}

func withLinks(tags nostr.Tags, urls ...string) nostr.Tags {
	for _, u := range urls {
		tags = append(tags, nostr.Tag{"r", u})
	}
	return tags
}

// Quotes the source event under text.
func quoteReply(rc *RuleContext, text string, extra ...nostr.Tag) (*Reply, error) {
	ref, err := rc.Quote()
	if err != nil {
		return nil, err
	}
	tags, err := rc.QuoteTags()
	if err != nil {
		return nil, err
	}
	return &Reply{Content: text + "\nnostr:" + ref, Tags: append(tags, extra...)}, nil
}
