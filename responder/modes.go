package responder

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
)

// the bot addressed by name, e.g. "うにゅう、" or "うにゅうちゃん、"
const namePrefix = `(うにゅう、|うにゅう[くさた]ん、|うにゅう[ちに]ゃん、)`

var namePrefixRegex = regexp.MustCompile(`^` + namePrefix)

func (r *Responder) modeNormal(ctx context.Context, evt *nostr.Event) (*Reply, error) {
	// talking to someone else, or to the bot (which arrives in reply mode)
	if evt.Tags.GetFirst("p") != nil {
		return nil, nil
	}
	if namePrefixRegex.MatchString(evt.Content) {
		return nil, nil
	}
	reply, _, err := r.dispatch(ctx, evt, ModeNormal)
	return reply, err
}

var (
	futureRegex = regexp.MustCompile(`未来`)
	digitsRegex = regexp.MustCompile(`\d+`)
)

func (r *Responder) modeReply(ctx context.Context, evt *nostr.Event) (*Reply, error) {
	reply, matched, err := r.dispatch(ctx, evt, ModeReply)
	if matched || err != nil {
		return reply, err
	}

	rc := &RuleContext{Event: evt, Mode: ModeReply, Logger: r.logger, r: r}
	generated := evt.Tags.Find(func(t nostr.Tag) bool {
		return len(t) >= 2 && t[0] == "t" && t[1] == "ぬるぽが生成画像"
	})
	switch {
	case generated != nil:
		return quoteReply(rc, rc.Any("上手やな", "上手いやん", "ワイの方が上手いな"))
	case futureRegex.MatchString(evt.Content):
		m := digitsRegex.FindString(evt.Content)
		delay, err := strconv.ParseInt(m, 10, 64)
		if m == "" || err != nil {
			return &Reply{Content: "秒数を指定せえ", Tags: rc.ReplyTags()}, nil
		}
		return &Reply{Content: m + "秒後からのリプライやで", Tags: rc.ReplyTags(), Delay: &delay}, nil
	}
	return &Reply{Content: `\s[10]えんいー`, Tags: rc.AmbientTags()}, nil
}

var (
	emojiUnyu   = nostr.Tag{"emoji", "unyu", "https://nikolat.github.io/avatar/disc2.png"}
	emojiSakura = nostr.Tag{"emoji", "uka_sakurah00",
		"https://ukadon-cdn.de10.moe/system/custom_emojis/images/000/006/840/original/uka_sakurah00.png"}
)

type reaction struct {
	matcher Matcher
	// returns the reaction content
	pick func(rc *RuleContext) string
}

func fixed(s string) func(rc *RuleContext) string {
	return func(*RuleContext) string { return s }
}

func oneOf(choices ...string) func(rc *RuleContext) string {
	return func(rc *RuleContext) string { return rc.Any(choices...) }
}

// "うにゅう" anywhere it is not followed by "ハウス" or "、"
func matchBareUnyu(content string) []string {
	const word = "うにゅう"
	for i := 0; ; {
		j := strings.Index(content[i:], word)
		if j < 0 {
			return nil
		}
		at := i + j
		rest := content[at+len(word):]
		if !strings.HasPrefix(rest, "ハウス") && !strings.HasPrefix(rest, "、") {
			return []string{word}
		}
		i = at + len(word)
	}
}

var reactions = []reaction{
	{Regex(`うにゅうも.*よ[なね]`), oneOf("\U0001F642\u200d\u2195", "\U0001F642\u200d\u2194")},
	{Regex(`虚無`), fixed("")},
	{Regex(`(?i)マイナス|まいなす|dislike|downvote`), fixed("-")},
	{Regex(`さくら`), fixed(":uka_sakurah00:")},
	{Regex(`ぎゅうにゅう|とうにゅう`), fixed("🥛")},
	{Regex(`こうにゅう`), fixed("💸")},
	{Regex(`しゅうにゅう`), fixed("💰")},
	{Regex(`そうにゅう`), fixed("🔖")},
	{Regex(`ちゅうにゅう`), fixed("💉")},
	{Regex(`のうにゅう`), fixed("📦")},
	{Regex(`ふうにゅう`), fixed("💌")},
	{MatchFunc(matchBareUnyu), fixed(":unyu:")},
	{Regex(`^うちゅう$`), oneOf("🪐", "🛸", "🚀")},
	{Regex(`^う[^に]ゅう$`), fixed("❓")},
	{Regex(`^[^う]にゅう$`), fixed("❓")},
	{Regex(`えんいー`), fixed("⭐")},
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

func (r *Responder) modeFav(evt *nostr.Event) (*Reply, error) {
	rTag := evt.Tags.Find(func(t nostr.Tag) bool {
		return len(t) >= 2 && t[0] == "r" && isAbsoluteURL(t[1])
	})
	if rTag != nil {
		return &Reply{Content: "⭐", Kind: nostr.KindExternalReaction, Tags: nostr.Tags{rTag.Clone()}}, nil
	}
	rc := &RuleContext{Event: evt, Mode: ModeFav, Logger: r.logger, r: r}
	for _, re := range reactions {
		if re.matcher.Match(evt.Content) == nil {
			continue
		}
		content := re.pick(rc)
		tags := FavoriteTags(evt)
		switch content {
		case ":unyu:":
			tags = append(tags, emojiUnyu.Clone())
		case ":uka_sakurah00:":
			tags = append(tags, emojiSakura.Clone())
		}
		return &Reply{Content: content, Kind: nostr.KindReaction, Tags: tags}, nil
	}
	return nil, nil
}

const (
	thanksZapSats      = 39
	thanksZapMinMsats  = thanksZapSats * 1000
	thanksZapComment   = "ありがとさん"
	fakeZapReplyText   = "偽物のZapが飛んできたみたいやね"
	thanksZapReplyText = "Zapありがとさん"
)

// Thanks a zapper with a zap back, after checking the receipt came from the bot's own LNURL
// provider.
func (r *Responder) modeZap(ctx context.Context, evt *nostr.Event) (*Reply, error) {
	req, err := nostr.ZapRequestFromReceipt(evt)
	if err != nil || !nostr.VerifyEvent(req) {
		return nil, nil
	}
	logger := r.logger.With("mode", ModeZap, "id", evt.ID)
	if r.zapper == nil {
		logger.Warn("zap mode without a zapper")
		return nil, nil
	}
	profile, err := r.zapper.Profile(ctx, r.signer.GetPublicKey(), nil)
	if err != nil {
		logger.Warn("looking up own profile", "err", err)
		return nil, nil
	}
	ep, err := r.zapper.Endpoint(ctx, profile)
	if err != nil || ep.NostrPubkey == "" {
		logger.Warn("looking up own zap endpoint", "err", err)
		return nil, nil
	}
	if evt.PubKey != ep.NostrPubkey {
		return &Reply{Content: fakeZapReplyText, Kind: nostr.KindTextNote, Tags: nostr.Tags{}}, nil
	}
	amount, ok := nostr.ZapRequestAmount(req)
	if !ok || amount < thanksZapMinMsats {
		return nil, nil
	}
	if err := r.zapper.Zap(ctx, req, thanksZapSats, thanksZapComment); err != nil {
		logger.Warn("zapping back", "err", err)
		return nil, nil
	}
	return &Reply{Content: thanksZapReplyText, Kind: nostr.KindTextNote, Tags: nostr.Tags{}}, nil
}

// Deletes the events the request quotes.
func (r *Responder) modeDelete(evt *nostr.Event) (*Reply, error) {
	var tags nostr.Tags
	for _, t := range evt.Tags {
		if len(t) >= 2 && t[0] == "q" {
			tags = append(tags, nostr.Tag{"e", t[1]})
		}
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &Reply{Content: "", Kind: nostr.KindDeletion, Tags: tags}, nil
}
