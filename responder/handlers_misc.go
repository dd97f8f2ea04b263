package responder

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/textutil"
)

const (
	charaFesURL  = "https://bsp-prize.jp/chara-sai/2025.html"
	chronostrURL = "https://chro.nostrapp.me/"
	chiihouURL   = "https://nikolat.github.io/chiihou/"
	wordCloudURL = "https://sns.uwith.net/"
	postChecker  = "https://koteitan.github.io/nostr-post-checker/?hideform"
)

var (
	searchURLs = []string{
		"https://nos.today/",
		"https://search.yabu.me/",
		"https://nosey.vercel.app/",
		"https://showhyuga.pages.dev/utility/nos_search",
	}
	publicChats = [][2]string{
		{"うにゅうハウス", "https://unyu-house.vercel.app/"},
		{"NostrChat", "https://www.nostrchat.io/"},
		{"Coracle Chat", "https://chat.coracle.social/"},
		{"GARNET", "https://garnet.nostrian.net/"},
	}
	// ghost authors with a published ghost and a profile on a Japanese relay
	ukagakaPeople = []string{
		npubDon,
		"npub1yu64g5htwg2xwcht7axas2ukc8y6mx3ctn7wlh3jevtg4mj0vwcqheq0gf",
		"npub1r6pu39ezuf0kwrhsw4ts700t0dcn96umldwvl5qdgslu5ula382qgdvam8",
		"npub18rj2gle8unwgsd63gn639nhre4kpltdrtzwkede4k9mqdaqn6jgs5ekqcd",
		"npub1fzud9283ljrcfcpfrxsefnya9ayc54445249j3mdmu2dwmh9xmxqqwejyn",
		"npub18zpnffsh3j9cer83p3mhxu75a9288hqdfxewph8zxvl62usjj03qf36xhl",
		"npub1l2zcm58lwd3mz3rt964t8e3fhyr2z5w89vzn0m2u6rh7ugq9x2tsu7eek0",
		"npub1nrzk3myz2rwss03ltjk7cp44kmeyew7qx5w9ms00p6qtnzzh4dmsanykhn",
	}
	ukagakaURLs = []string{
		"https://ssp.shillest.net/",
		"https://keshiki.nobody.jp/",
		"https://ssp.shillest.net/ukadoc/manual/",
		"https://ukadon.shillest.net/",
		"https://adventar.org/calendars/8679",
	}

	askYabumiRegex = regexp.MustCompile(`うにゅうの|自分|[引ひ]いて|(もら|貰)って`)
)

func handleImageGeneration(ctx context.Context, rc *RuleContext) (*Reply, error) {
	_, prompt, _ := strings.Cut(rc.Event.Content, "画像生成")
	return &Reply{Content: "ぬるぽが 画像生成 " + strings.TrimSpace(prompt), Tags: rc.AmbientTags()}, nil
}

// Plays along with the shiritori bot's point commands.
func handleRitorin(ctx context.Context, rc *RuleContext) (*Reply, error) {
	content := rc.Event.Content
	switch {
	case strings.HasSuffix(content, "りとりんポイント"):
		return &Reply{Content: rc.Any("r!point", "🦊❗🅿️"), Tags: nostr.Tags{}}, nil
	case strings.HasSuffix(content, "つぎはなにから？"):
		return &Reply{Content: rc.Any("r!next", "🦊❗🔜"), Tags: nostr.Tags{}}, nil
	case strings.Contains(content, "りとりんポイント獲得状況"):
		return quoteReply(rc, rc.Any("これ何使えるんやろ", "もっと頑張らなあかんな", "こんなもんやな"))
	}
	return nil, nil
}

func handleBadge(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return &Reply{Content: markerBadge, Tags: rc.ReplyTags()}, nil
}

func handlePoll(ctx context.Context, rc *RuleContext) (*Reply, error) {
	if _, ok := parsePoll(rc.Event.Content); !ok {
		return &Reply{
			Content: "こんな感じで2個以上の項目を書くんや:\n次のうちどれがいい？\n- 項目1\n- 項目2",
			Tags:    rc.ReplyTags(),
		}, nil
	}
	return &Reply{Content: markerPoll, Tags: rc.ReplyTags()}, nil
}

func handleSurfaceTest(ctx context.Context, rc *RuleContext) (*Reply, error) {
	m, err := rc.Capture(1)
	if err != nil {
		return nil, err
	}
	content := "そんな番号あらへん"
	if n, err := strconv.Atoi(m); err == nil && (n == 10 || n == 11) {
		content = fmt.Sprintf(`\s[%d]表情変更テストやで`, n)
	}
	return &Reply{Content: content, Tags: rc.ReplyTags()}, nil
}

func handleAura(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return &Reply{Content: `\s[11]ありえへん……このワイが……`, Tags: rc.ReplyTags()}, nil
}

// Passes a gift from the author on to another user.
func handleGift(ctx context.Context, rc *RuleContext) (*Reply, error) {
	npub, err := rc.Capture(1)
	if err != nil {
		return nil, err
	}
	gift, err := rc.Capture(3)
	if err != nil {
		return nil, err
	}
	prefix, data, err := nostr.Decode(npub)
	pubkey, isHex := data.(string)
	if err != nil || prefix != "npub" || !isHex {
		rc.Logger.Warn("gift recipient is not an npub", "err", err, "npub", npub)
		return nil, nil
	}
	reply, err := quoteReply(rc, fmt.Sprintf("nostr:%s %s三\nあちらのお客様からやで", npub, gift), nostr.Tag{"p", pubkey})
	if err != nil {
		return nil, err
	}
	reply.Tags = append(reply.Tags, textutil.EmojiTags(rc.Event.Tags)...)
	return reply, nil
}

func handleClock(ctx context.Context, rc *RuleContext) (*Reply, error) {
	now := rc.Now()
	content := fmt.Sprintf("%d年%d月%d日 %d時%d分%d秒 %s曜日やで",
		now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(),
		string([]rune(weekdays)[now.Weekday()]))
	return &Reply{Content: content, Tags: rc.ReplyTags()}, nil
}

// Asks for a login bonus on the author's behalf when they seem to want one.
func handleLoginBonus(ctx context.Context, rc *RuleContext) (*Reply, error) {
	if askYabumiRegex.MatchString(rc.Event.Content) {
		text := rc.Any("別に欲しくはないんやけど、ログボくれんか", "ログボって何やねん", "ここでログボがもらえるって聞いたんやけど")
		return quoteReply(rc, "nostr:"+npubYabumi+" "+text, nostr.Tag{"p", pubkeyYabumi})
	}
	return &Reply{Content: rc.Any("ログボとかあらへん", "継続は力やな", "今日もログインしてえらいやで"), Tags: rc.ReplyTags()}, nil
}

func handleLoginBonusReceived(ctx context.Context, rc *RuleContext) (*Reply, error) {
	count, err := rc.Capture(1)
	if err != nil {
		return nil, err
	}
	return quoteReply(rc, rc.Any("おおきに", "まいど", "この"+count+"回分のログボって何に使えるんやろ"))
}

func handleSearch(ctx context.Context, rc *RuleContext) (*Reply, error) {
	content := "nostr:" + npubSearch + "\n" + strings.Join(searchURLs, "\n")
	return &Reply{Content: content, Tags: withLinks(rc.ReplyTags(), searchURLs...)}, nil
}

func handleMahjong(ctx context.Context, rc *RuleContext) (*Reply, error) {
	tags := append(rc.ReplyTags(), nostr.Tag{"q", idMahjong}, nostr.Tag{"r", chiihouURL})
	return &Reply{Content: "nostr:" + neventMahjong + "\n" + chiihouURL, Tags: tags}, nil
}

func handlePublicChat(ctx context.Context, rc *RuleContext) (*Reply, error) {
	lines := make([]string, 0, 2*len(publicChats))
	tags := rc.ReplyTags()
	for _, c := range publicChats {
		lines = append(lines, c[0], c[1])
		tags = append(tags, nostr.Tag{"r", c[1]})
	}
	return &Reply{Content: strings.Join(lines, "\n"), Tags: tags}, nil
}

func handleCallAdmin(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return quoteReply(rc, "nostr:"+npubDon+" 呼ばれとるで", nostr.Tag{"p", pubkeyDon})
}

func handleMaguro(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return &Reply{Content: "nostr:" + noteMaguro, Tags: append(rc.ReplyTags(), nostr.Tag{"q", idMaguro})}, nil
}

func handleChronostr(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return &Reply{Content: chronostrURL + "\nnostr:" + npubChronostr, Tags: withLinks(rc.ReplyTags(), chronostrURL)}, nil
}

// Links a post checker showing which relays carry the source event.
func handleWhereAmI(ctx context.Context, rc *RuleContext) (*Reply, error) {
	nevent, err := nostr.EncodeEvent(nostr.EventPointer{ID: rc.Event.ID, Kind: rc.Event.Kind})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s&eid=%s&kind=%d", postChecker, nevent, rc.Event.Kind)
	return &Reply{Content: u, Tags: withLinks(rc.ReplyTags(), u)}, nil
}

func handleEmojiTools(ctx context.Context, rc *RuleContext) (*Reply, error) {
	const (
		koneKone = "https://nostr-emoji-edit.uchijo.com/"
		emojito  = "https://emojito.meme/"
	)
	content := "絵文字コネコネ\n" + koneKone + "\nEmojito\n" + emojito
	return &Reply{Content: content, Tags: withLinks(rc.ReplyTags(), koneKone, emojito)}, nil
}

func handleUkagakaPeople(ctx context.Context, rc *RuleContext) (*Reply, error) {
	lines := make([]string, len(ukagakaPeople))
	for i, npub := range ukagakaPeople {
		lines[i] = "nostr:" + npub
	}
	return &Reply{Content: strings.Join(lines, "\n"), Tags: rc.ReplyTags()}, nil
}

func handleCharaFes(ctx context.Context, rc *RuleContext) (*Reply, error) {
	text := rc.Any("おかげさんでくまざわが1位になったで", "くまざわは可愛いで", "次はワイも参加できたらええな")
	return &Reply{Content: text + "\n" + charaFesURL, Tags: withLinks(rc.ReplyTags(), charaFesURL)}, nil
}

func handleCharaFesCharacter(ctx context.Context, rc *RuleContext) (*Reply, error) {
	chara, err := rc.Capture(0)
	if err != nil {
		return nil, err
	}
	text := rc.Any(chara+"もええキャラしとるな", chara+"を応援してくるとええで", chara+"とはいい趣味しとるな")
	return &Reply{Content: text + "\n" + charaFesURL, Tags: withLinks(rc.ReplyTags(), charaFesURL)}, nil
}

func handleWordCloud(ctx context.Context, rc *RuleContext) (*Reply, error) {
	tags := append(rc.ReplyTags(), nostr.Tag{"p", pubkeyWordcloud, ""}, nostr.Tag{"r", wordCloudURL})
	return &Reply{Content: "nostr:" + npubWordcloud + " どんな感じや？\n" + wordCloudURL, Tags: tags}, nil
}

func handleUkagaka(ctx context.Context, rc *RuleContext) (*Reply, error) {
	content := fmt.Sprintf("独立伺か研究施設 ばぐとら研究所\n%s\nゴーストの使い方 - SSP\n%s\n"+
		"UKADOC(伺か公式仕様書)\n%s\nうかどん(Mastodon)\n%s\n伺か Advent Calendar 2023\n%s\n"+
		"ゴーストキャプターさくら(RSS bot)\nnostr:%s\nうかフィード(RSS bot)\nnostr:%s",
		ukagakaURLs[0], ukagakaURLs[1], ukagakaURLs[2], ukagakaURLs[3], ukagakaURLs[4],
		"npub1gcs9jtw8k0r7z0c5zaaepzwm9m7ezqskqjn56swgylye78u39r7q2w0tzq",
		"npub1feed6x4yft54j7rwzcap34wxkf7rzpd50ps0vcnp04df3vjs7a5sc2vcgx")
	return &Reply{Content: content, Tags: withLinks(rc.ReplyTags(), ukagakaURLs...)}, nil
}

// Hugs back with the same emoji.
func handleHug(ctx context.Context, rc *RuleContext) (*Reply, error) {
	hug, err := rc.Capture(1)
	if err != nil {
		return nil, err
	}
	tags, err := rc.ModeTags()
	if err != nil {
		return nil, err
	}
	return &Reply{Content: hug, Tags: tags}, nil
}
