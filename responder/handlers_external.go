package responder

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/textutil"
)

const (
	ghostFeedURL      = "http://buynowforsale.shillest.net/ghosts/ghosts/index.rss"
	areaURL           = "http://www.jma.go.jp/bosai/common/const/area.json"
	forecastURL       = "https://www.jma.go.jp/bosai/forecast/data/overview_forecast/"
	weeklyForecastURL = "https://www.jma.go.jp/bosai/forecast/data/overview_week/"
	parkStatusURL     = "https://nullpoga.mattn-jp.workers.dev/ochinchinland"

	areaTTL     = 24 * time.Hour
	forecastTTL = 10 * time.Minute
)

var newsFeeds = []string{
	"https://www3.nhk.or.jp/rss/news/cat0.xml",
	"https://rss.itmedia.co.jp/rss/2.0/itmedia_all.xml",
	"https://forest.watch.impress.co.jp/data/rss/1.0/wf/feed.rdf",
	"https://internet.watch.impress.co.jp/data/rss/1.0/iw/feed.rdf",
	"https://pc.watch.impress.co.jp/data/rss/1.0/pcw/feed.rdf",
}

// Only the admin may trigger a test zap.
func handleZapTest(ctx context.Context, rc *RuleContext) (*Reply, error) {
	if rc.Event.PubKey != pubkeyDon {
		return &Reply{Content: "イタズラしたらあかんで", Tags: rc.ReplyTags()}, nil
	}
	content := "1sat届いたはずやで"
	if err := zapAuthor(ctx, rc, 1, "Zapのテストやで"); err != nil {
		rc.Logger.Warn("test zap failed", "err", err)
		content = "何か失敗したみたいやで"
	}
	return &Reply{Content: content, Tags: rc.ReplyTags()}, nil
}

func zapAuthor(ctx context.Context, rc *RuleContext, sats int64, comment string) error {
	z, err := rc.Zapper()
	if err != nil {
		return err
	}
	return z.Zap(ctx, rc.Event, sats, comment)
}

const weekdays = "日月火水木金土"

// Early risers, between 4 and 8 in the morning, get a few sats along with the greeting.
func handleGoodMorning(ctx context.Context, rc *RuleContext) (*Reply, error) {
	now := rc.Now()
	hour := now.Hour()
	if 4 <= hour && hour < 8 {
		week := []rune(weekdays)[now.Weekday()]
		mes := rc.Any(
			"早起きのご褒美やで",
			"健康的でええな",
			"みんなには内緒やで",
			"二度寝したらあかんで",
			"明日も早起きするんやで",
			string(week)+"曜日の朝や、今日も元気にいくで",
			"朝ご飯はしっかり食べるんやで",
			"夜ふかししたんと違うやろな？",
			"継続は力やで",
			"今日はきっといいことあるで",
		)
		if err := zapAuthor(ctx, rc, 3, mes); err != nil {
			rc.Logger.Warn("morning zap failed", "err", err)
			return &Reply{Content: rc.Any("zzz...", "まだ寝ときや", "もう朝やて？ワイは信じへんで"), Tags: rc.ReplyTags()}, nil
		}
	}
	content := rc.Any("おはようやで", "ほい、おはよう", fmt.Sprintf("もう%d時か、おはよう", hour))
	return &Reply{Content: content, Tags: rc.ReplyTags()}, nil
}

func handleFortune(ctx context.Context, rc *RuleContext) (*Reply, error) {
	kind := rc.Any(
		"牡羊座", "牡牛座", "双子座", "蟹座", "獅子座", "乙女座", "天秤座", "蠍座", "射手座", "山羊座", "水瓶座", "魚座",
		"A型", "B型", "O型", "AB型",
		"寂しがりや", "独りぼっち", "社畜", "営業職", "接客業", "自営業", "世界最強", "石油王", "海賊王", "次期総理",
		"駆け出しエンジニア", "神絵師", "ノス廃", "マナー講師", "インフルエンサー", "一般の主婦", "ビットコイナー",
		"ブロッコリー農家", "スーパーハカー", "ふぁぼ魔", "歩くNIP", "きのこ派", "たけのこ派",
	)
	star := rc.Any(
		"★★★★★", "★★★★☆", "★★★☆☆", "★★☆☆☆", "★☆☆☆☆",
		"大吉", "中吉", "小吉", "吉", "末吉", "凶", "大凶",
		"🍆🍆🍆🍆🍆", "🥦🥦🥦🥦🥦", "🍅🍅🍅🍅🍅", "🚀🚀🚀🚀🚀", "📃📃📃📃📃", "🐧🐧🐧🐧🐧", "👍👍👍👍👍", "💪💪💪💪💪",
	)
	tags := rc.ReplyTags()
	f, err := rc.Fetcher()
	if err == nil {
		var feed *fetch.Feed
		feed, err = f.FetchFeed(ctx, ghostFeedURL)
		if err == nil && len(feed.Items) > 0 {
			item := feed.Items[rc.IntN(len(feed.Items))]
			if item.Link != "" {
				content := fmt.Sprintf("%sのあなたの今日の運勢は『%s』\nラッキーゴーストは『%s』やで\n%s", kind, star, item.Title, item.Link)
				return &Reply{Content: content, Tags: withLinks(tags, item.Link)}, nil
			}
		}
	}
	if err != nil {
		rc.Logger.Warn("fortune feed unavailable", "err", err)
	}
	return &Reply{Content: "今日は占う気分ちゃうな", Tags: tags}, nil
}

func handleNews(ctx context.Context, rc *RuleContext) (*Reply, error) {
	url := rc.Any(newsFeeds...)
	tags := rc.ReplyTags()
	f, err := rc.Fetcher()
	if err == nil {
		var feed *fetch.Feed
		feed, err = f.FetchFeed(ctx, url)
		if err == nil && len(feed.Items) > 0 {
			item := feed.Items[rc.IntN(min(len(feed.Items), 3))]
			if item.Link != "" {
				content := fmt.Sprintf("【%s】\n%s\n%s", feed.Title, item.Title, item.Link)
				return &Reply{Content: content, Tags: withLinks(tags, item.Link)}, nil
			}
		}
	}
	if err != nil {
		rc.Logger.Warn("news feed unavailable", "err", err, "url", url)
	}
	return &Reply{Content: "今日はニュース読む気分ちゃうな", Tags: tags}, nil
}

type area struct {
	Name string `json:"name"`
}

type areaTable struct {
	Offices  map[string]area `json:"offices"`
	Class10s map[string]area `json:"class10s"`
	Class15s map[string]area `json:"class15s"`
	Class20s map[string]area `json:"class20s"`
}

// Finds the forecast office for a place name. Offices are searched first; finer regions map to
// the office code of their prefecture.
func (t *areaTable) lookup(text string) (code, place string, ok bool) {
	for _, k := range slices.Sorted(maps.Keys(t.Offices)) {
		if name := t.Offices[k].Name; strings.Contains(name, text) {
			return k, name, true
		}
	}
	for _, m := range []map[string]area{t.Class20s, t.Class15s, t.Class10s} {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if name := m[k].Name; strings.Contains(name, text) && len(k) >= 3 {
				return k[:len(k)-3] + "000", name, true
			}
		}
	}
	return "", "", false
}

type forecast struct {
	Text string `json:"text"`
}

func handleWeather(ctx context.Context, rc *RuleContext) (*Reply, error) {
	text, err := rc.Capture(3)
	if err != nil {
		return nil, err
	}
	weekly, err := rc.Capture(4)
	if err != nil {
		return nil, err
	}
	if strings.Contains(rc.Event.Content, "の天気です！") {
		return quoteReply(rc, rc.Any("ありがとさん", "さすがやな", "助かったで"))
	}

	f, err := rc.Fetcher()
	var areas areaTable
	if err == nil {
		err = f.FetchJSON(ctx, areaURL, areaTTL, &areas)
	}
	if err != nil {
		rc.Logger.Warn("area table unavailable", "err", err)
		return weatherUnavailable(rc, weekly != ""), nil
	}
	code, place, ok := areas.lookup(text)
	if !ok {
		content := rc.Any("どこやねん", "知らんがな", "")
		if content != "" {
			return &Reply{Content: content, Tags: rc.ReplyTags()}, nil
		}
		return quoteReply(rc, fmt.Sprintf("nostr:%s %sの天気をご所望やで", npubYabumi, text), nostr.Tag{"p", pubkeyYabumi})
	}

	base := forecastURL
	if weekly != "" {
		base = weeklyForecastURL
	}
	var fc forecast
	if err := f.FetchJSON(ctx, base+code+".json", forecastTTL, &fc); err != nil || fc.Text == "" {
		rc.Logger.Warn("forecast unavailable", "err", err, "code", code)
		return weatherUnavailable(rc, weekly != ""), nil
	}
	content := fmt.Sprintf("%sの天気やで。\n\n%s\n\n（※出典：気象庁ホームページ）", place, strings.ReplaceAll(fc.Text, `\n`, "\n"))
	return &Reply{Content: content, Tags: rc.ReplyTags()}, nil
}

func weatherUnavailable(rc *RuleContext, weekly bool) *Reply {
	content := "そんな田舎の天気なんか知らんで"
	if weekly {
		content = "そんな先のこと気にせんでええ"
	}
	return &Reply{Content: content, Tags: rc.ReplyTags()}
}

type parkStatus struct {
	Status string `json:"status"`
}

func handleAmusementPark(ctx context.Context, rc *RuleContext) (*Reply, error) {
	tags := rc.AmbientTags()
	f, err := rc.Fetcher()
	var status parkStatus
	if err == nil {
		err = f.FetchJSON(ctx, parkStatusURL, 0, &status)
	}
	if err != nil {
		rc.Logger.Warn("park status unavailable", "err", err)
		return &Reply{Content: "知らんがな", Tags: tags}, nil
	}
	if status.Status == "close" {
		return &Reply{Content: rc.Any("閉じとるで", "閉園しとるで"), Tags: tags}, nil
	}
	return &Reply{Content: rc.Any("開いとるで", "開園しとるで"), Tags: tags}, nil
}

// Looks up which emoji sets the custom emoji of the quoted events come from, by walking each
// quoted author's emoji list (kind 10030) and the sets (kind 30030) it references.
func handleEmojiSearch(ctx context.Context, rc *RuleContext) (*Reply, error) {
	f, err := rc.Fetcher()
	if err != nil {
		rc.Logger.Warn("emoji search unavailable", "err", err)
		return &Reply{Content: "見つからへん", Tags: rc.ReplyTags()}, nil
	}
	var quoted []*nostr.Event
	for _, q := range rc.Event.Tags {
		if len(q) < 2 || q[0] != "q" {
			continue
		}
		relays := EmojiSearchRelays
		if len(q) >= 3 && isAbsoluteURL(q[2]) {
			relays = []string{q[2]}
		}
		evt, err := f.QueryLatest(ctx, relays, nostr.Filter{IDs: []string{q[1]}})
		if err != nil {
			rc.Logger.Warn("quoted event lookup failed", "err", err, "id", q[1])
			continue
		}
		if evt != nil {
			quoted = append(quoted, evt)
		}
	}

	var found []*nostr.Event
	for _, qevt := range quoted {
		wanted := textutil.EmojiTags(qevt.Tags)
		if len(wanted) == 0 {
			continue
		}
		list, err := f.QueryLatest(ctx, EmojiSearchRelays, nostr.Filter{
			Kinds:   []int{nostr.KindUserEmojiList},
			Authors: []string{qevt.PubKey},
		})
		if err != nil {
			rc.Logger.Warn("emoji list lookup failed", "err", err, "pubkey", qevt.PubKey)
			continue
		}
		if list == nil {
			continue
		}
		filters := emojiSetFilters(list.Tags)
		for group := range slices.Chunk(filters, 10) {
			sets, err := f.QueryEvents(ctx, EmojiSearchRelays, group...)
			if err != nil {
				rc.Logger.Warn("emoji set lookup failed", "err", err)
				continue
			}
			for _, set := range sets {
				if sharesEmoji(set.Tags, wanted) {
					found = append(found, set)
				}
			}
		}
	}

	if len(found) == 0 {
		return &Reply{Content: "見つからへん", Tags: rc.ReplyTags()}, nil
	}
	var tags nostr.Tags
	naddrs := make([]string, 0, len(found))
	for _, set := range found {
		var d string
		if t := set.Tags.GetFirst("d"); t != nil {
			d = t[1]
		}
		naddr, err := nostr.EncodeEntity(nostr.EntityPointer{PublicKey: set.PubKey, Kind: set.Kind, Identifier: d})
		if err != nil {
			return nil, err
		}
		naddrs = append(naddrs, "nostr:"+naddr)
		tags = append(tags, nostr.Tag{"a", fmt.Sprintf("%d:%s:%s", set.Kind, set.PubKey, d), EmojiSearchRelays[0]})
	}
	return &Reply{Content: strings.Join(naddrs, "\n"), Tags: append(tags, rc.ReplyTags()...)}, nil
}

// Turns the `a` tags of an emoji list into one emoji set filter per author, with the author's
// identifiers merged in first-seen order.
func emojiSetFilters(tags nostr.Tags) []nostr.Filter {
	var authors []string
	ids := map[string][]string{}
	for _, t := range tags {
		if len(t) < 2 || t[0] != "a" {
			continue
		}
		parts := strings.Split(t[1], ":")
		if len(parts) < 2 {
			continue
		}
		author := parts[1]
		if _, ok := ids[author]; !ok {
			authors = append(authors, author)
			ids[author] = nil
		}
		if len(parts) >= 3 && !slices.Contains(ids[author], parts[2]) {
			ids[author] = append(ids[author], parts[2])
		}
	}
	filters := make([]nostr.Filter, 0, len(authors))
	for _, author := range authors {
		filter := nostr.Filter{Kinds: []int{nostr.KindEmojiSet}, Authors: []string{author}}
		if len(ids[author]) > 0 {
			filter.Tags = map[string][]string{"d": ids[author]}
		}
		filters = append(filters, filter)
	}
	return filters
}

func sharesEmoji(tags nostr.Tags, wanted nostr.Tags) bool {
	for _, have := range textutil.EmojiTags(tags) {
		for _, w := range wanted {
			if have[2] == w[2] {
				return true
			}
		}
	}
	return false
}
