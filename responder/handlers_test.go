package responder

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFire(t *testing.T) {
	f := setup(t, nil)
	cases := []struct {
		content string
		want    string
	}{
		{"うにゅう、ワイを燃やして", "ワイ\n🔥🔥"},
		{"うにゅう、ワイ ー ワイを潰して", "🫸ワイワイ🫷"},
		{"うにゅう、ワイーを伸ばして", "ワイーー"},
		{"うにゅう、ワイを伸ばして", "ワ イ"},
		{"うにゅう、ワイをどついて", "🤜ワイ🤛"},
		{"うにゅう、ワイを積んで", "ワイ\nワイ\nワイ\n"},
		{"うにゅう、ワイを増やして", "ワイワイワイ"},
		{"うにゅう、ワイを囲んで", "🫂🫂🫂🫂\n🫂ワイ🫂\n🫂🫂🫂🫂"},
		{"うにゅう、ワイを詰んで", "🧱💣💣🧱\n💣ワイ💣\n🧱💣💣🧱"},
		{"うにゅう、ワイを踏んで", "🦶🦶\nワイ"},
		{"うにゅう、女王様を踏んで", "👠👠👠\n女王様"},
		{"うにゅう、マグロを焼いて", "マグロ\n🐟🎵"},
		{"うにゅう、a\nbbbbを囲んで", "🫂🫂🫂🫂\n🫂a　🫂\n🫂bbbb🫂\n🫂🫂🫂🫂"},
	}
	for _, c := range cases {
		t.Run(c.content, func(t *testing.T) {
			evt := f.event(t, nostr.KindTextNote, c.content)
			out := f.respondOne(t, evt, ModeReply)
			assert.Equal(t, c.want, out.Content)
			assert.Equal(t, ReplyTags(evt), out.Tags)
		})
	}
}

func TestFireAmbientWithEmoji(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)
	emoji := nostr.Tag{"emoji", "fire_emoji", "https://example.com/fire.png"}
	evt := f.event(t, nostr.KindTextNote, ":fire_emoji:を燃やして", emoji)

	out := f.respondOne(t, evt, ModeNormal)
	assert.Equal(":fire_emoji:\n🔥", out.Content)
	assert.Equal(append(AmbientTags(evt), emoji), out.Tags)

	evt = f.event(t, nostr.KindTextNote, "ワイを応援して")
	out = f.respondOne(t, evt, ModeNormal)
	assert.Equal(":monocheer::monocheer::monocheer::monocheer:\n:monocheer:ワイ:monocheer:\n:monocheer::monocheer::monocheer::monocheer:", out.Content)
	assert.Equal(append(AmbientTags(evt), emojiMonocheer), out.Tags)

	evt = f.event(t, nostr.KindTextNote, "ワイを導いて")
	out = f.respondOne(t, evt, ModeNormal)
	assert.Equal(":tenshi_wing1:ワイ:tenshi_wing2:", out.Content)
	assert.Equal(append(AmbientTags(evt), emojiTenshiWing1, emojiTenshiWing2), out.Tags)
}

func TestRepeatTrunc(t *testing.T) {
	assert.Equal(t, "", repeatTrunc("x", -1))
	assert.Equal(t, "", repeatTrunc("x", 0.5))
	assert.Equal(t, "xx", repeatTrunc("x", 2.9))
}

func areaJSON() map[string]any {
	return map[string]any{
		"offices":  map[string]any{"130000": map[string]any{"name": "東京都"}},
		"class10s": map[string]any{"130010": map[string]any{"name": "東京地方"}},
		"class15s": map[string]any{},
		"class20s": map[string]any{"2720300": map[string]any{"name": "八尾市"}},
	}
}

func TestWeather(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)
	f.fetcher.json = map[string]any{
		areaURL:                      areaJSON(),
		forecastURL + "130000.json":  map[string]any{"text": `晴れ。\n明日も晴れ。`},
		forecastURL + "2720000.json": map[string]any{"text": "くもり。"},
	}

	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、東京の天気"), ModeReply)
	assert.Equal("東京都の天気やで。\n\n晴れ。\n明日も晴れ。\n\n（※出典：気象庁ホームページ）", out.Content)

	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、八尾の天気"), ModeReply)
	assert.Equal("八尾市の天気やで。\n\nくもり。\n\n（※出典：気象庁ホームページ）", out.Content)

	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、東京の週間天気"), ModeReply)
	assert.Equal("そんな先のこと気にせんでええ", out.Content)
	assert.Contains(f.fetcher.fetched, weeklyForecastURL+"130000.json")

	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、火星の天気"), ModeReply)
	assert.Equal("どこやねん", out.Content)
}

func TestWeatherAsksYabumi(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, script(t, 2))
	f.fetcher.json = map[string]any{areaURL: areaJSON()}

	evt := f.event(t, nostr.KindTextNote, "うにゅう、火星の天気")
	out := f.respondOne(t, evt, ModeReply)
	note, err := nostr.EncodeNote(evt.ID)
	require.NoError(t, err)
	assert.Equal("nostr:"+npubYabumi+" 火星の天気をご所望やで\nnostr:"+note, out.Content)
	assert.Equal(nostr.Tags{{"q", evt.ID, "", evt.PubKey}, {"p", evt.PubKey}, {"p", pubkeyYabumi}}, out.Tags)
}

func TestWeatherThanks(t *testing.T) {
	f := setup(t, nil)
	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、東京の天気です！"), ModeReply)
	assert.True(t, strings.HasPrefix(out.Content, "ありがとさん\nnostr:note1"), out.Content)
	assert.Empty(t, f.fetcher.fetched)
}

func TestWeatherUnavailable(t *testing.T) {
	f := setup(t, nil)
	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、東京の天気"), ModeReply)
	assert.Equal(t, "そんな田舎の天気なんか知らんで", out.Content)
}

func TestAreaLookupPrefersOffices(t *testing.T) {
	table := areaTable{
		Offices:  map[string]area{"270000": {"大阪府"}},
		Class10s: map[string]area{"270010": {"大阪府"}},
		Class20s: map[string]area{"2710000": {"大阪市"}},
	}
	code, place, ok := table.lookup("大阪")
	require.True(t, ok)
	assert.Equal(t, "270000", code)
	assert.Equal(t, "大阪府", place)

	code, place, ok = table.lookup("大阪市")
	require.True(t, ok)
	assert.Equal(t, "2710000", code)
	assert.Equal(t, "大阪市", place)

	_, _, ok = table.lookup("火星")
	assert.False(t, ok)
}

func TestNews(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, script(t, 0, 1))
	f.fetcher.feeds = map[string]*fetch.Feed{
		newsFeeds[0]: {Title: "NHKニュース", Items: []fetch.FeedItem{
			{Title: "A", Link: "https://example.com/a"},
			{Title: "B", Link: "https://example.com/b"},
			{Title: "C", Link: "https://example.com/c"},
			{Title: "D", Link: "https://example.com/d"},
		}},
	}
	evt := f.event(t, nostr.KindTextNote, "うにゅう、ニュース")
	out := f.respondOne(t, evt, ModeReply)
	assert.Equal("【NHKニュース】\nB\nhttps://example.com/b", out.Content)
	assert.Equal(append(ReplyTags(evt), nostr.Tag{"r", "https://example.com/b"}), out.Tags)

	f = setup(t, script(t, 3))
	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、ニュース"), ModeReply)
	assert.Equal("今日はニュース読む気分ちゃうな", out.Content)
}

func TestFortune(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)
	f.fetcher.feeds = map[string]*fetch.Feed{
		ghostFeedURL: {Items: []fetch.FeedItem{{Title: "さくら", Link: "https://example.com/sakura"}}},
	}
	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、占って"), ModeReply)
	assert.Equal("牡羊座のあなたの今日の運勢は『★★★★★』\nラッキーゴーストは『さくら』やで\nhttps://example.com/sakura", out.Content)

	f.fetcher.feeds[ghostFeedURL] = &fetch.Feed{Items: []fetch.FeedItem{{Title: "no link"}}}
	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、占って"), ModeReply)
	assert.Equal("今日は占う気分ちゃうな", out.Content)
}

func TestAmusementPark(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)
	evt := f.event(t, nostr.KindTextNote, "うにゅう、ランド")

	out := f.respondOne(t, evt, ModeReply)
	assert.Equal("知らんがな", out.Content)
	assert.Equal(AmbientTags(evt), out.Tags)

	f.fetcher.json = map[string]any{parkStatusURL: map[string]any{"status": "close"}}
	assert.Equal("閉じとるで", f.respondOne(t, evt, ModeReply).Content)
	f.fetcher.json[parkStatusURL] = map[string]any{"status": "open"}
	assert.Equal("開いとるで", f.respondOne(t, evt, ModeReply).Content)
}

func TestMissingFetcherFallsBack(t *testing.T) {
	f := setup(t, nil)
	f.r.fetcher = nil

	cases := []struct {
		content string
		want    string
	}{
		{"うにゅう、東京の天気", "そんな田舎の天気なんか知らんで"},
		{"うにゅう、東京の週間天気", "そんな先のこと気にせんでええ"},
		{"うにゅう、ランド", "知らんがな"},
		{"うにゅう、この絵文字教えて", "見つからへん"},
	}
	for _, c := range cases {
		t.Run(c.content, func(t *testing.T) {
			evt := f.event(t, nostr.KindTextNote, c.content, nostr.Tag{"q", strings.Repeat("a", 64)})
			out, err := f.r.SelectResponse(t.Context(), evt, ModeReply)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, c.want, out[0].Content)
		})
	}
}

func TestEmojiSearch(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)
	author, setOwner, other := newSigner(t), newSigner(t), newSigner(t)
	neko := nostr.Tag{"emoji", "neko", "https://example.com/neko.png"}

	sign := func(s *nostr.PlainKeySigner, kind int, tags ...nostr.Tag) *nostr.Event {
		evt, err := s.SignEvent(nostr.EventTemplate{Kind: kind, CreatedAt: testNow.Unix() - 3600, Tags: tags})
		require.NoError(t, err)
		return evt
	}
	quoted := sign(author, nostr.KindTextNote, neko)
	list := sign(author, nostr.KindUserEmojiList,
		nostr.Tag{"a", fmt.Sprintf("30030:%s:nekos", setOwner.GetPublicKey())},
		nostr.Tag{"a", fmt.Sprintf("30030:%s:dogs", setOwner.GetPublicKey())},
		nostr.Tag{"a", fmt.Sprintf("30030:%s:misc", other.GetPublicKey())},
	)
	nekos := sign(setOwner, nostr.KindEmojiSet, nostr.Tag{"d", "nekos"}, neko)
	dogs := sign(setOwner, nostr.KindEmojiSet, nostr.Tag{"d", "dogs"}, nostr.Tag{"emoji", "inu", "https://example.com/inu.png"})
	misc := sign(other, nostr.KindEmojiSet, nostr.Tag{"d", "misc"}, nostr.Tag{"emoji", "neko2", neko[2]})
	f.fetcher.events = []*nostr.Event{quoted, list, nekos, dogs, misc}

	evt := f.event(t, nostr.KindTextNote, "うにゅう、この絵文字教えて", nostr.Tag{"q", quoted.ID, "wss://elsewhere.example", quoted.PubKey})
	out := f.respondOne(t, evt, ModeReply)

	naddr1, err := nostr.EncodeEntity(nostr.EntityPointer{PublicKey: setOwner.GetPublicKey(), Kind: nostr.KindEmojiSet, Identifier: "nekos"})
	require.NoError(t, err)
	naddr2, err := nostr.EncodeEntity(nostr.EntityPointer{PublicKey: other.GetPublicKey(), Kind: nostr.KindEmojiSet, Identifier: "misc"})
	require.NoError(t, err)
	assert.Equal("nostr:"+naddr1+"\nnostr:"+naddr2, out.Content)
	assert.Equal(append(nostr.Tags{
		{"a", "30030:" + setOwner.GetPublicKey() + ":nekos", EmojiSearchRelays[0]},
		{"a", "30030:" + other.GetPublicKey() + ":misc", EmojiSearchRelays[0]},
	}, ReplyTags(evt)...), out.Tags)

	// one filter per set author, identifiers merged
	last := f.fetcher.queries[len(f.fetcher.queries)-1]
	require.Len(t, last, 2)
	assert.Equal([]string{"nekos", "dogs"}, last[0].Tags["d"])

	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、この絵文字教えて"), ModeReply)
	assert.Equal("見つからへん", out.Content)
}

func TestEmojiSetFilters(t *testing.T) {
	filters := emojiSetFilters(nostr.Tags{
		{"a", "30030:alice:one"},
		{"a", "30030:bob"},
		{"a", "30030:alice:two"},
		{"a", "30030:alice:one"},
		{"a"},
		{"e", "30030:carol:x"},
	})
	require.Len(t, filters, 2)
	assert.Equal(t, nostr.Filter{Kinds: []int{nostr.KindEmojiSet}, Authors: []string{"alice"}, Tags: map[string][]string{"d": {"one", "two"}}}, filters[0])
	assert.Equal(t, nostr.Filter{Kinds: []int{nostr.KindEmojiSet}, Authors: []string{"bob"}}, filters[1])
}

func TestGoodMorning(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, script(t, 5, 2))
	evt := f.event(t, nostr.KindTextNote, "うにゅう、おはよう")

	out := f.respondOne(t, evt, ModeReply)
	assert.Equal("もう7時か、おはよう", out.Content)
	require.Len(t, f.zapper.zaps, 1)
	assert.Equal(evt, f.zapper.zaps[0].target)
	assert.Equal(int64(3), f.zapper.zaps[0].sats)
	assert.Equal("水曜日の朝や、今日も元気にいくで", f.zapper.zaps[0].comment)

	f = setup(t, script(t, 0, 1))
	f.zapper.err = errors.New("wallet offline")
	out = f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、おはよう"), ModeReply)
	assert.Equal("まだ寝ときや", out.Content)
}

func TestZapTestOnlyForAdmin(t *testing.T) {
	f := setup(t, nil)
	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、Zapテスト"), ModeReply)
	assert.Equal(t, "イタズラしたらあかんで", out.Content)
	assert.Empty(t, f.zapper.zaps)
}

func TestAlpacaOutsideChannels(t *testing.T) {
	f := setup(t, nil)
	evt := f.event(t, nostr.KindTextNote, "うにゅう、アルパカ")
	out := f.respondOne(t, evt, ModeReply)
	assert.Equal(t, "パブチャでやれ\nnostr:"+neventEmojiRiver, out.Content)
	assert.Equal(t, append(ReplyTags(evt), nostr.Tag{"q", idEmojiRiver}), out.Tags)
}

func TestAlpacaInChannel(t *testing.T) {
	f := setup(t, nil)
	evt := f.event(t, nostr.KindChannelMessage, "うにゅう、アルパカ", channelRoot())
	out := f.respondOne(t, evt, ModeReply)
	assert.Equal(t, nostr.KindChannelMessage, out.Kind)
	assert.Contains(t, out.Content, ":kubipaca_")
	assert.Equal(t, ReplyTags(evt), out.Tags[:len(ReplyTags(evt))])
}

func TestKerberos(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, script(t, 1, 1, 0, 2, 5, 1))
	evt := f.event(t, nostr.KindTextNote, "うにゅう、ケルベロス")

	out := f.respondOne(t, evt, ModeReply)
	assert.Equal(":kubipaca_kao::very_sad::kubipaca_kao:\n"+
		":kubipaca_kubi_uemigi::kubipaca_kubi_juji::kubipaca_kubi_uehidari:\n"+
		":kubipaca_null::kubipaca_karada_l::kubipaca_karada_r:", out.Content)
	reply := ReplyTags(evt)
	require.Len(t, out.Tags, len(reply)+2+6)
	assert.Equal(nostr.Tag{"emoji", "kubipaca_kao", commonHeads[1].url}, out.Tags[len(reply)])
	assert.Equal(nostr.Tag{"emoji", "very_sad", rareHeads[2].url}, out.Tags[len(reply)+1])
}

func TestTiger(t *testing.T) {
	f := setup(t, script(t, 5, 4, 3, 2, 1))
	evt := f.event(t, nostr.KindTextNote, "うにゅう、タイガー")
	out := f.respondOne(t, evt, ModeReply)
	assert.Equal(t, ":tiger_upper_left::tiger_upper_right:\n:tiger_middle_left::tiger_middle_right:\n:tiger_lower_left::tiger_lower_right:", out.Content)
	assert.Equal(t, ReplyTags(evt), out.Tags[6:])
}

func TestEmojiLetters(t *testing.T) {
	f := setup(t, nil)
	evt := f.event(t, nostr.KindTextNote, "うにゅう、あxあ！を絵文字にして")
	out := f.respondOne(t, evt, ModeReply)
	assert.Equal(t, ":hira_001_a:x:hira_001_a::hira_410_excl:", out.Content)
	assert.Equal(t, append(ReplyTags(evt),
		nostr.Tag{"emoji", "hira_001_a", "https://tac-lan.net/.well-known/hiragana/hira_001_a.png"},
		nostr.Tag{"emoji", "hira_410_excl", "https://tac-lan.net/.well-known/hiragana/hira_410_excl.png"},
	), out.Tags)
}

func TestGift(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)
	friend := newSigner(t)
	npub, err := nostr.EncodePublicKey(friend.GetPublicKey())
	require.NoError(t, err)
	emoji := nostr.Tag{"emoji", "tea", "https://example.com/tea.png"}

	evt := f.event(t, nostr.KindTextNote, "うにゅう、"+npub+" さんに:tea:を", emoji)
	out := f.respondOne(t, evt, ModeReply)
	note, err := nostr.EncodeNote(evt.ID)
	require.NoError(t, err)
	assert.Equal("nostr:"+npub+" :tea:三\nあちらのお客様からやで\nnostr:"+note, out.Content)
	assert.Equal(nostr.Tags{{"q", evt.ID, "", evt.PubKey}, {"p", evt.PubKey}, {"p", friend.GetPublicKey()}, emoji}, out.Tags)
}

func TestShiritori(t *testing.T) {
	f := setup(t, nil)
	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "次は「あ」から！"), ModeNormal)
	assert.Equal(t, "あかんに決まっとるやろ", out.Content)
	assert.Equal(t, nostr.Tags{}, out.Tags)

	f = setup(t, script(t, 3))
	assert.Empty(t, f.respond(t, f.event(t, nostr.KindTextNote, "次は「あ」から！"), ModeNormal))
}

func TestClock(t *testing.T) {
	f := setup(t, nil)
	out := f.respondOne(t, f.event(t, nostr.KindTextNote, "うにゅう、今何時"), ModeReply)
	assert.Equal(t, "2023年11月15日 7時13分20秒 水曜日やで", out.Content)
}

func TestWhereAmI(t *testing.T) {
	f := setup(t, nil)
	evt := f.event(t, nostr.KindTextNote, "うにゅう、ここどこ")
	out := f.respondOne(t, evt, ModeReply)
	nevent, err := nostr.EncodeEvent(nostr.EventPointer{ID: evt.ID, Kind: nostr.KindTextNote})
	require.NoError(t, err)
	want := "https://koteitan.github.io/nostr-post-checker/?hideform&eid=" + nevent + "&kind=1"
	assert.Equal(t, want, out.Content)
	assert.Equal(t, append(ReplyTags(evt), nostr.Tag{"r", want}), out.Tags)
}

func TestLinks(t *testing.T) {
	f := setup(t, nil)
	evt := f.event(t, nostr.KindTextNote, "うにゅう、DMどこ")
	out := f.respondOne(t, evt, ModeReply)
	assert.Equal(t, "https://nikolat.github.io/nostr-dm/\nhttps://rain8128.github.io/nostr-dmviewer/", out.Content)
	assert.Equal(t, append(ReplyTags(evt),
		nostr.Tag{"r", "https://nikolat.github.io/nostr-dm/"},
		nostr.Tag{"r", "https://rain8128.github.io/nostr-dmviewer/"},
	), out.Tags)
}

func TestReferencesDecode(t *testing.T) {
	assert := assert.New(t)
	for _, hex := range []string{pubkeyDon, pubkeyYabumi, pubkeyWordcloud, pubkeyJantaku, idEmojiRiver, idMahjong, idMaguro} {
		assert.True(nostr.IsHex32(hex), hex)
	}
	for _, npub := range slices.Concat(ukagakaPeople, []string{npubSearch, npubJanken, npubChronostr, npubAwayuki}) {
		prefix, _, err := nostr.Decode(npub)
		assert.NoError(err, npub)
		assert.Equal("npub", prefix)
	}
	for _, note := range slices.Concat(unyuPictureNotes, unyuComicNotes) {
		prefix, _, err := nostr.Decode(note)
		assert.NoError(err, note)
		assert.Equal("note", prefix)
	}
}
