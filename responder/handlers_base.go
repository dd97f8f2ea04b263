package responder

import (
	"context"
	"regexp"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
)

var (
	cuteQuestionRegex = regexp.MustCompile(`(かわいい|可愛い)の?か?(？|\?)$`)
	coolQuestionRegex = regexp.MustCompile(`(かっこ|カッコ|格好)いいの?か?(？|\?)$`)
	openQuestionRegex = regexp.MustCompile(`何|なに|なん|誰|だれ|どこ|いつ|どう|どんな|どの|どっち|どちら|どれ|いくら`)
	exclaimRegex      = regexp.MustCompile(`[！!]$`)
	gunnyuuunRegex    = regexp.MustCompile(`(?s)^ぐっにゅう?ーん.?$`)
	gyunnyuuunRegex   = regexp.MustCompile(`(?s)^ぎゅ(うっ|っう)にゅう?ーん.?$`)
)

const (
	followListToolURL = "https://heguro.github.io/nostr-following-list-util/"
	unyuPictureTopic  = "うにゅう画像"
	unyuComicTopic    = "うにゅう漫画"
)

var unyuComicNotes = []string{
	"note169q6kh00fhqqzswn4rmarethw92chh7age8ahm70mefshc2ad4cq866me4",
	"note1y5td2lata7hr52dm5lf9ltwx0k6hljyl7awevrd74kdv2j2rt5kqun8k33",
}

// "...いいか？" style yes/no questions.
func handleMayI(ctx context.Context, rc *RuleContext) (*Reply, error) {
	var content string
	switch c := rc.Event.Content; {
	case cuteQuestionRegex.MatchString(c):
		content = rc.Any("かわいいで", "ワイは好みやで", "かわいくはあらへんやろ")
	case coolQuestionRegex.MatchString(c):
		content = rc.Any("かっこいいやん", "ワイはかっこええと思うで", "ダサいやろ")
	case openQuestionRegex.MatchString(c):
		content = rc.Any("難しいところやな", "自分の信じた道を進むんや", "知らんがな")
	default:
		content = rc.Any(`\s[10]ええで`, `\s[10]ええんやで`, `\s[11]あかんに決まっとるやろ`)
	}
	tags, err := rc.ModeTags()
	if err != nil {
		return nil, err
	}
	return &Reply{Content: content, Tags: tags}, nil
}

func handleEnyee(ctx context.Context, rc *RuleContext) (*Reply, error) {
	tags, err := rc.ModeTags()
	if err != nil {
		return nil, err
	}
	return &Reply{Content: `\s[10]えんいー`, Tags: tags}, nil
}

var unyuPictureNotes = []string{
	"note1vyry4xhat98tne6jwp0wjw2s69x9pddeuj32arwfum93ppdlwgtqnzkzzm",
	"note1dl66j0pa343dg4ywrfc6uj657f83u65eaayy047v8p38unlmhwqs47wfvd",
	"note18sc7mlfkzrlfl8mzyxcv63a8qptn4r737ykvzagnym6c2vp3mwysqyag27",
	"note10zumjdulf2nu6llp3xp6pd2ckuvj04uq8x47m3uays9thh7kents4ppyle",
	"note17xedk8emmqg23wtevmzxn9v70mhuu26snlz6x46ka2crsfw8t7hswcrh0r",
	"note14pdym9ypsx4xfnhdwvn7pauyzzy0fljdxs8kdjjanqdu2z4ppr8s9fcaqp",
	"note1wjccy84drddcjksevg57259wsfn9jnufq6mdxnghgvm2ry3kupystu7s5l",
	"note1dd5xumt2ss48qexx4vfhfez00nxacf6uhqepvffzvne3jggqfh0snse48y",
	"note14gxhhaxpz2uh9c2jlez7p9kd64eqlcxy99lul9ty75ugmjg4ygrs0ny3ay",
	"note18799wyr9ujsn79nsmts49wulavfxku0vpr0t0epvcdgc8avg47lqh0dg24",
	"note1jwythz8ttcqwn60k4s6arvef9zjrcg78pm48hl34mqz33tuqtgas4fwylu",
	"note1tyqtr2dk9rfmstq0quctvrg5d97xp6tlw5d7wp66xl79m70kccrqj8nz23",
	"note19kazwyrtu02mvg64qj386y7wy7qh9pp7acjv2esjy6wp8nz72qyseh2sda",
	"note1l957dmfpvxy2feqz2mhhww3c932s9gqac0cyqw2j84wwpyansjjsunc2rh",
	"note1uc6rgmjqu7qcalp5he7g4gd69qfnup4fdvtg3w72hn5d06cqrtwstgpr6z",
	"note132gdj694rt3unuau53z0s0j6rdaqrh38xpwl8tg87yxfcs7mw5dq4r94fv",
	"note1q6hv8lxjxt0kdynq6ncheg8q3qn77v4s5j9w6tp6ew2wncqtuz0su6jzla",
	"note15plknvq2pfeg08gv3wprvry640xuejkd2e8vkgp9crkzpd45yuusgx4hvd",
	"note1qx4sz2gzqu6l5tshngcfuqpvevckf8ycwcrwr32zltj457sjc96qdm7p0z",
	"note19ydvh7wnaxcadec2xle8z4h9vzsgvnq2cncspzgwraz7uk5j8v3s739syz",
	"note1tpcrkjjpa4m4tke48gdqrgq47z7tuaa9lscuplhzazzj79yf0tfq59hz5h",
	"note1k5ntmuym8emfxsjhf2acjceel3jtj2kcauv4dttpturza0y8pk7s7edrxh",
	"note19e4dgjakzh5a33n35e3yhnkfy6d6cz24g55fnlyvwkh55rlw5uwslf5y65",
	"note12dxrqtnfzmuwf8r33fchsdzrnzasf23wplv0sxuptla42jm6cu2sf8eh9w",
	"note1ryh70lflkpr46h6yzkz3w337yukzxkfll2gntkcmhu75yzv3sqxqenff89",
	"note1v6qaqy9rjznhhejyeanay9nngnulxyvm8yvvyuk3wz869ff3kylqc8923u",
}

// Quotes the given notes under a hashtag heading.
func noteGallery(rc *RuleContext, topic string, notes ...string) (*Reply, error) {
	tags := rc.ReplyTags()
	lines := []string{"#" + topic}
	for _, note := range notes {
		_, id, err := nostr.Decode(note)
		if err != nil {
			return nil, err
		}
		lines = append(lines, "nostr:"+note)
		tags = append(tags, nostr.Tag{"q", id.(string)})
	}
	tags = append(tags, nostr.Tag{"t", topic})
	return &Reply{Content: strings.Join(lines, "\n"), Tags: tags}, nil
}

func handleUnyuPicture(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return noteGallery(rc, unyuPictureTopic, rc.Any(unyuPictureNotes...))
}

func handleUnyuComic(ctx context.Context, rc *RuleContext) (*Reply, error) {
	return noteGallery(rc, unyuComicTopic, unyuComicNotes...)
}

// Exclaimed variants are answered as addressed replies even in ambient mode.
func exclaimTags(rc *RuleContext) (nostr.Tags, error) {
	if exclaimRegex.MatchString(rc.Event.Content) {
		return rc.ReplyTags(), nil
	}
	return rc.ModeTags()
}

func handleUnnyuuun(ctx context.Context, rc *RuleContext) (*Reply, error) {
	content := "なんやねん"
	switch {
	case gunnyuuunRegex.MatchString(rc.Event.Content):
		content = "誰やねん"
	case gyunnyuuunRegex.MatchString(rc.Event.Content):
		content = "🥛なんやねん🥛"
	}
	tags, err := exclaimTags(rc)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: content, Tags: tags}, nil
}

func handleFollowListLost(ctx context.Context, rc *RuleContext) (*Reply, error) {
	tags, err := exclaimTags(rc)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: followListToolURL, Tags: withLinks(tags, followListToolURL)}, nil
}

var shiritoriAnswers = []struct {
	heads  string
	answer string
}{
	{"あア", "あかんに決まっとるやろ"},
	{"いイゐヰ", "いちいち呼ばんでくれんか"},
	{"うウ", "うるさいで"},
	{"えエゑヱ", "えんいー"},
	{"おオをヲ", "思いつかんわ"},
	{"かカ", "考えるな、感じるんや"},
	{"きキ", "今日もしりとりが盛り上がっとるな"},
	{"くク", "くだらんことしとらんで寝ろ"},
	{"けケ", "決してあきらめたらあかんで"},
	{"こコ", "子供みたいな遊びが好きやな"},
	{"さサ", "さて、ワイの出番や"},
	{"しシ", "知らんがな"},
	{"すス", "少しは自分で考えたらどうや"},
	{"せセ", "せやかて工藤"},
	{"そソ", "そんな急に言われてもやな…"},
	{"たタ", "楽しそうでええな"},
	{"ちチ", "ちょっと考えるから待っててや"},
	{"つツ", "次は「ツ」でええんか？"},
	{"てテ", "手間のかかるやっちゃな"},
	{"とト", "特に無いで"},
	{"なナ", "何やねん"},
	{"にニ", "にんげんだもの\nうにゅを"},
	{"ぬヌ", "ぬこ画像"},
	{"ねネ", "眠いんやけど"},
	{"のノ", "Nostrって何て読むんやろな"},
	{"はハ", "反応の速さでは負けへんで"},
	{"ひヒ", "ひとりで遊んでても寂しいやろ"},
	{"ふフ", "ふとんから出られへん"},
	{"へヘ", "変なbotが多いなここ"},
	{"ほホ", "ほう、次は「ホ」か"},
}

// Joins a word-chain game now and then. Only on the public timeline, about one in ten turns.
func handleShiritori(ctx context.Context, rc *RuleContext) (*Reply, error) {
	if rc.Event.Kind != nostr.KindTextNote {
		return nil, nil
	}
	if rc.IntN(10) > 0 {
		return nil, nil
	}
	head, err := rc.Capture(1)
	if err != nil {
		return nil, err
	}
	for _, a := range shiritoriAnswers {
		if strings.Contains(a.heads, head) {
			return &Reply{Content: a.answer, Tags: nostr.Tags{}}, nil
		}
	}
	return nil, nil
}
