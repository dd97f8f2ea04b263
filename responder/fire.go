package responder

import (
	"context"
	"regexp"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/textutil"
)

const fireVerbs = `[燃萌も]やして|焼いて|煮て|炊いて|沸か[せし]て|溶かして|凍らせて|冷やして|冷まして|覚まして|通報して|火を[付つ]けて|磨いて|爆破して|注射して|打って|駐車して|停めて|潰して|縮めて|伸ばして|広げて|ど[突つ]いて|[踏ふ]んで|捌いて|裁いて|出して|積んで|重ねて|握って|触って|祝って|呪って|鳴らして|詰めて|梱包して|囲んで|囲って|詰んで|漬けて|[踊躍]らせて|撃って|蒸して|上げて|アゲて|ageて|下げて|サゲて|sageて|導いて|支えて|応援して|増やして|包囲して|沈めて|願って|祈って|直して|秘めて|胴上げして`

// "<target>を燃やして" and its many siblings. Group 2 is the target text.
const fireExpr = `(?s)^` + namePrefix + `?(.{1,300})[をに](` + fireVerbs + `)[^るた]?$`

// Matches a request ending with one of the verbs.
func verbSuffix(verbs string) *regexp.Regexp {
	return regexp.MustCompile(`(?:` + verbs + `)[^るた]?$`)
}

var (
	squashVerbs  = verbSuffix(`潰して|縮めて`)
	stretchVerbs = verbSuffix(`伸ばして|広げて`)
	punchVerbs   = verbSuffix(`ど[突つ]いて`)
	danceVerbs   = verbSuffix(`[踊躍]らせて`)
	guideVerbs   = verbSuffix(`導いて`)
	handVerbs    = verbSuffix(`出して`)
	stackVerbs   = verbSuffix(`積んで|重ねて`)
	growVerbs    = verbSuffix(`増やして`)

	stompVerbs = verbSuffix(`[踏ふ]んで`)
	// the flame goes above the text
	aboveVerbs = verbSuffix(`[踏ふ]んで|捌いて|握って|触って|沈めて`)
	// the flame frames the text
	frameVerbs = verbSuffix(`詰めて|梱包して|漬けて|囲んで|囲って|応援して|包囲して`)
	// bricks cap the frame
	brickVerbs = verbSuffix(`詰んで`)

	heelWords = regexp.MustCompile(`[性愛女嬢靴情熱奴隷嬉喜悦嗜虐僕豚雄雌]|ヒール`)
	// whitespace other than line breaks, and long-vowel marks
	squashable = regexp.MustCompile(`[\t\v\f \p{Zs}\x{FEFF}]|[-ー]`)
	dashes     = regexp.MustCompile(`([-ー])`)
)

type flame struct {
	matcher *regexp.Regexp
	// empty when picked from choices
	glyph   string
	choices []string
	// display width of one glyph
	width int
}

var flames = []flame{
	{matcher: verbSuffix(`[踏ふ]んで`), glyph: "🦶", width: 2},
	{matcher: verbSuffix(`捌いて`), glyph: "🔪", width: 2},
	{matcher: verbSuffix(`握って|触って`), glyph: "🫳", width: 2},
	{matcher: verbSuffix(`沈めて`), glyph: "🌊", width: 2},
	{matcher: verbSuffix(`裁いて`), glyph: "⚖️", width: 2},
	{matcher: verbSuffix(`凍らせて|冷やして|冷まして`), glyph: "🧊", width: 2},
	{matcher: verbSuffix(`覚まして`), glyph: "\U0001F441\ufe0f", width: 2},
	{matcher: verbSuffix(`萌やして`), glyph: "💕", width: 2},
	{matcher: verbSuffix(`通報して`), glyph: "⚠️", width: 2},
	{matcher: verbSuffix(`磨いて`), glyph: "🪥", width: 2},
	{matcher: verbSuffix(`爆破して`), glyph: "💣", width: 2},
	{matcher: verbSuffix(`祝って`), glyph: "🎉", width: 2},
	{matcher: verbSuffix(`呪って`), glyph: "👻", width: 2},
	{matcher: verbSuffix(`注射して|打って`), glyph: "💉", width: 2},
	{matcher: verbSuffix(`駐車して|停めて`), glyph: "🚗", width: 2},
	{matcher: verbSuffix(`願って|祈って`), glyph: "🙏", width: 2},
	{matcher: verbSuffix(`直して`), glyph: "🔧", width: 2},
	{matcher: verbSuffix(`鳴らして`), glyph: "📣", width: 2},
	{matcher: verbSuffix(`撃って`), glyph: "🔫", width: 2},
	{matcher: verbSuffix(`蒸して`), glyph: "♨", width: 2},
	{matcher: verbSuffix(`秘めて`), glyph: "㊙", width: 2},
	{matcher: verbSuffix(`胴上げして`), glyph: "🙌", width: 2},
	{matcher: verbSuffix(`詰めて|梱包して`), glyph: "📦", width: 2},
	{matcher: verbSuffix(`囲んで|囲って`), glyph: "🫂", width: 2},
	{matcher: verbSuffix(`包囲して`), glyph: "🚓", width: 2},
	{matcher: verbSuffix(`応援して`), glyph: ":monocheer:", width: 2},
	{matcher: verbSuffix(`漬けて`), glyph: "🧂", width: 2},
	{matcher: verbSuffix(`詰んで`), glyph: "💣", width: 2},
	{matcher: verbSuffix(`下げて|サゲて|sageて`), glyph: "👎", width: 2},
	{matcher: verbSuffix(`上げて|アゲて|ageて`), glyph: "👆", width: 2},
	{matcher: verbSuffix(`支えて`), glyph: "🫴", width: 2},
	{matcher: regexp.MustCompile(`(?i)豆腐|とうふ|トウフ|トーフ|tofu`), glyph: "📛", width: 2},
	{matcher: regexp.MustCompile(`祭り`), glyph: "🏮", width: 2},
	{matcher: regexp.MustCompile(`フロア`), glyph: "🤟", width: 2},
	{matcher: regexp.MustCompile(`魂|心|いのち|命|ハート|はーと|はあと|はぁと`), glyph: "\u2764\ufe0f\u200d\U0001F525", width: 2},
	{matcher: regexp.MustCompile(`陽性|妖精`), choices: []string{"\U0001F9DA", "\U0001F9DA\u200d\u2642", "\U0001F9DA\u200d\u2640"}, width: 2},
	{matcher: regexp.MustCompile(`ﾏｸﾞﾛ|マグロ`), glyph: "🐟🎵", width: 4},
}

var (
	emojiTenshiWing1 = nostr.Tag{"emoji", "tenshi_wing1", "https://lokuyow.github.io/images/nostr/emoji/item/tenshi_wing1.webp"}
	emojiTenshiWing2 = nostr.Tag{"emoji", "tenshi_wing2", "https://lokuyow.github.io/images/nostr/emoji/item/tenshi_wing2.webp"}
	emojiDoraTe      = nostr.Tag{"emoji", "dora_te", "https://raw.githubusercontent.com/TsukemonoGit/TsukemonoGit.github.io/main/img/emoji/te.webp"}
	emojiMonocheer   = nostr.Tag{"emoji", "monocheer", "https://i.imgur.com/mltgqxE.gif"}
)

// Repeats s a fractional number of times, truncated, never negative.
func repeatTrunc(s string, n float64) string {
	if n < 1 {
		return ""
	}
	return strings.Repeat(s, int(n))
}

// Draws the target text set on fire, or squashed, stretched, framed, stacked and so on depending
// on the verb.
func handleFire(ctx context.Context, rc *RuleContext) (*Reply, error) {
	target, err := rc.Capture(2)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(target)
	emoji := textutil.EmojiTags(rc.Event.Tags)
	tags, err := rc.ModeTags()
	if err != nil {
		return nil, err
	}
	for _, t := range emoji {
		tags = append(tags, t.Clone())
	}

	c := rc.Event.Content
	var content string
	switch {
	case squashVerbs.MatchString(c):
		content = "🫸" + squashable.ReplaceAllString(text, "") + "🫷"
	case stretchVerbs.MatchString(c):
		if dashes.MatchString(text) {
			content = dashes.ReplaceAllString(text, "$1$1")
		} else {
			content = strings.Join(strings.Split(text, ""), " ")
		}
	case punchVerbs.MatchString(c):
		content = "🤜" + text + "🤛"
	case danceVerbs.MatchString(c):
		content = "₍₍⁽⁽" + text + "₎₎⁾⁾"
	case guideVerbs.MatchString(c):
		content = ":tenshi_wing1:" + text + ":tenshi_wing2:"
		tags = append(tags, emojiTenshiWing1.Clone(), emojiTenshiWing2.Clone())
	case handVerbs.MatchString(c):
		content = ":dora_te:" + text
		tags = append(tags, emojiDoraTe.Clone())
	case stackVerbs.MatchString(c):
		content = strings.Repeat(text+"\n", 3)
	case growVerbs.MatchString(c):
		content = strings.Repeat(text, 3)
	default:
		var extra nostr.Tags
		content, extra = drawFlames(rc, text, emoji)
		tags = append(tags, extra...)
	}
	return &Reply{Content: content, Tags: tags}, nil
}

func drawFlames(rc *RuleContext, text string, emoji nostr.Tags) (string, nostr.Tags) {
	c := rc.Event.Content
	width := textutil.MaxLineWidth(textutil.SplitLines(textutil.MaskShortcodes(text, emoji)))

	glyph, glyphWidth := "🔥", 2
	for _, f := range flames {
		if !f.matcher.MatchString(c) {
			continue
		}
		glyph, glyphWidth = f.glyph, f.width
		if f.choices != nil {
			glyph = rc.Any(f.choices...)
		}
		break
	}
	if stompVerbs.MatchString(c) && heelWords.MatchString(c) {
		glyph = "👠"
	}

	n := 1.0
	if width > 1 {
		n = float64(width) / float64(glyphWidth)
	}
	// each line padded with ideographic spaces to the width of the longest
	framed := func(sb *strings.Builder) {
		for _, line := range textutil.SplitLines(text) {
			pad := n - float64(textutil.Width(textutil.MaskShortcodes(line, emoji)))/2
			sb.WriteString(glyph + line + repeatTrunc("　", pad) + glyph + "\n")
		}
	}

	var extra nostr.Tags
	var sb strings.Builder
	switch {
	case aboveVerbs.MatchString(c):
		sb.WriteString(repeatTrunc(glyph, n) + "\n" + text)
	case frameVerbs.MatchString(c):
		sb.WriteString(repeatTrunc(glyph, n+2) + "\n")
		framed(&sb)
		sb.WriteString(repeatTrunc(glyph, n+2))
		if glyph == ":monocheer:" {
			extra = append(extra, emojiMonocheer.Clone())
		}
	case brickVerbs.MatchString(c):
		sb.WriteString("🧱" + repeatTrunc(glyph, n) + "🧱\n")
		framed(&sb)
		sb.WriteString("🧱" + repeatTrunc(glyph, n) + "🧱")
	default:
		sb.WriteString(text + "\n" + repeatTrunc(glyph, n))
	}
	return sb.String(), extra
}
