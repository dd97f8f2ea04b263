package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikolat/nostr-unyu/art"
	"github.com/nikolat/nostr-unyu/nostr"
)

// Draws an alpaca with a random-walk neck. On the public timeline it points at the emoji channel
// instead.
func handleAlpaca(ctx context.Context, rc *RuleContext) (*Reply, error) {
	if rc.Event.Kind == nostr.KindTextNote {
		tags := append(rc.ReplyTags(), nostr.Tag{"q", idEmojiRiver})
		return &Reply{Content: "パブチャでやれ\nnostr:" + neventEmojiRiver, Tags: tags}, nil
	}
	a, err := art.Generate(art.ParseOptions(rc.Event.Content), rc.r.rand)
	if err != nil {
		return nil, fmt.Errorf("drawing alpaca: %w", err)
	}
	return &Reply{Content: a.Content, Tags: append(rc.ReplyTags(), a.Emoji...)}, nil
}

type head struct {
	name string
	url  string
}

var (
	commonHeads = []head{
		{"nostopus_eating", "https://awayuki.github.io/emoji/np-027.png"},
		{"kubipaca_kao", "https://lokuyow.github.io/images/nostr/emoji/kubipaca/kubipaca_kao.webp"},
		{"monopaca_kao", "https://raw.githubusercontent.com/TsukemonoGit/TsukemonoGit.github.io/main/img/emoji/monopaka.webp"},
	}
	rareHeads = []head{
		{"shining_tiger_close_up", "https://raw.githubusercontent.com/shibayamap/Custom_emoji/main/tiger_close_up.webp"},
		{"monobeampaca_kao", "https://image.nostr.build/b63e654b02d001c0f49a0a6d4b2a766215be1571709d7576f6fc238e9b21f572.png"},
		{"very_sad", "https://i.floppy.media/d2a0f27fe29bbee7eb2a7abc669e25d1.png"},
	}
	kerberosBody = []string{
		"kubipaca_kubi_uemigi",
		"kubipaca_kubi_juji",
		"kubipaca_kubi_uehidari",
		"kubipaca_null",
		"kubipaca_karada_l",
		"kubipaca_karada_r",
	}
)

// Three heads, each a slot-machine pull with one-in-ten odds of a rare face.
func handleKerberos(ctx context.Context, rc *RuleContext) (*Reply, error) {
	var heads []head
	for range 3 {
		pool := commonHeads
		if rc.IntN(10) == 0 {
			pool = rareHeads
		}
		heads = append(heads, pool[rc.IntN(len(pool))])
	}

	var sb strings.Builder
	tags := rc.ReplyTags()
	seen := map[string]bool{}
	for _, h := range heads {
		sb.WriteString(":" + h.name + ":")
		if !seen[h.name] {
			seen[h.name] = true
			tags = append(tags, nostr.Tag{"emoji", h.name, h.url})
		}
	}
	for i, name := range kerberosBody {
		if i%3 == 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(":" + name + ":")
		tags = append(tags, nostr.Tag{"emoji", name, fmt.Sprintf("https://lokuyow.github.io/images/nostr/emoji/kubipaca/%s.webp", name)})
	}
	return &Reply{Content: sb.String(), Tags: tags}, nil
}

var tigerPieces = []string{
	"tiger_upper_left",
	"tiger_upper_right",
	"tiger_middle_left",
	"tiger_middle_right",
	"tiger_lower_left",
	"tiger_lower_right",
}

// A sliding puzzle of a tiger, shuffled.
func handleTiger(ctx context.Context, rc *RuleContext) (*Reply, error) {
	pieces := make([]string, len(tigerPieces))
	for i, t := range tigerPieces {
		pieces[i] = ":" + t + ":"
	}
	for i := len(pieces) - 1; i > 0; i-- {
		j := rc.IntN(i + 1)
		pieces[i], pieces[j] = pieces[j], pieces[i]
	}
	content := pieces[0] + pieces[1] + "\n" + pieces[2] + pieces[3] + "\n" + pieces[4] + pieces[5]

	var tags nostr.Tags
	for _, t := range tigerPieces {
		tags = append(tags, nostr.Tag{"emoji", t, "https://raw.githubusercontent.com/shibayamap/Custom_emoji/main/" + t + ".webp"})
	}
	return &Reply{Content: content, Tags: append(tags, rc.ReplyTags()...)}, nil
}

var hiragana = []struct {
	chars string
	name  string
}{
	{"あ", "hira_001_a"}, {"い", "hira_002_i"}, {"う", "hira_003_u"}, {"え", "hira_004_e"}, {"お", "hira_005_o"},
	{"か", "hira_006_ka"}, {"き", "hira_007_ki"}, {"く", "hira_008_ku"}, {"け", "hira_009_ke"}, {"こ", "hira_010_ko"},
	{"さ", "hira_011_sa"}, {"し", "hira_012_si"}, {"す", "hira_013_su"}, {"せ", "hira_014_se"}, {"そ", "hira_015_so"},
	{"た", "hira_016_ta"}, {"ち", "hira_017_ti"}, {"つ", "hira_018_tu"}, {"て", "hira_019_te"}, {"と", "hira_020_to"},
	{"な", "hira_021_na"}, {"に", "hira_022_ni"}, {"ぬ", "hira_023_nu"}, {"ね", "hira_024_ne"}, {"の", "hira_025_no"},
	{"は", "hira_026_ha"}, {"ひ", "hira_027_hi"}, {"ふ", "hira_028_hu"}, {"へ", "hira_029_he"}, {"ほ", "hira_030_ho"},
	{"ま", "hira_031_ma"}, {"み", "hira_032_mi"}, {"む", "hira_033_mu"}, {"め", "hira_034_me"}, {"も", "hira_035_mo"},
	{"や", "hira_036_ya"}, {"ゆ", "hira_038_yu"}, {"よ", "hira_040_yo"},
	{"ら", "hira_041_ra"}, {"り", "hira_042_ri"}, {"る", "hira_043_ru"}, {"れ", "hira_044_re"}, {"ろ", "hira_045_ro"},
	{"わ", "hira_046_wa"}, {"ゐ", "hira_047_wi"}, {"ゑ", "hira_049_we"}, {"を", "hira_050_wo"}, {"ん", "hira_051_n"},
	{"ゔ", "hira_103_vu"},
	{"が", "hira_106_ga"}, {"ぎ", "hira_107_gi"}, {"ぐ", "hira_108_gu"}, {"げ", "hira_109_ge"}, {"ご", "hira_110_go"},
	{"ざ", "hira_111_za"}, {"じ", "hira_112_zi"}, {"ず", "hira_113_zu"}, {"ぜ", "hira_114_ze"}, {"ぞ", "hira_115_zo"},
	{"だ", "hira_116_da"}, {"ぢ", "hira_117_di"}, {"づ", "hira_118_du"}, {"で", "hira_119_de"}, {"ど", "hira_120_do"},
	{"ば", "hira_126_ba"}, {"び", "hira_127_bi"}, {"ぶ", "hira_128_bu"}, {"べ", "hira_129_be"}, {"ぼ", "hira_130_bo"},
	{"ぱ", "hira_226_pa"}, {"ぴ", "hira_227_pi"}, {"ぷ", "hira_228_pu"}, {"ぺ", "hira_229_pe"}, {"ぽ", "hira_230_po"},
	{"ぁ", "hira_301_la"}, {"ぃ", "hira_302_li"}, {"ぅ", "hira_303_lu"}, {"ぇ", "hira_304_le"}, {"ぉ", "hira_305_lo"},
	{"っ", "hira_318_ltu"}, {"ゃ", "hira_336_lya"}, {"ゅ", "hira_338_lyu"}, {"ょ", "hira_340_lyo"},
	{"0０", "hira_400_0"}, {"1１", "hira_401_1"}, {"2２", "hira_402_2"}, {"3３", "hira_403_3"}, {"4４", "hira_404_4"},
	{"5５", "hira_405_5"}, {"6６", "hira_406_6"}, {"7７", "hira_407_7"}, {"8８", "hira_408_8"}, {"9９", "hira_409_9"},
	{"!！", "hira_410_excl"}, {"&＆", "hira_411_and"}, {"-ー", "hira_412_hyph"}, {"?？", "hira_413_ques"},
	{"、", "hira_420_ten"}, {"。", "hira_421_maru"}, {"・", "hira_422_naka"}, {"〜～", "hira_423_kara"},
}

// Spells the text with hiragana letter emoji; characters without a letter pass through.
func handleEmojiLetters(ctx context.Context, rc *RuleContext) (*Reply, error) {
	text, err := rc.Capture(3)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	var emoji nostr.Tags
	seen := map[string]bool{}
	for _, r := range text {
		letter := string(r)
		for _, h := range hiragana {
			if !strings.ContainsRune(h.chars, r) {
				continue
			}
			letter = ":" + h.name + ":"
			if !seen[h.name] {
				seen[h.name] = true
				emoji = append(emoji, nostr.Tag{"emoji", h.name, "https://tac-lan.net/.well-known/hiragana/" + h.name + ".png"})
			}
			break
		}
		sb.WriteString(letter)
	}
	return &Reply{Content: sb.String(), Tags: append(rc.ReplyTags(), emoji...)}, nil
}
