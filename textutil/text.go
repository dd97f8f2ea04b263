package textutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"

	"github.com/rivo/uniseg"
	"github.com/spaolacci/murmur3"
)

var (
	shortcodeName = regexp.MustCompile(`^\w+$`)
	lineBreak     = regexp.MustCompile(`\r\n|\r|\n`)
)

// Reports whether the tag is a well-formed NIP-30 custom emoji tag: `["emoji", <word>, <url>]`.
func IsEmojiTag(t nostr.Tag) bool {
	if len(t) < 3 || t[0] != "emoji" || !shortcodeName.MatchString(t[1]) {
		return false
	}
	u, err := url.Parse(t[2])
	return err == nil && u.Scheme != "" && u.Host != ""
}

func EmojiTags(tags nostr.Tags) nostr.Tags {
	return tags.Filter(IsEmojiTag)
}

// Replaces every `:shortcode:` for the given emoji tags with a two-cell placeholder, so that
// [Width] measures custom emoji as a single wide glyph.
func MaskShortcodes(s string, emojiTags nostr.Tags) string {
	for _, t := range emojiTags {
		s = strings.ReplaceAll(s, ":"+t[1]+":", "__")
	}
	return s
}

func SplitLines(s string) []string {
	return lineBreak.Split(s, -1)
}

// Splits text into user-perceived characters.
func Graphemes(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Returns the last user-perceived character of s, or empty string.
func LastGrapheme(s string) string {
	g := Graphemes(s)
	if len(g) == 0 {
		return ""
	}
	return g[len(g)-1]
}

func DedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// returns a fast, compact hash of a string
//
// current implementation uses murmur3, default seed, and hex encoding
func HashOfString(s string) string {
	val := murmur3.Sum64([]byte(s))
	return fmt.Sprintf("%016x", val)
}
