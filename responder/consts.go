package responder

import (
	"fmt"

	"github.com/nikolat/nostr-unyu/nostr"
)

const (
	npubDon       = "npub1dv9xpnlnajj69vjstn9n7ufnmppzq3wtaaq085kxrz0mpw2jul2qjy6uhz"
	npubAwayuki   = "npub1e4qg56wvd3ehegd8dm7rlgj8cm998myq0ah8e9t5zeqkg7t7s93q750p76"
	npubYabumi    = "npub1823chanrkmyrfgz2v4pwmu22s8fjy0s9ps7vnd68n7xgd8zr9neqlc2e5r"
	npubSearch    = "npub1n2uhxrph9fgyp3u2xxqxhuz0vykt8dw8ehvw5uaesl0z4mvatpas0ngm26"
	npubJanken    = "npub1y0d0eezhwaskpjhc7rvk6vkkwepu9mj42qt5pqjamzjr97amh2yszkevjg"
	npubChronostr = "npub1c3xutxzwzvwhmjycutv0kaxwrq7tfav4q4tuamhj3rhx2df3385qsdz0hm"
	npubWordcloud = "npub14htwadwsnle0d227mptfy6r7pcwl7scs3dhwvnmagd8u7s5rg6vslde86r"
	npubJantaku   = "npub1j0ng5hmm7mf47r939zqkpepwekenj6uqhd5x555pn80utevvavjsfgqem2"

	// カスタム絵文字の川
	neventEmojiRiver = "nevent1qvzqqqqq9qqzqvc0c4ly3cu5ylw4af24kp6p50m3tf27zrutkeskcflvjt4utejtksjfnx"
	// Nostr麻雀開発部
	neventMahjong = "nevent1qvzqqqqq9qqzpjx4cfcf54ns6mmzrtyqyzkrun7rq4ayjcdp2vvl0sypsvy5qaerqcwu9c"
	noteMaguro    = "note19ajxhqjvhqmvh56n6c6jdlwavrq5zhc84u6ffg06p4lu0glhem3sptg80h"

	badgeDefinition = "30009:2bb2abbfc5892b7bda8f78d53682d913cc9a446b45e11929f0935d8fdfcb40bd:unyu-enyee"
)

var (
	pubkeyDon       = mustDecodeHex(npubDon)
	pubkeyYabumi    = mustDecodeHex(npubYabumi)
	pubkeyWordcloud = mustDecodeHex(npubWordcloud)
	pubkeyJantaku   = mustDecodeHex(npubJantaku)

	idEmojiRiver = mustDecodeEventID(neventEmojiRiver)
	idMahjong    = mustDecodeEventID(neventMahjong)
	idMaguro     = mustDecodeHex(noteMaguro)
)

var (
	BadgeRelays = []string{
		"wss://yabu.me/",
		"wss://relay-jp.nostr.wirednet.jp/",
		"wss://nrelay.c-stellar.net/",
	}
	PollRelays        = []string{"wss://yabu.me/", "wss://nostr.compile-error.net/"}
	EmojiSearchRelays = []string{"wss://yabu.me/"}
)

// Decodes an npub, nsec or note into its hex payload.
func mustDecodeHex(code string) string {
	_, v, err := nostr.Decode(code)
	if err != nil {
		panic(fmt.Sprintf("decoding %s: %v", code, err))
	}
	s, ok := v.(string)
	if !ok {
		panic(fmt.Sprintf("%s does not carry a bare key", code))
	}
	return s
}

func mustDecodeEventID(code string) string {
	_, v, err := nostr.Decode(code)
	if err != nil {
		panic(fmt.Sprintf("decoding %s: %v", code, err))
	}
	ptr, ok := v.(nostr.EventPointer)
	if !ok {
		panic(fmt.Sprintf("%s is not an event pointer", code))
	}
	return ptr.ID
}
