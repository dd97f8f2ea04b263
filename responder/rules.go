package responder

// Base rules, active in both ambient and addressed mode. Order is priority.
func baseRules() []Rule {
	return []Rule{
		{"may-i", Regex(`いいの?か?(？|\?)$`), handleMayI},
		{"enyee", Regex(`\\e$`), handleEnyee},
		{"unyu-picture", Regex(`^うにゅう画像$`), handleUnyuPicture},
		{"unyu-comic", Regex(`^うにゅう漫画$`), handleUnyuComic},
		{"chikuwa", Regex(`^ちくわ大明神$`), cannedMode("誰や今の")},
		{"praise-me", Regex(`(ほめて|褒めて|のでえらい|えらいので).?$|^えらいので`), cannedMode("えらいやで", "偉業やで", "すごいやん")},
		{"leaving", Regex(`[行い]っ?てきます.?$`), cannedMode("気いつけてな", "いてら", "お土産よろしゅう")},
		{"unnyuuun", Regex(`^((う|ぐ)っにゅう?ーん|ぎゅ(うっ|っう)にゅう?ーん).?$`), handleUnnyuuun},
		{"follow-list-lost", Regex(`(フォロー|ふぉろー)[飛と]んだ.?$`), handleFollowListLost},
		{"shiritori", Regex(`^次は「(.)」から！$`), handleShiritori},
		{"fire", Regex(fireExpr), handleFire},
	}
}

// Rules only active when the bot is addressed, after the base rules. Broad catch-alls sit last.
func addressedRules() []Rule {
	return []Rule{
		{"zap-test", Regex(`(?i)zapテスト$`), handleZapTest},
		{"surface-test", Regex(`^\\s\[(\d+)\]$`), handleSurfaceTest},
		{"good-morning", Regex(`おはよ`), handleGoodMorning},
		{"alpaca", Regex(`アルパカ|🦙|ものパカ|モノパカ`), handleAlpaca},
		{"kerberos", Regex(`ケルベ[ロノ]ス`), handleKerberos},
		{"tiger", Regex(`タイガー|🐯|🐅`), handleTiger},
		{"image-generation", Regex(`画像生成`), handleImageGeneration},
		{"ritorin", Regex(`りとりん|つぎはなにから？`), handleRitorin},
		{"badge", Regex(`バッジ$`), handleBadge},
		{"poll", Regex(`アンケート|投票`), handlePoll},
		{"fortune", Regex(`占って|占い`), handleFortune},
		{"weather", Regex(`(^|[\s\p{Zs}]+)` + namePrefix + `?([^\s\p{Zs}]+)の(週間)?天気`), handleWeather},
		{"aura", Regex(`(^|[\s\p{Zs}]+)うにゅう、自([^\s\p{Zs}]+)しろ`), handleAura},
		{"emoji-letters", Regex(`(^|[\s\p{Zs}]+)` + namePrefix + `?(.+)を絵文字にして$`), handleEmojiLetters},
		{"gift", Regex(`(?s)(npub\w{59})[\s\p{Zs}]?(さん|ちゃん|くん)?に(.{1,50})を`), handleGift},
		{"news", Regex(`ニュース`), handleNews},
		{"source-code", Regex(`中身`), links("https://github.com/nikolat/nostr-unyu")},
		{"birthday", Regex(`誕生日`), canned("何か欲しいもんでもあるんか？", "先月も誕生日言うてへんかったか？", "何歳になっても誕生日はめでたいもんやな")},
		{"acorn", Regex(`どんぐり`), canned("いい歳してどんぐり集めて何が楽しいねん", "どんぐりなんかいらんで…", "どんぐりとか何に使うねん")},
		{"clock", Regex(`時刻|時報|日時|何時`), handleClock},
		{"login-bonus", Regex(`ログボ|ログインボーナス`), handleLoginBonus},
		{"login-bonus-received", Regex(`あなたの合計ログイン回数は(\d+)回です。`), handleLoginBonusReceived},
		{"give", Regex(`(もらって|あげる|どうぞ).?$`), canned("別に要らんで", "気持ちだけもらっておくで", "いらんがな")},
		{"fly", Regex(`([飛と]んで|[飛と]べ).?$`), canned("今日は飛ばへん", "また明日飛ぶわ", "昨日飛んだからええわ")},
		{"thanks", Regex(`ありが(と|て)|(たす|助)か(る|った)`), canned("ええってことよ", "礼はいらんで", "かまへん")},
		{"sorry", Regex(`ごめん|すまん`), canned("気にせんでええで", "気にしてへんで", "今度何か奢ってや")},
		{"compliment", Regex(`かわいい|可愛い|すごい|かっこいい|えらい|偉い|かしこい|賢い|最高`), canned("わかっとるで", "おだててもなんもあらへんで", "せやろ？")},
		{"moon", Regex(`月が(綺麗|きれい|キレイ)`), canned("お前のほうが綺麗やで", "曇っとるがな", "ワイはそうは思わんな")},
		{"akan", Regex(`あかんの?か`), canned("そらあかんて", "あかんよ", "あかんがな")},
		{"welcome-back", Regex(`お(かえ|帰)り`), canned("ただいまやで", "やっぱりNostrは落ち着くな", "ワイがおらんで寂しかったやろ？")},
		{"human-heart", Regex(`人の心`), canned("女心なら多少わかるんやけどな", "☑私はロボットではありません", "（バレてしもたやろか…？）")},
		{"powa", Regex(`ぽわ`), canned("ぽわ〜")},
		{"christmas", Regex(`(?i)クリスマス|メリー|Xmas`), canned("ワイは仏教徒やから関係あらへん", "プレゼントなら年中受け付けとるで", "Nostrしとる場合ちゃうで")},
		{"year-end", Regex(`[良よ]いお年を|来年も`), canned("来年もよろしゅうな", "一年いろいろあったな", "楽しい一年やったな")},
		{"new-year", Regex(`あけおめ|あけまして|ことよろ`), canned("今年もよろしゅう", "今年もええ年になるとええね", "ことよろ")},
		{"new-year-money", Regex(`お年玉`), canned("ワイにたかるな", "あらへんで", "しらん子やな")},
		{"milk", Regex(`牛乳|ぎゅうにゅう`), canned("牛乳は健康にええで🥛", "カルシウム補給せぇ🥛", "ワイの奢りや🥛")},
		{"haiku", Regex(`(ハイク|はいく)(を?呼んで|どこ).?$`), links("https://nos-haiku.vercel.app/")},
		{"lumilumi", Regex(`(?i)(るみるみ|ルミルミ|lumilumi|もの(さん)?のクライアント)(を?呼んで|どこ).?$`), links("https://lumilumi.vercel.app/")},
		{"search", Regex(`検索(を?呼んで|どこ).?$`), handleSearch},
		{"mahjong", Regex(`麻雀(を?呼んで|どこ).?$`), handleMahjong},
		{"public-chat", Regex(`(パブ|ぱぶ)(リック)?(チャ|ちゃ|茶)(ット)?(を?呼んで|どこ).?$`), handlePublicChat},
		{"janken", Regex(`(じゃんけん|ジャンケン|淀川(さん)?)(を?呼んで|どこ).?$`), canned("nostr:" + npubJanken)},
		{"shiritori-relay", Regex(`(しりとり|しりとリレー)(を?呼んで|どこ).?$`), links("https://srtrelay.c-stellar.net/")},
		{"deletion-tool", Regex(`(?i)削除.*(を?呼んで|どこ).?$`), links("https://delete.nostr.com/", "https://nostr-delete.vercel.app/")},
		{"relay-status", Regex(`(?i)(status|ステータス).*(を?呼んで|どこ).?$`), links("https://nostatus.vercel.app/")},
		{"yabumin", Regex(`やぶみ(ちゃ)?ん?(を?呼んで|どこ).?$`), canned("やっぶみーん")},
		{"nurupoga", Regex(`ぬるぽが?(を?呼んで|どこ).?$`), canned("ぬるぽ")},
		{"unyu", Regex(`うにゅう(を?呼んで|どこ).?$`), canned("ワイはここにおるで")},
		{"admin", Regex(`(?i)iris|Don(さん)?(を?呼んで|どこ).?$`), handleCallAdmin},
		{"maguro", Regex(`(マグロ|ﾏｸﾞﾛ)の?元ネタ(を?呼んで|どこ).?$`), handleMaguro},
		{"uploader", Regex(`(?i)(nip-?96|画像のやつ|あぷろだ|アッ?プロー?ダー?).*(を?呼んで|どこ).?$`), links("https://nikolat.github.io/nostr-learn-nip96/")},
		{"advent-calendar", Regex(`(カレンダー|アドカレ|アドベントカレンダー)(を?呼んで|どこ).?$`), links("https://adventar.org/calendars/10004")},
		{"nostr-hours", Regex(`(?i)(nostr-hours|(ノス|のす)廃|時間[見み]るやつ).*(を?呼んで|どこ).?$`), links("https://snowcait.github.io/nostr-hours/")},
		{"contribution", Regex(`(?i)(ノス|のす)貢献.*(を?呼んで|どこ).?$`), links("https://kojira.github.io/NostrActivity/")},
		{"chronostr", Regex(`(?i)(chronostr|ちょろのす)(を?呼んで|どこ).?$`), handleChronostr},
		{"nosaray", Regex(`(?i)((タイムライン|TL)(遡る|振り返る)やつ)|(nosaray|のさらい)(を?呼んで|どこ).?$`), links("https://nosaray.vercel.app/")},
		{"nosli", Regex(`(?i)(togetter|トゥギャッター|nosli|のすり|ノスリ)(を?呼んで|どこ).?$`), links("https://nosli.vercel.app/")},
		{"dm", Regex(`(?i)DM.*(を?呼んで|どこ).?$`), links("https://nikolat.github.io/nostr-dm/", "https://rain8128.github.io/nostr-dmviewer/")},
		{"zapline", Regex(`(?i)Zap.*(を?呼んで|どこ).?$`), links("https://tiltpapa.github.io/zapline-jp/")},
		{"sats-price", Regex(`(?i)おいくら(サッツ|さっつ|sats).*(を?呼んで|どこ).?$`), links("https://osats.money/")},
		{"where-am-i", Regex(`(?i)ここは?(どこ|ドコ).?$`), handleWhereAmI},
		{"emoji-tools", Regex(`(?i)絵文字.*(を?呼んで|どこ).?$`), handleEmojiTools},
		{"ukagaka-people", Regex(`伺か民?(を?呼んで|どこ).?$`), handleUkagakaPeople},
		{"emoji-search", Regex(`(?i)絵文字(を?探して|教えて)`), handleEmojiSearch},
		{"uwasan", Regex(`宇和さん`), canned("電波が悪いみたいやで")},
		{"fact-check", Regex(`ファクトチェック`), canned("FACT", "FAKE")},
		{"chara-fes", Regex(`キャラサイ|くま(ざ|さ\x{3099})わ`), handleCharaFes},
		{"chara-fes-character", Regex(`えびふらいあざらし|おなかさん|今日はもうダメラニアン|くりゅおね|ココ・ユニちゃん|シュシュ|食パンレスラー|デビタ|なまこもの|なまはむ|はらぺことら|アムー|ピノ|ぷろてあ|ぷいちゃん|ペコペコザメ|ポチョ|まこたまろ|ンガ`), handleCharaFesCharacter},
		{"word-cloud", Regex(`(今|いま)どんな(感|かん)じ.?$`), handleWordCloud},
		{"scrapbox", Regex(`(?i)スクラップボックス|Scrapbox|wikiみたいな`), canned("Helpfeel Cosense（ヘルプフィール コセンス）")},
		{"reboot", Regex(`再起動`), canned("ワイもう眠いんやけど", "もう店じまいやで", "もう寝かしてくれんか")},
		{"enii", Regex(`えんいー`), canned(`\s[10]ほい、えんいー`, `\s[10]ほな、またな`, `\s[10]おつかれ`)},
		{"ukagaka", Regex(`伺か`), handleUkagaka},
		{"just-called", Regex(`[呼よ](んだだけ|んでみた)|(何|なん)でもない`), canned("指名料10,000satsやで", "友達おらんのか", "かまってほしいんか")},
		{"help", Regex(`(?i)ヘルプ|へるぷ|help|(助|たす)けて|(教|おし)えて|手伝って`), canned("ワイは誰も助けへんで", "自分でなんとかせえ", "そんなコマンドあらへんで")},
		{"usage", Regex(`できること`), links("https://zenn.dev/nikolat/articles/3d55e71e810332")},
		{"love", Regex(`すき|好き|愛してる|あいしてる`), canned("ワイも好きやで", "物好きなやっちゃな", "すまんがワイにはさくらがおるんや…")},
		{"amusement-park", Regex(`ランド|開いてる|閉じてる|開園|閉園`), handleAmusementPark},
		{"invite-code", Regex(`招待コード`), canned("他あたってくれんか", "あらへんで", "𝑫𝒐 𝑵𝒐𝒔𝒕𝒓")},
		{"bitcoin", Regex(`(?i)ライトニング|フリー?マ|Zap|ビットコイン|⚡`), canned("ルノアールでやれ")},
		{"hug", Regex(`(🫂|🤗)`), handleHug},
		{"kiss", Regex(`[💋💕]`), canned("😨")},
		{"question", Regex(`(？|\?)$`), canned("ワイに聞かれても", "知らんて", "せやな", "たまには自分で考えなあかんで", "他人に頼ってたらあかんで", "大人になったらわかるで")},
	}
}

func DefaultRules() *RuleSet {
	return &RuleSet{
		Base:      baseRules(),
		Addressed: addressedRules(),
	}
}
