package art

import (
	"regexp"
	"strconv"
)

const (
	DefaultWidth  = 10
	DefaultHeight = 30
	MaxBodies     = 5
	DefaultRetry  = 1
	maxExtraRetry = 17
)

type Options struct {
	// number of bodies drawn side by side (ignored for Kerberos, which always has three heads)
	Bodies int
	// how many blocked moves a body may redraw before its head is placed
	Retry int
	// per-body rainbow variant; bodies past the end reuse the last value
	Gaming   []bool
	Split    bool
	Mono     bool
	Kerberos bool
	Width    int
	Height   int
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	o.Bodies = max(1, min(o.Bodies, MaxBodies))
	o.Retry = max(0, o.Retry)
	return o
}

func (o Options) gamingAt(i int) bool {
	if len(o.Gaming) == 0 {
		return false
	}
	if i < len(o.Gaming) {
		return o.Gaming[i]
	}
	return o.Gaming[len(o.Gaming)-1]
}

var (
	kerberosRegex = regexp.MustCompile(`ケルベ[ロノ]ス`)
	splitRegex    = regexp.MustCompile(`分裂|分散`)
	monoRegex     = regexp.MustCompile(`ものパカ|モノパカ`)
	shortRegex    = regexp.MustCompile(`みじかい|短い`)
	longRegex     = regexp.MustCompile(`ながい|長い`)
	veryRegex     = regexp.MustCompile(`ちょう|超|めっ?ちゃ|クソ`)
	chouRegex     = regexp.MustCompile(`超`)
	bodyRegex     = regexp.MustCompile(`アルパカ|🦙|ものパカ|モノパカ`)
	countRegex    = regexp.MustCompile(`(-?\d+)[匹体]`)
	gamingRegex   = regexp.MustCompile(`(ゲーミング|光|虹|明|🌈)?(?:アルパカ|🦙)`)
)

// Reads drawing options from free text, e.g. "ながいゲーミングアルパカ3匹".
func ParseOptions(content string) Options {
	opts := Options{
		Retry:    DefaultRetry,
		Kerberos: kerberosRegex.MatchString(content),
		Split:    splitRegex.MatchString(content),
		Mono:     monoRegex.MatchString(content),
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
	if shortRegex.MatchString(content) {
		opts.Retry = 0
	} else if longRegex.MatchString(content) {
		opts.Retry = 2
		if veryRegex.MatchString(content) {
			opts.Retry = 3 + min(len(chouRegex.FindAllString(content, -1)), maxExtraRetry)
		}
	}

	opts.Bodies = min(len(bodyRegex.FindAllString(content, -1)), MaxBodies)
	if m := countRegex.FindStringSubmatch(content); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// too many digits to parse
			n = MaxBodies
			if m[1][0] == '-' {
				n = 1
			}
		}
		opts.Bodies = max(1, min(n, MaxBodies))
	}
	opts.Bodies = max(1, opts.Bodies)

	for _, m := range gamingRegex.FindAllStringSubmatch(content, -1) {
		opts.Gaming = append(opts.Gaming, m[1] != "")
		if len(opts.Gaming) >= MaxBodies {
			break
		}
	}
	return opts
}
