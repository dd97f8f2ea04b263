package responder

import (
	"errors"
	"fmt"
)

// Operating context for one inbound event. Selects the active rule table and the default tag
// strategy.
type Mode int

const (
	// ambient: the bot watches the timeline without being addressed
	ModeNormal Mode = iota
	// addressed: a mention or reply to the bot
	ModeReply
	ModeFav
	ModeZap
	ModeDelete
)

var modeNames = []string{"normal", "reply", "fav", "zap", "delete"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Configuration faults. These abort the request; they mean the rule tables or the caller's input
// contract are broken.
var (
	ErrUnknownMode     = errors.New("unknown mode")
	ErrUnsupportedKind = errors.New("kind is not supported")
	ErrRootNotFound    = errors.New("root is not found")
	ErrCaptureMissing  = errors.New("capture group missing")
	ErrNotConfigured   = errors.New("dependency not configured")
)
