package responder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"
)

// Text predicate over event content. A nil result is no match; otherwise element 0 is the whole
// match and the rest are capture groups, as with [regexp.Regexp.FindStringSubmatch].
type Matcher interface {
	Match(content string) []string
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(content string) []string {
	return m.re.FindStringSubmatch(content)
}

func (m regexMatcher) String() string {
	return m.re.String()
}

// Compiles expr into a [Matcher]. Panics on a bad expression; rule tables are built at init.
func Regex(expr string) Matcher {
	return regexMatcher{re: regexp.MustCompile(expr)}
}

// Adapts a plain function into a [Matcher], for patterns RE2 cannot express.
type MatchFunc func(content string) []string

func (f MatchFunc) Match(content string) []string {
	return f(content)
}

// Output of a handler. Kind zero means the source event's kind.
type Reply struct {
	Content string
	Tags    nostr.Tags
	Kind    int
	// seconds after the source event; nil means one second
	Delay *int64
}

// Returns nil, nil to decline. Returned errors are configuration faults and abort the request.
type HandlerFunc func(ctx context.Context, rc *RuleContext) (*Reply, error)

type Rule struct {
	Name    string
	Matcher Matcher
	Handler HandlerFunc
}

// Everything a handler may look at for one dispatch.
type RuleContext struct {
	Event  *nostr.Event
	Mode   Mode
	Match  []string
	Logger *slog.Logger

	r *Responder
}

// Returns capture group i of the rule's match.
func (rc *RuleContext) Capture(i int) (string, error) {
	if i >= len(rc.Match) {
		return "", fmt.Errorf("%w: group %d of %d", ErrCaptureMissing, i, len(rc.Match)-1)
	}
	return rc.Match[i], nil
}

func (rc *RuleContext) ModeTags() (nostr.Tags, error) {
	return ModeTags(rc.Event, rc.Mode)
}

func (rc *RuleContext) ReplyTags() nostr.Tags {
	return ReplyTags(rc.Event)
}

func (rc *RuleContext) AmbientTags() nostr.Tags {
	return AmbientTags(rc.Event)
}

func (rc *RuleContext) QuoteTags() (nostr.Tags, error) {
	return QuoteTags(rc.Event)
}

// Picks one of choices uniformly.
func (rc *RuleContext) Any(choices ...string) string {
	return choices[rc.r.rand.IntN(len(choices))]
}

// Returns [ErrNotConfigured] when the responder was built without a fetcher. Handlers treat it
// like any other fetch failure and answer with their fallback text.
func (rc *RuleContext) Fetcher() (fetch.Fetcher, error) {
	if rc.r.fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher", ErrNotConfigured)
	}
	return rc.r.fetcher, nil
}

func (rc *RuleContext) Zapper() (Zapper, error) {
	if rc.r.zapper == nil {
		return nil, fmt.Errorf("%w: zapper", ErrNotConfigured)
	}
	return rc.r.zapper, nil
}

func (rc *RuleContext) IntN(n int) int {
	return rc.r.rand.IntN(n)
}

// Current wall-clock time in Japan.
func (rc *RuleContext) Now() time.Time {
	return rc.r.now().In(jst)
}

// bech32 reference to the source event for a `nostr:` link: note for text notes, nevent (id and
// kind) otherwise.
func (rc *RuleContext) Quote() (string, error) {
	return quoteRef(rc.Event)
}

func quoteRef(evt *nostr.Event) (string, error) {
	if evt.Kind == nostr.KindTextNote {
		return nostr.EncodeNote(evt.ID)
	}
	return nostr.EncodeEvent(nostr.EventPointer{ID: evt.ID, Kind: evt.Kind})
}

var jst = time.FixedZone("JST", 9*60*60)

// Ordered rule tables. Ambient dispatch walks Base; addressed dispatch walks Base then Addressed.
type RuleSet struct {
	Base      []Rule
	Addressed []Rule
}

func (rs *RuleSet) Rules(mode Mode) ([]Rule, error) {
	switch mode {
	case ModeNormal:
		return rs.Base, nil
	case ModeReply:
		out := make([]Rule, 0, len(rs.Base)+len(rs.Addressed))
		out = append(out, rs.Base...)
		return append(out, rs.Addressed...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
}

// Runs the first rule whose matcher accepts the content. The bool reports whether any rule
// matched, so a declining handler can be told apart from no match.
func (r *Responder) dispatch(ctx context.Context, evt *nostr.Event, mode Mode) (*Reply, bool, error) {
	rules, err := r.rules.Rules(mode)
	if err != nil {
		return nil, false, err
	}
	for _, rule := range rules {
		m := rule.Matcher.Match(evt.Content)
		if m == nil {
			continue
		}
		ruleMatchCount.WithLabelValues(mode.String(), rule.Name).Inc()
		rc := &RuleContext{
			Event:  evt,
			Mode:   mode,
			Match:  m,
			Logger: r.logger.With("rule", rule.Name, "id", evt.ID),
			r:      r,
		}
		reply, err := rule.Handler(ctx, rc)
		if err != nil {
			return nil, true, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		return reply, true, nil
	}
	return nil, false, nil
}
