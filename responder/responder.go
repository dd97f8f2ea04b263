// Decides whether and how the bot reacts to one inbound event, and builds the unsigned reply
// templates.
//
// An event passes the gate, then the mode's rule table (first match wins), then the assembler,
// which applies the secret-leak filter and may add one companion event (profile update, badge
// award or poll).
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/nikolat/nostr-unyu/art"
	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/setstore"
	"github.com/nikolat/nostr-unyu/zap"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("responder")

// The subset of [zap.Zapper] handlers use.
type Zapper interface {
	Zap(ctx context.Context, target *nostr.Event, sats int64, comment string) error
	Profile(ctx context.Context, pubkey string, relays []string) (*nostr.Event, error)
	Endpoint(ctx context.Context, profile *nostr.Event) (*zap.Endpoint, error)
}

var _ Zapper = (*zap.Zapper)(nil)

type Config struct {
	Logger *slog.Logger
	Signer nostr.Signer
	// gate sets; defaults to [DefaultSets]
	Sets setstore.SetStore
	// used by handlers that look things up over HTTP or on relays
	Fetcher fetch.Fetcher
	Zapper  Zapper
	// defaults to [DefaultRules]
	Rules *RuleSet
	// defaults to a randomly seeded PCG source
	Rand art.Rand
	Now  func() time.Time
}

type Responder struct {
	logger  *slog.Logger
	signer  nostr.Signer
	sets    setstore.SetStore
	fetcher fetch.Fetcher
	zapper  Zapper
	rules   *RuleSet
	rand    art.Rand
	now     func() time.Time
}

func NewResponder(config Config) *Responder {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Responder{
		logger:  logger.With("system", "responder"),
		signer:  config.Signer,
		sets:    config.Sets,
		fetcher: config.Fetcher,
		zapper:  config.Zapper,
		rules:   config.Rules,
		rand:    config.Rand,
		now:     config.Now,
	}
	if r.sets == nil {
		r.sets = DefaultSets()
	}
	if r.rules == nil {
		r.rules = DefaultRules()
	}
	if r.rand == nil {
		r.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Responder) Rules() *RuleSet {
	return r.rules
}

// Selects and signs the response to evt. Returns nil when the bot stays silent, including for
// the bot's own events.
func (r *Responder) GetResponseEvent(ctx context.Context, evt *nostr.Event, mode Mode) ([]*nostr.Event, error) {
	if evt.PubKey == r.signer.GetPublicKey() {
		return nil, nil
	}
	templates, err := r.SelectResponse(ctx, evt, mode)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}
	out := make([]*nostr.Event, 0, len(templates))
	for _, t := range templates {
		signed, err := r.signer.SignEvent(t)
		if err != nil {
			return nil, err
		}
		replyCount.WithLabelValues(mode.String(), strconv.Itoa(signed.Kind)).Inc()
		out = append(out, signed)
	}
	return out, nil
}

// Returns zero, one or two unsigned templates. When two are returned the companion comes first.
func (r *Responder) SelectResponse(ctx context.Context, evt *nostr.Event, mode Mode) ([]nostr.EventTemplate, error) {
	ctx, span := tracer.Start(ctx, "SelectResponse")
	defer span.End()
	span.SetAttributes(attribute.String("mode", mode.String()), attribute.Int("kind", evt.Kind))

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	}()
	requestCount.WithLabelValues(mode.String()).Inc()

	out, err := r.selectResponse(ctx, evt, mode)
	if err != nil {
		faultCount.WithLabelValues(mode.String()).Inc()
		span.RecordError(err)
		r.logger.Error("response selection failed", "err", err, "mode", mode, "id", evt.ID, "kind", evt.Kind)
		return nil, err
	}
	return out, nil
}

func (r *Responder) selectResponse(ctx context.Context, evt *nostr.Event, mode Mode) ([]nostr.EventTemplate, error) {
	ok, err := r.admit(ctx, evt)
	if err != nil || !ok {
		return nil, err
	}

	var reply *Reply
	switch mode {
	case ModeNormal:
		reply, err = r.modeNormal(ctx, evt)
	case ModeReply:
		reply, err = r.modeReply(ctx, evt)
	case ModeFav:
		reply, err = r.modeFav(evt)
	case ModeZap:
		reply, err = r.modeZap(ctx, evt)
	case ModeDelete:
		reply, err = r.modeDelete(evt)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	if err != nil || reply == nil {
		return nil, err
	}
	return r.assemble(evt, mode, reply)
}
