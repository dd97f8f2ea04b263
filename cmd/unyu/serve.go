package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/fetch/cachestore"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/responder"
	"github.com/nikolat/nostr-unyu/util/svcutil"
	"github.com/nikolat/nostr-unyu/zap"

	cli "github.com/urfave/cli/v2"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "private-key",
			Usage:    "bot secret key (nsec or hex)",
			Required: true,
			EnvVars:  []string{"NOSTR_PRIVATE_KEY"},
		},
		&cli.StringFlag{
			Name:    "wallet-connect",
			Usage:   "NIP-47 wallet connection URI used to pay zaps",
			EnvVars: []string{"NOSTR_WALLET_CONNECT"},
		},
		&cli.StringFlag{
			Name:    "webhook-auth",
			Usage:   "basic auth credentials (user:password) for the reaction webhook",
			EnvVars: []string{"NOSTR_WEBHOOK_AUTH"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3000",
			EnvVars: []string{"UNYU_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3001",
			EnvVars: []string{"UNYU_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for the HTTP response cache; in-process cache when empty",
			EnvVars: []string{"UNYU_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "sets-file",
			Usage:   "JSON file overriding the channel allow-list and author deny-list",
			EnvVars: []string{"UNYU_SETS_FILE"},
		},
		&cli.BoolFlag{
			Name:    "verify-events",
			Usage:   "reject inbound events with a bad signature",
			Value:   true,
			EnvVars: []string{"UNYU_VERIFY_EVENTS"},
		},
		&cli.BoolFlag{
			Name:    "public-only",
			Usage:   "only dial public addresses on ports 80 and 443 for outbound HTTP",
			Value:   true,
			EnvVars: []string{"UNYU_PUBLIC_ONLY"},
		},
		&cli.Float64Flag{
			Name:    "http-rate-limit",
			Usage:   "max outbound HTTP requests per second (weather, feeds, LNURL)",
			Value:   10,
			EnvVars: []string{"UNYU_HTTP_RATE_LIMIT"},
		},
	},
	Action: runServe,
}

func runServe(cctx *cli.Context) error {
	ctx := cctx.Context
	logger, err := svcutil.ConfigLogger(cctx, os.Stdout)
	if err != nil {
		return err
	}

	shutdownTracing, err := setupTracing(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	defer shutdownTracing()

	sk, err := nostr.ParseSecretKey(cctx.String("private-key"))
	if err != nil {
		return fmt.Errorf("NOSTR_PRIVATE_KEY: %w", err)
	}
	signer, err := nostr.NewPlainKeySigner(sk)
	if err != nil {
		return err
	}

	var wallet *nostr.WalletConnectURI
	if uri := cctx.String("wallet-connect"); uri != "" {
		wallet, err = nostr.ParseWalletConnectURI(uri)
		if err != nil {
			return fmt.Errorf("NOSTR_WALLET_CONNECT: %w", err)
		}
	} else {
		logger.Warn("no wallet connection configured, zaps are disabled")
	}

	cache, err := configCache(ctx, cctx.String("redis-url"))
	if err != nil {
		return err
	}
	fc := fetch.NewClient(fetch.ClientConfig{
		Logger:     logger,
		Cache:      cache,
		RateLimit:  cctx.Float64("http-rate-limit"),
		PublicOnly: cctx.Bool("public-only"),
	})
	zapper := zap.NewZapper(zap.Config{
		Logger:    logger,
		Signer:    signer,
		Wallet:    wallet,
		Fetcher:   fc,
		Publisher: fc,
	})

	sets := responder.DefaultSets()
	if p := cctx.String("sets-file"); p != "" {
		if err := sets.LoadFromFileJSON(p); err != nil {
			return err
		}
	}

	r := responder.NewResponder(responder.Config{
		Logger:  logger,
		Signer:  signer,
		Sets:    sets,
		Fetcher: fc,
		Zapper:  zapper,
	})

	srv, err := NewServer(Config{
		Logger:       logger,
		Responder:    r,
		Signer:       signer,
		Invoicer:     zapper,
		WebhookAuth:  cctx.String("webhook-auth"),
		VerifyEvents: cctx.Bool("verify-events"),
		Bind:         cctx.String("bind"),
	})
	if err != nil {
		return err
	}
	logger.Info("bot identity", "pubkey", signer.GetPublicKey())

	if err := srv.Run(ctx, cctx.String("metrics-listen")); err != nil {
		return fmt.Errorf("failed to run unyu service: %w", err)
	}
	return nil
}

func configCache(ctx context.Context, redisURL string) (cachestore.CacheStore, error) {
	if redisURL == "" {
		return cachestore.NewMemCacheStore(10_000, 24*time.Hour), nil
	}
	rcs, err := cachestore.NewRedisCacheStore(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.Info("using redis response cache")
	return rcs, nil
}
