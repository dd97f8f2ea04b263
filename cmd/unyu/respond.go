package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nikolat/nostr-unyu/fetch"
	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/responder"
	"github.com/nikolat/nostr-unyu/util/svcutil"

	cli "github.com/urfave/cli/v2"
)

var respondCmd = &cli.Command{
	Name:      "respond",
	Usage:     "run one event through the responder with a throwaway key and print the result",
	ArgsUsage: "<event.json | ->",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "normal, reply, fav, zap or delete",
			Value: "reply",
		},
		&cli.BoolFlag{
			Name:  "offline",
			Usage: "do not reach out to HTTP services or relays",
		},
	},
	Action: runRespond,
}

type respondOutput struct {
	Request  *nostr.Event   `json:"request"`
	Response []*nostr.Event `json:"response"`
}

func runRespond(cctx *cli.Context) error {
	ctx := cctx.Context
	logger, err := svcutil.ConfigLogger(cctx, os.Stdout)
	if err != nil {
		return err
	}
	mode, err := responder.ParseMode(cctx.String("mode"))
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if p := cctx.Args().First(); p != "" && p != "-" {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	var evt nostr.Event
	if err := json.NewDecoder(in).Decode(&evt); err != nil {
		return fmt.Errorf("JSON parse failed: %w", err)
	}
	if !nostr.ValidateEvent(&evt) {
		return fmt.Errorf("invalid event")
	}

	sk, err := nostr.GenerateSecretKey()
	if err != nil {
		return err
	}
	signer, err := nostr.NewPlainKeySigner(sk)
	if err != nil {
		return err
	}
	config := responder.Config{
		Logger: logger,
		Signer: signer,
	}
	if !cctx.Bool("offline") {
		config.Fetcher = fetch.NewClient(fetch.ClientConfig{Logger: logger, PublicOnly: true})
	}
	out, err := responder.NewResponder(config).GetResponseEvent(ctx, &evt, mode)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(respondOutput{Request: &evt, Response: out})
}
