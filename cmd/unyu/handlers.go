package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/responder"
	"github.com/nikolat/nostr-unyu/zap"

	"github.com/labstack/echo/v4"
)

type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Runs one event through the responder. The mode is the last path segment.
func (srv *Server) HandleEvent(c echo.Context) error {
	ctx := c.Request().Context()

	mode, err := responder.ParseMode(c.Param("mode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	var evt nostr.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "JSON parse failed"})
	}
	if !nostr.ValidateEvent(&evt) {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "Invalid event"})
	}
	if srv.verifyEvents && !nostr.VerifyEvent(&evt) {
		return c.JSON(http.StatusBadRequest, GenericError{Error: "Unverified event"})
	}

	out, err := srv.responder.GetResponseEvent(ctx, &evt, mode)
	if err != nil {
		return c.JSON(http.StatusBadRequest, GenericError{Error: err.Error()})
	}
	switch len(out) {
	case 0:
		return c.NoContent(http.StatusNoContent)
	case 1:
		return c.JSON(http.StatusOK, out[0])
	}
	return c.JSON(http.StatusOK, out)
}

// Resolves the event id and author from the id/note/nevent and pubkey/npub query parameters.
// Bech32 forms win over hex; undecodable values are ignored.
func queryTarget(c echo.Context) (id, pubkey string) {
	id, pubkey = c.QueryParam("id"), c.QueryParam("pubkey")
	if note := c.QueryParam("note"); note != "" {
		if prefix, data, err := nostr.Decode(note); err == nil && prefix == "note" {
			if v, ok := data.(string); ok {
				id = v
			}
		}
	}
	if nevent := c.QueryParam("nevent"); nevent != "" {
		if prefix, data, err := nostr.Decode(nevent); err == nil && prefix == "nevent" {
			if ptr, ok := data.(nostr.EventPointer); ok {
				id = ptr.ID
				if ptr.Author != "" {
					pubkey = ptr.Author
				}
			}
		}
	}
	if npub := c.QueryParam("npub"); npub != "" {
		if prefix, data, err := nostr.Decode(npub); err == nil && prefix == "npub" {
			if v, ok := data.(string); ok {
				pubkey = v
			}
		}
	}
	return id, pubkey
}

// Signs a reaction to the target event and posts it through the relay webhook.
func (srv *Server) HandleQueryFav(c echo.Context) error {
	ctx := c.Request().Context()

	if srv.webhookAuth == "" {
		return c.JSON(http.StatusInternalServerError, GenericError{Error: "NOSTR_WEBHOOK_AUTH is undefined"})
	}
	id, pubkey := queryTarget(c)
	kind := c.QueryParam("kind")
	if kind != "" {
		if _, err := strconv.ParseUint(kind, 10, 64); err != nil {
			return c.JSON(http.StatusForbidden, GenericError{Error: "kind is not integer"})
		}
	}
	if id == "" || pubkey == "" {
		return c.JSON(http.StatusForbidden, GenericError{Error: "id and pubkey are required"})
	}
	content := "⭐"
	if c.QueryParams().Has("content") {
		content = c.QueryParam("content")
	}

	tags := nostr.Tags{{"e", id}, {"p", pubkey}}
	if kind != "" {
		tags = append(tags, nostr.Tag{"k", kind})
	}
	reaction, err := srv.signer.SignEvent(nostr.EventTemplate{
		Kind:      nostr.KindReaction,
		CreatedAt: srv.now().Unix(),
		Tags:      tags,
		Content:   content,
	})
	if err != nil {
		return err
	}
	body, err := json.Marshal(reaction)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(srv.webhookAuth)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting reaction: %w", err)
	}
	defer resp.Body.Close()
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, string(text))
}

// Returns a bolt11 invoice for zapping the target author (and event, when given) from the bot.
func (srv *Server) HandleQueryZap(c echo.Context) error {
	ctx := c.Request().Context()

	if srv.invoicer == nil {
		return c.JSON(http.StatusInternalServerError, GenericError{Error: "zaps are not configured"})
	}
	sats := int64(50)
	if s := c.QueryParam("sats"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusForbidden, GenericError{Error: "sats is not integer"})
		}
		sats = v
	}
	id, pubkey := queryTarget(c)
	if pubkey == "" {
		return c.JSON(http.StatusForbidden, GenericError{Error: "pubkey is null"})
	}

	profile, err := srv.invoicer.Profile(ctx, pubkey, nil)
	if err != nil {
		srv.logger.Warn("zap target profile not found", "err", err, "pubkey", pubkey)
		return c.JSON(http.StatusForbidden, GenericError{Error: "Zap endpoint is null", Message: err.Error()})
	}
	ep, err := srv.invoicer.Endpoint(ctx, profile)
	if err != nil {
		srv.logger.Warn("zap endpoint unavailable", "err", err, "pubkey", pubkey)
		return c.JSON(http.StatusForbidden, GenericError{Error: "Zap endpoint is null", Message: err.Error()})
	}
	invoice, err := srv.invoicer.Invoice(ctx, ep, nostr.ZapRequestParams{
		Recipient:   pubkey,
		EventID:     id,
		AmountMsats: sats * 1000,
		Comment:     c.QueryParam("comment"),
		Relays:      zap.DefaultBroadcastRelays,
		CreatedAt:   srv.now().Unix(),
	})
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericError{Error: "Failed to fetch invoice", Message: err.Error()})
	}
	return c.String(http.StatusOK, invoice)
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		slog.Warn("unyu-http-internal-error", "err", err)
	}
	c.JSON(code, GenericStatus{Status: "error", Daemon: "unyu", Message: errorMessage})
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: "unyu"})
}
