package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolat/nostr-unyu/nostr"
	"github.com/nikolat/nostr-unyu/pkg/metrics"
	"github.com/nikolat/nostr-unyu/responder"
	"github.com/nikolat/nostr-unyu/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

const defaultWebhookURL = "https://nostr-webhook.compile-error.net/post"

// The part of [zap.Zapper] behind /api/query_zap.
type Invoicer interface {
	Profile(ctx context.Context, pubkey string, relays []string) (*nostr.Event, error)
	Endpoint(ctx context.Context, profile *nostr.Event) (*zap.Endpoint, error)
	Invoice(ctx context.Context, ep *zap.Endpoint, req nostr.ZapRequestParams) (string, error)
}

var _ Invoicer = (*zap.Zapper)(nil)

type Server struct {
	echo      *echo.Echo
	httpd     *http.Server
	logger    *slog.Logger
	responder *responder.Responder
	signer    nostr.Signer
	invoicer  Invoicer
	client    *http.Client

	webhookURL   string
	webhookAuth  string
	verifyEvents bool
	now          func() time.Time
}

type Config struct {
	Logger    *slog.Logger
	Responder *responder.Responder
	Signer    nostr.Signer
	Invoicer  Invoicer
	// used for the reaction webhook
	HTTPClient *http.Client
	// defaults to the nostr-webhook relay gateway
	WebhookURL string
	// "user:password"; /api/query_fav fails without it
	WebhookAuth  string
	VerifyEvents bool
	Bind         string
	Now          func() time.Time
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Responder == nil || config.Signer == nil {
		return nil, errors.New("responder and signer are required")
	}
	if config.WebhookURL == "" {
		config.WebhookURL = defaultWebhookURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	e := echo.New()

	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)

	srv := &Server{
		echo:         e,
		logger:       logger,
		responder:    config.Responder,
		signer:       config.Signer,
		invoicer:     config.Invoicer,
		client:       config.HTTPClient,
		webhookURL:   config.WebhookURL,
		webhookAuth:  config.WebhookAuth,
		verifyEvents: config.VerifyEvents,
		now:          config.Now,
	}
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(otelecho.Middleware("unyu"))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.HTTPErrorHandler = srv.errorHandler

	e.GET("/_health", srv.HandleHealthCheck)
	e.POST("/api/:mode", srv.HandleEvent)
	e.GET("/api/query_fav", srv.HandleQueryFav)
	e.GET("/api/query_zap", srv.HandleQueryZap)

	return srv, nil
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

// Serves the API and the metrics listener until either fails or the process is signalled.
func (srv *Server) Run(ctx context.Context, metricsListen string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		srv.logger.Info("starting server", "bind", srv.httpd.Addr)
		if err := srv.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return metrics.RunServer(ctx, metricsListen, srv.logger)
	})
	eg.Go(func() error {
		<-ctx.Done()
		srv.logger.Info("shutting down")
		return srv.Shutdown()
	})
	return eg.Wait()
}

func (srv *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}
