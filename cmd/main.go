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

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"casatorpe/handler"
	"casatorpe/internal/config"
	"casatorpe/internal/content"
	"casatorpe/internal/integrations/formspree"
	"casatorpe/internal/integrations/gcal"
	"casatorpe/internal/integrations/gemini"
	"casatorpe/internal/integrations/openai"
	"casatorpe/internal/integrations/paramstore"
	"casatorpe/internal/repository"
	"casatorpe/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", "err", err)
		os.Exit(1)
	}
	cfg := config.Load(os.Getenv)
	onLambda := os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
	setupLogger(cfg, onLambda)

	// ---- AWS (optional: secrets and lead log) ----
	var leads usecase.LeadRecorder
	if cfg.ParamPrefix != "" || cfg.LeadsTable != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		if cfg.ParamPrefix != "" {
			ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				slog.Error("failed to create SSM client", "err", err)
				os.Exit(1)
			}
			config.ResolveSecrets(ctx, ssmClient, &cfg)
		}
		if cfg.LeadsTable != "" {
			leadClient, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.LeadsTable)
			if err != nil {
				slog.Error("failed to create lead log client", "err", err)
				os.Exit(1)
			}
			leads = leadClient
		}
	}

	loc := cfg.Location()

	// ---- Clients ----
	var calendar usecase.EventLister
	if cfg.CalendarConfigured() {
		c, err := gcal.New(ctx, cfg.CalendarID, cfg.CalendarAPIKey)
		if err != nil {
			slog.Error("failed to create calendar client", "err", err)
			os.Exit(1)
		}
		calendar = c
	} else {
		slog.Warn("calendar not configured; availability disabled")
	}

	generator, closeGenerator := newGenerator(ctx, cfg)
	defer closeGenerator()

	var relay usecase.FormRelay
	if cfg.FormEndpoint != "" {
		r, err := formspree.New(cfg.FormEndpoint)
		if err != nil {
			slog.Error("failed to create form relay", "err", err)
			os.Exit(1)
		}
		relay = r
	} else {
		slog.Warn("form endpoint not configured; contact form disabled")
	}

	// ---- Services ----
	conciergeOpts := []usecase.ConciergeOption{
		usecase.WithContactEmail(cfg.ContactEmail),
		usecase.WithTemperature(cfg.ConciergeTemperature),
	}
	if cfg.ConciergeCalendarContext {
		conciergeOpts = append(conciergeOpts, usecase.WithCalendarContext(calendar, loc))
	}

	site, err := content.Load()
	if err != nil {
		slog.Error("failed to load site content", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(handler.Deps{
		Availability: usecase.NewAvailabilityService(calendar, loc),
		Concierge:    usecase.NewConciergeService(generator, conciergeOpts...),
		Inquiries:    usecase.NewInquiryService(relay, leads),
		Occupancy:    calendar,
		Site:         site,
		Payments:     content.PaymentOptions(cfg),
		Links: handler.Links{
			Telegram:     cfg.TelegramLink,
			WhatsApp:     cfg.WhatsAppLink,
			ContactEmail: cfg.ContactEmail,
		},
		Location: loc,
	})
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if onLambda {
		lambda.Start(h.Handle)
		return
	}
	serve(cfg.ListenAddr, handler.NewHTTPAdapter(h.Handle))
}

func setupLogger(cfg config.Config, onLambda bool) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if onLambda {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// newGenerator picks the concierge backend. A missing key leaves the
// generator nil so the concierge answers with its not-configured reply.
func newGenerator(ctx context.Context, cfg config.Config) (usecase.Generator, func()) {
	noop := func() {}
	switch cfg.ConciergeProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("concierge not configured", "provider", cfg.ConciergeProvider)
			return nil, noop
		}
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.WithBaseURL(cfg.OpenAIBaseURL))
		if err != nil {
			slog.Error("failed to create OpenAI client", "err", err)
			os.Exit(1)
		}
		return c, noop
	default:
		if cfg.GeminiAPIKey == "" {
			slog.Warn("concierge not configured", "provider", cfg.ConciergeProvider)
			return nil, noop
		}
		c, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("failed to create Gemini client", "err", err)
			os.Exit(1)
		}
		return c, func() {
			if err := c.Close(); err != nil {
				slog.Warn("closing Gemini client failed", "err", err)
			}
		}
	}
}

func serve(addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
}
