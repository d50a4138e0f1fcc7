package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"garagesite/pkg/api"
	"garagesite/pkg/clients/airtable"
	"garagesite/pkg/clients/recaptcha"
	"garagesite/pkg/clients/resend"
	"garagesite/pkg/clients/twilio"
	"garagesite/pkg/config"
	"garagesite/pkg/email"
	"garagesite/pkg/schema"
	"garagesite/pkg/services"
	"garagesite/pkg/site"
	"garagesite/pkg/tracking"
	"garagesite/pkg/validation"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			srv, err := buildServer(a.cfg, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, srv, a.logger)
		},
	}
}

// run serves until ctx is done, then drains in-flight requests.
func run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return <-errCh
}

// buildServer wires every component from the configuration.
func buildServer(cfg *config.Config, logger *zap.Logger) (*http.Server, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}

	profile, err := schema.LoadProfile(cfg.BusinessProfilePath)
	if err != nil {
		return nil, err
	}
	if cfg.SiteURL != "" {
		profile.URL = cfg.SiteURL
	}

	snippets, err := tracking.New(tracking.Config{
		GTMID:              cfg.GTMID,
		AdsConversionID:    cfg.AdsConversionID,
		AdsConversionLabel: cfg.AdsConversionLabel,
		CallRailAccountID:  cfg.CallRailAccountID,
		CallRailCompanyID:  cfg.CallRailCompanyID,
		RecaptchaSiteKey:   cfg.RecaptchaSiteKey,
	})
	if err != nil {
		return nil, err
	}
	pages, err := site.New(profile, snippets, logger)
	if err != nil {
		return nil, err
	}

	leadService, err := buildLeadService(cfg, profile, logger)
	if err != nil {
		return nil, err
	}

	handlers := api.NewHandlers(leadService, api.HandlersConfig{
		Profile:          profile,
		RecaptchaSiteKey: cfg.RecaptchaSiteKey,
		RecaptchaEnabled: !cfg.IsDevelopment(),
		RequestTimeout:   cfg.RequestTimeout,
		Logger:           logger,
	})
	router := api.NewRouter(handlers, pages, api.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Release:        !cfg.IsDevelopment(),
	})

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}, nil
}

func buildLeadService(cfg *config.Config, profile *schema.Profile, logger *zap.Logger) (services.LeadService, error) {
	captcha := recaptcha.NewClient(cfg.RecaptchaSecretKey, cfg.RecaptchaMinScore, recaptcha.WithLogger(logger))
	leadGuard := recaptcha.NewGuard(captcha, recaptcha.PolicyFor(cfg.Env, true), logger)
	formGuard := recaptcha.NewGuard(captcha, recaptcha.PolicyFor(cfg.Env, false), logger)
	logger.Info("recaptcha policies",
		zap.Stringer("lead", leadGuard.Policy()),
		zap.Stringer("submit_form", formGuard.Policy()))

	sender, err := resend.NewClient(cfg.ResendAPIKey, "", logger)
	if err != nil {
		// Only reachable outside production; Validate requires the key there.
		logger.Warn("email disabled", zap.Error(err))
	}
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, err
	}
	dispatcher := email.NewDispatcher(sender, renderer, email.DispatcherConfig{
		From:          cfg.EmailFrom,
		BusinessEmail: cfg.BusinessEmail,
		BusinessName:  profile.Name,
		BusinessPhone: profile.Phone,
	}, logger)

	var notifiers []services.Notifier
	if cfg.SMSAlertsEnabled() {
		sms := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
		notifiers = append(notifiers, services.NewSMSNotifier(sms, cfg.BusinessSMSNumber))
	}
	if cfg.CRMEnabled() {
		crm := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID, airtable.WithLogger(logger))
		notifiers = append(notifiers, services.NewCRMNotifier(crm, cfg.AirtableLeadsTable, logger))
	}

	return services.NewLeadService(services.Deps{
		LeadGuard: leadGuard,
		FormGuard: formGuard,
		Mailer:    dispatcher,
		Notifiers: notifiers,
		Logger:    logger,
	}), nil
}
