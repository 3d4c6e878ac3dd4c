package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"sawa/internal/ai"
	"sawa/internal/domain/audit"
	"sawa/internal/domain/auth"
	"sawa/internal/domain/company"
	"sawa/internal/domain/dialog"
	"sawa/internal/domain/hiring"
	"sawa/internal/domain/payroll"
	"sawa/internal/domain/session"
	"sawa/internal/platform/config"
	cryptoutil "sawa/internal/platform/crypto"
	"sawa/internal/platform/db"
	"sawa/internal/platform/jobs"
	"sawa/internal/platform/metrics"
	payslipshandler "sawa/internal/transport/http/handlers/payslips"
	systemhandler "sawa/internal/transport/http/handlers/system"
	webhookhandler "sawa/internal/transport/http/handlers/webhook"
	"sawa/internal/transport/http/middleware"
	"sawa/internal/transport/http/shared"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	statutory, err := statutoryFromConfig(cfg)
	if err != nil {
		log.Fatalf("tax brackets invalid: %v", err)
	}

	credStore := auth.NewStore(pool)
	gate := auth.NewGate(cfg.AppSecret, cfg.PinTTL, credStore)
	companyStore := company.NewStore(pool, crypto)
	payrollStore := payroll.NewStore(pool)
	hiringStore := hiring.NewStore(pool, crypto)
	auditSvc := audit.New(pool)
	collector := metrics.New()

	var classifier ai.Classifier = ai.Noop{}
	if cfg.AnthropicAPIKey != "" {
		classifier = ai.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AITimeout)
	}

	sessions := session.NewPGStore(pool, cfg.SessionTTL)
	locker := session.NewLocker()

	maintenance := jobs.New(pool, cfg)
	maintenance.Start(ctx, sessions)

	router := dialog.NewRouter(classifier, cfg.AITimeout, collector)
	engine := dialog.NewEngine(companyStore, credStore, payrollStore, hiringStore, gate, classifier, cfg.AITimeout, auditSvc, collector, statutory, cfg.PublicBaseURL)
	dialogSvc := dialog.NewService(sessions, locker, router, engine, collector, cfg.MaxInputLength)

	webhook := webhookhandler.NewHandler(dialogSvc, cfg.ReplyCharLimit)
	payslips := payslipshandler.NewHandler(gate, payrollStore)
	system := systemhandler.NewHandler(pool, collector)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	mux.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	mux.Get("/healthz", system.HandleHealthz)
	mux.Get("/readyz", system.HandleReadyz)
	mux.Get("/metrics", system.HandleMetrics)
	mux.Get("/payslips/pdf", payslips.HandleDownload)

	mux.Route("/webhook", func(r chi.Router) {
		r.Use(middleware.TwilioSignature(cfg.TwilioAuthToken, cfg.SkipTwilioValidation))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute,
			middleware.WithKeyFunc(middleware.SenderKey),
			middleware.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				shared.WriteTwiML(w, "You're sending messages too quickly. Please wait a moment and try again.")
			}),
		))
		r.Post("/whatsapp", webhook.HandleIncoming)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("sawa listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func statutoryFromConfig(cfg config.Config) (payroll.StatutoryConfig, error) {
	statutory := payroll.DefaultStatutoryConfig()
	statutory.PensionEmployeeBp = cfg.PensionEmployeeBp
	statutory.PensionEmployerBp = cfg.PensionEmployerBp
	statutory.NHFBp = cfg.NHFBp
	statutory.NHFMinBasic = payroll.Kobo(cfg.NHFMinBasicKobo)
	statutory.ReliefBp = cfg.ReliefBp
	statutory.ReliefCapAnnual = payroll.Kobo(cfg.ReliefCapAnnualKobo)

	brackets, err := payroll.ParseBrackets(cfg.TaxBracketsJSON)
	if err != nil {
		return payroll.StatutoryConfig{}, err
	}
	if brackets != nil {
		statutory.Brackets = brackets
	}
	return statutory, nil
}
