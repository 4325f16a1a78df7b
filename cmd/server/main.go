// Command server runs the normativa API: condominium registry, dated-record
// intake, compliance recalculation, alerts, summaries, and the reminder
// worker. Wiring only; business logic lives under internal/.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"normativa/internal/alerts"
	"normativa/internal/audit"
	"normativa/internal/compliance"
	compliancehandler "normativa/internal/compliance/handler"
	"normativa/internal/compliance/metrics"
	"normativa/internal/condo"
	condohandler "normativa/internal/condo/handler"
	"normativa/internal/platform/config"
	"normativa/internal/platform/httpserver"
	"normativa/internal/platform/logger"
	platformredis "normativa/internal/platform/redis"
	"normativa/internal/records"
	recordshandler "normativa/internal/records/handler"
	"normativa/internal/reminders"
	"normativa/internal/report"
	reporthandler "normativa/internal/report/handler"
	httptransport "normativa/internal/transport/http"
	"normativa/pkg/platform/middleware/auth"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: PostgreSQL when DATABASE_URL is set, in-memory otherwise so the
	// service runs self-contained in development.
	var (
		db             *sql.DB
		condoStore     condo.Store
		assemblyStore  records.AssemblyStore
		planStore      records.PlanStore
		insuranceStore records.InsuranceStore
		certStore      records.CertificationStore
		alertStore     compliance.AlertStore
		ruleConfig     compliance.RuleConfigStore
		auditStore     audit.Store
	)
	checks := map[string]func(ctx context.Context) error{}

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		checks["postgres"] = db.PingContext

		condoStore = condo.NewPostgres(db)
		assemblyStore = records.NewPostgresAssemblies(db)
		planStore = records.NewPostgresPlans(db)
		insuranceStore = records.NewPostgresInsurances(db)
		certStore = records.NewPostgresCertifications(db)
		alertStore = alerts.NewPostgres(db)
		ruleConfig = compliance.NewPostgresRuleConfig(db)
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		condoStore = condo.NewInMemory()
		assemblyStore = records.NewInMemoryAssemblies()
		planStore = records.NewInMemoryPlans()
		insuranceStore = records.NewInMemoryInsurances()
		certStore = records.NewInMemoryCertifications()
		alertStore = alerts.NewInMemoryStore()
		ruleConfig = compliance.NewInMemoryRuleConfig()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	auditPublisher := audit.NewPublisher(256, log)
	auditWorker := audit.NewWorker(auditStore, auditPublisher.Inbox(), log)

	condoService := condo.New(condoStore, condo.WithLogger(log))
	recordService := records.New(
		condoService,
		assemblyStore, planStore, insuranceStore, certStore,
		records.WithLogger(log),
		records.WithAuditPublisher(auditPublisher),
	)

	sources := compliance.Sources{
		Assemblies:     assemblyStore,
		Plans:          planStore,
		Insurances:     insuranceStore,
		Certifications: certStore,
	}
	complianceOpts := []compliance.Option{
		compliance.WithLogger(log),
		compliance.WithMetrics(metrics.New()),
		compliance.WithAuditPublisher(auditPublisher),
	}

	reportService := report.New(condoService, alertStore, insuranceStore, certStore, log)
	var summarizer report.Summarizer = reportService
	if redisClient != nil {
		cache := report.NewCache(reportService, redisClient.Client, cfg.SummaryCacheTTL, log)
		summarizer = cache
		complianceOpts = append(complianceOpts, compliance.WithSummaryInvalidator(cache))
	}

	complianceService := compliance.New(
		compliance.NewRegistry(ruleConfig),
		sources,
		alertStore,
		complianceOpts...,
	)

	reminderService := reminders.New(
		condoService,
		insuranceStore, certStore, assemblyStore,
		reminders.NewLogMailer(log),
		cfg.Reminders.LeadWindow,
		reminders.WithLogger(log),
		reminders.WithAuditPublisher(auditPublisher),
	)
	reminderWorker := reminders.NewWorker(reminderService, complianceService, cfg.Reminders.Interval, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Validator: auth.NewValidator(cfg.JWTSigningKey),
		Handlers: []httptransport.Registrar{
			condohandler.New(condoService, log),
			recordshandler.New(recordService, log),
			compliancehandler.New(complianceService, condoService, log),
			reporthandler.New(summarizer, log),
		},
		Checks: checks,
	})

	go func() {
		if err := auditWorker.Run(ctx); err != nil {
			log.Error("audit worker stopped", "error", err)
		}
	}()
	go reminderWorker.Run(ctx)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting normativa server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	auditPublisher.Drain(2 * time.Second)
	return nil
}
