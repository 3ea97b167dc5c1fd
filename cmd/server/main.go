package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hpcl-dt/be-procurement/internal/config"
	"github.com/hpcl-dt/be-procurement/internal/database"
	"github.com/hpcl-dt/be-procurement/internal/handler"
	"github.com/hpcl-dt/be-procurement/internal/integration"
	"github.com/hpcl-dt/be-procurement/internal/logger"
	"github.com/hpcl-dt/be-procurement/internal/middleware"
	"github.com/hpcl-dt/be-procurement/internal/notify"
	"github.com/hpcl-dt/be-procurement/internal/repository/memstore"
	"github.com/hpcl-dt/be-procurement/internal/repository/postgres"
	"github.com/hpcl-dt/be-procurement/internal/sequence"
	"github.com/hpcl-dt/be-procurement/internal/service"
	"github.com/hpcl-dt/be-procurement/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		ruleStore      service.RuleStore
		prStore        service.PurchaseRequestStore
		approvalStore  service.ApprovalStore
		exceptionStore service.ExceptionStore
		auditStore     service.AuditStore
	)

	switch cfg.Store.Backend {
	case "memory":
		log.Warn().Msg("using in-memory store, data will not survive a restart")
		ruleStore = memstore.NewRuleStore()
		prStore = memstore.NewPurchaseRequestStore()
		approvalStore = memstore.NewApprovalStore()
		exceptionStore = memstore.NewExceptionStore()
		auditStore = memstore.NewAuditStore()
	case "postgres":
		db, err := database.New(ctx, database.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		log.Info().Msg("connected to database")

		ruleStore = postgres.NewRuleStore(db)
		prStore = postgres.NewPurchaseRequestStore(db)
		approvalStore = postgres.NewApprovalStore(db)
		exceptionStore = postgres.NewExceptionStore(db)
		auditStore = postgres.NewAuditStore(db)
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	events, err := notify.Connect(cfg.NATS.URL, log)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer events.Close()

	chains, err := workflow.ChainsFromConfig(cfg.Approval.Chains)
	if err != nil {
		return fmt.Errorf("approval chain config: %w", err)
	}
	policy := workflow.NewPolicy(chains)

	ids := sequence.New(cfg.IDs.Scheme)
	sap := integration.NewSAPAdapter()
	gem := integration.NewGeMAdapter()
	cppp := integration.NewCPPPAdapter()

	auditSvc := service.NewAuditService(auditStore, log)
	approvalSvc := service.NewApprovalService(approvalStore, policy, auditSvc, events, log)
	ruleSvc := service.NewRuleService(ruleStore, prStore, auditSvc, ids, log)
	exceptionSvc := service.NewExceptionService(exceptionStore, auditSvc, events, ids, log)
	prSvc := service.NewPurchaseRequestService(prStore, approvalSvc, auditSvc, sap, events, ids, log)

	h := handler.New(prSvc, approvalSvc, ruleSvc, exceptionSvc, auditSvc, sap, gem, cppp, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	h.Routes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
