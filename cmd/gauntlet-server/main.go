package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/config"
	"stake-gauntlet/internal/journal"
	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/logging"
	"stake-gauntlet/internal/notify"
	"stake-gauntlet/internal/scheduler"
	"stake-gauntlet/internal/store"
	httptransport "stake-gauntlet/internal/transport/http"
	"stake-gauntlet/internal/verify"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New()

	var provider verify.Provider
	if cfg.AI.APIKey != "" {
		provider = verify.NewOpenAIProvider(cfg.AI)
		log.Info().Str("model", cfg.AI.Model).Msg("ai verification enabled")
	} else {
		log.Info().Msg("AI_API_KEY not set, AI-verified games fall back to manual review")
	}
	wf := verify.NewWorkflow(st, provider, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, time.Now)

	feed := lifecycle.NewFeed(500)
	defer feed.Close()
	svc := lifecycle.NewService(st, wf, feed, time.Duration(cfg.Scheduler.StartGraceMinutes)*time.Minute, time.Now)

	var pinger httptransport.Pinger
	if cfg.Server.PostgresDSN != "" {
		jnl, err := journal.Open(ctx, cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("journal init failed")
		}
		defer jnl.Close()
		svc.SetJournal(jnl)
		pinger = jnl
		log.Info().Msg("transaction journal enabled")
	}

	notifyCfg, err := notify.FromServer(cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("notify config failed")
	}
	mgr := notify.NewManager(notifyCfg, svc)
	svc.RegisterObserver(mgr)
	if err := mgr.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("notify start failed")
	}

	sched := scheduler.New(svc, time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second, time.Now)
	go sched.Run(ctx)

	router := httptransport.NewRouter(svc, feed, cfg.Server, pinger)
	httptransport.LogRoutes(router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
