package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"med-alert/internal/adapters/auth/oauthproxy"
	"med-alert/internal/platform/logger"
	"med-alert/internal/ports/auth"
	"med-alert/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	appLog := logger.NewFromEnv()

	// Verifier externo opcional; sin configurar queda modo dev
	// (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if base := os.Getenv("AUTH_BASE_URL"); base != "" {
		v, err := oauthproxy.NewVerifier(oauthproxy.Config{
			BaseURL: base,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Fatalf("auth verifier: %v", err)
		}
		verifier = v
	}

	pollInterval := 0 * time.Second
	if v := os.Getenv("ALERT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("ALERT_POLL_INTERVAL: %v", err)
		}
		pollInterval = d
	}

	h, runner := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Logger:       appLog,
		PollInterval: pollInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Start(ctx); err != nil {
		log.Fatalf("alert runner: %v", err)
	}
	defer runner.Stop()

	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
