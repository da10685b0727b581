package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustgate.org/internal/directory"
	"trustgate.org/internal/httpapi"
	"trustgate.org/internal/obs"
	"trustgate.org/internal/policy"
	"trustgate.org/internal/risk"
	"trustgate.org/internal/token"
)

var version = "0.3.1"

func main() {
	obs.Init()

	secret := os.Getenv("TRUSTGATE_LOCAL_SECRET")
	if secret == "" {
		log.Fatal("TRUSTGATE_LOCAL_SECRET is not set")
	}
	domain, err := token.LocalDomain(secret)
	if err != nil {
		log.Fatalf("domain: %v", err)
	}

	dir := directory.NewMemoryDirectory()
	if err := directory.SeedLocal(dir); err != nil {
		log.Fatalf("seed directory: %v", err)
	}

	sessions := token.NewSessionRegistry()
	issuer := token.NewIssuer(domain, dir, risk.NewScorer(risk.LocalConfig()),
		token.WithSessions(sessions))
	verifier := token.NewVerifier(domain, token.WithRevocation(sessions))
	engine := policy.NewEngine(policy.LocalConfig())

	api := httpapi.NewLocal(issuer, verifier, engine, sessions, version)

	// Stale sessions are ignorable after expiry; sweep them anyway so the
	// registry does not grow without bound.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessions.Purge(time.Now().UTC())
		}
	}()

	addr := os.Getenv("TRUSTGATE_LOCAL_ADDR")
	if addr == "" {
		addr = ":8082"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting trustgate-local %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
