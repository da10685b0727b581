package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustgate.org/internal/httpapi"
	"trustgate.org/internal/obs"
	"trustgate.org/internal/policy"
	"trustgate.org/internal/token"
)

var version = "0.3.1"

func main() {
	obs.Init()

	secret := os.Getenv("TRUSTGATE_IDP_SECRET")
	if secret == "" {
		log.Fatal("TRUSTGATE_IDP_SECRET is not set")
	}
	domain, err := token.PrimaryDomain(secret)
	if err != nil {
		log.Fatalf("domain: %v", err)
	}

	verifier := token.NewVerifier(domain)
	engine := policy.NewEngine(policy.DefaultConfig())
	api := httpapi.NewResource(verifier, engine, version)

	addr := os.Getenv("TRUSTGATE_RESOURCE_ADDR")
	if addr == "" {
		addr = ":8081"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting trustgate-resource %s on %s", version, srv.Addr)

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
