package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"trustgate.org/internal/directory"
	"trustgate.org/internal/httpapi"
	"trustgate.org/internal/obs"
	"trustgate.org/internal/risk"
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

	// Directory backend: Postgres when a DSN is configured, seeded
	// in-memory fixtures otherwise.
	var (
		dir directory.Directory
		db  *sql.DB
	)
	if dsn := os.Getenv("TRUSTGATE_PG_DSN"); dsn != "" {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		dir = directory.NewPGStore(db)
	} else {
		mem := directory.NewMemoryDirectory()
		if err := directory.SeedPrimary(mem); err != nil {
			log.Fatalf("seed directory: %v", err)
		}
		dir = mem
	}

	issuer := token.NewIssuer(domain, dir, risk.NewScorer(risk.PrimaryConfig()))
	api := httpapi.NewIdP(issuer, httpapi.ReadyProbe{DB: db}, version)

	addr := os.Getenv("TRUSTGATE_IDP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting trustgate-idp %s on %s", version, srv.Addr)

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
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
