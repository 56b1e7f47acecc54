package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earnhub/internal/cache"
	"earnhub/internal/config"
	"earnhub/internal/http/handlers"
	applog "earnhub/internal/log"
	"earnhub/internal/repos"
	"earnhub/internal/token"
	"earnhub/internal/tracing"

	"github.com/google/uuid"
)

func main() {
	if files := config.LoadDotEnv(); len(files) > 0 {
		log.Printf("[config] loaded %v", files)
	}
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	if _, err := tracing.Init(tracing.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.JaegerEndpoint,
		ServiceName: "earnhub",
		Environment: os.Getenv("APP_ENV"),
	}); err != nil {
		log.Printf("[warn] tracing disabled: %v", err)
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Redis when configured, otherwise an in-process cache.
	var c cache.Cache = cache.NewInMemoryCache()
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Printf("[warn] redis unavailable at %s, using in-memory cache: %v", cfg.RedisAddr, err)
		} else {
			defer rc.Close()
			c = rc
		}
	}
	store := repos.NewCachedOpportunityRepo(repos.NewOpportunityRepo(db), c, cfg.CacheTTL)
	// Cached listings from a previous run may predate this database.
	store.Invalidate(context.Background())

	if n, err := repos.SeedFromFile(context.Background(), store, cfg.SeedFile); err != nil {
		log.Printf("[warn] seed %s: %v", cfg.SeedFile, err)
	} else if n > 0 {
		applog.Info(nil, "seed.loaded", map[string]any{"file": cfg.SeedFile, "count": n})
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Printf("[warn] JWT_SECRET not set; API tokens will not survive a restart")
	}
	tokens := token.NewIssuer(secret, cfg.TokenTTL)

	deps := handlers.NewDeps(store, repos.NewUserRepo(db), tokens, cfg.CookieSecure)
	app := handlers.NewApp(deps, handlers.AppOptions{
		Views:        handlers.NewViews(cfg.TemplateDir),
		StaticDir:    cfg.StaticDir,
		CookieSecure: cfg.CookieSecure,
		AccessLog:    true,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Printf("[http] listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[http] %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.Shutdown(ctx); err != nil {
		log.Printf("[warn] tracing shutdown: %v", err)
	}
}
