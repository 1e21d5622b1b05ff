package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"system_sentinel/internal/api"
	"system_sentinel/internal/app/service"
	"system_sentinel/internal/common/security"
	"system_sentinel/internal/domain/repository"
	"system_sentinel/internal/platform/cache"
	"system_sentinel/internal/platform/config"
	"system_sentinel/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Printf("Configuration loaded (app=%s, debug=%v)", cfg.AppName, cfg.Debug)

	// 2. Token Service
	tokens, err := security.NewTokenService(
		[]byte(cfg.SecretKey),
		cfg.Algorithm,
		time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute,
	)
	if err != nil {
		log.Fatalf("Token service init failed: %v", err)
	}

	// 3. Database: connect, migrate, bootstrap admin
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database init failed: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	log.Println("Database connected and migrated.")

	userRepo := repository.NewPgUserRepository(db)
	if err := database.EnsureAdmin(context.Background(), userRepo, cfg); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}
	log.Println("Admin account ensured.")

	// 4. User cache (optional; the service runs fine without redis)
	userCache, err := cache.Connect(cfg)
	if err != nil {
		log.Printf("Redis unavailable, user cache disabled: %v", err)
		userCache = nil
	} else {
		defer userCache.Close()
		log.Println("Redis connected, user cache enabled.")
	}

	// 5. Services & Router
	authService := service.NewAuthService(userRepo, userCache, tokens)
	userService := service.NewUserService(userRepo, userCache)
	router := api.NewRouter(cfg.AppName, authService, userService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 6. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
