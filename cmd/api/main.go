package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calligro/registration-api/internal/config"
	"github.com/calligro/registration-api/internal/infrastructure/dynamo"
	smtpinfra "github.com/calligro/registration-api/internal/infrastructure/smtp"
	snsinfra "github.com/calligro/registration-api/internal/infrastructure/sns"
	transporthttp "github.com/calligro/registration-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Brevo mailer (optional — the OTP send path reports the outage itself).
	var mailer smtpinfra.Mailer
	if m, err := smtpinfra.NewMailer(cfg); err == nil {
		mailer = m
	} else {
		log.Printf("WARN: mailer not available: %v", err)
	}

	// SNS push sender (optional — the notifier degrades to a logged no-op).
	var pushSender snsinfra.PushSender
	if sender, err := snsinfra.NewSender(cfg); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: push sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:   dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OtpRepo:    dynamo.NewOtpRepo(dynamoClient, cfg.DynamoTables.EmailOtps),
		Mailer:     mailer,
		PushSender: pushSender,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
