package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aromas-andinas/storefront/internal/checkout"
	"github.com/aromas-andinas/storefront/internal/config"
	"github.com/aromas-andinas/storefront/internal/gateway"
	"github.com/aromas-andinas/storefront/internal/httpapi"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/payment"
	"github.com/aromas-andinas/storefront/internal/store"
	"github.com/aromas-andinas/storefront/internal/submissions"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting storefront service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()

	recordStore := store.New(cfg.Store, log)
	paymentRepo := payment.NewRepo(recordStore, log)
	intake := submissions.NewService(recordStore, log)

	handler := &httpapi.Handler{
		Intake:     intake,
		Payments:   paymentRepo,
		AdminToken: cfg.Admin.Token,
		Logger:     log,
	}

	// Checkout stays disabled when gateway credentials are absent; the
	// intake and admin surfaces keep working.
	if cfg.Stripe.SecretKey != "" {
		gw, err := gateway.NewStripeGateway(cfg.Stripe.SecretKey, log)
		if err != nil {
			log.Fatal("CONFIG", fmt.Sprintf("Stripe initialization failed: %v", err))
		}
		handler.Checkout = checkout.NewService(paymentRepo, gw, log)
		log.Info("APP", "Checkout enabled")
	} else {
		log.Warn("CONFIG", "STRIPE_SECRET_KEY not set, checkout endpoint disabled")
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Storefront service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Storefront service shutdown complete")
	}
}
