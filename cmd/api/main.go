package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/punchamoorthee/payflow/internal/api"
	"github.com/punchamoorthee/payflow/internal/config"
	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/middleware"
	"github.com/punchamoorthee/payflow/internal/psp"
	"github.com/punchamoorthee/payflow/internal/service"
	"github.com/punchamoorthee/payflow/internal/store"
	"github.com/punchamoorthee/payflow/internal/worker"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize Layers
	users := store.NewUserDirectory()
	banks := store.NewBankDirectory()
	accounts := store.NewAccountRegistry()
	recorder := ledger.NewRecorder()

	engine := service.NewEngine(banks, recorder, psp.NewInstant(), logger, service.Config{
		PollInterval: cfg.ReconcileInterval,
		PollDeadline: cfg.ReconcileDeadline,
	})

	pool := worker.NewPool(cfg.QueueSize, engine, logger)
	pool.Start(cfg.WorkerCount)

	handler := api.NewHandler(users, banks, accounts, recorder, engine, pool, logger)

	// Router
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheck)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/users", handler.CreateUser).Methods("POST")
	apiV1.HandleFunc("/users/{id}", handler.GetUser).Methods("GET")
	apiV1.HandleFunc("/users/{id}/statement", handler.GetStatement).Methods("GET")
	apiV1.HandleFunc("/banks", handler.RegisterBank).Methods("POST")
	apiV1.HandleFunc("/accounts", handler.OpenAccount).Methods("POST")
	apiV1.HandleFunc("/accounts/{bank}/{number}", handler.GetAccount).Methods("GET")
	apiV1.HandleFunc("/transfers", handler.CreateTransfer).Methods("POST")
	apiV1.HandleFunc("/transfers/async", handler.CreateTransferAsync).Methods("POST")

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server.Shutdown(ctx)
	pool.Shutdown()

	log.Println("Server stopped gracefully")
}
