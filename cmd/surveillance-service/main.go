package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/razorlong2/epimind-app/pkg/common/config"
	"github.com/razorlong2/epimind-app/pkg/common/database"
	"github.com/razorlong2/epimind-app/pkg/common/kafka"
	"github.com/razorlong2/epimind-app/pkg/common/logger"
	"github.com/razorlong2/epimind-app/pkg/server"
	"github.com/razorlong2/epimind-app/pkg/surveillance"
)

func main() {
	logger.Init("surveillance-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	store := surveillance.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate rollup tables")
	}

	worker := surveillance.NewWorker(store)

	consumer := kafka.NewConsumer(cfg.KafkaEvaluationTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	consumeCtx, stopConsume := context.WithCancel(context.Background())
	defer stopConsume()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"topic": cfg.KafkaEvaluationTopic,
			"group": cfg.KafkaGroupID,
		}).Info("Surveillance consumer started")

		if err := consumer.Consume(consumeCtx, worker.Handle); err != nil && consumeCtx.Err() == nil {
			logger.Log.WithError(err).Fatal("consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.Use(server.Logging)
	router.Use(server.Recovery)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(server.TokenAuth(cfg.APIToken))
	surveillance.NewHTTPHandler(store).Register(api)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Surveillance Service started")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Surveillance Service...")

	stopConsume()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Surveillance Service stopped")
}
