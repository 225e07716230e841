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

	"github.com/razorlong2/epimind-app/pkg/audit"
	"github.com/razorlong2/epimind-app/pkg/catalog"
	"github.com/razorlong2/epimind-app/pkg/common/config"
	"github.com/razorlong2/epimind-app/pkg/common/database"
	"github.com/razorlong2/epimind-app/pkg/common/kafka"
	"github.com/razorlong2/epimind-app/pkg/common/logger"
	"github.com/razorlong2/epimind-app/pkg/extraction"
	"github.com/razorlong2/epimind-app/pkg/observability/metrics"
	"github.com/razorlong2/epimind-app/pkg/ocr"
	"github.com/razorlong2/epimind-app/pkg/record"
	"github.com/razorlong2/epimind-app/pkg/risk"
	"github.com/razorlong2/epimind-app/pkg/server"
)

func main() {
	logger.Init("assessment-service")
	cfg := config.Load()

	patterns, err := extraction.LoadPatterns(cfg.PatternsPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load extraction patterns")
	}
	extractor, err := extraction.NewExtractor(patterns)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to compile extraction patterns")
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load reference catalog")
	}

	trail := audit.NewCSVLog(cfg.AuditCSVPath)
	processor := ocr.NewProcessor(ocr.NewClient(cfg), extractor, cat)

	svc := server.NewService(record.NewValidator(), risk.NewEngine(), extractor, cat, processor, trail)

	if cfg.AuditToDB {
		db, err := database.GetPostgres()
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to postgres")
		}
		repo := audit.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate audit tables")
		}
		svc = svc.WithAuditRepository(repo)
	}

	svc = svc.WithResultStore(server.NewResultStore(database.GetRedis(), cfg.ResultTTL))

	producer := kafka.NewProducer(cfg.KafkaEvaluationTopic)
	defer producer.Close()
	svc = svc.WithProducer(producer)

	metrics.Init()

	router := mux.NewRouter()
	router.Use(server.Logging)
	router.Use(server.Recovery)
	router.Use(server.CORS)
	router.Use(server.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(server.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(server.TokenAuth(cfg.APIToken))
	server.NewHTTPHandler(svc).Register(api)

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
		}).Info("Assessment Service started")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Assessment Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Assessment Service stopped")
}
