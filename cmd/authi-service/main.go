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
	"github.com/salulink/authi/pkg/analysis"
	"github.com/salulink/authi/pkg/authi"
	"github.com/salulink/authi/pkg/cases"
	"github.com/salulink/authi/pkg/common/config"
	"github.com/salulink/authi/pkg/common/database"
	"github.com/salulink/authi/pkg/common/kafka"
	"github.com/salulink/authi/pkg/common/logger"
	"github.com/salulink/authi/pkg/refdata"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := cases.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate case tables")
	}

	loader := refdata.NewLoader(cfg.ReferenceDataDir)
	loader.Catalog()

	keywordCatalog, err := analysis.LoadKeywordCatalog(cfg.KeywordCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load keyword catalog, using defaults")
	}
	analyzer := analysis.NewAnalyzer(keywordCatalog)

	authiService := authi.NewService(loader)
	authiHandler := authi.NewHTTPHandler(authiService, analyzer, cfg.MaxRequestBody)

	producer := kafka.NewProducer(cfg.KafkaCaseTopic)
	defer producer.Close()

	caseService := cases.NewService(repo, producer, database.GetRedis(), cfg.CaseCacheTTL)
	caseHandler := cases.NewHTTPHandler(caseService, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	authiHandler.Register(api)
	caseHandler.Register(api)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Authi service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start authi service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down authi service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("authi service forced to shutdown")
	}

	database.CloseRedis()
	database.ClosePostgres()
	logger.Log.Info("Authi service stopped")
}
