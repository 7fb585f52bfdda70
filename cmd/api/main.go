package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	_ "recruitflow/docs" // Swagger docs
	"recruitflow/internal/api"
	"recruitflow/internal/config"
	"recruitflow/internal/cv"
	"recruitflow/internal/notify"
	"recruitflow/internal/pipeline"
	"recruitflow/internal/storage"
)

// @title RecruitFlow Pipeline API
// @version 1.0
// @description Recruitment pipeline engine: batch resume ingestion, candidate lifecycle, interview scheduling and pipeline analytics

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.LoadConfig()

	var store storage.Store
	if cfg.DatabaseURL != "" {
		log.Info("Connecting to database...")
		pg, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("db open")
		}
		store = pg
		log.Info("Database connected successfully!")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store (state is lost on restart)")
		mem, err := storage.NewMemStore()
		if err != nil {
			log.WithError(err).Fatal("building in-memory store")
		}
		store = mem
	}
	defer store.Close()

	var dispatcher notify.Dispatcher = notify.NopDispatcher{}
	if cfg.NotifyWebhookURL != "" {
		dispatcher = notify.NewWebhookDispatcher(cfg.NotifyWebhookURL, log)
		log.WithField("url", cfg.NotifyWebhookURL).Info("webhook notifications enabled")
	}

	analyzer := cv.NewDocconvAnalyzer(cfg.AnalyzerWorkDir)
	engine := pipeline.NewEngine(store, analyzer, dispatcher, log, pipeline.Options{
		Workers:           cfg.IngestWorkers,
		AnalyzerTimeout:   cfg.AnalyzerTimeout,
		TransitionRetries: cfg.TransitionRetries,
	})

	apiSrv := api.NewAPI(engine, log)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // resume batch uploads
		WriteTimeout: 5 * time.Minute,  // analyzer-heavy ingestion responses
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server shutdown")
		}
		close(idleConnsClosed)
	}()

	log.Infof("API server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server failed")
	}

	<-idleConnsClosed
}
