package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/config"
	"github.com/dangtran89/finwatch/internal/db"
	"github.com/dangtran89/finwatch/internal/handlers"
	"github.com/dangtran89/finwatch/internal/logger"
	"github.com/dangtran89/finwatch/internal/repositories"
	"github.com/dangtran89/finwatch/internal/services"
)

// @title Finwatch Price Engine API
// @version 1.0
// @description Multi-provider price acquisition for tracked stocks and crypto
// @BasePath /api
func main() {
	cfg := config.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	zlog.Info("database ready",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name))

	repo := repositories.NewAssetRepository(database)

	timeout := cfg.Providers.RequestTimeout
	stockProviders := []services.QuoteProvider{
		services.NewYahooChartProvider("yahoo-chart", "https://query1.finance.yahoo.com", timeout),
		services.NewYahooChartProvider("yahoo-chart-backup", "https://query2.finance.yahoo.com", timeout),
		services.NewYahooQuoteSummaryProvider("yahoo-quote-summary", "https://query1.finance.yahoo.com", timeout),
		services.NewRapidAPIProvider(cfg.Providers.RapidAPIHost, cfg.Providers.RapidAPIKey, timeout),
	}
	cryptoProvider := services.NewCoinGeckoProvider("", timeout)
	autoComplete := services.NewAutoCompleteProvider(cfg.Providers.RapidAPIHost, cfg.Providers.RapidAPIKey, timeout)

	synthetic := services.NewSyntheticPriceGenerator(repo, zlog)
	resolver := services.NewPriceResolver(stockProviders, cryptoProvider, repo, synthetic, zlog)
	validator := services.NewSymbolValidator(repo, autoComplete, zlog)
	search := services.NewStockSearchService(autoComplete, repo, zlog)

	scheduler := services.NewPriceScheduler(cfg.PollInterval, repo, resolver, zlog)
	scheduler.Start()

	assetHandler := handlers.NewAssetHandler(repo, resolver, validator, zlog)
	searchHandler := handlers.NewSearchHandler(search)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  status,
			"service": "finwatch",
		})
	})
	router.HandleFunc("/api/assets", assetHandler.HandleAssets)
	router.HandleFunc("/api/assets/{id:[0-9]+}", assetHandler.HandleAsset)
	router.HandleFunc("/api/stocks/search", searchHandler.HandleSearch)
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	handler := handlers.CORS(handlers.RequestLogger(zlog)(router))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
	}
	zlog.Info("server stopped")
}
