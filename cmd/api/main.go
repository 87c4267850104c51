package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"floattrack/pkg/api/filings"
	"floattrack/pkg/api/marketdata"
	"floattrack/pkg/core/extract"
	"floattrack/pkg/core/ingest"
	"floattrack/pkg/core/llm"
	"floattrack/pkg/core/pipeline"
	"floattrack/pkg/core/store"
)

// ModelConfig selects the completion provider powering AI extraction.
type ModelConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "deepseek"
	Model    string `yaml:"model"`
}

func loadModelConfig() ModelConfig {
	cfg := ModelConfig{Provider: "gemini"}
	data, err := os.ReadFile("config/models.yaml")
	if err != nil {
		log.Printf("Warning: config/models.yaml not found, using defaults")
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("Warning: failed to parse config/models.yaml: %v", err)
	}
	return cfg
}

func buildProvider(cfg ModelConfig) llm.Provider {
	switch cfg.Provider {
	case "deepseek":
		return &llm.DeepSeekProvider{Model: cfg.Model}
	default:
		return &llm.GeminiProvider{Model: cfg.Model}
	}
}

func main() {
	godotenv.Load()

	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	cfg := loadModelConfig()
	provider := buildProvider(cfg)
	log.Printf("Using %s provider (model %q)", cfg.Provider, cfg.Model)

	tickerRepo := store.NewTickerRepo()
	filingRepo := store.NewFilingRepo()
	historicalRepo := store.NewHistoricalRepo()
	actionRepo := store.NewActionRepo()

	pipe := pipeline.New(
		tickerRepo,
		filingRepo,
		historicalRepo,
		actionRepo,
		ingest.NewDocumentClient(),
		extract.NewAIExtractor(provider),
	)

	filingSyncer := ingest.NewFilingSyncer(ingest.NewEDGARClient(), tickerRepo, filingRepo)
	marketSyncer := ingest.NewMarketDataSyncer(
		tickerRepo,
		historicalRepo,
		ingest.NewFinnhubSource(os.Getenv("FINNHUB_API_KEY")),
		ingest.NewAlphaVantageSource(os.Getenv("ALPHA_VANTAGE_API_KEY")),
	)

	filingHandler := filings.NewHandler(pipe, filingSyncer)
	marketHandler := marketdata.NewHandler(marketSyncer)

	http.HandleFunc("/api/filings/sync", filingHandler.HandleSync)
	http.HandleFunc("/api/filings/parse", filingHandler.HandleParse)
	http.HandleFunc("/api/marketdata/sync", marketHandler.HandleSync)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("FloatTrack API listening on :%s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
