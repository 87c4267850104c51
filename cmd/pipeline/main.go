// One-shot runner: syncs the EDGAR filing list for a ticker and then runs
// the extraction pipeline over the unprocessed filings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"floattrack/pkg/core/extract"
	"floattrack/pkg/core/ingest"
	"floattrack/pkg/core/llm"
	"floattrack/pkg/core/pipeline"
	"floattrack/pkg/core/store"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol to process")
	limit := flag.Int("limit", 0, "max filings to process (0 = all)")
	skipSync := flag.Bool("skip-sync", false, "skip the EDGAR filing list sync")
	flag.Parse()

	if *ticker == "" {
		log.Fatal("Usage: pipeline -ticker SYMBOL [-limit N] [-skip-sync]")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	tickerRepo := store.NewTickerRepo()
	filingRepo := store.NewFilingRepo()

	if !*skipSync {
		syncer := ingest.NewFilingSyncer(ingest.NewEDGARClient(), tickerRepo, filingRepo)
		total, inserted, err := syncer.Sync(ctx, *ticker)
		if err != nil {
			log.Fatalf("Filing sync failed: %v", err)
		}
		fmt.Printf("Synced %d filings (%d new) for %s\n", total, inserted, *ticker)
	}

	var provider llm.Provider
	if os.Getenv("GEMINI_API_KEY") != "" {
		provider = &llm.GeminiProvider{}
	} else if os.Getenv("DEEPSEEK_API_KEY") != "" {
		provider = &llm.DeepSeekProvider{}
	} else {
		log.Println("Warning: no completion API key set, extraction runs on pattern rules only.")
	}

	pipe := pipeline.New(
		tickerRepo,
		filingRepo,
		store.NewHistoricalRepo(),
		store.NewActionRepo(),
		ingest.NewDocumentClient(),
		extract.NewAIExtractor(provider),
	)

	summary, err := pipe.ProcessFilings(ctx, *ticker, *limit)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	fmt.Printf("Processed %d of %d filings (%d errors)\n", summary.Processed, summary.Total, summary.Errors)
}
