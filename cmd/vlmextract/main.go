// Command vlmextract is an illustrative CLI over the library: it extracts
// text from the files given as arguments and prints the results, optionally
// writing an XLSX report for batch runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/vlm-extract/internal/common"
	"github.com/joseph-ayodele/vlm-extract/internal/extract"
	"github.com/joseph-ayodele/vlm-extract/internal/report"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		providerName = flag.String("provider", "", "VLM provider (ollama | openai); default from VLM_PROVIDER")
		xlsxOut      = flag.String("xlsx", "", "write an XLSX report of the batch to this path")
		health       = flag.Bool("health", false, "only check provider health and exit")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	svc := extract.NewService(cfg, logger)
	ctx := context.Background()

	if *health {
		if svc.HealthCheck(ctx, *providerName) {
			fmt.Println("ok")
			return
		}
		printError("provider not reachable\n")
		os.Exit(1)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		printError("Usage: vlmextract [flags] FILE...\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	start := time.Now()
	results := svc.ExtractBatch(ctx, paths, *providerName)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			printError("%s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Printf("=== %s ===\n%s\n\n", r.Path, r.Text)
	}
	logger.Info("batch.done",
		"files", len(results),
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if *xlsxOut != "" {
		if err := report.WriteXLSX(*xlsxOut, results); err != nil {
			printError("Error: write report: %v\n", err)
			os.Exit(1)
		}
		logger.Info("report.written", "path", *xlsxOut)
	}

	if failed == len(results) {
		os.Exit(1)
	}
}
