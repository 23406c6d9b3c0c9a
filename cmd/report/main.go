// Package main generates an offline accuracy report from stored predictions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"crypto-predict/internal/backtest"
	"crypto-predict/internal/reporting"
	pgstore "crypto-predict/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	pageSize := flag.Int("page-size", backtest.DefaultPageSize, "Maximum scored predictions in the report")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn (or POSTGRES_DSN) is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	reports := pgstore.NewReportStore(pool)
	reporter := backtest.NewReporter(reports).WithPageSize(*pageSize)
	generator := reporting.NewGenerator(reporter, reports)

	report, err := generator.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "accuracy_report.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", mdPath, err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*outputDir, "accuracy_report.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Rows)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", csvPath, err)
		os.Exit(1)
	}

	fmt.Println("Accuracy report generated:")
	fmt.Printf("  - %s (%d scored predictions, mean accuracy %.2f%%)\n", mdPath, len(report.Rows), report.MeanAccuracy())
	fmt.Printf("  - %s\n", csvPath)
}
