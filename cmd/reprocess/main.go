package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/raecer/intake-api/internal/config"
	"github.com/raecer/intake-api/internal/proctcae"
	"github.com/raecer/intake-api/internal/repository/sqlite"
)

// reprocess re-runs the symptom mapper over archived assessments. Useful
// after taxonomy or estimator changes: archived patient summaries stay as
// extracted, only the derived records are rebuilt.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	archivePath := flag.String("archive", cfg.Archive.Path, "path to the assessment archive")
	all := flag.Bool("all", false, "reprocess every assessment, not only those missing a record")
	flag.Parse()

	fmt.Printf("Opening archive at %s...\n", *archivePath)

	archive, err := sqlite.NewArchive(*archivePath)
	if err != nil {
		panic(fmt.Sprintf("Failed to open archive: %v", err))
	}
	defer archive.Close()

	ctx := context.Background()

	assessments, err := archive.List(ctx, !*all)
	if err != nil {
		panic(fmt.Sprintf("Failed to list assessments: %v", err))
	}

	if len(assessments) == 0 {
		fmt.Println("Nothing to reprocess.")
		return
	}

	mapper := proctcae.NewMapper()
	processed := 0
	failed := 0

	for _, assessment := range assessments {
		fmt.Printf("Reprocessing session %s...\n", assessment.SessionID)

		if assessment.PatientSummary == nil {
			fmt.Printf("  skipped: no patient summary stored\n")
			failed++
			continue
		}

		entries := mapper.Map(*assessment.PatientSummary)
		record := mapper.FormatForRecord(entries)
		record.SourceReference = assessment.SessionID
		record.AssessmentTimestamp = time.Now().UTC().Format(time.RFC3339)
		record.ClinicalSummary = mapper.Summarize(entries)

		if err := archive.UpdateRecord(ctx, assessment.SessionID, record, record.ClinicalSummary); err != nil {
			fmt.Printf("  error: %v\n", err)
			failed++
			continue
		}

		fmt.Println(record.ClinicalSummary)
		processed++
	}

	fmt.Printf("\nDone. %d reprocessed, %d failed, %d total.\n", processed, failed, len(assessments))
}
