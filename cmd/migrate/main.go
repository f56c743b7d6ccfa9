package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gostatcheck/adapters/postgres"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var errNotAReport = errors.New("not a statcheck or GRIM report")

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 && os.Getenv("DATABASE_URL") == "" {
		log.Fatal("Usage: migrate <database_url> [report_dir]")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema at version %s", migrator.Version())

	if len(os.Args) < 3 {
		return
	}

	// Import reports previously written with --json
	reportDir := os.Args[2]
	files, err := findReportFiles(reportDir)
	if err != nil {
		log.Fatalf("Failed to find report files: %v", err)
	}
	log.Printf("Found %d report files to import", len(files))

	repo := postgres.NewRunRepository(db)
	imported, skipped := 0, 0
	for _, file := range files {
		report, err := loadReportFromFile(file)
		if err != nil {
			log.Printf("Failed to load report from %s: %v", file, err)
			skipped++
			continue
		}
		if err := repo.Save(ctx, report); err != nil {
			log.Printf("Failed to save report %s: %v", report.ID, err)
			skipped++
			continue
		}
		imported++
		log.Printf("Imported %s run %s from %s", report.Kind, report.ID, filepath.Base(file))
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func findReportFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadReportFromFile reads one report; files that are not reports are rejected
func loadReportFromFile(filePath string) (*verdict.Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var report verdict.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	if report.ID == "" {
		return nil, errNotAReport
	}
	switch report.Kind {
	case verdict.KindStatcheck, verdict.KindGRIM:
	default:
		return nil, errNotAReport
	}
	return &report, nil
}
