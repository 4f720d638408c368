package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/TorrentPicker/fie-dataset/config"
	"github.com/TorrentPicker/fie-dataset/database"
	"github.com/TorrentPicker/fie-dataset/migration"
	"github.com/TorrentPicker/fie-dataset/monitoring"
	"github.com/TorrentPicker/fie-dataset/validation"
)

// outputPath names the export file after the start time in milliseconds,
// moving to the next free millisecond if that file already exists
func outputPath(dir string, start time.Time) (string, error) {
	millis := start.UnixMilli()
	for {
		path := filepath.Join(dir, fmt.Sprintf("extracted-%d.db", millis))
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check output file %s: %w", path, err)
		}
		millis++
	}
}

// checkSourceFile reports whether the sqlite source file is present
func checkSourceFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

func main() {
	startTime := time.Now()

	configPath := flag.String("config", "", "Path to YAML config file (built-in job list when empty)")
	sourcePath := flag.String("source", "", "Source SQLite database (default data/user.db)")
	outDir := flag.String("out-dir", "", "Directory receiving the extracted database (default data)")
	batchSize := flag.Int("batch-size", 0, "Rows per INSERT statement (default 100)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config %v", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		log.Fatalf("Error reading environment %v", err)
	}
	if *sourcePath != "" {
		cfg.Source.Path = *sourcePath
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *batchSize != 0 {
		cfg.BatchSize = *batchSize
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	driver := strings.ToLower(cfg.Source.Driver)
	if driver == "" || driver == database.DriverSQLite {
		if err := checkSourceFile(cfg.Source.Path); err != nil {
			fmt.Printf("Please put %s into the %s directory\n", filepath.Base(cfg.Source.Path), filepath.Dir(cfg.Source.Path))
			os.Exit(-1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sourceClient, err := database.NewSourceClientFromConfig(cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := sourceClient.Connect(); err != nil {
		log.Fatalf("Failed to connect to source database, %v", err)
	}
	defer sourceClient.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory %s, %v", cfg.OutputDir, err)
	}
	outPath, err := outputPath(cfg.OutputDir, startTime)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	targetClient := database.NewSQLiteClient(outPath)
	if err := targetClient.Connect(); err != nil {
		log.Fatalf("Failed to create output database %s, %v", outPath, err)
	}
	defer targetClient.Close()

	fmt.Printf("Extracting from %s into %s\n", cfg.Source.Path, outPath)

	tracker := monitoring.NewRunTracker(len(cfg.Jobs), os.Stdout)
	runner := migration.NewRunner(migration.NewExtractor(sourceClient, targetClient, cfg.BatchSize), nil, tracker)
	runner.StopOnError = cfg.StopOnError
	if cfg.ValidateRows {
		runner.Validator = validation.NewRowCountValidator(sourceClient)
	}

	run, runErr := runner.Run(ctx, cfg.Jobs)

	if cfg.ValidateRows {
		validation.GenerateValidationSummary(run.Validation, run.StartTime).Print("Post-Extraction")
	}
	tracker.PrintFinalSummary()

	if runErr != nil {
		log.Printf("Extraction aborted: %v", runErr)
		// deferred closes do not run on os.Exit
		sourceClient.Close()
		targetClient.Close()
		os.Exit(1)
	}
}
