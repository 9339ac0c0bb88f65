package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/BaoyingShan0/OpenHydrology/internal/adapters/driven/storage/jsonfile"
	"github.com/BaoyingShan0/OpenHydrology/internal/adapters/driven/storage/sqlite"
	"github.com/BaoyingShan0/OpenHydrology/internal/config"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/core/services"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
	"github.com/BaoyingShan0/OpenHydrology/internal/skills"
)

var (
	flagOutput        string
	flagRecursive     bool
	flagBatchSize     int
	flagWorkers       int
	flagReportOnly    bool
	flagNoCheckpoint  bool
	flagErrorHandling string
)

var processCmd = &cobra.Command{
	Use:   "process <input>",
	Short: "Run the processing pipeline over a file or directory",
	Long: `Parses the input (a single file or a directory), runs the chunks
through the cleaner, enhancer and evaluator stages, and exports the
assembled dataset as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&flagOutput, "output", "o", "",
		"output path for the exported dataset (default: <output_dir>/processed_data_<timestamp>.json)")
	processCmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false,
		"recurse into subdirectories when the input is a directory")
	processCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0,
		"override the configured batch size")
	processCmd.Flags().IntVar(&flagWorkers, "workers", 0,
		"override the configured worker count (enables parallel mode when >1)")
	processCmd.Flags().BoolVar(&flagReportOnly, "report-only", false,
		"print the processing report instead of exporting the dataset")
	processCmd.Flags().BoolVar(&flagNoCheckpoint, "no-checkpoint", false,
		"disable checkpoint snapshots")
	processCmd.Flags().StringVar(&flagErrorHandling, "error-handling", "",
		"file failure policy: skip, stop or retry")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := config.New(flagConfig)
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	pipeline, store, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	outputPath := flagOutput
	if outputPath == "" && !flagReportOnly {
		outputPath = filepath.Join(cfg.GetString("global.output_dir"),
			"processed_data_"+time.Now().Format("20060102_150405")+".json")
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input %s: %w", input, err)
	}

	ctx := cmd.Context()
	var result *domain.Result
	if info.IsDir() {
		result = pipeline.ProcessDirectory(ctx, input, flagRecursive, outputPath)
	} else {
		result = pipeline.ProcessFiles(ctx, []string{input}, outputPath)
	}

	if flagReportOnly {
		report, err := json.MarshalIndent(pipeline.Report(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		cmd.Println(string(report))
	} else {
		printSummary(cmd, result, outputPath)
	}

	if !result.Success {
		return fmt.Errorf("processing failed: %s", result.Error)
	}
	return nil
}

// applyOverrides maps command-line flags onto their configuration keys.
func applyOverrides(cfg *config.Config) {
	if flagBatchSize > 0 {
		cfg.Set("pipeline.batch_size", flagBatchSize)
	}
	if flagWorkers > 0 {
		cfg.Set("pipeline.max_workers", flagWorkers)
		cfg.Set("pipeline.parallel_processing", flagWorkers > 1)
	}
	if flagNoCheckpoint {
		cfg.Set("pipeline.checkpoint_enabled", false)
	}
	if flagErrorHandling != "" {
		cfg.Set("pipeline.error_handling", flagErrorHandling)
	}
}

// buildPipeline assembles the controller with its storage adapters.
// The returned store is nil unless database.path is configured.
func buildPipeline(cfg *config.Config) (*services.PipelineService, *sqlite.Store, error) {
	opts := []services.Option{
		services.WithExporter(jsonfile.NewExporter()),
	}

	if cfg.GetBool("pipeline.checkpoint_enabled") {
		cpDir := filepath.Join(cfg.GetString("global.temp_dir"), "checkpoints")
		cp, err := jsonfile.NewCheckpointer(cpDir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, services.WithCheckpointer(cp))
	}

	var store *sqlite.Store
	if dbPath := cfg.GetString("database.path"); dbPath != "" {
		var err error
		store, err = sqlite.NewStore(dbPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, services.WithDatasetStore(store))
		logger.Info("dataset store: %s", store.Path())
	}

	pipeline, err := services.NewPipeline(cfg, skills.DefaultRegistry(), opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	return pipeline, store, nil
}

func printSummary(cmd *cobra.Command, result *domain.Result, outputPath string) {
	if !result.Success {
		cmd.Printf("Processing failed after %.2fs: %s\n",
			result.Duration.Seconds(), result.Error)
		return
	}

	stats := result.Metadata
	cmd.Printf("Processing completed in %.2fs\n", result.Duration.Seconds())
	cmd.Printf("  files:  %v processed, %v failed\n",
		stats["processed_files"], stats["failed_files"])
	cmd.Printf("  chunks: %v processed, %v failed\n",
		stats["processed_chunks"], stats["failed_chunks"])
	if result.Data != nil {
		cmd.Printf("  qa pairs: %d\n", len(result.Data.QAPairs))
	}
	if outputPath != "" {
		cmd.Printf("  output: %s\n", outputPath)
	}
}
