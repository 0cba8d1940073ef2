// Command robora runs the ministry question-answering pipeline: for each
// requested domain it collects the responsible state organ per country,
// then assesses each organization's cybersecurity responsibility, persisting
// every answer durably so interrupted runs resume where they stopped.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"robora/internal/config"
	"robora/internal/logging"
	"robora/internal/query"
	"robora/internal/refdata"
	"robora/internal/workflow"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// run flags
	domainsFlag string
	allDomains  bool
	outputDir   string
	workers     int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "robora",
	Short: "robora - batch ministry question-answering pipeline",
	Long: `robora expands parametric questions over ministry domains and countries,
answers them through a structured-output LLM backend, and persists every
answer exactly once so interrupted batches can resume.

Domains are processed one at a time to stay inside backend rate limits;
questions within a domain run on a bounded worker pool.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may carry the key.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the two-step workflow for one or more domains",
	Long: `Runs the complete two-step workflow per domain:

  1. Collect the top-level state organ responsible for the domain in every
     reference country (saved as CSV).
  2. Assess each collected organization's cybersecurity responsibility
     (saved as XLSX, citations retained).

Examples:
  robora run --domains "Justice,Defense,Health"
  robora run --all-domains --workers 8 --output-dir outputs`,
	RunE: runBatch,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available domains and the country count",
	RunE: func(cmd *cobra.Command, args []string) error {
		domains, err := refdata.Domains()
		if err != nil {
			return err
		}
		countries, err := refdata.Countries()
		if err != nil {
			return err
		}
		for _, d := range domains {
			fmt.Println(d)
		}
		fmt.Printf("\n%d domains, %d countries\n", len(domains), len(countries))
		return nil
	},
}

func runBatch(cmd *cobra.Command, args []string) error {
	known, err := refdata.Domains()
	if err != nil {
		return err
	}
	countries, err := refdata.Countries()
	if err != nil {
		return err
	}

	var selected []string
	switch {
	case allDomains:
		selected = known
	case domainsFlag != "":
		for _, d := range strings.Split(domainsFlag, ",") {
			if d = strings.TrimSpace(d); d != "" {
				selected = append(selected, d)
			}
		}
	default:
		return fmt.Errorf("must specify either --domains or --all-domains")
	}
	if len(selected) == 0 {
		return fmt.Errorf("no domains selected")
	}

	// Unknown domains are accepted with a warning, not rejected.
	for _, d := range selected {
		if !refdata.Contains(known, d) {
			logger.Warn("unknown domain will be processed anyway",
				zap.String("domain", d),
				zap.Strings("available", known))
		}
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured: set GEMINI_API_KEY or llm.api_key in %s", configPath)
	}
	timeout, err := cfg.LLMTimeout()
	if err != nil {
		return err
	}
	baseDelay, err := cfg.BaseDelay()
	if err != nil {
		return err
	}

	handler, err := query.NewGemini(cmd.Context(), query.GeminiConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: timeout,
	})
	if err != nil {
		return err
	}

	poolSize := cfg.Workflow.Workers
	if workers > 0 {
		poolSize = workers
	}

	pipeline, err := workflow.NewPipeline(handler, countries, workflow.PipelineConfig{
		OutputDir:        outputDir,
		Workers:          poolSize,
		MaxQuestions:     cfg.Workflow.MaxQuestions,
		FailureThreshold: cfg.Workflow.FailureThreshold,
		Retry: workflow.RetryConfig{
			MaxRetries: cfg.Workflow.MaxRetries,
			BaseDelay:  baseDelay,
		},
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("batch starting",
		zap.Int("domains", len(selected)),
		zap.Int("workers", poolSize),
		zap.String("output_dir", outputDir))

	results := pipeline.RunBatch(cmd.Context(), selected)
	printSummary(results)

	for _, res := range results {
		if res.Err == nil {
			return nil // at least one domain succeeded
		}
	}
	return fmt.Errorf("all %d domains failed", len(results))
}

func printSummary(results []workflow.DomainResult) {
	fmt.Println("\nBatch summary:")
	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("  FAIL %s: %v\n", res.Domain, res.Err)
			continue
		}
		fmt.Printf("  ok   %s: %d organizations, %d assessments\n",
			res.Domain, res.Organizations, res.Assessments)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "robora.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().StringVar(&domainsFlag, "domains", "", "comma-separated list of domains (e.g. 'Justice,Defense,Health')")
	runCmd.Flags().BoolVar(&allDomains, "all-domains", false, "process all available domains")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "outputs", "output directory")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers per domain (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
