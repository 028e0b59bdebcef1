package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/artifacts"
	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/drafter"
	"github.com/jonathan/outreach-agent/internal/jobs"
	"github.com/jonathan/outreach-agent/internal/judge"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/pipeline"
	"github.com/jonathan/outreach-agent/internal/refiner"
	"github.com/jonathan/outreach-agent/internal/rubric"
	"github.com/jonathan/outreach-agent/internal/run"
	"github.com/jonathan/outreach-agent/internal/types"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Generate cover letters for a batch of job postings",
	Long: `Drafts a cover letter for every posting in the jobs CSV, judges each draft against the quality rubric, and refines drafts that fall short. Artifacts land in a fresh run directory.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runGenerateCmd,
}

var (
	genConfigPath     string
	genProfile        string
	genJobs           string
	genRunsDir        string
	genMaxJobs        int
	genMaxRefinements int
	genParallel       int
	genAPIKey         string
	genJudgeAPIKey    string
	genJudgeModel     string
	genJudgeBaseURL   string
	genDatabaseURL    string
	genVerbose        bool
)

func init() {
	// Config file flag (processed first)
	generateCommand.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCommand.Flags().StringVarP(&genProfile, "profile", "p", "", "Path to candidate profile JSON")
	generateCommand.Flags().StringVarP(&genJobs, "jobs", "j", "", "Path to job postings CSV")
	generateCommand.Flags().StringVar(&genRunsDir, "runs-dir", "", "Base directory for run output (default \"runs\")")
	generateCommand.Flags().IntVar(&genMaxJobs, "max-jobs", 0, "Process at most this many jobs (0 = all)")
	generateCommand.Flags().IntVar(&genMaxRefinements, "max-refinements", 0, "Refinement attempts per job before giving up")
	generateCommand.Flags().IntVar(&genParallel, "parallel", 0, "Number of jobs processed concurrently")
	generateCommand.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed progress")

	// API keys can be passed as flags, or read from env vars
	generateCommand.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	generateCommand.Flags().StringVar(&genJudgeAPIKey, "judge-api-key", "", "Judge provider API key (optional, defaults to GROQ_API_KEY or OPENROUTER_API_KEY)")
	generateCommand.Flags().StringVar(&genJudgeModel, "judge-model", "", "Judge model name")
	generateCommand.Flags().StringVar(&genJudgeBaseURL, "judge-base-url", "", "OpenAI-compatible endpoint for the judge")

	// Database URL for the optional PostgreSQL artifact store
	generateCommand.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(generateCommand)
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Step 1: Load config file if provided
	var cfg config.Config
	if genConfigPath != "" {
		loadedCfg, err := config.LoadConfig(genConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if genVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", genConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("profile") {
		cfg.Profile = genProfile
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = genJobs
	}
	if cmd.Flags().Changed("runs-dir") {
		cfg.RunsDir = genRunsDir
	}
	if cmd.Flags().Changed("max-jobs") {
		cfg.MaxJobs = genMaxJobs
	}
	if cmd.Flags().Changed("max-refinements") {
		cfg.MaxRefinements = genMaxRefinements
	}
	if cmd.Flags().Changed("parallel") {
		cfg.MaxParallelJobs = genParallel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = genAPIKey
	}
	if cmd.Flags().Changed("judge-api-key") {
		cfg.JudgeAPIKey = genJudgeAPIKey
	}
	if cmd.Flags().Changed("judge-model") {
		cfg.JudgeModel = genJudgeModel
	}
	if cmd.Flags().Changed("judge-base-url") {
		cfg.JudgeBaseURL = genJudgeBaseURL
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Step 4: Validate required fields
	if cfg.Profile == "" {
		return fmt.Errorf("--profile is required (via flag or config)")
	}
	if cfg.Jobs == "" {
		return fmt.Errorf("--jobs is required (via flag or config)")
	}

	// Step 5: API key handling
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	judgeBaseURL := cfg.JudgeBaseURL
	judgeKey := cfg.JudgeAPIKey
	if judgeKey == "" {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			judgeKey = key
			if judgeBaseURL == "" {
				judgeBaseURL = llm.GroqBaseURL
			}
		} else if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
			judgeKey = key
			if judgeBaseURL == "" {
				judgeBaseURL = llm.OpenRouterBaseURL
			}
		}
	}
	if judgeKey == "" {
		return fmt.Errorf("GROQ_API_KEY or OPENROUTER_API_KEY environment variable, or --judge-api-key flag, is required")
	}
	if judgeBaseURL == "" {
		judgeBaseURL = llm.GroqBaseURL
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 6: Load inputs
	profile, err := types.LoadProfile(cfg.Profile)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	postings, err := jobs.ReadCSV(cfg.Jobs)
	if err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}
	if len(postings) == 0 {
		return fmt.Errorf("no job postings found in %s", cfg.Jobs)
	}
	if cfg.MaxJobs > 0 && len(postings) > cfg.MaxJobs {
		postings = postings[:cfg.MaxJobs]
	}

	// Step 7: Build LLM clients
	modelCfg := llm.DefaultGeminiConfig()
	if cfg.DraftModel != "" {
		modelCfg = modelCfg.WithModel(llm.TierStandard, cfg.DraftModel)
	}
	if cfg.RefineModel != "" {
		modelCfg = modelCfg.WithModel(llm.TierAdvanced, cfg.RefineModel)
	}

	generator, err := llm.NewGeminiClient(ctx, modelCfg, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() { _ = generator.Close() }()

	judgeModel := cfg.JudgeModel
	if judgeModel == "" {
		judgeModel = llm.DefaultJudgeModel
	}
	evaluator, err := llm.NewChatClient(llm.ChatConfig{
		BaseURL: judgeBaseURL,
		APIKey:  judgeKey,
		Model:   judgeModel,
		Timeout: cfg.CallTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create judge client: %w", err)
	}

	// Step 8: Open the run
	manager := run.NewManager(cfg.RunsDir)
	r, err := manager.Open(profile)
	if err != nil {
		return fmt.Errorf("failed to open run: %w", err)
	}
	fmt.Printf("Run: %s\n", r.Dir())

	if cfg.DatabaseURL != "" {
		pool, err := artifacts.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Printf("Continuing with filesystem artifacts...\n")
		} else {
			defer pool.Close()
			store := artifacts.NewPostgresStore(pool, r.Name(), r.AuditLog())
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to prepare database schema: %w", err)
			}
			r.UseStore(store)
			if cfg.Verbose {
				fmt.Printf("Persisting artifacts to PostgreSQL\n")
			}
		}
	}

	// Step 9: Run the pipeline
	orchestrator := pipeline.New(
		drafter.New(generator),
		judge.New(evaluator),
		refiner.New(generator),
		rubric.Default(),
		pipeline.Options{
			MaxRefinements:  cfg.MaxRefinements,
			MaxRetries:      cfg.MaxRetries,
			CallTimeout:     cfg.CallTimeout(),
			RateInterval:    cfg.RateInterval(),
			MaxParallelJobs: cfg.MaxParallelJobs,
			Verbose:         cfg.Verbose,
		},
	)

	stats, runErr := orchestrator.Run(ctx, r, profile, postings)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRunSummary(r.Name(), stats)

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}
