package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"banditlab/adapters/csvstore"
	"banditlab/adapters/excel"
	"banditlab/app"
	"banditlab/domain/core"
	"banditlab/domain/schedule"
	"banditlab/domain/summary"
	"banditlab/domain/trial"
	"banditlab/domain/walk"
	"banditlab/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "banditlab-cli",
		Short: "Experimenter tools: generate task artifacts, analyze and export recorded sessions",
	}

	rootCmd.AddCommand(
		newScheduleCmd(),
		newRandomWalkCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env plus environment the same way the task binaries
// do, so CLI runs resolve identical default paths.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return config.Load()
}

func newScheduleCmd() *cobra.Command {
	var seed int64
	var blocks int
	var out string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate the variable-ratio reinforcement schedule",
		Long: `Generate the variable-ratio schedule the task consumes.

The schedule is built from shuffled four-trial blocks holding exactly one
salient flag each, so salient feedback stays rare but evenly spread.

Example: banditlab-cli schedule --blocks 50 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if out == "" {
				out = appConfig.Paths.ScheduleFile
			}

			rng := rand.New(rand.NewSource(seed))
			sched := schedule.Generate(blocks, rng)

			store := csvstore.NewScheduleStore(out)
			if err := store.SaveSchedule(cmd.Context(), sched); err != nil {
				return fmt.Errorf("failed to save schedule: %w", err)
			}

			fmt.Printf("Wrote %d-trial schedule (%d salient) to %s\n", len(sched), blocks, out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().IntVar(&blocks, "blocks", schedule.DefaultBlocks, "Number of four-trial blocks")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV path (default: SCHEDULE_FILE)")

	return cmd
}

func newRandomWalkCmd() *cobra.Command {
	var seed int64
	var practiceTrials, mainTrials int
	var mainOut, practiceOut string

	cmd := &cobra.Command{
		Use:   "randomwalk",
		Short: "Generate the reward-probability random walks",
		Long: `Generate the practice and main random walk tables the task consumes.

Both arms follow independent reflecting Gaussian walks on their win
probability; payoffs are drawn here once so every participant faces the
same reward sequence.

Example: banditlab-cli randomwalk --main-trials 200 --practice-trials 15 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if mainOut == "" {
				mainOut = appConfig.Paths.WalkMain
			}
			if practiceOut == "" {
				practiceOut = appConfig.Paths.WalkPractice
			}

			rng := rand.New(rand.NewSource(seed))
			practiceTable := walk.Generate(walk.DefaultParams(practiceTrials), rng)
			mainTable := walk.Generate(walk.DefaultParams(mainTrials), rng)

			store := csvstore.NewWalkStore(mainOut, practiceOut)
			if err := store.SaveTable(cmd.Context(), trial.ModePractice, practiceTable); err != nil {
				return fmt.Errorf("failed to save practice walk: %w", err)
			}
			if err := store.SaveTable(cmd.Context(), trial.ModeMain, mainTable); err != nil {
				return fmt.Errorf("failed to save main walk: %w", err)
			}

			fmt.Printf("Wrote %d practice rows to %s\n", len(practiceTable), practiceOut)
			fmt.Printf("Wrote %d main rows to %s\n", len(mainTable), mainOut)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().IntVar(&practiceTrials, "practice-trials", 15, "Rows in the practice walk")
	cmd.Flags().IntVar(&mainTrials, "main-trials", 200, "Rows in the main walk")
	cmd.Flags().StringVar(&mainOut, "main-out", "", "Main walk CSV path (default: WALK_MAIN_FILE)")
	cmd.Flags().StringVar(&practiceOut, "practice-out", "", "Practice walk CSV path (default: WALK_PRACTICE_FILE)")

	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var dataDir string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "analyze [participant-id]",
		Short: "Summarize recorded trial logs",
		Long: `Summarize one participant's trial log, or every log in the data
directory when no participant is named.

Example: banditlab-cli analyze vp042`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if dataDir == "" {
				dataDir = appConfig.Paths.DataDir
			}

			reader := csvstore.NewTrialReader(dataDir)
			svc, err := app.NewAnalyzeService(app.AnalyzeServiceDeps{
				Trials:      reader,
				Catalog:     reader,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			if len(args) == 1 {
				pid, err := core.ParseParticipantID(args[0])
				if err != nil {
					return err
				}
				report, err := svc.Analyze(cmd.Context(), pid)
				if err != nil {
					return err
				}
				printReport(report)
				return nil
			}

			return runAnalyzeAll(cmd.Context(), svc)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the trial CSVs (default: DATA_DIR)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel summaries during batch analysis (0 = default)")

	return cmd
}

func runAnalyzeAll(ctx context.Context, svc *app.AnalyzeService) error {
	started := time.Now()
	reports, err := svc.AnalyzeAll(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No recorded sessions found.")
		return nil
	}
	for _, report := range reports {
		printReport(report)
	}
	fmt.Printf("\nSummarized %d participants in %v\n", len(reports), time.Since(started).Round(time.Millisecond))
	return nil
}

func newExportCmd() *cobra.Command {
	var dataDir, outDir string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "export [participant-id]",
		Short: "Export recorded sessions to Excel workbooks",
		Long: `Write one .xlsx workbook per participant holding the raw trial log,
the questionnaire battery and the derived summary. Without a participant
argument every recorded session is exported.

Example: banditlab-cli export vp042 --out-dir reports`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if dataDir == "" {
				dataDir = appConfig.Paths.DataDir
			}
			if outDir == "" {
				outDir = filepath.Join(dataDir, "exports")
			}

			reader := csvstore.NewTrialReader(dataDir)
			svc, err := app.NewExportService(app.ExportServiceDeps{
				Trials:      reader,
				Catalog:     reader,
				Quests:      csvstore.NewQuestionnaireStore(dataDir),
				Workbook:    excel.NewExporter(outDir),
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			if len(args) == 1 {
				pid, err := core.ParseParticipantID(args[0])
				if err != nil {
					return err
				}
				path, err := svc.ExportParticipant(cmd.Context(), pid)
				if err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", path)
				return nil
			}

			paths, err := svc.ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Println("No recorded sessions found.")
				return nil
			}
			for _, path := range paths {
				fmt.Printf("Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding the recorded CSVs (default: DATA_DIR)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the workbooks (default: <data-dir>/exports)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel exports during batch export (0 = default)")

	return cmd
}

func printReport(r *summary.Report) {
	fmt.Printf("\n=== PARTICIPANT %s ===\n", r.Participant)
	printPhase("PRACTICE", r.Practice)
	printPhase("MAIN", r.Main)
	fmt.Printf("\nMax possible wins: %d\n", r.MaxWins)
	fmt.Printf("Bonus: %.2f EUR\n", r.Bonus)
}

func printPhase(name string, p summary.PhaseStats) {
	fmt.Printf("\n--- %s ---\n", name)
	fmt.Printf("Trials: %d | Missed: %d | Wins: %d (%.1f%%)\n", p.Trials, p.Missed, p.Wins, p.WinRate*100)
	fmt.Printf("Feedback: %d non-salient, %d salient\n", p.NonSalient, p.Salient)
	fmt.Printf("Choices: left ×%d, right ×%d\n", p.ArmCounts[0], p.ArmCounts[1])
	if p.Reaction.Count == 0 {
		fmt.Println("Reaction: no responses")
		return
	}
	fmt.Printf("Reaction (s): mean %.3f ± %.3f | median %.3f | range %.3f-%.3f\n",
		p.Reaction.Mean, p.Reaction.StdDev, p.Reaction.Median, p.Reaction.Min, p.Reaction.Max)
	normality := "non-normal"
	if p.Reaction.IsNormal {
		normality = "normal"
	}
	fmt.Printf("Reaction distribution: %s (Jarque-Bera p=%.3f)\n", normality, p.Reaction.NormalP)
}
