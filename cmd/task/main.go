package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"banditlab/adapters/csvstore"
	"banditlab/adapters/postgres"
	"banditlab/adapters/rng"
	"banditlab/adapters/terminal"
	"banditlab/app"
	"banditlab/domain/core"
	"banditlab/internal/config"
	"banditlab/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// The bandit task itself. Runs one session for one participant and
// prints the earned bonus as the last stdout line, so a wrapping process
// can hand it to the questionnaire.
func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	texts := config.DefaultTexts()

	ctx := context.Background()
	input := terminal.NewLineInput(os.Stdin)
	presenter := terminal.NewPresenter(os.Stdout)

	participantID, err := resolveParticipant(ctx, input, texts)
	if err != nil {
		log.Fatalf("Failed to determine participant ID: %v", err)
	}

	writer, err := csvstore.NewTrialWriter(appConfig.Paths.DataDir, participantID)
	if err != nil {
		log.Fatalf("Failed to open trial log: %v", err)
	}
	defer writer.Close()

	archive, closeArchive := initArchive(appConfig)
	defer closeArchive()

	audio := terminal.NewAudio(os.Stdout, appConfig.Audio.CueDuration)
	defer audio.Close()
	defer presenter.Close()

	runner, err := app.NewSessionRunner(app.SessionRunnerDeps{
		Config:    appConfig,
		Texts:     texts,
		Input:     input,
		Presenter: presenter,
		Audio:     audio,
		Writer:    writer,
		Schedules: csvstore.NewScheduleStore(appConfig.Paths.ScheduleFile),
		Walks:     csvstore.NewWalkStore(appConfig.Paths.WalkMain, appConfig.Paths.WalkPractice),
		RNG:       rng.NewAdapter(),
		Archive:   archive,
	})
	if err != nil {
		log.Fatalf("Failed to assemble session runner: %v", err)
	}

	session, err := runner.Run(ctx, participantID)
	if err != nil {
		log.Fatalf("Session failed: %v", err)
	}

	fmt.Printf("%.2f\n", session.Bonus)
}

// resolveParticipant takes the ID from the first positional argument, or
// prompts for one until it is non-empty.
func resolveParticipant(ctx context.Context, input *terminal.LineInput, texts config.Texts) (core.ParticipantID, error) {
	if len(os.Args) > 1 {
		return core.ParseParticipantID(os.Args[1])
	}
	return terminal.PromptParticipantID(ctx, input, os.Stdout, texts.IDPrompt, texts.IDInvalid)
}

// initArchive connects the optional session archive. Without a
// DATABASE_URL the task runs CSV-only.
func initArchive(appConfig *config.Config) (ports.SessionArchivePort, func()) {
	if appConfig.Database.URL == "" {
		return nil, func() {}
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Printf("[Task] Archive database unavailable, continuing without: %v", err)
		return nil, func() {}
	}
	return postgres.NewArchive(db), func() { db.Close() }
}
