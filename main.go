package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"banditlab/adapters/csvstore"
	"banditlab/adapters/postgres"
	"banditlab/adapters/rng"
	"banditlab/adapters/terminal"
	"banditlab/app"
	"banditlab/domain/core"
	"banditlab/domain/trial"
	"banditlab/internal/config"
	"banditlab/ports"
	"banditlab/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Runs a complete lab session: the terminal bandit task first, then the
// web questionnaire battery, handing the earned bonus from one phase to
// the other. If the task fails the questionnaire is not started.
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

	participantID, err := resolveParticipant(ctx, input, texts)
	if err != nil {
		log.Fatalf("Failed to determine participant ID: %v", err)
	}

	archive, closeArchive := initArchive(appConfig)
	defer closeArchive()

	session, err := runTask(ctx, appConfig, texts, input, participantID, archive)
	if err != nil {
		log.Fatalf("Session failed: %v", err)
	}

	if err := runQuestionnaire(appConfig, participantID, session.Bonus, archive); err != nil {
		log.Fatalf("Questionnaire failed: %v", err)
	}

	log.Printf("[Experiment] Complete for participant %s, bonus %.2f EUR", participantID, session.Bonus)
}

// resolveParticipant takes the ID from the first positional argument, or
// prompts for one until it is non-empty.
func resolveParticipant(ctx context.Context, input *terminal.LineInput, texts config.Texts) (core.ParticipantID, error) {
	if len(os.Args) > 1 {
		return core.ParseParticipantID(os.Args[1])
	}
	return terminal.PromptParticipantID(ctx, input, os.Stdout, texts.IDPrompt, texts.IDInvalid)
}

// runTask assembles and runs the bandit session on the terminal.
func runTask(ctx context.Context, appConfig *config.Config, texts config.Texts, input *terminal.LineInput, participantID core.ParticipantID, archive ports.SessionArchivePort) (*trial.Session, error) {
	writer, err := csvstore.NewTrialWriter(appConfig.Paths.DataDir, participantID)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	presenter := terminal.NewPresenter(os.Stdout)
	defer presenter.Close()
	audio := terminal.NewAudio(os.Stdout, appConfig.Audio.CueDuration)
	defer audio.Close()

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
		return nil, err
	}

	return runner.Run(ctx, participantID)
}

// runQuestionnaire serves the battery until the thank-you page has gone
// out, then shuts the server down.
func runQuestionnaire(appConfig *config.Config, participant core.ParticipantID, bonus float64, archive ports.SessionArchivePort) error {
	store := csvstore.NewQuestionnaireStore(appConfig.Paths.DataDir)

	webApp, err := ui.NewApp(ui.Config{Participant: participant, Bonus: bonus}, store, archive)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: ":" + appConfig.Server.Port, Handler: webApp}

	go func() {
		log.Printf("[Experiment] Questionnaire at http://localhost:%s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Questionnaire server failed: %v", err)
		}
	}()

	<-webApp.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initArchive connects the optional session archive. Without a
// DATABASE_URL everything is kept in CSV only.
func initArchive(appConfig *config.Config) (ports.SessionArchivePort, func()) {
	if appConfig.Database.URL == "" {
		return nil, func() {}
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Printf("[Experiment] Archive database unavailable, continuing without: %v", err)
		return nil, func() {}
	}
	return postgres.NewArchive(db), func() { db.Close() }
}
