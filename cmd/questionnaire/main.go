package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"banditlab/adapters/csvstore"
	"banditlab/adapters/postgres"
	"banditlab/domain/core"
	"banditlab/internal/config"
	"banditlab/ports"
	"banditlab/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Serves the post-task questionnaire battery. Participant ID and bonus
// come in as positional arguments when launched by the experiment
// wrapper; without them the web flow prompts for the ID and reports a
// zero bonus.
func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var participant core.ParticipantID
	if len(os.Args) > 1 {
		participant, err = core.ParseParticipantID(os.Args[1])
		if err != nil {
			log.Fatalf("Invalid participant ID %q: %v", os.Args[1], err)
		}
	}

	var bonus float64
	if len(os.Args) > 2 {
		bonus, err = strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			log.Fatalf("Invalid bonus %q: %v", os.Args[2], err)
		}
	}

	store := csvstore.NewQuestionnaireStore(appConfig.Paths.DataDir)
	archive, closeArchive := initArchive(appConfig)
	defer closeArchive()

	webApp, err := ui.NewApp(ui.Config{Participant: participant, Bonus: bonus}, store, archive)
	if err != nil {
		log.Fatalf("Failed to create questionnaire app: %v", err)
	}

	srv := &http.Server{Addr: ":" + appConfig.Server.Port, Handler: webApp}

	go func() {
		log.Printf("[Questionnaire] Serving on http://localhost:%s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Questionnaire server failed: %v", err)
		}
	}()

	// The thank-you page signals completion; shut down once it is out.
	<-webApp.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Questionnaire] Shutdown error: %v", err)
	}
	log.Printf("[Questionnaire] Battery complete, server stopped")
}

// initArchive connects the optional questionnaire archive. Without a
// DATABASE_URL answers are kept in CSV only.
func initArchive(appConfig *config.Config) (ports.SessionArchivePort, func()) {
	if appConfig.Database.URL == "" {
		return nil, func() {}
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Printf("[Questionnaire] Archive database unavailable, continuing without: %v", err)
		return nil, func() {}
	}
	return postgres.NewArchive(db), func() { db.Close() }
}
