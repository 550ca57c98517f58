package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"banditlab/domain/core"
	"banditlab/domain/quest"
	"banditlab/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App serves the post-task questionnaire battery for one participant:
// ID prompt, general instructions, BIS-15 form, SSS form, debrief form,
// thank-you page. It holds the participant's answers in memory until the
// debrief submits, then persists the whole battery in one write.
type App struct {
	router    *chi.Mux
	templates *template.Template

	writer  ports.QuestionnaireWriterPort
	archive ports.SessionArchivePort

	mu          sync.Mutex
	participant core.ParticipantID
	bonus       float64
	responses   quest.ResponseSet
	bisDone     bool
	sssDone     bool
	complete    bool

	done     chan struct{}
	doneOnce sync.Once
}

// Config holds questionnaire application settings. Participant may be
// empty, in which case the first page prompts for it. Bonus is what the
// thank-you page announces.
type Config struct {
	Participant core.ParticipantID
	Bonus       float64
}

// NewApp creates the questionnaire application. The archive port may be
// nil; completed batteries are then kept in CSV only.
func NewApp(config Config, writer ports.QuestionnaireWriterPort, archive ports.SessionArchivePort) (*App, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"until": func(n int) []int {
			res := make([]int, n)
			for i := range res {
				res[i] = i
			}
			return res
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:      chi.NewRouter(),
		templates:   templates,
		writer:      writer,
		archive:     archive,
		participant: config.Participant,
		bonus:       config.Bonus,
		done:        make(chan struct{}),
	}
	app.responses.ParticipantID = config.Participant

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the battery flow in presentation order
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleStart)
	a.router.Post("/participant", a.handleParticipant)
	a.router.Get("/instructions", a.handleInstructions)
	a.router.Get("/bis/instructions", a.handleBISInstructions)
	a.router.Get("/bis", a.handleBISForm)
	a.router.Post("/bis", a.handleBISSubmit)
	a.router.Get("/sss/instructions", a.handleSSSInstructions)
	a.router.Get("/sss", a.handleSSSForm)
	a.router.Post("/sss", a.handleSSSSubmit)
	a.router.Get("/debrief", a.handleDebriefForm)
	a.router.Post("/debrief", a.handleDebriefSubmit)
	a.router.Get("/thanks", a.handleThanks)
}

// ServeHTTP makes App a plain http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Done is closed once the thank-you page has been served for a completed
// battery, so the owning process knows it may shut the server down.
func (a *App) Done() <-chan struct{} {
	return a.done
}

// Start starts the HTTP server
func (a *App) Start(port string) error {
	addr := ":" + port
	log.Printf("[UI] Questionnaire server listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("[UI] Template error for %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
