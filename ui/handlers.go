package ui

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"banditlab/domain/core"
	"banditlab/domain/quest"
)

// nextPath returns the page the participant should be on. Callers must
// hold a.mu. The battery is strictly linear; any out-of-order request
// is redirected here.
func (a *App) nextPath() string {
	switch {
	case a.participant == "":
		return "/"
	case a.complete:
		return "/thanks"
	case a.sssDone:
		return "/debrief"
	case a.bisDone:
		return "/sss/instructions"
	default:
		return "/instructions"
	}
}

// redirectToStep sends the participant to their current step when they
// request a page out of order.
func (a *App) redirectToStep(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	path := a.nextPath()
	a.mu.Unlock()
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// handleStart shows the participant-ID prompt, or skips straight to the
// instructions when the ID came in on the command line.
func (a *App) handleStart(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	known := a.participant != ""
	a.mu.Unlock()

	if known {
		a.redirectToStep(w, r)
		return
	}
	a.renderTemplate(w, "participant_id.html", map[string]interface{}{
		"Error": "",
	})
}

// handleParticipant accepts the typed participant ID. An empty ID
// re-renders the prompt with the German error.
func (a *App) handleParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseParticipantID(r.FormValue("participant_id"))
	if err != nil {
		a.renderTemplate(w, "participant_id.html", map[string]interface{}{
			"Error": "Bitte gib eine gültige Teilnehmer-ID ein.",
		})
		return
	}

	a.mu.Lock()
	if a.participant == "" {
		a.participant = id
		a.responses.ParticipantID = id
	}
	a.mu.Unlock()

	http.Redirect(w, r, "/instructions", http.StatusSeeOther)
}

func (a *App) handleInstructions(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.participant != "" && !a.complete
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}
	a.renderTemplate(w, "instructions.html", map[string]interface{}{
		"Title": "Fragebögen",
		"Body":  renderMarkdown(generalInstructionsMD),
		"Next":  "/bis/instructions",
	})
}

func (a *App) handleBISInstructions(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.participant != "" && !a.complete
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}
	a.renderTemplate(w, "instructions.html", map[string]interface{}{
		"Title": "BIS-15",
		"Body":  renderMarkdown(bisInstructionsMD),
		"Next":  "/bis",
	})
}

func (a *App) handleBISForm(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.participant != "" && !a.complete
	selected := a.responses.BIS
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}
	a.renderBIS(w, selected, "")
}

func (a *App) handleBISSubmit(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.participant != "" && !a.complete
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}

	answers := parseBISForm(r)
	candidate := quest.ResponseSet{BIS: answers}
	if err := candidate.ValidateBIS(); err != nil {
		a.renderBIS(w, answers, userMessage(err))
		return
	}

	a.mu.Lock()
	a.responses.BIS = answers
	a.bisDone = true
	a.mu.Unlock()

	http.Redirect(w, r, "/sss/instructions", http.StatusSeeOther)
}

func (a *App) handleSSSInstructions(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.bisDone && !a.complete
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}
	a.renderTemplate(w, "instructions.html", map[string]interface{}{
		"Title": "SSS",
		"Body":  renderMarkdown(sssInstructionsMD),
		"Next":  "/sss",
	})
}

func (a *App) handleSSSForm(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.bisDone && !a.complete
	selected := a.responses.SSS
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}
	a.renderSSS(w, selected, "")
}

func (a *App) handleSSSSubmit(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.bisDone && !a.complete
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}

	answers := parseSSSForm(r)
	candidate := quest.ResponseSet{SSS: answers}
	if err := candidate.ValidateSSS(); err != nil {
		a.renderSSS(w, answers, userMessage(err))
		return
	}

	a.mu.Lock()
	a.responses.SSS = answers
	a.sssDone = true
	a.mu.Unlock()

	http.Redirect(w, r, "/debrief", http.StatusSeeOther)
}

func (a *App) handleDebriefForm(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.sssDone && !a.complete
	selected := a.responses.Debrief
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}
	a.renderDebrief(w, selected, "")
}

// handleDebriefSubmit finishes the battery: validate the debrief, score
// everything, write the questionnaire row, optionally archive, then hand
// off to the thank-you page.
func (a *App) handleDebriefSubmit(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.sssDone && !a.complete
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}

	answers := parseDebriefForm(r)
	candidate := quest.ResponseSet{Debrief: answers}
	if err := candidate.ValidateDebrief(); err != nil {
		a.renderDebrief(w, answers, userMessage(err))
		return
	}

	a.mu.Lock()
	a.responses.Debrief = answers
	responses := a.responses
	a.mu.Unlock()

	scores := quest.Score(&responses)
	if err := a.writer.Write(r.Context(), &responses, scores); err != nil {
		log.Printf("[UI] Failed to write questionnaire data for %s: %v", responses.ParticipantID, err)
		a.renderDebrief(w, answers, "Speichern fehlgeschlagen. Bitte wende dich an die Versuchsleitung.")
		return
	}

	if a.archive != nil {
		if err := a.archive.SaveQuestionnaire(r.Context(), responses.ParticipantID, &responses, scores); err != nil {
			log.Printf("[UI] Questionnaire archive failed for %s: %v", responses.ParticipantID, err)
		}
	}

	a.mu.Lock()
	a.complete = true
	a.mu.Unlock()

	log.Printf("[UI] Questionnaire completed for participant %s", responses.ParticipantID)
	http.Redirect(w, r, "/thanks", http.StatusSeeOther)
}

// handleThanks renders the closing page and signals Done. Signaling
// after rendering means the response bytes are already on the wire when
// the owner begins a graceful shutdown.
func (a *App) handleThanks(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ok := a.complete
	bonus := a.bonus
	a.mu.Unlock()
	if !ok {
		a.redirectToStep(w, r)
		return
	}

	a.renderTemplate(w, "thanks.html", map[string]interface{}{
		"Bonus": fmt.Sprintf("%.2f", bonus),
	})
	a.doneOnce.Do(func() { close(a.done) })
}

// Render helpers. Selected values are passed back so a failed submit
// keeps what was already answered.

func (a *App) renderBIS(w http.ResponseWriter, selected [quest.BISCount]int, errMsg string) {
	a.renderTemplate(w, "bis.html", map[string]interface{}{
		"Items":    quest.BISItems(),
		"Selected": selected[:],
		"Error":    errMsg,
	})
}

func (a *App) renderSSS(w http.ResponseWriter, selected [quest.SSSCount]quest.Option, errMsg string) {
	values := make([]string, quest.SSSCount)
	for i, v := range selected {
		values[i] = string(v)
	}
	a.renderTemplate(w, "sss.html", map[string]interface{}{
		"Items":    quest.SSSItems(),
		"Selected": values,
		"Error":    errMsg,
	})
}

func (a *App) renderDebrief(w http.ResponseWriter, selected [quest.DebriefCount]string, errMsg string) {
	a.renderTemplate(w, "debrief.html", map[string]interface{}{
		"Items":    quest.DebriefItems(),
		"Selected": selected[:],
		"Error":    errMsg,
	})
}

// Form parsers. Absent or malformed values map to the zero value, which
// validation reports as unanswered.

func parseBISForm(r *http.Request) [quest.BISCount]int {
	var out [quest.BISCount]int
	for i := 0; i < quest.BISCount; i++ {
		if v, err := strconv.Atoi(r.FormValue(fmt.Sprintf("bis_%d", i+1))); err == nil {
			out[i] = v
		}
	}
	return out
}

func parseSSSForm(r *http.Request) [quest.SSSCount]quest.Option {
	var out [quest.SSSCount]quest.Option
	for i := 0; i < quest.SSSCount; i++ {
		out[i] = quest.Option(r.FormValue(fmt.Sprintf("sss_%d", i+1)))
	}
	return out
}

func parseDebriefForm(r *http.Request) [quest.DebriefCount]string {
	var out [quest.DebriefCount]string
	for i := 0; i < quest.DebriefCount; i++ {
		out[i] = strings.TrimSpace(r.FormValue(fmt.Sprintf("q_%d", i+1)))
	}
	return out
}

// userMessage maps a validation error to its participant-facing German
// text.
func userMessage(err error) string {
	var unanswered *quest.UnansweredError
	if errors.As(err, &unanswered) {
		return unanswered.Message()
	}
	return err.Error()
}
