package quest

import (
	"fmt"
	"strings"

	"banditlab/domain/core"
)

// Section names one questionnaire within the battery.
type Section string

const (
	SectionBIS     Section = "bis"
	SectionSSS     Section = "sss"
	SectionDebrief Section = "debrief"
)

// UnansweredError identifies the first missing or malformed answer.
// Item is 1-based within its section.
type UnansweredError struct {
	Section Section
	Item    int
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("%s: %s item %d", core.ErrUnansweredItem, e.Section, e.Item)
}

func (e *UnansweredError) Unwrap() error {
	return core.ErrUnansweredItem
}

// Message returns the German modal text shown to the participant. The
// two scale questionnaires use a whole-form message; the debrief names
// the item and distinguishes typed from chosen answers.
func (e *UnansweredError) Message() string {
	switch e.Section {
	case SectionBIS:
		return "Bitte beantworte alle Fragen im BIS-Fragebogen."
	case SectionSSS:
		return "Bitte beantworte alle Fragen im SSS-Fragebogen."
	default:
		item := DebriefItems()[e.Item-1]
		if item.Kind == DebriefChoice {
			return fmt.Sprintf("Bitte wähle eine Antwort für Frage %d.", e.Item)
		}
		return fmt.Sprintf("Bitte beantworte Frage %d.", e.Item)
	}
}

// ResponseSet collects one participant's answers across the battery.
// Zero values mean unanswered.
type ResponseSet struct {
	ParticipantID core.ParticipantID
	BIS           [BISCount]int
	SSS           [SSSCount]Option
	Debrief       [DebriefCount]string
}

// ValidateBIS checks the impulsiveness answers: every item answered on
// the 1..4 scale.
func (rs *ResponseSet) ValidateBIS() error {
	for i, v := range rs.BIS {
		if v < BISScaleMin || v > BISScaleMax {
			return &UnansweredError{Section: SectionBIS, Item: i + 1}
		}
	}
	return nil
}

// ValidateSSS checks the forced-choice answers: every item either a or b.
func (rs *ResponseSet) ValidateSSS() error {
	for i, v := range rs.SSS {
		if v != OptionA && v != OptionB {
			return &UnansweredError{Section: SectionSSS, Item: i + 1}
		}
	}
	return nil
}

// ValidateDebrief checks the debrief answers: open items non-blank,
// choice items one of the offered options.
func (rs *ResponseSet) ValidateDebrief() error {
	items := DebriefItems()
	for i, v := range rs.Debrief {
		v = strings.TrimSpace(v)
		if v == "" {
			return &UnansweredError{Section: SectionDebrief, Item: i + 1}
		}
		if items[i].Kind == DebriefChoice && !containsOption(items[i].Options, v) {
			return &UnansweredError{Section: SectionDebrief, Item: i + 1}
		}
	}
	return nil
}

// Validate runs all three section checks in battery order and returns
// the first failure.
func (rs *ResponseSet) Validate() error {
	if err := rs.ValidateBIS(); err != nil {
		return err
	}
	if err := rs.ValidateSSS(); err != nil {
		return err
	}
	return rs.ValidateDebrief()
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
