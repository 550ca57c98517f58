package ui

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Instruction pages are authored in Markdown and rendered to HTML at
// request time. The wording addresses the participant informally,
// matching the task screens.

const generalInstructionsMD = `Sehr gut, du hast die Aufgabe erfolgreich abgeschlossen.

Nun bitten wir dich, noch drei kurze Fragebögen auszufüllen. Das Ausfüllen dauert ungefähr 5 bis 10 Minuten.
Es gibt keine ‚richtigen' oder ‚falschen' Antworten, wie es in anderen Tests der Fall ist.

Bitte beantworte die Fragen ehrlich und nach bestem Wissen. Deine Antworten werden anonym und vertraulich behandelt.`

const bisInstructionsMD = `### Anleitung zum BIS-15 Fragebogen

Bitte lies jede Aussage aufmerksam durch und wähle die Zahl, die am besten beschreibt, wie häufig diese Aussage auf dich zutrifft.
Versuche, jede Frage so ehrlich und spontan wie möglich zu beantworten.

**Bewertungsskala:**

1. Selten / Nie
2. Gelegentlich
3. Oft
4. Fast immer / Immer

Es gibt keine „richtigen" oder „falschen" Antworten. Wähle einfach die Antwort, die am besten zu dir passt.`

const sssInstructionsMD = `Sehr gut!
Nun folgt der zweite Fragebogen.

### Anleitung zum Fragebogen

Jede der folgenden Aussagen enthält zwei Antwortmöglichkeiten, A und B.
Bitte wähle die Option, die am besten beschreibt, was du bevorzugst oder wie du dich fühlst.

In manchen Fällen können beide Optionen teilweise auf dich zutreffen. Wähle dann bitte die Antwort, die deine Präferenz besser widerspiegelt.
Falls du mit keiner der beiden Antworten übereinstimmst, entscheide dich für die, die dir am ehesten zusagt.

**Wichtige Hinweise:**

- Lass keine Frage unbeantwortet.
- Wähle immer nur eine der beiden Antworten (A oder B).
- Es geht um deine persönlichen Vorlieben und Gefühle – nicht darum, wie andere darüber denken oder was allgemein als „richtig" gilt.

Es gibt keine „richtigen" oder „falschen" Antworten. Bitte sei ehrlich und beantworte die Fragen möglichst spontan.`

// renderMarkdown converts an instruction text to embeddable HTML. The
// sources are compile-time constants, so the output needs no sanitizing.
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.Render(doc, renderer))
}
