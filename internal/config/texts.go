package config

// InstructionPage is one space-gated instruction screen.
type InstructionPage struct {
	Body   string
	Footer string
}

// Texts bundles every participant-facing string of the task. The study
// runs in German; the instructions address the participant informally,
// the closing screen formally. The ID prompt is the experimenter's, not
// the participant's, and stays English.
type Texts struct {
	PrePractice  []InstructionPage
	PostPractice InstructionPage
	WinFeedback  string
	LossFeedback string
	Missed       string
	// FinalFormat takes the total win count and the bonus in euros.
	FinalFormat string
	IDPrompt    string
	IDInvalid   string
}

// DefaultTexts returns the study's wording.
func DefaultTexts() Texts {
	return Texts{
		PrePractice: []InstructionPage{
			{
				Body: "Willkommen!\n\nDu bist jetzt Teil eines spannenden Experiments. Deine Aufgabe ist es, Entscheidungen zu treffen, um möglichst viele Punkte zu sammeln.\n\n" +
					"In jeder Runde hast du zwei Optionen zur Auswahl. Du wählst eine davon aus und siehst sofort, ob du Punkte gewonnen hast oder nicht.\n\n" +
					"Benutze die Pfeiltasten auf der Tastatur, um eine Option auszuwählen.\nMit der '←'-Taste wählst du die linke Option, mit der '→'-Taste wählst du die rechte Option",
				Footer: "Drücke LEERTASTE, um fortzufahren.",
			},
			{
				Body: "Die Wahrscheinlichkeit, mit einer Option Punkte zu gewinnen, verändert sich im Laufe des Spiels. Deine Aufgabe ist es herauszufinden, welche Option momentan die beste ist.\n\n" +
					"Achte darauf: Die Symbole erscheinen manchmal links, manchmal rechts – das ist zufällig und spielt keine Rolle. Entscheidend ist nur, welches Symbol du auswählst und NICHT auf welcher Seite sich das Symbol gerade befindet.",
				Footer: "Drücke LEERTASTE, um fortzufahren.",
			},
			{
				Body: "Manchmal wirst du zusätzlich zum Gewinn Rückmeldung mit besonderen Effekten erhalten.\n" +
					"Denke immer daran: Dein Ziel ist es, möglichst viele Punkte zu sammeln.",
				Footer: "Drücke LEERTASTE, um fortzufahren.",
			},
			{
				Body:   "Am Ende des Spiels erhältst du eine Bonuszahlung basierend auf deinen gesammelten Punkten. Du kannst dabei bis zu 3€ zusätzlich verdienen.",
				Footer: "Drücke LEERTASTE, um fortzufahren.",
			},
			{
				Body: "Bevor das eigentliche Spiel beginnt, absolvierst du ein paar Übungsrunden, um dich mit den Regeln und Abläufen vertraut zu machen.\n\n" +
					"Die Übungsrunden fließen NICHT in deine Bonuszahlung mit ein.\n\n" +
					"DENKE DARAN: Du wählst die Optionen mit den Pfeiltasten (←/→) aus",
				Footer: "Drücke LEERTASTE, um die Übungsrunden zu starten.",
			},
		},
		PostPractice: InstructionPage{
			Body: "Gut gemacht, du hast die Übungsrunden erfolgreich abgeschlossen!\n\n" +
				"Denke immer daran: Dein Ziel ist es, möglichst viele Punkte zu sammeln.\n\n" +
				"Beobachte genau, wie sich deine Entscheidungen auszahlen, und passe deine Strategie entsprechend an.\n\n" +
				"Das eigentliche Spiel beginnt jetzt.\nViel Erfolg!",
			Footer: "Drücke LEERTASTE, um das Spiel zu starten.",
		},
		WinFeedback:  "+100 Punkte",
		LossFeedback: "+0 Punkte",
		Missed:       "Zu spät",
		FinalFormat:  "Vielen Dank für Ihre Teilnahme!\n\nSie haben insgesamt %d Gewinne erzielt.\nIhr Bonus beträgt: %.2f Euro.",
		IDPrompt:     "Enter Participant ID: ",
		IDInvalid:    "Please enter a valid Participant ID.",
	}
}
