package quest

// Fixed item counts of the three questionnaires.
const (
	BISCount     = 15
	SSSCount     = 8
	DebriefCount = 9
)

// BIS response scale bounds (1 = selten/nie .. 4 = fast immer/immer).
const (
	BISScaleMin = 1
	BISScaleMax = 4
)

// BISItem is one impulsiveness statement. Reverse-keyed items score as
// (5 - response).
type BISItem struct {
	Text    string
	Reverse bool
}

// Subscale names the four sensation-seeking facets.
type Subscale string

const (
	SubscaleThrill        Subscale = "SST"
	SubscaleExperience    Subscale = "SSE"
	SubscaleDisinhibition Subscale = "SSD"
	SubscaleBoredom       Subscale = "SSB"
)

// Option is a forced-choice answer.
type Option string

const (
	OptionA Option = "a"
	OptionB Option = "b"
)

// SSSItem is one forced-choice sensation-seeking item. Scored names the
// option that counts toward the item's subscale.
type SSSItem struct {
	OptionA  string
	OptionB  string
	Subscale Subscale
	Scored   Option
}

// DebriefKind distinguishes free-text from single-choice debrief items.
type DebriefKind string

const (
	DebriefOpen   DebriefKind = "open"
	DebriefChoice DebriefKind = "choice"
)

// DebriefItem is one post-experiment probe. Column is the fixed CSV
// column name its answer lands in.
type DebriefItem struct {
	Text    string
	Kind    DebriefKind
	Options []string
	Column  string
}

// BISItems returns the BIS-15 short form, in presentation order.
func BISItems() []BISItem {
	return []BISItem{
		{Text: "Ich plane meine Vorhaben gründlich.", Reverse: true},
		{Text: "Ich mache häufig Dinge ohne vorher darüber nachzudenken.", Reverse: false},
		{Text: "Ich bin unaufmerksam.", Reverse: false},
		{Text: "Ich kann mich gut konzentrieren.", Reverse: true},
		{Text: "Ich sichere mich im Leben in allen Dingen ab.", Reverse: true},
		{Text: "Ich rutsche bei Spielen oder Vorträgen oft hin und her.", Reverse: false},
		{Text: "Ich denke gründlich nach.", Reverse: true},
		{Text: "Ich plane für meine berufliche Sicherheit.", Reverse: true},
		{Text: "Ich sage Dinge ohne darüber nachzudenken.", Reverse: false},
		{Text: "Ich handele spontan.", Reverse: false},
		{Text: "Mir wird beim Lösen von Denkaufgaben schnell langweilig.", Reverse: false},
		{Text: "Ich handele gerne aus dem Moment heraus.", Reverse: false},
		{Text: "Ich kaufe Sachen ganz spontan.", Reverse: false},
		{Text: "Ich werde bei Vorlesungen oder Vorträgen schnell unruhig.", Reverse: false},
		{Text: "Ich plane für die Zukunft.", Reverse: true},
	}
}

// SSSItems returns the sensation-seeking short form, in presentation
// order. Two items per subscale.
func SSSItems() []SSSItem {
	return []SSSItem{
		{
			OptionA:  "Ich liebe ausgelassene, „wilde“ Partys.",
			OptionB:  "Ich bevorzuge ruhige Partys mit guten Gesprächen.",
			Subscale: SubscaleDisinhibition, Scored: OptionA,
		},
		{
			OptionA:  "Mir macht es nichts aus, wenn ich bei Filmen oder Schauspielen weiß, was als nächstes passiert.",
			OptionB:  "Ich kann mich normalerweise nicht an Filmen oder Schauspielen erfreuen, bei denen ich genau weiß, was als nächstes passiert.",
			Subscale: SubscaleBoredom, Scored: OptionB,
		},
		{
			OptionA:  "Manchmal liebe ich es, Dinge zu tun, die einem ein wenig Angst einflößen.",
			OptionB:  "Eine vernünftige Person vermeidet Aktivitäten, die gefährlich sind.",
			Subscale: SubscaleThrill, Scored: OptionA,
		},
		{
			OptionA:  "Ich liebe es, mich häufig durch Alkohol oder Rauchen in eine gute Stimmung zu versetzen.",
			OptionB:  "Ich finde, dass mir künstliche Anregungsmittel wie Alkohol oder Rauchen nicht bekommen.",
			Subscale: SubscaleDisinhibition, Scored: OptionA,
		},
		{
			OptionA:  "Wenn ich eine Reise unternehme, dann lege ich vorher meine Reiseroute und Zeitplanung sorgfältig fest.",
			OptionB:  "Ich würde gerne eine Reise machen, ohne vorher die Route oder den zeitlichen Ablauf zu planen.",
			Subscale: SubscaleExperience, Scored: OptionB,
		},
		{
			OptionA:  "Ich bevorzuge „normale“ Personen aus meinem Umfeld als Freunde.",
			OptionB:  "Ich würde gerne Freunde in Außenseitergruppen wie „Skinheads“ oder „Zigeuner“ kennen lernen.",
			Subscale: SubscaleExperience, Scored: OptionB,
		},
		{
			OptionA:  "Ich würde gerne einmal einen Fallschirmabsprung versuchen.",
			OptionB:  "Ich würde niemals einen Fallschirmabsprung aus einem Flugzeug wagen.",
			Subscale: SubscaleThrill, Scored: OptionA,
		},
		{
			OptionA:  "Ich finde etwas Interessantes an fast jeder Person, mit der ich rede.",
			OptionB:  "Ich habe keine Geduld mit trägen oder langweiligen Personen.",
			Subscale: SubscaleBoredom, Scored: OptionB,
		},
	}
}

// DebriefItems returns the post-experiment probes, in presentation and
// CSV column order.
func DebriefItems() []DebriefItem {
	return []DebriefItem{
		{
			Text:   "Was glaubst du, war das Ziel dieser Studie?",
			Kind:   DebriefOpen,
			Column: "q-open_goal_of_study",
		},
		{
			Text:   "Welche Aspekte der Aufgabe fandest du besonders auffällig?",
			Kind:   DebriefOpen,
			Column: "q-open_noticable_aspects",
		},
		{
			Text:    "Hast du während der Aufgabe bemerkt, dass einige Gewinnmeldungen mit speziellen audiovisuellen Feedbackreizen verbunden waren?",
			Kind:    DebriefChoice,
			Options: []string{"Ja", "Nein"},
			Column:  "q-choice_noticed_saliency",
		},
		{
			Text:    "Falls ja, wie hast du die speziellen audiovisuellen Feedbackreize wahrgenommen?",
			Kind:    DebriefChoice,
			Options: []string{"Sehr auffällig", "Moderat auffällig", "Kaum auffällig", "Gar nicht auffällig"},
			Column:  "q-choice_saliency_strength",
		},
		{
			Text:    "Glaubst du, dass die speziellen audiovisuellen Feedbackreize dein Entscheidungsverhalten beeinflusst haben?",
			Kind:    DebriefChoice,
			Options: []string{"Ja", "Nein", "Unsicher"},
			Column:  "q-choice_saliency_impact",
		},
		{
			Text:   "Falls ja, in welcher Weise haben die speziellen audiovisuellen Feedbackreize dein Entscheidungsverhalten beeinflusst?",
			Kind:   DebriefOpen,
			Column: "q-open_saliency_impact",
		},
		{
			Text:    "Hast du das Gefühl, dass du aufgrund der speziellen Feedbackreize anders eingeschätzt hast, welche Auswahloption besser ist?",
			Kind:    DebriefChoice,
			Options: []string{"Ja", "Nein", "Unsicher"},
			Column:  "q-choice_saliency_value",
		},
		{
			Text:    "Wie motiviert warst du, während der Aufgabe den höchstmöglichen Gesamtgewinn zu erzielen?",
			Kind:    DebriefChoice,
			Options: []string{"Sehr motiviert", "Moderat motiviert", "Wenig motiviert", "Gar nicht motiviert"},
			Column:  "q-choice_win_motivation",
		},
		{
			Text:   "Hast du noch weitere Anmerkungen oder Feedback zur Studie?",
			Kind:   DebriefOpen,
			Column: "q-open_comments",
		},
	}
}
