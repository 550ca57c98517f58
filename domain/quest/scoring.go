package quest

// Scores holds every derived questionnaire measure that is persisted.
type Scores struct {
	BISTotal       int
	Thrill         int
	Experience     int
	Disinhibition  int
	Boredom        int
	SensationTotal float64
	Percent        float64
}

// Score derives all measures in one pass. It assumes a set the
// collection surface has already validated; unanswered or out-of-range
// values are not detected here.
func Score(rs *ResponseSet) Scores {
	var s Scores

	for i, item := range BISItems() {
		if item.Reverse {
			s.BISTotal += 5 - rs.BIS[i]
		} else {
			s.BISTotal += rs.BIS[i]
		}
	}

	for i, item := range SSSItems() {
		if rs.SSS[i] != item.Scored {
			continue
		}
		switch item.Subscale {
		case SubscaleThrill:
			s.Thrill++
		case SubscaleExperience:
			s.Experience++
		case SubscaleDisinhibition:
			s.Disinhibition++
		case SubscaleBoredom:
			s.Boredom++
		}
	}

	s.SensationTotal = float64(s.Thrill+s.Experience+s.Disinhibition+s.Boredom) / 4
	s.Percent = s.SensationTotal * 25
	return s
}
