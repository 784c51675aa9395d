package model

// Clone returns a deep copy. The store hands copies to readers so that
// projections never observe a session mid-mutation.
func (s *Session) Clone() *Session {
	out := *s
	out.Cards = make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		out.Cards[i] = c
		out.Cards[i].Options = append([]string(nil), c.Options...)
		out.Cards[i].CorrectAnswers = append([]int(nil), c.CorrectAnswers...)
	}
	out.Participants = make(map[string]*Participant, len(s.Participants))
	for id, p := range s.Participants {
		out.Participants[id] = p.Clone()
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

func (p *Participant) Clone() *Participant {
	out := *p
	out.Answers = make(map[string]*Answer, len(p.Answers))
	for cardID, a := range p.Answers {
		ans := *a
		if a.SelectedOption != nil {
			v := *a.SelectedOption
			ans.SelectedOption = &v
		}
		out.Answers[cardID] = &ans
	}
	return &out
}
