package model

// Card is one question in a session's snapshot. The snapshot is taken at
// session creation, so edits to the source deck never alter a running session.
type Card struct {
	ID             string   `json:"id"`
	Kind           CardKind `json:"itemType"`
	Question       string   `json:"question,omitempty"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswers []int    `json:"correctAnswers,omitempty"`
	Front          string   `json:"front,omitempty"`
	Back           string   `json:"back,omitempty"`
}

// IsQuiz reports whether the card is graded server-side. Flashcards have no
// objectively checkable answer and are scored as completion only.
func (c Card) IsQuiz() bool {
	return c.Kind == CardKindQuizQuestion || len(c.Options) > 0
}

// Redacted returns a copy safe to show players before the review phase:
// the correct-answer set is stripped, the flashcard back is kept because the
// player flips the card locally to self-assess.
func (c Card) Redacted() Card {
	out := c
	out.CorrectAnswers = nil
	return out
}
