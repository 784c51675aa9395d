package model

type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseActive    Phase = "active"
	PhaseReview    Phase = "review"
	PhaseCompleted Phase = "completed"
)

// Terminal reports whether the phase accepts no further mutations.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted
}

type CardKind string

const (
	CardKindQuizQuestion CardKind = "quiz_question"
	CardKindFlashcard    CardKind = "flashcard"
)
