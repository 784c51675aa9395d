package model

import (
	"strings"
	"time"
)

// Participant is a player who joined a session under a nickname. Records live
// only as long as the owning session; they are not carried across sessions.
type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Nickname  string    `json:"nickname"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`
	// Answers is append-only, keyed by card id, at most one entry per card.
	Answers map[string]*Answer `json:"answers"`
}

func (p *Participant) NormalizedNickname() string {
	return NormalizeNickname(p.Nickname)
}

func NormalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// Tally counts graded results for the host leaderboard view.
func (p *Participant) Tally() (correct, incorrect int) {
	for _, a := range p.Answers {
		if a.IsCorrect {
			correct++
		} else {
			incorrect++
		}
	}
	return correct, incorrect
}

// Answer is one submission. IsCorrect is derived server-side from the card
// snapshot for quiz questions; for flashcards it records the self-report.
type Answer struct {
	CardID         string    `json:"cardId"`
	ParticipantID  string    `json:"participantId"`
	SelectedOption *int      `json:"selectedOption,omitempty"`
	IsCorrect      bool      `json:"isCorrect"`
	Points         int       `json:"points"`
	// ScoreAfter is the participant's cumulative score right after this
	// submission was applied; duplicate submissions replay it verbatim.
	ScoreAfter     int       `json:"scoreAfter"`
	TimeTakenMs    int64     `json:"timeTakenMs"`
	SubmittedAt    time.Time `json:"submittedAt"`
}
