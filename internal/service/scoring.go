package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/store"
)

// Scoring constants. A correct quiz answer earns scoreBase plus a speed bonus
// that decays linearly to zero across speedWindowMs. Flashcards have no
// checkable answer, so they earn flat completion points and the self-report is
// only recorded; accuracy a player can forge never feeds the leaderboard.
const (
	scoreBase                 = 100
	speedWindowMs             = 30_000
	flashcardCompletionPoints = 50
)

type SubmitAnswerInput struct {
	ParticipantID  string `json:"participantId"`
	CardID         string `json:"cardId"`
	SelectedOption *int   `json:"selectedOption,omitempty"`
	SelfAssessment *bool  `json:"selfAssessment,omitempty"`
	TimeTakenMs    int64  `json:"timeTakenMs"`
}

type SubmitAnswerResult struct {
	IsCorrect bool `json:"isCorrect"`
	Score     int  `json:"score"`
	// Duplicate marks a replayed submission: the result is the one computed
	// the first time, and the score was not incremented again.
	Duplicate bool `json:"-"`
}

// ScoringService grades submissions against the session's card snapshot and
// updates participant scores. Correctness is always recomputed server-side;
// a client-declared verdict is never trusted for quiz questions.
type ScoringService struct {
	store store.Store
}

func NewScoringService(s store.Store) *ScoringService {
	return &ScoringService{store: s}
}

func (s *ScoringService) SubmitAnswer(ctx context.Context, sessionID string, input SubmitAnswerInput) (*SubmitAnswerResult, error) {
	if input.ParticipantID == "" {
		return nil, apperrors.MissingRequired("participantId")
	}
	if input.CardID == "" {
		return nil, apperrors.MissingRequired("cardId")
	}

	var result SubmitAnswerResult

	_, err := s.store.Mutate(sessionID, func(sess *model.Session) error {
		if sess.Phase.Terminal() {
			return apperrors.SessionClosed()
		}
		if sess.Phase != model.PhaseActive {
			return apperrors.InvalidPhase(string(sess.Phase))
		}

		participant, ok := sess.Participants[input.ParticipantID]
		if !ok {
			return apperrors.NotFound("Participant")
		}

		card, ok := sess.CardByID(input.CardID)
		if !ok {
			return apperrors.UnknownCard(input.CardID)
		}

		// At-least-once delivery from the client: a retry of an already
		// scored card replays the original result instead of failing or
		// double counting.
		if prev, answered := participant.Answers[input.CardID]; answered {
			result = SubmitAnswerResult{IsCorrect: prev.IsCorrect, Score: prev.ScoreAfter, Duplicate: true}
			return nil
		}

		isCorrect, points, err := grade(card, input)
		if err != nil {
			return err
		}

		now := time.Now()
		participant.Score += points
		participant.Answers[input.CardID] = &model.Answer{
			CardID:         input.CardID,
			ParticipantID:  input.ParticipantID,
			SelectedOption: input.SelectedOption,
			IsCorrect:      isCorrect,
			Points:         points,
			ScoreAfter:     participant.Score,
			TimeTakenMs:    input.TimeTakenMs,
			SubmittedAt:    now,
		}
		sess.LastActivityAt = now

		result = SubmitAnswerResult{IsCorrect: isCorrect, Score: participant.Score}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		log.Debug().
			Str("sessionId", sessionID).
			Str("participantId", input.ParticipantID).
			Str("cardId", input.CardID).
			Msg("duplicate answer replayed")
	}

	return &result, nil
}

// grade computes the server-side verdict and point award for one submission.
func grade(card model.Card, input SubmitAnswerInput) (isCorrect bool, points int, err error) {
	if card.IsQuiz() {
		if input.SelectedOption == nil {
			return false, 0, apperrors.MissingRequired("selectedOption")
		}
		selected := *input.SelectedOption
		if selected < 0 || selected >= len(card.Options) {
			return false, 0, apperrors.InvalidInput("selectedOption", "out of range")
		}
		for _, correct := range card.CorrectAnswers {
			if selected == correct {
				return true, scoreBase + speedBonus(input.TimeTakenMs), nil
			}
		}
		return false, 0, nil
	}

	if input.SelfAssessment == nil {
		return false, 0, apperrors.MissingRequired("selfAssessment")
	}
	return *input.SelfAssessment, flashcardCompletionPoints, nil
}

// speedBonus decays linearly from scoreBase at 0ms to zero at speedWindowMs.
// Deterministic, monotonically non-increasing in time taken, never negative.
func speedBonus(timeTakenMs int64) int {
	if timeTakenMs < 0 {
		timeTakenMs = 0
	}
	if timeTakenMs >= speedWindowMs {
		return 0
	}
	return int(int64(scoreBase) * (speedWindowMs - timeTakenMs) / speedWindowMs)
}
