package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// activeSession creates a session with the given cards, joins one player and
// starts it, returning the session id, card ids and participant id.
func activeSession(t *testing.T, f *fixture, cards ...model.Card) (sessionID string, cardIDs []string, participantID string) {
	t.Helper()
	created := f.createSession(t, "host-1", cards...)
	joined := f.join(t, created.Code, "ann")

	_, err := f.sessions.Start(context.Background(), created.SessionID, "host-1")
	require.NoError(t, err)

	sess, ok := f.store.GetByID(created.SessionID)
	require.True(t, ok)
	for _, c := range sess.Cards {
		cardIDs = append(cardIDs, c.ID)
	}
	return created.SessionID, cardIDs, joined.ParticipantID
}

func TestSubmitAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("correct quiz answer earns base plus speed bonus", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 4, 2))

		result, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(2),
			TimeTakenMs:    0,
		})
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 200, result.Score)
	})

	t.Run("wrong quiz answer earns nothing", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 4, 2))

		result, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(0),
			TimeTakenMs:    100,
		})
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0, result.Score)
	})

	t.Run("any member of the correct set counts", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 4, 1, 3))

		result, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(3),
			TimeTakenMs:    1000,
		})
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
	})

	t.Run("flashcard earns flat completion points either way", func(t *testing.T) {
		for _, selfCorrect := range []bool{true, false} {
			f := newFixture(t)
			sessionID, cardIDs, participantID := activeSession(t, f, flashcard(""))

			result, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
				ParticipantID:  participantID,
				CardID:         cardIDs[0],
				SelfAssessment: boolPtr(selfCorrect),
				TimeTakenMs:    5000,
			})
			require.NoError(t, err)
			assert.Equal(t, selfCorrect, result.IsCorrect)
			assert.Equal(t, 50, result.Score)
		}
	})

	t.Run("duplicate submission replays the original result", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f,
			quizCard("", 4, 2), quizCard("", 4, 0))

		first, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(2),
			TimeTakenMs:    0,
		})
		require.NoError(t, err)

		// Another card scores in between; the replay must still return the
		// score as it stood when the first submission was graded.
		_, err = f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[1],
			SelectedOption: intPtr(0),
			TimeTakenMs:    0,
		})
		require.NoError(t, err)

		replay, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(1), // different payload, still a replay
			TimeTakenMs:    9999,
		})
		require.NoError(t, err)
		assert.Equal(t, first.IsCorrect, replay.IsCorrect)
		assert.Equal(t, first.Score, replay.Score)
		assert.True(t, replay.Duplicate)

		// Total score counted each card exactly once.
		sess, ok := f.store.GetByID(sessionID)
		require.True(t, ok)
		assert.Equal(t, 400, sess.Participants[participantID].Score)
	})

	t.Run("waiting session rejects answers", func(t *testing.T) {
		f := newFixture(t)
		created := f.createSession(t, "host-1", quizCard("", 2, 0))
		joined := f.join(t, created.Code, "ann")

		sess, _ := f.store.GetByID(created.SessionID)
		_, err := f.scoring.SubmitAnswer(ctx, created.SessionID, SubmitAnswerInput{
			ParticipantID:  joined.ParticipantID,
			CardID:         sess.Cards[0].ID,
			SelectedOption: intPtr(0),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidPhase, apperrors.GetCode(err))
	})

	t.Run("review session rejects answers", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 2, 0))

		_, err := f.sessions.Review(ctx, sessionID, "host-1")
		require.NoError(t, err)

		_, err = f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(0),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidPhase, apperrors.GetCode(err))
	})

	t.Run("completed session reads as closed", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 2, 0))

		_, err := f.sessions.Review(ctx, sessionID, "host-1")
		require.NoError(t, err)
		_, err = f.sessions.Finish(ctx, sessionID, "host-1")
		require.NoError(t, err)

		_, err = f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(0),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSessionClosed, apperrors.GetCode(err))
	})

	t.Run("unknown card", func(t *testing.T) {
		f := newFixture(t)
		sessionID, _, participantID := activeSession(t, f, quizCard("", 2, 0))

		_, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         "nope",
			SelectedOption: intPtr(0),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnknownCard, apperrors.GetCode(err))
	})

	t.Run("unknown participant", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, _ := activeSession(t, f, quizCard("", 2, 0))

		_, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  "nope",
			CardID:         cardIDs[0],
			SelectedOption: intPtr(0),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("quiz answer without a selection", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 2, 0))

		_, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID: participantID,
			CardID:        cardIDs[0],
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})

	t.Run("selection out of range", func(t *testing.T) {
		f := newFixture(t)
		sessionID, cardIDs, participantID := activeSession(t, f, quizCard("", 2, 0))

		_, err := f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(5),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))

		_, err = f.scoring.SubmitAnswer(ctx, sessionID, SubmitAnswerInput{
			ParticipantID:  participantID,
			CardID:         cardIDs[0],
			SelectedOption: intPtr(-1),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})
}

func TestSpeedBonus(t *testing.T) {
	assert.Equal(t, 100, speedBonus(0))
	assert.Equal(t, 50, speedBonus(15_000))
	assert.Equal(t, 0, speedBonus(30_000))
	assert.Equal(t, 0, speedBonus(120_000))
	assert.Equal(t, 100, speedBonus(-5)) // clock skew clamps to zero elapsed

	// Monotonically non-increasing across the window.
	prev := speedBonus(0)
	for ms := int64(0); ms <= 30_000; ms += 500 {
		bonus := speedBonus(ms)
		assert.LessOrEqual(t, bonus, prev, "bonus rose at %dms", ms)
		assert.GreaterOrEqual(t, bonus, 0)
		prev = bonus
	}
}
