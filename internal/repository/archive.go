package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/makquiz/live-server-go/internal/database"
	"github.com/makquiz/live-server-go/internal/model"
)

// ArchiveRepository persists completed sessions. Writes are append-only: a
// session is archived exactly once, when it enters the completed phase, and
// its rows are never edited afterwards.
//
// Tables: live_sessions, live_participants, live_answers.
type ArchiveRepository interface {
	SaveSession(ctx context.Context, sess *model.Session) error
	ListByHost(ctx context.Context, hostID string, limit int) ([]model.ArchivedSession, error)
	// FindByHost returns the archived session only if hostID owns it; a
	// session archived by another host reads as missing.
	FindByHost(ctx context.Context, sessionID, hostID string) (*model.ArchivedSession, error)
	ListParticipants(ctx context.Context, sessionID string) ([]model.ArchivedParticipant, error)
}

type archiveRepo struct {
	db *database.DB
}

func NewArchiveRepository(db *database.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

// SaveSession writes the session summary, its participants, and every answer
// in one transaction so a crash mid-archive never leaves a partial record.
func (r *archiveRepo) SaveSession(ctx context.Context, sess *model.Session) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO live_sessions (id, code, deck_id, host_id, participant_count, card_count, created_at, started_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, sess.ID, sess.Code, sess.DeckID, sess.HostID,
			len(sess.Participants), len(sess.Cards),
			sess.CreatedAt, sess.StartedAt, sess.CompletedAt)
		if err != nil {
			return err
		}

		for _, p := range sess.Participants {
			correct, incorrect := p.Tally()
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO live_participants (id, session_id, nickname, score, correct, incorrect, joined_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO NOTHING
			`, p.ID, sess.ID, p.Nickname, p.Score, correct, incorrect, p.JoinedAt); err != nil {
				return err
			}

			for _, a := range p.Answers {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO live_answers (session_id, participant_id, card_id, is_correct, points, time_taken_ms, submitted_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
					ON CONFLICT (session_id, participant_id, card_id) DO NOTHING
				`, sess.ID, p.ID, a.CardID, a.IsCorrect, a.Points, a.TimeTakenMs, a.SubmittedAt); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (r *archiveRepo) ListByHost(ctx context.Context, hostID string, limit int) ([]model.ArchivedSession, error) {
	if limit <= 0 {
		limit = 50
	}
	sessions := []model.ArchivedSession{}
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, code, deck_id, host_id, participant_count, card_count, created_at, started_at, completed_at
		FROM live_sessions
		WHERE host_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`, hostID, limit)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *archiveRepo) FindByHost(ctx context.Context, sessionID, hostID string) (*model.ArchivedSession, error) {
	var sess model.ArchivedSession
	err := r.db.GetContext(ctx, &sess, `
		SELECT id, code, deck_id, host_id, participant_count, card_count, created_at, started_at, completed_at
		FROM live_sessions
		WHERE id = $1 AND host_id = $2
	`, sessionID, hostID)
	return HandleNotFound(&sess, err)
}

func (r *archiveRepo) ListParticipants(ctx context.Context, sessionID string) ([]model.ArchivedParticipant, error) {
	participants := []model.ArchivedParticipant{}
	err := r.db.SelectContext(ctx, &participants, `
		SELECT id, session_id, nickname, score, correct, incorrect, joined_at
		FROM live_participants
		WHERE session_id = $1
		ORDER BY score DESC, joined_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	return participants, nil
}
