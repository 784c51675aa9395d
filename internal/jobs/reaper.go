package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/repository"
	"github.com/makquiz/live-server-go/internal/store"
)

// Retention for completed sessions still held in memory. Once archived a
// completed session only needs to stick around long enough for late status
// polls from clients that missed the finish event.
const completedRetention = 1 * time.Hour

// ReaperJob force-completes sessions whose host walked away and evicts
// completed sessions once clients have had time to read the final state.
type ReaperJob struct {
	sessions store.Store
	archive  repository.ArchiveRepository
	idleTTL  time.Duration
	interval time.Duration
	done     chan struct{}
}

func NewReaperJob(sessions store.Store, archive repository.ArchiveRepository, idleTTL, interval time.Duration) *ReaperJob {
	return &ReaperJob{
		sessions: sessions,
		archive:  archive,
		idleTTL:  idleTTL,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ReaperJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Dur("idleTtl", j.idleTTL).Msg("reaper job started")
}

func (j *ReaperJob) Stop() {
	close(j.done)
	log.Info().Msg("reaper job stopped")
}

func (j *ReaperJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.reap()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.reap()
		}
	}
}

func (j *ReaperJob) reap() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, evicted := j.ReapOnce(ctx, time.Now())
	if expired > 0 || evicted > 0 {
		log.Info().
			Int("expired", expired).
			Int("evicted", evicted).
			Msg("reaped idle sessions")
	}
}

// ReapOnce performs a single sweep and reports how many sessions it
// force-completed and how many completed sessions it evicted.
func (j *ReaperJob) ReapOnce(ctx context.Context, now time.Time) (expired, evicted int) {
	for _, sess := range j.sessions.List() {
		switch {
		case sess.Phase == model.PhaseCompleted:
			if sess.CompletedAt != nil && now.Sub(*sess.CompletedAt) > completedRetention {
				j.sessions.Delete(sess.ID)
				evicted++
			}

		case now.Sub(sess.LastActivityAt) > j.idleTTL:
			if j.expire(ctx, sess.ID, now) {
				expired++
			}
		}
	}
	return expired, evicted
}

func (j *ReaperJob) expire(ctx context.Context, sessionID string, now time.Time) bool {
	snapshot, err := j.sessions.Mutate(sessionID, func(sess *model.Session) error {
		// The host may have finished the session between the List snapshot
		// and this sweep; leave its real completion time alone.
		if sess.Phase.Terminal() {
			return apperrors.SessionClosed()
		}
		sess.Phase = model.PhaseCompleted
		completedAt := now
		sess.CompletedAt = &completedAt
		return nil
	})
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrCodeSessionClosed {
			log.Warn().Err(err).Str("sessionId", sessionID).Msg("failed to expire idle session")
		}
		return false
	}

	if err := j.archive.SaveSession(ctx, snapshot); err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to archive expired session")
	}

	log.Info().Str("sessionId", sessionID).Str("code", snapshot.Code).Msg("session expired after inactivity")
	return true
}
