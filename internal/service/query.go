package service

import (
	"sort"
	"time"

	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/store"
)

type StatusResult struct {
	Phase model.Phase `json:"phase"`
}

type ParticipantView struct {
	Nickname  string    `json:"nickname"`
	Score     int       `json:"score"`
	Correct   int       `json:"correct"`
	Incorrect int       `json:"incorrect"`
	Answered  int       `json:"answered"`
	JoinedAt  time.Time `json:"joinedAt"`
}

type StatsResult struct {
	Phase        model.Phase       `json:"phase"`
	Code         string            `json:"code"`
	Participants []ParticipantView `json:"participants"`
	Leaderboard  []ParticipantView `json:"leaderboard"`
}

// QueryService serves the polling projections. Every call reads a snapshot
// from the store and must stay cheap and side-effect-free; hosts and players
// poll these every second or two.
type QueryService struct {
	store store.Store
}

func NewQueryService(s store.Store) *QueryService {
	return &QueryService{store: s}
}

// GetStatus is the minimal poll target for players waiting on a phase change.
func (s *QueryService) GetStatus(sessionID string) (*StatusResult, error) {
	sess, ok := s.store.GetByID(sessionID)
	if !ok {
		return nil, apperrors.NotFound("Session")
	}
	return &StatusResult{Phase: sess.Phase}, nil
}

// GetStats is the host view: lobby roster in join order plus the leaderboard
// sorted by score descending, ties broken by earlier join time.
func (s *QueryService) GetStats(sessionID string) (*StatsResult, error) {
	sess, ok := s.store.GetByID(sessionID)
	if !ok {
		return nil, apperrors.NotFound("Session")
	}

	views := make([]ParticipantView, 0, len(sess.Participants))
	for _, p := range sess.Participants {
		correct, incorrect := p.Tally()
		views = append(views, ParticipantView{
			Nickname:  p.Nickname,
			Score:     p.Score,
			Correct:   correct,
			Incorrect: incorrect,
			Answered:  len(p.Answers),
			JoinedAt:  p.JoinedAt,
		})
	}

	participants := make([]ParticipantView, len(views))
	copy(participants, views)
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})

	leaderboard := make([]ParticipantView, len(views))
	copy(leaderboard, views)
	sort.Slice(leaderboard, func(i, j int) bool {
		if leaderboard[i].Score != leaderboard[j].Score {
			return leaderboard[i].Score > leaderboard[j].Score
		}
		return leaderboard[i].JoinedAt.Before(leaderboard[j].JoinedAt)
	})

	return &StatsResult{
		Phase:        sess.Phase,
		Code:         sess.Code,
		Participants: participants,
		Leaderboard:  leaderboard,
	}, nil
}

// GetCards returns the session's card snapshot. Before the review phase the
// correct-answer set is stripped for anyone who is not the host; during and
// after review everyone sees the full cards.
func (s *QueryService) GetCards(sessionID string, callerIsHost bool) ([]model.Card, error) {
	sess, ok := s.store.GetByID(sessionID)
	if !ok {
		return nil, apperrors.NotFound("Session")
	}

	revealAnswers := callerIsHost ||
		sess.Phase == model.PhaseReview || sess.Phase == model.PhaseCompleted

	cards := make([]model.Card, len(sess.Cards))
	for i, c := range sess.Cards {
		if revealAnswers {
			cards[i] = c
		} else {
			cards[i] = c.Redacted()
		}
	}
	return cards, nil
}

// HostID exposes the owning host for authorization checks in handlers.
func (s *QueryService) HostID(sessionID string) (string, error) {
	sess, ok := s.store.GetByID(sessionID)
	if !ok {
		return "", apperrors.NotFound("Session")
	}
	return sess.HostID, nil
}
