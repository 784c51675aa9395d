package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/makquiz/live-server-go/internal/model"
	"github.com/makquiz/live-server-go/internal/store"
)

type publishedEvent struct {
	kind      string
	sessionID string
	payload   string
}

type recordingNotifier struct {
	events []publishedEvent
}

func (n *recordingNotifier) PublishPhase(ctx context.Context, sessionID, phase string) error {
	n.events = append(n.events, publishedEvent{kind: "phase", sessionID: sessionID, payload: phase})
	return nil
}

func (n *recordingNotifier) PublishJoin(ctx context.Context, sessionID, nickname string) error {
	n.events = append(n.events, publishedEvent{kind: "join", sessionID: sessionID, payload: nickname})
	return nil
}

type recordingArchive struct {
	saved []*model.Session
}

func (a *recordingArchive) SaveSession(ctx context.Context, sess *model.Session) error {
	a.saved = append(a.saved, sess)
	return nil
}

func (a *recordingArchive) ListByHost(ctx context.Context, hostID string, limit int) ([]model.ArchivedSession, error) {
	return nil, nil
}

func (a *recordingArchive) FindByHost(ctx context.Context, sessionID, hostID string) (*model.ArchivedSession, error) {
	return nil, nil
}

func (a *recordingArchive) ListParticipants(ctx context.Context, sessionID string) ([]model.ArchivedParticipant, error) {
	return nil, nil
}

func quizCard(id string, options int, correct ...int) model.Card {
	opts := make([]string, options)
	for i := range opts {
		opts[i] = "option"
	}
	return model.Card{
		ID:             id,
		Kind:           model.CardKindQuizQuestion,
		Question:       "question",
		Options:        opts,
		CorrectAnswers: correct,
	}
}

func flashcard(id string) model.Card {
	return model.Card{
		ID:    id,
		Kind:  model.CardKindFlashcard,
		Front: "front",
		Back:  "back",
	}
}

type fixture struct {
	store    *store.MemoryStore
	notifier *recordingNotifier
	archive  *recordingArchive
	sessions *SessionService
	registry *RegistryService
	scoring  *ScoringService
	query    *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	archive := &recordingArchive{}
	return &fixture{
		store:    s,
		notifier: notifier,
		archive:  archive,
		sessions: NewSessionService(s, NewCodeGenerator(s), archive, notifier, 50),
		registry: NewRegistryService(s, notifier),
		scoring:  NewScoringService(s),
		query:    NewQueryService(s),
	}
}

func (f *fixture) createSession(t *testing.T, hostID string, cards ...model.Card) *CreateSessionResult {
	t.Helper()
	result, err := f.sessions.CreateSession(context.Background(), hostID, CreateSessionInput{
		DeckID: "deck-1",
		Cards:  cards,
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) join(t *testing.T, code, nickname string) *JoinResult {
	t.Helper()
	result, err := f.registry.Join(context.Background(), JoinInput{Code: code, Nickname: nickname})
	require.NoError(t, err)
	return result
}
