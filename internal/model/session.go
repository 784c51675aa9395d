package model

import "time"

// Session is one live multiplayer quiz instance tied to a deck snapshot.
// All mutation happens through the store's per-session atomic Mutate; once the
// phase reaches completed the record is read-only.
type Session struct {
	ID              string                  `json:"id"`
	Code            string                  `json:"code"`
	DeckID          string                  `json:"deckId"`
	HostID          string                  `json:"hostId"`
	MaxParticipants int                     `json:"maxParticipants"`
	Phase           Phase                   `json:"phase"`
	Cards           []Card                  `json:"cards"`
	Participants    map[string]*Participant `json:"participants"`
	CreatedAt       time.Time               `json:"createdAt"`
	StartedAt       *time.Time              `json:"startedAt,omitempty"`
	CompletedAt     *time.Time              `json:"completedAt,omitempty"`
	LastActivityAt  time.Time               `json:"lastActivityAt"`
}

// CardByID looks a card up in the snapshot.
func (s *Session) CardByID(cardID string) (Card, bool) {
	for _, c := range s.Cards {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// ParticipantByNickname matches case-insensitively on the trimmed nickname.
func (s *Session) ParticipantByNickname(normalized string) *Participant {
	for _, p := range s.Participants {
		if p.NormalizedNickname() == normalized {
			return p
		}
	}
	return nil
}
