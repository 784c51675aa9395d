package model

import "time"

// ArchivedSession is the summary row kept in Postgres once a session
// completes. The live store drops completed sessions eventually; the archive
// is the durable record a host can list later.
type ArchivedSession struct {
	ID               string     `db:"id" json:"id"`
	Code             string     `db:"code" json:"code"`
	DeckID           string     `db:"deck_id" json:"deckId"`
	HostID           string     `db:"host_id" json:"hostId"`
	ParticipantCount int        `db:"participant_count" json:"participantCount"`
	CardCount        int        `db:"card_count" json:"cardCount"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	StartedAt        *time.Time `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt      *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// ArchivedParticipant is one leaderboard row of an archived session.
type ArchivedParticipant struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	Nickname  string    `db:"nickname" json:"nickname"`
	Score     int       `db:"score" json:"score"`
	Correct   int       `db:"correct" json:"correct"`
	Incorrect int       `db:"incorrect" json:"incorrect"`
	JoinedAt  time.Time `db:"joined_at" json:"joinedAt"`
}
