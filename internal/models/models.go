package models

import (
	"time"

	"github.com/lib/pq"
)

// Run is a finished marble run
type Run struct {
	ID                int64         `db:"id" json:"id"`
	SessionToken      string        `db:"session_token" json:"session_token"`
	Preset            string        `db:"preset" json:"preset"`
	Layout            string        `db:"layout" json:"layout"`
	Seed              int64         `db:"seed" json:"seed"`
	MarbleCount       int           `db:"marble_count" json:"marble_count"`
	WinnerMarbleID    string        `db:"winner_marble_id" json:"winner_marble_id"`
	WinnerBallID      string        `db:"winner_ball_id" json:"winner_ball_id"`
	WinnerName        string        `db:"winner_name" json:"winner_name"`
	WinnerSlot        int           `db:"winner_slot" json:"winner_slot"`
	WinnerLabel       string        `db:"winner_label" json:"winner_label"`
	WinnerT           float64       `db:"winner_t" json:"winner_t"`
	Slots             pq.Int64Array `db:"slots" json:"slots"`
	PropellerContacts int           `db:"propeller_contacts" json:"propeller_contacts"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}
