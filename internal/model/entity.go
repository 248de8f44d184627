package model

import (
	"time"

	"gorm.io/datatypes"
)

// WatchSession is the session row (GORM). Video state is a JSONB blob;
// ended sessions keep their row, status is the logical delete marker.
type WatchSession struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	CreatorID  string         `gorm:"size:128;not null;index"`
	Status     string         `gorm:"size:20;not null;default:waiting"` // waiting, active, ended
	VideoURL   *string        `gorm:"size:2048"`
	VideoState datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null"`

	Participants []SessionParticipant `gorm:"foreignKey:SessionID"`
}

func (WatchSession) TableName() string { return "watch_sessions" }

// SessionParticipant is one participant's membership row (GORM).
// (session_id, participant_id) is unique so joins are idempotent.
type SessionParticipant struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	SessionID     string    `gorm:"type:uuid;not null;index;uniqueIndex:uq_session_participant"`
	ParticipantID string    `gorm:"size:128;not null;uniqueIndex:uq_session_participant"`
	JoinedAt      time.Time `gorm:"column:joined_at;not null"`
}

func (SessionParticipant) TableName() string { return "session_participants" }
