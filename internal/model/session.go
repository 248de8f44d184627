package model

import "time"

// SessionStatus represents watch session state.
type SessionStatus string

const (
	SessionStatusWaiting SessionStatus = "waiting"
	SessionStatusActive  SessionStatus = "active"
	SessionStatusEnded   SessionStatus = "ended"
)

// Session is the API view of a watch session (not GORM entity).
type Session struct {
	ID           string        `json:"id"`
	CreatorID    string        `json:"creator_id"`
	Status       SessionStatus `json:"status"`
	Participants []string      `json:"participants"`
	VideoURL     string        `json:"video_url,omitempty"`
	VideoState   *VideoState   `json:"video_state,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// HasParticipant reports whether id is already a member of the session.
func (s *Session) HasParticipant(id string) bool {
	for _, p := range s.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// VideoState is the shared playback state for a session's current video.
// LastUpdated is the logical timestamp (unix ms) of the writer that
// produced this state; last-writer-wins arbitration keys off it.
type VideoState struct {
	CurrentTime float64 `json:"current_time"`
	IsPlaying   bool    `json:"is_playing"`
	Duration    float64 `json:"duration"`
	URL         string  `json:"url"`
	LastUpdated int64   `json:"last_updated"`
}

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

// CreateSessionResponse is the response for POST /sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	WSURL     string `json:"ws_url"`
	Status    string `json:"status"`
}

// ParticipantRequest carries the participant id for join/leave endpoints.
type ParticipantRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

// SetVideoURLRequest is the request body for PUT /sessions/:id/video.
type SetVideoURLRequest struct {
	URL string `json:"url" binding:"required"`
}
