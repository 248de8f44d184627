package model

import "encoding/json"

// VideoEventType is the closed set of client playback events.
type VideoEventType string

const (
	VideoEventPlay  VideoEventType = "PLAY"
	VideoEventPause VideoEventType = "PAUSE"
	VideoEventSeek  VideoEventType = "SEEK"
	VideoEventLoad  VideoEventType = "LOAD"
	VideoEventEnded VideoEventType = "ENDED"
)

// VideoEvent is a client-originated playback event. Timestamp is the
// client's logical clock (unix ms) and becomes VideoState.LastUpdated.
type VideoEvent struct {
	Type        VideoEventType `json:"type"`
	CurrentTime float64        `json:"current_time"`
	URL         string         `json:"url,omitempty"`
	Timestamp   int64          `json:"timestamp"`
}

// Inbound WebSocket message types (client -> hub).
const (
	MsgJoinSession    = "join-session"
	MsgLeaveSession   = "leave-session"
	MsgVideoURLUpdate = "video-url-update"
	MsgVideoEvent     = "video-event"
	MsgRefreshSession = "refresh-session"
)

// Outbound WebSocket message types (hub -> client).
const (
	MsgSessionJoined    = "session-joined"
	MsgUserJoined       = "user-joined"
	MsgUserLeft         = "user-left"
	MsgVideoURLUpdated  = "video-url-updated"
	MsgVideoSync        = "video-sync"
	MsgSessionRefreshed = "session-refreshed"
	MsgSessionError     = "session-error"
)

// ClientMessage is the envelope for all inbound hub messages.
type ClientMessage struct {
	Type          string          `json:"type"`
	SessionID     string          `json:"session_id,omitempty"`
	ParticipantID string          `json:"participant_id,omitempty"`
	URL           string          `json:"url,omitempty"`
	Event         json.RawMessage `json:"event,omitempty"`
}

// ServerMessage is the envelope for all outbound hub messages.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// SessionPayload carries a full session snapshot plus the participant
// the notification is about (joiner for user-joined, leaver for user-left).
type SessionPayload struct {
	SessionID     string   `json:"session_id"`
	ParticipantID string   `json:"participant_id,omitempty"`
	Snapshot      *Session `json:"snapshot"`
}

// VideoURLPayload is the video-url-updated payload, echoed to all room
// members including the originator.
type VideoURLPayload struct {
	SessionID string   `json:"session_id"`
	URL       string   `json:"url"`
	UpdatedBy string   `json:"updated_by"`
	Snapshot  *Session `json:"snapshot"`
}

// VideoSyncPayload is the video-sync payload, sent to every room member
// except the originator.
type VideoSyncPayload struct {
	Type        VideoEventType `json:"type"`
	CurrentTime float64        `json:"current_time"`
	IsPlaying   bool           `json:"is_playing"`
	Timestamp   int64          `json:"timestamp"`
}

// ErrorPayload is the session-error payload, sent to the failing
// originator only.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
