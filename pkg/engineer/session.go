package engineer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks one voice session from activation to a terminal
// outcome.
type SessionStatus int

const (
	SessionRecording SessionStatus = iota
	SessionTranscribing
	SessionDispatched
	SessionCompleted
	SessionFailed
	SessionCancelled
)

// String returns the string representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case SessionRecording:
		return "recording"
	case SessionTranscribing:
		return "transcribing"
	case SessionDispatched:
		return "dispatched"
	case SessionCompleted:
		return "completed"
	case SessionFailed:
		return "failed"
	case SessionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s SessionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Terminal reports whether the status is a final one.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionFailed, SessionCancelled:
		return true
	default:
		return false
	}
}

// VoiceSession is one push-to-talk interaction.
type VoiceSession struct {
	ID        string        `json:"id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time,omitzero"`
	Query     string        `json:"query,omitempty"`
	Status    SessionStatus `json:"status"`
}

func newVoiceSession(start time.Time) *VoiceSession {
	return &VoiceSession{
		ID:        uuid.NewString(),
		StartTime: start,
		Status:    SessionRecording,
	}
}
