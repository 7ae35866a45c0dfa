package engineer

import "encoding/json"

// State represents where the voice loop is in its interaction cycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingCapture
	StateAwaitingTranscription
	StateAwaitingInference
	StateResponding
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCapture:
		return "awaiting_capture"
	case StateAwaitingTranscription:
		return "awaiting_transcription"
	case StateAwaitingInference:
		return "awaiting_inference"
	case StateResponding:
		return "responding"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "awaiting_capture":
		*s = StateAwaitingCapture
	case "awaiting_transcription":
		*s = StateAwaitingTranscription
	case "awaiting_inference":
		*s = StateAwaitingInference
	case "responding":
		*s = StateResponding
	default:
		*s = StateIdle
	}
	return nil
}
