package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

// WSTranscriber streams captures to a self-hosted transcription server over
// WebSocket. The server receives a JSON config frame, binary PCM frames, and
// an end marker, and replies with JSON result frames until a final one.
type WSTranscriber struct {
	endpoint string
	header   http.Header
	dialer   *websocket.Dialer
}

var _ Transcriber = (*WSTranscriber)(nil)

type wsASRConfig struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Bits       int    `json:"bits"`
	Channels   int    `json:"channels"`
}

type wsASRControl struct {
	Type string `json:"type"`
}

type wsASRResult struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
	Error string `json:"error,omitempty"`
}

// WSTranscriberOption is an option for configuring the WSTranscriber.
type WSTranscriberOption func(*WSTranscriber)

// WithWSHeader sets extra handshake headers, typically authorization.
func WithWSHeader(header http.Header) WSTranscriberOption {
	return func(t *WSTranscriber) {
		t.header = header
	}
}

// WithWSDialer overrides the websocket dialer.
func WithWSDialer(d *websocket.Dialer) WSTranscriberOption {
	return func(t *WSTranscriber) {
		t.dialer = d
	}
}

// NewWSTranscriber creates a WSTranscriber for the given ws:// or wss://
// endpoint.
func NewWSTranscriber(endpoint string, opts ...WSTranscriberOption) *WSTranscriber {
	t := &WSTranscriber{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe sends the capture over one WebSocket connection and collects
// the transcript.
func (t *WSTranscriber) Transcribe(ctx context.Context, _ string, audio []byte, format pcm.Format) (string, error) {
	conn, resp, err := t.dialer.DialContext(ctx, t.endpoint, t.header)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("speech: ws dial %s: %s: %w", t.endpoint, resp.Status, err)
		}
		return "", fmt.Errorf("speech: ws dial %s: %w", t.endpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	cfg := wsASRConfig{
		Format:     "pcm",
		SampleRate: format.SampleRate(),
		Bits:       format.Depth(),
		Channels:   format.Channels(),
	}
	if err := conn.WriteJSON(cfg); err != nil {
		return "", fmt.Errorf("speech: ws config: %w", err)
	}

	// 100ms per frame keeps the server-side decoder fed without large
	// frames tripping message size limits.
	chunk := format.BytesRate() / 10
	for off := 0; off < len(audio); off += chunk {
		end := min(off+chunk, len(audio))
		if err := conn.WriteMessage(websocket.BinaryMessage, audio[off:end]); err != nil {
			return "", fmt.Errorf("speech: ws audio frame: %w", err)
		}
	}
	if err := conn.WriteJSON(wsASRControl{Type: "end"}); err != nil {
		return "", fmt.Errorf("speech: ws end marker: %w", err)
	}

	var text strings.Builder
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return strings.TrimSpace(text.String()), nil
			}
			return "", fmt.Errorf("speech: ws read: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var result wsASRResult
		if err := json.Unmarshal(data, &result); err != nil {
			return "", fmt.Errorf("speech: ws result: %w", err)
		}
		if result.Error != "" {
			return "", fmt.Errorf("speech: ws server: %s", result.Error)
		}
		text.WriteString(result.Text)
		if result.Final {
			return strings.TrimSpace(text.String()), nil
		}
	}
}
