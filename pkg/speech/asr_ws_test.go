package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

// wsTestServer answers the transcriber protocol: config frame, binary audio
// frames, end marker, then emits the scripted segments.
func wsTestServer(t *testing.T, segments []wsASRResult) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var cfg wsASRConfig
		if err := conn.ReadJSON(&cfg); err != nil {
			t.Errorf("read config: %v", err)
			return
		}
		if cfg.Format != "pcm" || cfg.SampleRate != 16000 {
			t.Errorf("config = %+v, want pcm 16000", cfg)
		}
		if cfg.Bits != 16 || cfg.Channels != 1 {
			t.Errorf("config advertises %d-bit %dch, want 16-bit 1ch", cfg.Bits, cfg.Channels)
		}

		var audioBytes int
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				t.Errorf("read frame: %v", err)
				return
			}
			if msgType == websocket.TextMessage {
				break // end marker
			}
			audioBytes += len(data)
		}
		if audioBytes == 0 {
			t.Error("no audio frames before end marker")
		}

		for _, seg := range segments {
			if err := conn.WriteJSON(seg); err != nil {
				t.Errorf("write result: %v", err)
				return
			}
		}
	}))
}

func TestWSTranscriber(t *testing.T) {
	srv := wsTestServer(t, []wsASRResult{
		{Text: "how are my "},
		{Text: "tires looking", Final: true},
	})
	defer srv.Close()

	tr := NewWSTranscriber("ws" + strings.TrimPrefix(srv.URL, "http"))
	audio := make([]byte, pcm.L16Mono16K.BytesInDuration(time.Second))

	got, err := tr.Transcribe(context.Background(), "ws", audio, pcm.L16Mono16K)
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if want := "how are my tires looking"; got != want {
		t.Errorf("Transcribe = %q, want %q", got, want)
	}
}

func TestWSTranscriber_ServerError(t *testing.T) {
	srv := wsTestServer(t, []wsASRResult{{Error: "decoder overloaded"}})
	defer srv.Close()

	tr := NewWSTranscriber("ws" + strings.TrimPrefix(srv.URL, "http"))
	audio := make([]byte, pcm.L16Mono16K.BytesInDuration(time.Second))

	_, err := tr.Transcribe(context.Background(), "ws", audio, pcm.L16Mono16K)
	if err == nil || !strings.Contains(err.Error(), "decoder overloaded") {
		t.Errorf("Transcribe error = %v, want server error", err)
	}
}

func TestWSTranscriber_DialFailure(t *testing.T) {
	tr := NewWSTranscriber("ws://127.0.0.1:1/asr")
	if _, err := tr.Transcribe(context.Background(), "ws", []byte{0, 0}, pcm.L16Mono16K); err == nil {
		t.Error("Transcribe against closed port returned nil error")
	}
}
