package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/spf13/cobra"

	"github.com/apexlabs/apexengineer/pkg/audio/portaudio"
	"github.com/apexlabs/apexengineer/pkg/briefing"
	"github.com/apexlabs/apexengineer/pkg/capture"
	"github.com/apexlabs/apexengineer/pkg/cli"
	"github.com/apexlabs/apexengineer/pkg/engineer"
	"github.com/apexlabs/apexengineer/pkg/infer"
	"github.com/apexlabs/apexengineer/pkg/ptt"
	"github.com/apexlabs/apexengineer/pkg/speech"
	"github.com/apexlabs/apexengineer/pkg/telemetry"
)

var (
	// Command-line overrides
	flagFeedAddr string
	flagMock     bool
	flagNoTTS    bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the voice race-engineer loop",
	Long: `Run the push-to-talk voice loop.

The engineer samples the telemetry feed in the background. Press Enter to
open the radio, ask your question, and press Enter again to send it. The
response is printed as a transcript line and, when TTS is enabled, spoken
on the default output device.

Without a running game feed the engineer falls back to synthetic telemetry
so the loop stays usable for development.`,
	RunE: runEngineer,
}

func init() {
	runCmd.Flags().StringVar(&flagFeedAddr, "feed", "", "telemetry feed UDP address (overrides settings)")
	runCmd.Flags().BoolVar(&flagMock, "mock", false, "use synthetic telemetry, skip the UDP feed")
	runCmd.Flags().BoolVar(&flagNoTTS, "no-tts", false, "disable spoken responses")
}

func runEngineer(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	settings, err := LoadSettings(settingsFile)
	if err != nil {
		return err
	}

	// The inference backend is the only hard startup requirement.
	cliCtx, err := getContext()
	if err != nil {
		return err
	}
	backend, err := newBackend(cmd.Context(), cliCtx, settings)
	if err != nil {
		return err
	}
	dispatcher := infer.NewDispatcher(backend,
		infer.WithTimeout(settings.Inference.Timeout.Duration()))

	console := cli.NewConsole(os.Stdout, cli.DefaultTheme)

	// Telemetry side.
	if flagFeedAddr != "" {
		settings.Telemetry.Addr = flagFeedAddr
	}
	var reader telemetry.Reader
	if flagMock || settings.Telemetry.Mock {
		reader = telemetry.NewMockReader(uint64(time.Now().UnixNano()))
		console.Notice("telemetry: synthetic data (mock mode)")
	} else {
		feed, err := telemetry.ListenFeed(settings.Telemetry.Addr)
		if err != nil {
			slog.Warn("telemetry: feed unavailable", "addr", settings.Telemetry.Addr, "err", err)
			console.Notice(fmt.Sprintf("no telemetry feed on %s, using synthetic data", settings.Telemetry.Addr))
			reader = telemetry.NewMockReader(uint64(time.Now().UnixNano()))
		} else {
			defer feed.Close()
			reader = feed
			console.Notice(fmt.Sprintf("telemetry feed on %s", settings.Telemetry.Addr))
		}
	}
	history := telemetry.NewHistory(settings.Telemetry.History)
	builder := briefing.NewBuilder()
	sampler := telemetry.NewSampler(reader, history,
		telemetry.WithInterval(settings.Telemetry.Interval.Duration()),
		telemetry.WithObserver(builder.Observe))

	// Voice side.
	detector := ptt.NewDetector(&stdinSource{r: cmd.InOrStdin()},
		ptt.WithDebounce(settings.PTT.Debounce.Duration()))
	recorder := capture.NewRecorder(&portaudio.Mic{Format: capture.TargetFormat},
		capture.WithMinDuration(settings.Capture.MinDuration.Duration()),
		capture.WithMaxDuration(settings.Capture.MaxDuration.Duration()))

	asrRoute, err := registerTranscriber(cliCtx, settings)
	if err != nil {
		return err
	}

	emitterOpts := []engineer.EmitterOption{}
	if settings.TTS.Enabled && !flagNoTTS {
		client, err := openAIClientFor(cliCtx)
		if err != nil {
			slog.Warn("tts: disabled, no openai credentials", "err", err)
			console.Notice("tts disabled, text-only responses")
		} else {
			opts := []speech.OpenAISynthesizerOption{}
			if settings.TTS.Model != "" {
				opts = append(opts, speech.WithOpenAISynthesizerModel(settings.TTS.Model))
			}
			if settings.TTS.Voice != "" {
				opts = append(opts, speech.WithOpenAISynthesizerVoice(settings.TTS.Voice))
			}
			speech.HandleTTS("openai", speech.NewOpenAISynthesizer(client, opts...))
			emitterOpts = append(emitterOpts,
				engineer.WithSpeech(speech.TTSMux, "openai", &portaudio.Speaker{}))
		}
	}
	emitter := engineer.NewEmitter(console, emitterOpts...)

	eng, err := engineer.New(engineer.Config{
		Sampler:     sampler,
		Builder:     builder,
		Detector:    detector,
		Recorder:    recorder,
		Transcriber: speech.ASRMux,
		ASRRoute:    asrRoute,
		Dispatcher:  dispatcher,
		Emitter:     emitter,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		console.Notice("shutting down")
		cancel()
	}()

	console.Notice("press Enter to open the radio, Enter again to send. Ctrl+C exits.")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// registerTranscriber wires the configured ASR provider into the speech mux
// and returns the route to dispatch on.
func registerTranscriber(cliCtx *cli.Context, settings *Settings) (string, error) {
	switch settings.ASR.Provider {
	case "", "openai":
		client, err := openAIClientFor(cliCtx)
		if err != nil {
			return "", fmt.Errorf("asr: %w", err)
		}
		opts := []speech.OpenAITranscriberOption{}
		if settings.ASR.Model != "" {
			opts = append(opts, speech.WithOpenAITranscriberModel(settings.ASR.Model))
		}
		speech.HandleASR("openai", speech.NewOpenAITranscriber(client, opts...))
		return "openai", nil

	case "ws":
		if settings.ASR.Endpoint == "" {
			return "", fmt.Errorf("asr: ws provider needs an endpoint in %s", DefaultSettingsFile)
		}
		speech.HandleASR("ws", speech.NewWSTranscriber(settings.ASR.Endpoint))
		return "ws", nil

	default:
		return "", fmt.Errorf("asr: unknown provider %q (want openai or ws)", settings.ASR.Provider)
	}
}

// openAIClientFor returns an OpenAI client for speech services. When the
// context's backend is gemini, credentials come from the openai_api_key
// extra instead.
func openAIClientFor(cliCtx *cli.Context) (*openai.Client, error) {
	switch cliCtx.Backend {
	case "", "openai":
		return newOpenAIClient(cliCtx), nil
	default:
		if key := cliCtx.GetExtra("openai_api_key"); key != "" {
			alt := *cliCtx
			alt.APIKey = key
			alt.BaseURL = cliCtx.GetExtra("openai_base_url")
			return newOpenAIClient(&alt), nil
		}
		return nil, fmt.Errorf("backend %q has no openai_api_key extra for speech services", cliCtx.Backend)
	}
}
