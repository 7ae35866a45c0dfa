package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/apexlabs/apexengineer/pkg/briefing"
	"github.com/apexlabs/apexengineer/pkg/cli"
	"github.com/apexlabs/apexengineer/pkg/infer"
	"github.com/apexlabs/apexengineer/pkg/telemetry"
)

var (
	flagAskMock   bool
	flagAskWindow time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question with live race context",
	Long: `Ask the engineer a text question without the voice loop.

The command listens to the telemetry feed for a short window to build the
race briefing, then dispatches the question to the configured backend.
Useful without a microphone and for piping:

  apexengineer ask "how are my tires looking"
  apexengineer ask --json "fuel to the end?" | jq -r .response`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&flagAskMock, "mock", false, "use synthetic telemetry, skip the UDP feed")
	askCmd.Flags().DurationVar(&flagAskWindow, "window", time.Second, "how long to listen for telemetry")
}

// askResult is the machine-readable answer shape.
type askResult struct {
	Query     string `json:"query" yaml:"query"`
	Response  string `json:"response" yaml:"response"`
	Status    string `json:"status" yaml:"status"`
	LatencyMS int64  `json:"latency_ms" yaml:"latency_ms"`
	Synthetic bool   `json:"synthetic_telemetry,omitempty" yaml:"synthetic_telemetry,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	settings, err := LoadSettings(settingsFile)
	if err != nil {
		return err
	}
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

	query := strings.Join(args, " ")

	summary, synthetic := gatherSummary(cmd.Context(), settings)
	res := dispatcher.Dispatch(cmd.Context(), uuid.NewString(), query, summary)

	if outputJSON || outputFile != "" {
		out := askResult{
			Query:     query,
			Status:    res.Status.String(),
			LatencyMS: res.Latency.Milliseconds(),
			Synthetic: synthetic,
		}
		if res.Status == infer.StatusSuccess {
			out.Response = res.Text
		}
		return outputResult(out, outputFile, outputJSON)
	}

	switch res.Status {
	case infer.StatusSuccess:
		fmt.Println(res.Text)
		if verbose {
			cli.PrintSuccess("answered in %s", cli.FormatLatency(res.Latency))
		}
		return nil
	case infer.StatusTimeout:
		return fmt.Errorf("inference timed out after %s", cli.FormatLatency(res.Latency))
	default:
		return fmt.Errorf("inference failed: %w", res.Err)
	}
}

// gatherSummary builds the race briefing from a short listen on the feed.
// It reports whether the data was synthetic.
func gatherSummary(ctx context.Context, settings *Settings) (briefing.Summary, bool) {
	history := telemetry.NewHistory(settings.Telemetry.History)

	var reader telemetry.Reader
	synthetic := flagAskMock || settings.Telemetry.Mock
	if !synthetic {
		feed, err := telemetry.ListenFeed(settings.Telemetry.Addr)
		if err != nil {
			synthetic = true
		} else {
			defer feed.Close()
			reader = feed
		}
	}
	if synthetic {
		reader = telemetry.NewMockReader(uint64(time.Now().UnixNano()))
	}

	deadline := time.Now().Add(flagAskWindow)
	for history.Len() < history.Cap() && time.Now().Before(deadline) {
		rctx, cancel := context.WithDeadline(ctx, deadline)
		snap, err := reader.Read(rctx)
		cancel()
		if err != nil {
			break
		}
		history.Append(snap)
	}

	if history.Len() == 0 {
		return briefing.Summary{}, synthetic
	}
	return briefing.Derive(history.Snapshots(), time.Now()), synthetic
}
