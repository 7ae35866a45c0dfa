package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/apexlabs/apexengineer/pkg/cli"
	"github.com/apexlabs/apexengineer/pkg/infer"
)

var (
	// Global flags
	cfgFile      string
	settingsFile string
	contextName  string
	outputFile   string
	outputJSON   bool
	verbose      bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apexengineer",
	Short: "Push-to-talk AI race engineer",
	Long: `ApexEngineer - a push-to-talk AI race engineer.

It samples live sim-racing telemetry, listens for push-to-talk questions,
and answers over the radio like a pit-wall engineer: transcription, a
briefing of the current race state, and a short spoken reply.

Configuration is stored in ~/.apexengineer/ and supports multiple contexts,
similar to kubectl's context management. A context selects the inference
backend (openai or gemini) and its credentials.

Examples:
  # Set up a context
  apexengineer config add-context cloud --backend openai --api-key YOUR_API_KEY

  # Run the voice loop against the current context
  apexengineer run

  # Ask without a microphone
  apexengineer ask "how are my tires looking"
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.apexengineer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "engineer settings file (default is ~/.apexengineer/engineer.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			return nil, fmt.Errorf("no context specified. Use -c flag or set a default context with 'apexengineer config use-context'")
		}
		return nil, err
	}

	return ctx, nil
}

// newOpenAIClient builds an OpenAI client from a context. A BaseURL pointed
// at an Ollama server uses local models through the compatible API.
func newOpenAIClient(cliCtx *cli.Context) *openai.Client {
	opts := []option.RequestOption{}
	if cliCtx.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cliCtx.APIKey))
	}
	if cliCtx.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cliCtx.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &client
}

// newBackend builds the inference backend a context selects.
func newBackend(ctx context.Context, cliCtx *cli.Context, settings *Settings) (infer.Backend, error) {
	switch cliCtx.Backend {
	case "", "openai":
		opts := []infer.OpenAIBackendOption{}
		if cliCtx.Model != "" {
			opts = append(opts, infer.WithOpenAIModel(cliCtx.Model))
		}
		if settings.Inference.MaxTokens > 0 {
			opts = append(opts, infer.WithOpenAIMaxTokens(settings.Inference.MaxTokens))
		}
		return infer.NewOpenAIBackend(newOpenAIClient(cliCtx), opts...), nil

	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cliCtx.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		opts := []infer.GeminiBackendOption{}
		if cliCtx.Model != "" {
			opts = append(opts, infer.WithGeminiModel(cliCtx.Model))
		}
		if settings.Inference.MaxTokens > 0 {
			opts = append(opts, infer.WithGeminiMaxTokens(int32(settings.Inference.MaxTokens)))
		}
		return infer.NewGeminiBackend(client, opts...), nil

	default:
		return nil, fmt.Errorf("unknown backend %q (want openai or gemini)", cliCtx.Backend)
	}
}

// outputResult outputs the result using cli package
func outputResult(result any, outputPath string, asJSON bool) error {
	format := cli.FormatYAML
	if asJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputPath,
	})
}
