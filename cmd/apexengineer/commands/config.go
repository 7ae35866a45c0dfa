package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apexlabs/apexengineer/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple backend configurations,
similar to kubectl's context management.

Configuration is stored in ~/.apexengineer/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  apexengineer config add-context cloud --backend openai --api-key YOUR_API_KEY
  apexengineer config add-context gem --backend gemini --api-key KEY --openai-api-key SPEECH_KEY
  apexengineer config add-context local --backend openai --base-url http://localhost:11434/v1 --model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		backend, err := cmd.Flags().GetString("backend")
		if err != nil {
			return fmt.Errorf("failed to read 'backend' flag: %w", err)
		}
		apiKey, err := cmd.Flags().GetString("api-key")
		if err != nil {
			return fmt.Errorf("failed to read 'api-key' flag: %w", err)
		}
		baseURL, err := cmd.Flags().GetString("base-url")
		if err != nil {
			return fmt.Errorf("failed to read 'base-url' flag: %w", err)
		}
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}
		openaiKey, err := cmd.Flags().GetString("openai-api-key")
		if err != nil {
			return fmt.Errorf("failed to read 'openai-api-key' flag: %w", err)
		}

		if apiKey == "" && baseURL == "" {
			return fmt.Errorf("--api-key is required (or --base-url for a local server)")
		}

		ctx := &cli.Context{
			Backend: backend,
			Model:   model,
			APIKey:  apiKey,
			BaseURL: baseURL,
		}

		// Speech services always talk to OpenAI; a gemini context carries
		// separate credentials for them.
		if openaiKey != "" {
			ctx.SetExtra("openai_api_key", openaiKey)
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:   "list-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured.")
			fmt.Println("\nCreate one with:")
			fmt.Println("  apexengineer config add-context <name> --backend openai --api-key YOUR_API_KEY")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tBACKEND\tMODEL\tAPI_KEY")
		for _, name := range names {
			ctx, err := cfg.GetContext(name)
			if err != nil {
				continue
			}
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			backend := ctx.Backend
			if backend == "" {
				backend = "openai"
			}
			model := ctx.Model
			if model == "" {
				model = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, backend, model, cli.MaskAPIKey(ctx.APIKey))
		}
		return w.Flush()
	},
}

var configShowContextCmd = &cobra.Command{
	Use:   "show-context [name]",
	Short: "Show a context (current context if no name given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		cfg := getConfig()
		ctx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}

		// Never print the raw key.
		masked := *ctx
		masked.APIKey = cli.MaskAPIKey(ctx.APIKey)
		if masked.Extra != nil {
			extra := make(map[string]string, len(masked.Extra))
			for k, v := range masked.Extra {
				if k == "openai_api_key" {
					v = cli.MaskAPIKey(v)
				}
				extra[k] = v
			}
			masked.Extra = extra
		}
		return outputResult(&masked, outputFile, outputJSON)
	},
}

func init() {
	configAddContextCmd.Flags().String("backend", "openai", "inference backend (openai or gemini)")
	configAddContextCmd.Flags().String("api-key", "", "API key for the backend")
	configAddContextCmd.Flags().String("base-url", "", "override the provider endpoint (e.g. an Ollama server)")
	configAddContextCmd.Flags().String("model", "", "chat model to query")
	configAddContextCmd.Flags().String("openai-api-key", "", "separate OpenAI key for speech when the backend is gemini")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configShowContextCmd)
}
