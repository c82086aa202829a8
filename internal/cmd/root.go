package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/valentimarco/ollamastream/internal/app"
	"github.com/valentimarco/ollamastream/internal/config"
	"github.com/valentimarco/ollamastream/internal/llm/common"
	"github.com/valentimarco/ollamastream/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// current version (hardcoded for now, could be replaced with build flags)
const version = "0.1.0"

// rootCmdState holds the config manager and logger for the command
type rootCmdState struct {
	manager *config.Manager
	logger  *slog.Logger
}

// state is the global state instance for the root command
var state = &rootCmdState{}

var (
	cfgFile      string
	verbose      bool
	providerName string
	modelName    string
	generateMode bool
	imagePaths   []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "ollamastream [prompt]",
	Short:   "Stream completions from a self-hosted Ollama server",
	Version: version,
	Long: `ollamastream sends a generation request to a self-hosted Ollama server
and streams the response to stdout as it is produced.

The prompt is read from the command line arguments, from stdin when piped,
or from both (stdin first).`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readInput(os.Stdin, args)
		if err != nil {
			return err
		}
		if prompt == "" {
			return fmt.Errorf("no prompt provided; pass it as an argument or pipe it to stdin")
		}

		payload, err := buildPayload(prompt)
		if err != nil {
			return err
		}

		a := app.NewApp(state.manager.Config(), state.logger, verbose)
		return a.Run(cmd.Context(), providerName, payload, cmd.OutOrStdout())
	},
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command; called by main.main()
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ollamastream/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")

	rootCmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider to use (default from config)")
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "", "model name override")
	rootCmd.Flags().BoolVar(&generateMode, "generate", false, "use the prompt/images completion form instead of chat")
	rootCmd.Flags().StringArrayVar(&imagePaths, "image", nil, "image file to attach (implies --generate, repeatable)")
}

// initConfig loads the config file and wires flag overrides into it
func initConfig() {
	state.logger = logger.New(verbose)

	configPath := cfgFile
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		cobra.CheckErr(err)
	}

	state.manager = config.NewManager().WithLogger(state.logger)
	cobra.CheckErr(state.manager.Load(configPath))

	// the --model flag wins over file and environment values
	if modelName != "" {
		state.manager.Viper().Set("providers.ollama.model", modelName)
		state.manager.Config().Providers.Ollama.Model = modelName
	}

	rootCmd.Flags().Visit(func(f *pflag.Flag) {
		state.logger.Debug("flag override", "flag", f.Name, "value", f.Value.String())
	})
}

// buildPayload constructs the chat or prompt/images payload from the flags
func buildPayload(prompt string) (common.Payload, error) {
	if !generateMode && len(imagePaths) == 0 {
		return common.Payload{
			Messages: []common.Message{{Role: "user", Content: prompt}},
		}, nil
	}

	images := make([]string, 0, len(imagePaths))
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return common.Payload{}, fmt.Errorf("failed to read image %q: %w", path, err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
	}

	return common.Payload{Prompt: prompt, Images: images}, nil
}

// readInput consolidates text from stdin (when piped) and CLI arguments
func readInput(stdin *os.File, cliArgs []string) (string, error) {
	var parts []string

	if stdin != nil {
		stat, err := stdin.Stat()
		if err != nil {
			return "", fmt.Errorf("failed to stat stdin: %w", err)
		}

		// only consume stdin when it is a pipe, not an interactive terminal
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			content, err := io.ReadAll(stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read from stdin: %w", err)
			}
			if trimmed := strings.TrimRight(string(content), "\r\n\t "); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
	}

	if len(cliArgs) > 0 {
		if arg := strings.TrimSpace(strings.Join(cliArgs, " ")); arg != "" {
			parts = append(parts, arg)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}
