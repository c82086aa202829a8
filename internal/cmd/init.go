package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the config through an interactive process",
	Long: `Initialize your ollamastream configuration:
• Point the client at your Ollama server
• Choose a default model
• Tune the default generation parameters

Your configuration will be saved to ~/.ollamastream/config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n\n", cyan("Welcome to ollamastream"))

		v := state.manager.Viper()

		var baseURL string
		baseURLPrompt := &survey.Input{
			Message: "Where is your Ollama server listening?",
			Default: v.GetString("providers.ollama.base_url"),
		}
		if err := survey.AskOne(baseURLPrompt, &baseURL); err != nil {
			return fmt.Errorf("survey error: %w", err)
		}
		v.Set("providers.ollama.base_url", baseURL)

		var model string
		modelPrompt := &survey.Input{
			Message: "Which model should be used by default?",
			Help:    "The model must be pulled on the server, e.g. `ollama pull llama2`",
			Default: v.GetString("providers.ollama.model"),
		}
		if err := survey.AskOne(modelPrompt, &model); err != nil {
			return fmt.Errorf("survey error: %w", err)
		}
		v.Set("providers.ollama.model", model)

		var tuneParams bool
		tunePrompt := &survey.Confirm{
			Message: "Tune default generation parameters?",
			Default: false,
		}
		if err := survey.AskOne(tunePrompt, &tuneParams); err != nil {
			return fmt.Errorf("survey error: %w", err)
		}

		if tuneParams {
			var temperature string
			tempPrompt := &survey.Input{
				Message: "Temperature (0.0-2.0):",
				Default: v.GetString("providers.ollama.temperature"),
			}
			if err := survey.AskOne(tempPrompt, &temperature); err != nil {
				return fmt.Errorf("survey error: %w", err)
			}
			v.Set("providers.ollama.temperature", temperature)

			var numCtx string
			ctxPrompt := &survey.Input{
				Message: "Context window size (num_ctx):",
				Default: v.GetString("providers.ollama.num_ctx"),
			}
			if err := survey.AskOne(ctxPrompt, &numCtx); err != nil {
				return fmt.Errorf("survey error: %w", err)
			}
			v.Set("providers.ollama.num_ctx", numCtx)
		}

		if err := state.manager.Save(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s Configuration saved\n", green("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
