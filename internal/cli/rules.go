package cli

import (
	"fmt"

	"github.com/commtrace/commtrace/internal/classify"
	"github.com/spf13/cobra"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect classification rules",
	Long: `Inspect the keyword tables used to classify timeline events.

The built-in tables can be exported, edited, and fed back with the
--rules flag of analyze and batch.`,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active classification rules as YAML",
	Long: `Print the classification rule tables as YAML. With --rules the file
is loaded and validated first, so this doubles as a lint for edited
rule sets.

Example:
  commtrace rules show
  commtrace rules show --rules my-rules.yaml > merged.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := classify.DefaultRules()
		if rulesPath != "" {
			var err error
			rules, err = classify.LoadRules(rulesPath)
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}
		}

		data, err := rules.Marshal()
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesShowCmd.Flags().StringVar(&rulesPath, "rules", "", "classification rules YAML path to load instead of the built-in tables")
}
