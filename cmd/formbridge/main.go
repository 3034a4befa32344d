package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagemill/formbridge/cmd/formbridge/commands"
	"github.com/pagemill/formbridge/logger"
)

var (
	verbosity  int
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "formbridge",
	Short: "formbridge - document/wizard transfer engine",
	Long: `formbridge translates a document-style editing model (containers holding
ordered paragraph blocks) into a wizard-style form model, and back.

Available commands:
  transfer - Run a document-to-wizard transfer against a fixture
  reverse  - Derive document content from a wizard fixture
  inspect  - Extract and validate a document fixture without transferring
  config   - Show or initialize the formbridge configuration

Examples:
  formbridge transfer -f snapshot.yaml    # Run one transfer
  formbridge inspect -f snapshot.yaml     # Validation report only
  formbridge config show                  # Show effective configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json-logs", false,
		"Emit logs as JSON lines")

	rootCmd.AddCommand(commands.NewTransferCmd())
	rootCmd.AddCommand(commands.NewReverseCmd())
	rootCmd.AddCommand(commands.NewInspectCmd())
	rootCmd.AddCommand(commands.NewConfigCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
