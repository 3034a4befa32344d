package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pagemill/formbridge/bridge/engine"
	"github.com/pagemill/formbridge/errors"
	"github.com/pagemill/formbridge/logger"
)

// NewReverseCmd derives document-side content from a wizard fixture.
func NewReverseCmd() *cobra.Command {
	var fixturePath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Derive document content from a wizard fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			doc, ui, wizard := buildStores(f)
			eng, err := engine.New(cfg, engine.Dependencies{
				DocumentStore: doc,
				UIStore:       ui,
				WizardStore:   wizard,
				Logger:        logger.Logger,
			})
			if err != nil {
				return err
			}
			defer eng.Close()

			result := eng.ReverseTransform(context.Background())

			pterm.Println()
			if result.Success {
				pterm.Success.Println("Reverse transformation complete")
			} else {
				pterm.Error.Println("Reverse transformation failed")
			}
			pterm.DefaultTable.WithData(pterm.TableData{
				{"Strategy", string(result.Strategy)},
				{"Quality score", pterm.Sprintf("%d", result.Quality.Score)},
				{"Word count", pterm.Sprintf("%d", result.Quality.WordCount)},
				{"Integrity validated", pterm.Sprintf("%t", result.DataIntegrityValidation)},
			}).Render()

			for _, warning := range result.Metadata.Warnings {
				pterm.Warning.Println(warning)
			}
			if result.Success {
				pterm.Println()
				pterm.DefaultBox.WithTitle("Document content").Println(result.Content)
				return nil
			}
			return errors.Newf("reverse transformation failed: %v", result.Errors)
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "Fixture file (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: standard search path)")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
