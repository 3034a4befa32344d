package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pagemill/formbridge/bridge/extract"
	"github.com/pagemill/formbridge/bridge/transform"
	"github.com/pagemill/formbridge/bridge/validate"
	"github.com/pagemill/formbridge/errors"
	"github.com/pagemill/formbridge/logger"
)

// NewInspectCmd extracts and validates a fixture without transferring.
func NewInspectCmd() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Extract and validate a document fixture without transferring",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			doc, ui, _ := buildStores(f)

			snapshot, ok := extract.New(doc, ui, logger.Logger).Extract()
			if !ok {
				return errors.New("document store unreachable")
			}

			result := validate.New(logger.Logger).Validate(snapshot)

			pterm.DefaultHeader.Println("Snapshot inspection")
			pterm.DefaultTable.WithData(pterm.TableData{
				{"Containers", pterm.Sprintf("%d", result.Metrics.ContainerCount)},
				{"Paragraphs", pterm.Sprintf("%d", result.Metrics.ParagraphCount)},
				{"Orphaned paragraphs", pterm.Sprintf("%d", result.Metrics.OrphanedParagraphs)},
				{"Empty containers", pterm.Sprintf("%d", result.Metrics.EmptyContainers)},
				{"Duplicate ids", pterm.Sprintf("%d", result.Metrics.DuplicateContainerIDs+result.Metrics.DuplicateParagraphIDs)},
				{"Quality score", pterm.Sprintf("%d", transform.QualityScore(snapshot))},
				{"Valid for transfer", pterm.Sprintf("%t", result.IsValidForTransfer)},
			}).Render()

			for _, e := range result.Errors {
				pterm.Error.Println(e)
			}
			for _, w := range result.Warnings {
				pterm.Warning.Println(w)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "Fixture file (required)")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
