package extract

import (
	"time"

	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/guard"
	"github.com/pagemill/formbridge/bridge/stores"
	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// WizardExtractor reads the wizard store into wizard snapshots.
type WizardExtractor struct {
	wizard stores.WizardReader
	log    *zap.SugaredLogger
}

// NewWizard creates a wizard-side extractor.
func NewWizard(wizard stores.WizardReader, log *zap.SugaredLogger) *WizardExtractor {
	return &WizardExtractor{wizard: wizard, log: log.Named("extract.wizard")}
}

// Extract reads the wizard store. The second return is false only when the
// store is unreachable; missing fields degrade to zero values.
func (e *WizardExtractor) Extract() (*types.WizardSnapshot, bool) {
	raw, err := e.wizard.ReadWizardState()
	if err != nil || raw == nil {
		e.log.Warnw("wizard store read failed",
			logger.FieldError, err,
		)
		return nil, false
	}

	step, _ := guard.Int(raw, stores.KeyCurrentStep)
	progress, _ := guard.Bool(raw, stores.KeyProgressVisible)
	preview, _ := guard.Bool(raw, stores.KeyPreviewOpen)

	formValues, ok := guard.Map(raw, stores.KeyFormValues)
	if !ok {
		formValues = map[string]any{}
	}
	// Store-level content and completion mirror into the form values when
	// the form itself lacks them, so the reverse transformer sees one map.
	if _, present := formValues[types.FormKeyContent]; !present {
		if content, ok := guard.String(raw, stores.KeyContent); ok {
			formValues[types.FormKeyContent] = content
		}
	}
	if _, present := formValues[types.FormKeyCompleted]; !present {
		if completed, ok := guard.Bool(raw, stores.KeyIsCompleted); ok {
			formValues[types.FormKeyCompleted] = completed
		}
	}

	return &types.WizardSnapshot{
		CurrentStep:       step,
		FormValues:        formValues,
		ProgressVisible:   progress,
		PreviewOpen:       preview,
		SnapshotTimestamp: time.Now(),
	}, true
}
