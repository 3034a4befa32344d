// Package update writes transformation results back into the wizard store
// and verifies that the write landed.
package update

import (
	"context"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/guard"
	"github.com/pagemill/formbridge/bridge/stores"
	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/logger"
)

// DefaultSettleDelay is how long the updater waits between writing and
// re-reading the store for verification.
const DefaultSettleDelay = 50 * time.Millisecond

// observed is one storage layer's view of the written values, for
// comparison against the intended result.
type observed struct {
	Content   string
	Completed bool
}

// Updater applies transformation results through whichever setters the
// wizard store exposes.
type Updater struct {
	reader      stores.WizardReader
	writers     stores.Writers
	settleDelay time.Duration
	log         *zap.SugaredLogger
}

// New creates an updater with the default settle delay.
func New(reader stores.WizardReader, writers stores.Writers, log *zap.SugaredLogger) *Updater {
	return &Updater{
		reader:      reader,
		writers:     writers,
		settleDelay: DefaultSettleDelay,
		log:         log.Named("update"),
	}
}

// WithSettleDelay overrides the verification settle delay. Zero disables
// the wait; tests use this.
func (u *Updater) WithSettleDelay(d time.Duration) *Updater {
	u.settleDelay = d
	return u
}

// Apply writes the result into the wizard store and verifies the write.
// It returns false when the result is unusable, no setter is available, a
// write errored, or verification found neither storage layer matching.
// It never returns an error and never panics.
func (u *Updater) Apply(ctx context.Context, result *types.TransformationResult) bool {
	if result == nil || !result.Success {
		u.log.Warnw("refusing to apply unusable result",
			logger.FieldStatus, result != nil && result.Success,
		)
		return false
	}
	if !u.writers.Any() {
		u.log.Warnw("no wizard store setter available")
		return false
	}

	applied := 0
	if u.writers.Content != nil {
		if err := u.writers.Content.SetContent(ctx, result.Content); err != nil {
			u.log.Warnw("content setter failed", logger.FieldError, err)
			return false
		}
		applied++
	}
	if u.writers.Completion != nil {
		if err := u.writers.Completion.SetCompleted(ctx, result.IsCompleted); err != nil {
			u.log.Warnw("completion setter failed", logger.FieldError, err)
			return false
		}
		applied++
	}
	if u.writers.Field != nil {
		if err := u.writers.Field.SetField(ctx, types.FormKeyContent, result.Content); err != nil {
			u.log.Warnw("field setter failed for content", logger.FieldError, err)
			return false
		}
		if err := u.writers.Field.SetField(ctx, types.FormKeyCompleted, result.IsCompleted); err != nil {
			u.log.Warnw("field setter failed for completion", logger.FieldError, err)
			return false
		}
		applied++
	}
	if applied == 0 {
		return false
	}

	if u.settleDelay > 0 {
		select {
		case <-ctx.Done():
			u.log.Warnw("context cancelled before verification")
			return false
		case <-time.After(u.settleDelay):
		}
	}

	return u.verify(result)
}

// verify re-reads the wizard store and compares observed values against the
// intended ones across both storage layers: store-level fields and the
// form-values map. Either layer matching counts as success. This tolerates
// stores that persist through only one of the two layers, at the known cost
// of masking a partial write to the other.
func (u *Updater) verify(result *types.TransformationResult) bool {
	if u.reader == nil {
		// Nothing to verify against; trust the writes.
		return true
	}
	state, err := u.reader.ReadWizardState()
	if err != nil || state == nil {
		u.log.Warnw("verification read failed", logger.FieldError, err)
		return false
	}

	intended := observed{Content: result.Content, Completed: result.IsCompleted}

	storeContent, _ := guard.String(state, stores.KeyContent)
	storeCompleted, _ := guard.Bool(state, stores.KeyIsCompleted)
	storeLayer := observed{Content: storeContent, Completed: storeCompleted}

	var formLayer observed
	if fv, ok := guard.Map(state, stores.KeyFormValues); ok {
		formLayer.Content, _ = guard.String(fv, types.FormKeyContent)
		formLayer.Completed, _ = guard.Bool(fv, types.FormKeyCompleted)
	}

	if cmp.Equal(intended, storeLayer) || cmp.Equal(intended, formLayer) {
		return true
	}

	u.log.Warnw("verification mismatch on both storage layers",
		"store_diff", cmp.Diff(intended, storeLayer),
		"form_diff", cmp.Diff(intended, formLayer),
	)
	return false
}
