// Package engine orchestrates transfer operations between the document and
// wizard stores.
//
// The engine owns its state and metrics, checks preconditions, sequences
// extract, transform, and update, and classifies every failure before
// returning it. One operation may be current at a time; a second call while
// one is in flight is rejected outright rather than queued.
package engine

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pagemill/formbridge/bridge/cache"
	"github.com/pagemill/formbridge/bridge/classify"
	"github.com/pagemill/formbridge/bridge/extract"
	"github.com/pagemill/formbridge/bridge/reverse"
	"github.com/pagemill/formbridge/bridge/stores"
	"github.com/pagemill/formbridge/bridge/transform"
	"github.com/pagemill/formbridge/bridge/types"
	"github.com/pagemill/formbridge/bridge/update"
	"github.com/pagemill/formbridge/bridge/validate"
	"github.com/pagemill/formbridge/config"
	"github.com/pagemill/formbridge/errors"
	"github.com/pagemill/formbridge/logger"
)

// externalQualityThreshold is the lenient quality gate for externally
// supplied data: quality >= 60, or any valid entity present.
const externalQualityThreshold = 60

// ValidationRule is a caller-supplied named predicate over a snapshot.
// Rules run during precondition checks; a failing rule blocks the transfer
// with a reason naming the rule.
type ValidationRule func(*types.DocumentSnapshot) bool

// ExternalData is an externally supplied snapshot that can satisfy
// preconditions without touching the document store.
type ExternalData struct {
	Snapshot   *types.DocumentSnapshot
	SuppliedAt time.Time
}

// Dependencies are the collaborators the engine wires together. The
// document store is required; everything else is optional.
type Dependencies struct {
	DocumentStore stores.DocumentReader
	UIStore       stores.UIReader
	WizardStore   stores.WizardReader
	WizardWriters stores.Writers

	// CacheDB enables the persistent cache spillover when non-nil.
	CacheDB *sql.DB

	ExternalData          *ExternalData
	CustomValidationRules map[string]ValidationRule
	Logger                *zap.SugaredLogger
}

// Engine sequences transfer operations. Construct with New; callers hold
// the instance and pass it explicitly.
type Engine struct {
	cfg *config.Config
	log *zap.SugaredLogger

	extractor   *extract.Extractor
	wizExtract  *extract.WizardExtractor
	validator   *validate.Validator
	transformer *transform.Transformer
	reverser    *reverse.Transformer
	updater     *update.Updater
	cacheMgr    *cache.Manager

	rules    map[string]ValidationRule
	external *ExternalData

	mu      sync.Mutex
	state   State
	metrics Metrics
}

// New creates an engine from config and dependencies. A nil config gets
// defaults. A missing document store is the one truly unrecoverable
// condition and fails construction.
func New(cfg *config.Config, deps Dependencies) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid engine config")
	}
	if deps.DocumentStore == nil {
		return nil, errors.New("document store collaborator is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("engine")

	var persistent *cache.Persistent
	if deps.CacheDB != nil {
		var err error
		persistent, err = cache.NewPersistent(deps.CacheDB, log)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize persistent cache")
		}
	}

	cacheMgr := cache.NewManager(cache.Config{
		Expiry:        time.Duration(cfg.Cache.ExpiryMS) * time.Millisecond,
		MaxSize:       cfg.Cache.MaxSize,
		SweepInterval: time.Duration(cfg.Cache.SweepIntervalMS) * time.Millisecond,
	}, persistent, log)

	updater := update.New(deps.WizardStore, deps.WizardWriters, log).
		WithSettleDelay(time.Duration(cfg.Update.SettleDelayMS) * time.Millisecond)

	e := &Engine{
		cfg:         cfg,
		log:         log,
		extractor:   extract.New(deps.DocumentStore, deps.UIStore, log),
		validator:   validate.New(log),
		transformer: transform.New(cacheMgr, log),
		reverser:    reverse.New(log),
		updater:     updater,
		cacheMgr:    cacheMgr,
		rules:       deps.CustomValidationRules,
		external:    deps.ExternalData,
	}
	if deps.WizardStore != nil {
		e.wizExtract = extract.NewWizard(deps.WizardStore, log)
	}

	e.state.IsInitialized = true
	if deps.ExternalData != nil {
		e.state.HasExternalData = true
		e.state.ExternalDataTimestamp = deps.ExternalData.SuppliedAt
	}
	return e, nil
}

// ExecuteTransfer runs one full document-to-wizard transfer: preconditions,
// extract, transform, update. Every failure is classified and attached to
// the result; ExecuteTransfer itself never returns an error.
func (e *Engine) ExecuteTransfer(ctx context.Context) *OperationResult {
	opID, admitted := e.beginOperation()
	result := &OperationResult{
		OperationID: opID,
		Phase:       PhaseCheckPreconditions,
		StartedAt:   time.Now(),
	}
	if !admitted {
		result.Phase = PhaseFailed
		result.OperationErrors = append(result.OperationErrors,
			classify.Classify("operation failed: another transfer is already in progress", "execute_transfer"))
		result.CompletedAt = time.Now()
		return result
	}
	defer e.endOperation(result)

	cfg := e.currentConfig()
	if cfg.Engine.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Engine.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	// CHECK_PRECONDITIONS
	e.debugPhase(cfg, opID, PhaseCheckPreconditions)
	pre := e.checkPreconditions()
	result.Preconditions = pre
	if !pre.Passed {
		return e.fail(result, PhaseCheckPreconditions,
			"validation failed: preconditions not met")
	}
	if err := ctx.Err(); err != nil {
		return e.fail(result, PhaseCheckPreconditions, err)
	}

	// EXTRACT: reuse the snapshot preconditions already produced.
	result.Phase = PhaseExtract
	e.debugPhase(cfg, opID, PhaseExtract)
	snapshot := pre.snapshot
	if snapshot == nil {
		var ok bool
		snapshot, ok = e.extractor.Extract()
		if !ok {
			return e.fail(result, PhaseExtract,
				"snapshot extraction failed: document store unreachable")
		}
	}
	if err := ctx.Err(); err != nil {
		return e.fail(result, PhaseExtract, err)
	}

	// TRANSFORM
	result.Phase = PhaseTransform
	e.debugPhase(cfg, opID, PhaseTransform)
	start := time.Now()
	tr := e.transformer.Transform(snapshot)
	result.TransformationResult = tr
	result.Strategy = tr.Strategy
	if cfg.Engine.PerformanceLogging {
		e.log.Infow("transform phase finished",
			logger.FieldOperationID, opID,
			logger.FieldStrategy, tr.Strategy,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	if !tr.Success {
		return e.fail(result, PhaseTransform,
			errors.Newf("transformation failed: %v", tr.Errors))
	}
	if err := ctx.Err(); err != nil {
		return e.fail(result, PhaseTransform, err)
	}

	// UPDATE
	result.Phase = PhaseUpdate
	e.debugPhase(cfg, opID, PhaseUpdate)
	if !e.updater.Apply(ctx, tr) {
		return e.fail(result, PhaseUpdate,
			"operation failed: wizard store update could not be verified")
	}

	// COMPLETE
	result.Phase = PhaseComplete
	e.debugPhase(cfg, opID, PhaseComplete)
	result.Success = true
	result.Updated = true
	return result
}

// ReverseTransform reads the wizard store and derives document-side
// content. It shares the engine's single-operation guard with
// ExecuteTransfer: a call while another operation is in flight is rejected,
// and a reverse in flight likewise blocks a transfer.
func (e *Engine) ReverseTransform(ctx context.Context) *types.ReverseTransformationResult {
	_, admitted := e.beginOperation()
	if !admitted {
		return reverseFailure("another operation is already in progress")
	}
	defer e.releaseOperation()

	if e.wizExtract == nil {
		return reverseFailure("no wizard store configured")
	}
	snapshot, ok := e.wizExtract.Extract()
	if !ok {
		return reverseFailure("wizard store unreachable")
	}
	return e.reverser.Transform(snapshot)
}

func reverseFailure(msg string) *types.ReverseTransformationResult {
	return &types.ReverseTransformationResult{
		Strategy:  types.StrategyParagraphFallback,
		Success:   false,
		Errors:    []string{msg},
		Timestamp: time.Now(),
	}
}

// CheckPreconditions reports whether a transfer could start right now.
func (e *Engine) CheckPreconditions(ctx context.Context) PreconditionResult {
	return *e.checkPreconditions()
}

// checkPreconditions passes when externally supplied data clears the
// lenient quality gate, or a fresh extraction passes the structural
// validator. Custom validation rules apply to whichever snapshot is used.
func (e *Engine) checkPreconditions() *PreconditionResult {
	if e.external != nil && e.external.Snapshot != nil {
		pre := e.checkExternalData(e.external.Snapshot)
		if pre.Passed {
			return pre
		}
		// External data failed its gate; fall through to extraction.
	}

	cfg := e.currentConfig()
	pre := &PreconditionResult{Source: "extracted_snapshot"}
	snapshot, ok := e.extractor.Extract()
	if !ok {
		pre.Reasons = append(pre.Reasons, "document store unreachable")
		return pre
	}
	pre.snapshot = snapshot

	if cfg.Engine.EnableValidation {
		vr := e.validator.Validate(snapshot)
		pre.Validation = vr
		if !vr.IsValidForTransfer {
			pre.Reasons = append(pre.Reasons, "snapshot has no transferable data")
			return pre
		}
	} else if snapshot.IsEmpty() {
		pre.Reasons = append(pre.Reasons, "snapshot is empty")
		return pre
	}

	if cfg.Engine.StrictTypeChecking && snapshot.Metadata.Metrics.DiscardedEntities > 0 {
		pre.Reasons = append(pre.Reasons, "strict type checking: snapshot had discarded entities")
		return pre
	}

	if !e.applyCustomRules(snapshot, pre) {
		return pre
	}

	pre.Passed = true
	return pre
}

// checkExternalData applies the lenient external-data gate: quality >= 60,
// or at least one valid container or paragraph present.
func (e *Engine) checkExternalData(snapshot *types.DocumentSnapshot) *PreconditionResult {
	pre := &PreconditionResult{Source: "external_data", snapshot: snapshot}

	score := transform.QualityScore(snapshot)
	pre.QualityScore = score

	if score < externalQualityThreshold && snapshot.IsEmpty() {
		pre.Reasons = append(pre.Reasons,
			"external data below quality threshold with no valid entities")
		return pre
	}
	if !e.applyCustomRules(snapshot, pre) {
		return pre
	}
	pre.Passed = true
	return pre
}

func (e *Engine) applyCustomRules(snapshot *types.DocumentSnapshot, pre *PreconditionResult) bool {
	for name, rule := range e.rules {
		if rule == nil {
			continue
		}
		if !rule(snapshot) {
			pre.Reasons = append(pre.Reasons, "custom validation rule failed: "+name)
			return false
		}
	}
	return true
}

// ApplyConfig swaps the engine configuration between operations. The new
// config is validated first, and the swap is refused while an operation is
// in flight so a running transfer never observes mixed settings. Cache
// sizing and sweep cadence stay as constructed; engine and update settings
// take effect on the next operation.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("cannot apply a nil config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid engine config")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentOperationID != "" {
		return errors.Newf("operation %s is in flight", e.state.CurrentOperationID)
	}
	e.cfg = cfg
	e.updater.WithSettleDelay(time.Duration(cfg.Update.SettleDelayMS) * time.Millisecond)
	e.log.Infow("engine config applied",
		"timeout_ms", cfg.Engine.TimeoutMS,
		"validation", cfg.Engine.EnableValidation,
		"debug_mode", cfg.Engine.DebugMode,
	)
	return nil
}

// currentConfig returns the active config pointer under the engine mutex so
// reads stay consistent with ApplyConfig swaps.
func (e *Engine) currentConfig() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// debugPhase emits a per-phase marker when debug mode is on.
func (e *Engine) debugPhase(cfg *config.Config, opID string, phase Phase) {
	if !cfg.Engine.DebugMode {
		return
	}
	e.log.Debugw("phase started",
		logger.FieldOperationID, opID,
		logger.FieldPhase, string(phase),
	)
}

// beginOperation admits at most one concurrent operation. The second
// return is false when another operation is already current.
func (e *Engine) beginOperation() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentOperationID != "" {
		return "", false
	}
	opID := uuid.NewString()
	e.state.CurrentOperationID = opID
	e.state.OperationCount++
	e.state.LastOperationTime = time.Now()
	return opID, true
}

// releaseOperation clears the single-operation guard for operations that do
// not produce an OperationResult and so skip endOperation.
func (e *Engine) releaseOperation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CurrentOperationID = ""
	e.state.LastOperationTime = time.Now()
}

// endOperation finalizes the result and updates metrics atomically with
// clearing the current-operation guard.
func (e *Engine) endOperation(result *OperationResult) {
	result.CompletedAt = time.Now()
	result.DurationMS = result.CompletedAt.Sub(result.StartedAt).Milliseconds()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CurrentOperationID = ""
	e.state.LastOperationTime = time.Now()
	e.metrics.TotalOperations++
	e.metrics.LastDurationMS = result.DurationMS
	if result.Success {
		e.metrics.SuccessfulOperations++
	} else {
		e.metrics.FailedOperations++
	}

	e.log.Infow("operation finished",
		logger.FieldOperationID, result.OperationID,
		logger.FieldPhase, string(result.Phase),
		logger.FieldStatus, result.Success,
		logger.FieldDurationMS, result.DurationMS,
	)
}

// fail classifies the error, stamps the result, and returns it.
func (e *Engine) fail(result *OperationResult, phase Phase, raw any) *OperationResult {
	details := classify.Classify(raw, string(phase))
	cfg := e.currentConfig()
	if !cfg.Engine.EnableErrorRecovery {
		details.RecoveryStrategies = nil
		details.MaxRecoveryAttempts = 0
	} else {
		details.MaxRecoveryAttempts = cfg.Engine.MaxRetryAttempts
	}
	result.OperationErrors = append(result.OperationErrors, details)
	result.Phase = PhaseFailed
	result.Success = false

	e.log.Warnw("operation phase failed",
		logger.FieldOperationID, result.OperationID,
		logger.FieldPhase, string(phase),
		logger.FieldErrorCode, details.Code,
		logger.FieldErrorCategory, string(details.Category()),
	)
	return result
}

// Status returns a copy of the engine state.
func (e *Engine) Status() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Metrics returns a copy of the operation metrics.
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}

// Configuration returns a copy of the engine's active config.
func (e *Engine) Configuration() config.Config {
	return *e.currentConfig()
}

// HasExternalData reports whether externally supplied data was configured.
func (e *Engine) HasExternalData() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.HasExternalData
}

// InvalidateCache bumps the cache's invalidation signal and clears it,
// including any persisted spillover entries.
func (e *Engine) InvalidateCache() {
	e.cacheMgr.InvalidateAll()
}

// Close stops the cache sweep. The engine must not be used after Close.
func (e *Engine) Close() {
	e.cacheMgr.Close()
}
