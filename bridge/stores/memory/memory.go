// Package memory provides in-memory reference implementations of the store
// collaborator interfaces. They back the CLI's fixture mode and the test
// suites; production embedders supply their own adapters.
package memory

import (
	"context"
	"sync"

	"github.com/pagemill/formbridge/bridge/stores"
)

// DocumentStore is a mutex-guarded in-memory document store.
type DocumentStore struct {
	mu        sync.RWMutex
	state     map[string]any
	available bool
}

// NewDocumentStore returns a store seeded with the given raw state. A nil
// state is valid and reads as an empty document.
func NewDocumentStore(state map[string]any) *DocumentStore {
	if state == nil {
		state = map[string]any{}
	}
	return &DocumentStore{state: state, available: true}
}

// ReadDocumentState implements stores.DocumentReader.
func (s *DocumentStore) ReadDocumentState() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.available {
		return nil, stores.ErrStoreUnavailable
	}
	return cloneState(s.state), nil
}

// SetState replaces the store's raw state.
func (s *DocumentStore) SetState(state map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
}

// SetAvailable toggles reachability, for exercising extraction failure paths.
func (s *DocumentStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

// UIStore is a mutex-guarded in-memory editor UI store.
type UIStore struct {
	mu        sync.RWMutex
	state     map[string]any
	available bool
}

// NewUIStore returns a UI store seeded with the given cursor state.
func NewUIStore(state map[string]any) *UIStore {
	if state == nil {
		state = map[string]any{}
	}
	return &UIStore{state: state, available: true}
}

// ReadUIState implements stores.UIReader.
func (s *UIStore) ReadUIState() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.available {
		return nil, stores.ErrStoreUnavailable
	}
	return cloneState(s.state), nil
}

// SetAvailable toggles reachability.
func (s *UIStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

// Capabilities selects which setter interfaces a WizardStore exposes.
// Zero value means read-only.
type Capabilities struct {
	Content    bool
	Completion bool
	Field      bool
}

// AllCapabilities enables every setter.
func AllCapabilities() Capabilities {
	return Capabilities{Content: true, Completion: true, Field: true}
}

// WizardStore is a mutex-guarded in-memory wizard store. It always
// implements stores.WizardReader; the setter interfaces are exposed through
// Writer, which narrows to the configured capability set.
type WizardStore struct {
	mu         sync.RWMutex
	step       int
	content    string
	completed  bool
	formValues map[string]any
	caps       Capabilities
}

// NewWizardStore returns a wizard store with the given setter capabilities.
func NewWizardStore(caps Capabilities) *WizardStore {
	return &WizardStore{formValues: map[string]any{}, caps: caps}
}

// ReadWizardState implements stores.WizardReader.
func (s *WizardStore) ReadWizardState() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fv := cloneState(s.formValues)
	return map[string]any{
		stores.KeyCurrentStep: s.step,
		stores.KeyContent:     s.content,
		stores.KeyIsCompleted: s.completed,
		stores.KeyFormValues:  fv,
	}, nil
}

// Writers returns the setter bundle matching the store's configured
// capabilities. Disabled capabilities are nil in the returned bundle.
func (s *WizardStore) Writers() stores.Writers {
	var w stores.Writers
	if s.caps.Content {
		w.Content = fullWriter{s}
	}
	if s.caps.Completion {
		w.Completion = fullWriter{s}
	}
	if s.caps.Field {
		w.Field = fullWriter{s}
	}
	return w
}

// fullWriter implements all three setter interfaces against the store.
type fullWriter struct{ s *WizardStore }

// SetContent implements stores.ContentSetter.
func (w fullWriter) SetContent(_ context.Context, content string) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	w.s.content = content
	return nil
}

// SetCompleted implements stores.CompletionSetter.
func (w fullWriter) SetCompleted(_ context.Context, completed bool) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	w.s.completed = completed
	return nil
}

// SetField implements stores.FieldSetter.
func (w fullWriter) SetField(_ context.Context, key string, value any) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	w.s.formValues[key] = value
	return nil
}

// SetStep sets the wizard's current step.
func (s *WizardStore) SetStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// SetFormValue seeds a form value directly, bypassing capabilities.
func (s *WizardStore) SetFormValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formValues[key] = value
}

func cloneState(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
