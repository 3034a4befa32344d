// Package commands implements the formbridge CLI subcommands.
package commands

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pagemill/formbridge/bridge/stores/memory"
	"github.com/pagemill/formbridge/errors"
)

// fixture is the YAML layout the CLI accepts: raw store states for the
// document, UI, and wizard collaborators.
type fixture struct {
	Document map[string]any `yaml:"document"`
	UI       map[string]any `yaml:"ui"`
	Wizard   fixtureWizard  `yaml:"wizard"`
}

type fixtureWizard struct {
	CurrentStep int            `yaml:"current_step"`
	FormValues  map[string]any `yaml:"form_values"`
}

// loadFixture reads and parses a fixture file.
func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixture %s", path)
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse fixture %s", path)
	}
	return &f, nil
}

// buildStores turns a fixture into in-memory store adapters.
func buildStores(f *fixture) (*memory.DocumentStore, *memory.UIStore, *memory.WizardStore) {
	doc := memory.NewDocumentStore(normalize(f.Document))
	ui := memory.NewUIStore(normalize(f.UI))

	wizard := memory.NewWizardStore(memory.AllCapabilities())
	wizard.SetStep(f.Wizard.CurrentStep)
	for k, v := range f.Wizard.FormValues {
		wizard.SetFormValue(k, normalizeValue(v))
	}
	return doc, ui, wizard
}

// normalize converts YAML's map[any]any trees into the map[string]any
// shape the guard package expects.
func normalize(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalize(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if ks, ok := k.(string); ok {
				out[ks] = normalizeValue(inner)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
