package registry

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed contract_types.yaml
var defaultCatalogue []byte

// Resolution is what callers need to accept a contract payload of a type.
type Resolution struct {
	ValidationSchema Schema
	RequiredFields   []string
	PresentationKey  string
	FeesRequired     bool
	Behavior         ContractTypeBehavior
}

// Registry maps contract type ids to their behavior. It is filled once at
// start and only read afterwards.
type Registry struct {
	mu        sync.RWMutex
	behaviors map[string]ContractTypeBehavior
}

func New() *Registry {
	return &Registry{behaviors: map[string]ContractTypeBehavior{}}
}

// Default returns a registry loaded from the embedded catalogue.
func Default() (*Registry, error) {
	r := New()
	if err := r.Load(defaultCatalogue); err != nil {
		return nil, err
	}
	return r, nil
}

// FromFile loads the catalogue at path, or the embedded one when path is empty.
func FromFile(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	r := New()
	if err := r.Load(data); err != nil {
		return nil, err
	}
	return r, nil
}

type catalogue struct {
	ContractTypes []Definition `yaml:"contract_types"`
}

func (r *Registry) Load(data []byte) error {
	var cat catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return fmt.Errorf("registry: decode catalogue: %w", err)
	}
	if len(cat.ContractTypes) == 0 {
		return fmt.Errorf("registry: catalogue has no contract types")
	}
	for _, def := range cat.ContractTypes {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Register installs one definition. Duplicate ids are rejected.
func (r *Registry) Register(def Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.behaviors[def.ID]; exists {
		return fmt.Errorf("registry: %s already registered", def.ID)
	}
	r.behaviors[def.ID] = newBehavior(def)
	return nil
}

func (r *Registry) Behavior(contractTypeID string) (ContractTypeBehavior, error) {
	r.mu.RLock()
	behavior, ok := r.behaviors[contractTypeID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContractType, contractTypeID)
	}
	return behavior, nil
}

func (r *Registry) Resolve(contractTypeID string) (Resolution, error) {
	behavior, err := r.Behavior(contractTypeID)
	if err != nil {
		return Resolution{}, err
	}
	schema := behavior.Schema()
	return Resolution{
		ValidationSchema: schema,
		RequiredFields:   schema.RequiredFields(),
		PresentationKey:  behavior.PresentationKey(),
		FeesRequired:     behavior.FeesRequired(),
		Behavior:         behavior,
	}, nil
}

func (r *Registry) IndustryOf(contractTypeID string) (string, error) {
	behavior, err := r.Behavior(contractTypeID)
	if err != nil {
		return "", err
	}
	return behavior.Industry(), nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.behaviors))
	for id := range r.behaviors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
