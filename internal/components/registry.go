package components

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-sites/internal/validation"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

var (
	ErrIdentifierRequired = errors.New("components: identifier is required")
	ErrDuplicate          = errors.New("components: identifier already registered")
)

// LookupResult reports whether an identifier maps to a registered component.
type LookupResult uint8

const (
	UnknownIdentifier LookupResult = iota
	Resolved
)

func (r LookupResult) String() string {
	switch r {
	case Resolved:
		return "resolved"
	default:
		return "unknown_identifier"
	}
}

// Component describes a renderer that a section identifier can map to.
// Schema is optional and constrains the fields of matching sections.
type Component struct {
	Identifier string
	Name       string
	Schema     map[string]any
}

type entry struct {
	component Component
	schema    *validation.Schema
}

// Registry is the set of identifiers known to have a renderer.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ interfaces.ComponentMapper = (*Registry)(nil)

// NewRegistry returns a registry seeded with components.
func NewRegistry(components ...Component) (*Registry, error) {
	r := &Registry{entries: make(map[string]entry)}
	for _, component := range components {
		if err := r.Register(component); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a component. Schemas are compiled up front so bad definitions
// fail at registration.
func (r *Registry) Register(component Component) error {
	identifier := strings.TrimSpace(component.Identifier)
	if identifier == "" {
		return ErrIdentifierRequired
	}
	component.Identifier = identifier

	schema, err := validation.Compile(component.Schema)
	if err != nil {
		return fmt.Errorf("components: %s: %w", identifier, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[identifier]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, identifier)
	}
	r.entries[identifier] = entry{component: component, schema: schema}
	return nil
}

// HasRenderer reports whether identifier is registered.
func (r *Registry) HasRenderer(identifier string) bool {
	_, result := r.Lookup(identifier)
	return result == Resolved
}

// Lookup returns the component registered under identifier. Unknown
// identifiers yield UnknownIdentifier and a zero Component.
func (r *Registry) Lookup(identifier string) (Component, LookupResult) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found, ok := r.entries[identifier]
	if !ok {
		return Component{}, UnknownIdentifier
	}
	return found.component, Resolved
}

// Identifiers lists registered identifiers in lexical order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for identifier := range r.entries {
		out = append(out, identifier)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) schema(identifier string) *validation.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[identifier].schema
}
