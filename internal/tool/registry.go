package tool

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned when no tool has the requested slug.
	ErrNotFound = errors.New("tool not found")

	// ErrDuplicate is returned when registering a slug that is taken.
	ErrDuplicate = errors.New("tool already registered")

	// ErrNoTransform is returned when a tool has no transform bound.
	ErrNoTransform = errors.New("tool has no transform")
)

// Transform turns the current text of a tool into its result.
type Transform func(input string) (string, error)

// Tool is a registered tool: its metadata plus the transform it runs.
type Tool struct {
	Info
	transform Transform
}

// Apply runs the tool's transform on input.
func (t *Tool) Apply(input string) (string, error) {
	if t.transform == nil {
		return "", fmt.Errorf("%s: %w", t.Slug, ErrNoTransform)
	}
	return t.transform(input)
}

// Registry holds the tools available to sessions.
type Registry struct {
	mu     sync.RWMutex
	bySlug map[string]*Tool
	order  []*Tool
}

// NewRegistry creates a registry containing every built-in tool, bound to
// the given transforms. Built-ins without a transform are still listed;
// applying them fails with ErrNoTransform.
func NewRegistry(transforms map[ID]Transform) *Registry {
	r := &Registry{bySlug: make(map[string]*Tool)}
	for _, info := range All() {
		t := &Tool{Info: info, transform: transforms[info.ID]}
		r.bySlug[info.Slug] = t
		r.order = append(r.order, t)
	}
	return r
}

// Register adds a runtime tool. Its ID is forced to Custom and its
// category to CategoryScript.
func (r *Registry) Register(info Info, fn Transform) error {
	if info.Slug == "" {
		return fmt.Errorf("register tool: empty slug")
	}
	if fn == nil {
		return fmt.Errorf("register %s: %w", info.Slug, ErrNoTransform)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[info.Slug]; exists {
		return fmt.Errorf("register %s: %w", info.Slug, ErrDuplicate)
	}

	info.ID = Custom
	info.Category = CategoryScript
	if info.Name == "" {
		info.Name = info.Slug
	}
	t := &Tool{Info: info, transform: fn}
	r.bySlug[info.Slug] = t
	r.order = append(r.order, t)
	return nil
}

// Get returns the tool with the given slug.
func (r *Registry) Get(slug string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%q: %w", slug, ErrNotFound)
	}
	return t, nil
}

// All returns every tool: built-ins in ID order, then runtime tools in
// registration order.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, len(r.order))
	copy(out, r.order)
	return out
}

// ByCategory returns the tools in category c.
func (r *Registry) ByCategory(c Category) []*Tool {
	var out []*Tool
	for _, t := range r.All() {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// WithTag returns the tools carrying tag.
func (r *Registry) WithTag(tag string) []*Tool {
	var out []*Tool
	for _, t := range r.All() {
		if t.HasTag(tag) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
