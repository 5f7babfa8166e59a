package transform

import (
	"fmt"
	"sort"

	"ciphr/internal/stream"
)

// Entry is what a registered name resolves to.
type Entry struct {
	Kind    *Kind
	Options Options
}

// New constructs a transform of the entry's kind. opts override the
// variant's option fragment.
func (e Entry) New(dir Direction, opts Options, args ...stream.Readable) (Transform, error) {
	return e.Kind.Construct(Config{
		Options:   e.Options.Merge(opts),
		Direction: dir,
		Args:      args,
	})
}

// Registry maps variant names to kinds. Kinds are registered explicitly and
// Build flattens them into a lookup table. When two variants share a name
// the one registered last wins.
//
// A Registry is not safe for concurrent Register/Build; once built, lookups
// only read.
type Registry struct {
	kinds   []*Kind
	entries map[string]Entry
}

// NewRegistry returns a registry holding kinds. It still has to be built.
func NewRegistry(kinds ...*Kind) *Registry {
	return &Registry{kinds: append([]*Kind(nil), kinds...)}
}

// Register appends k to the known kinds.
func (r *Registry) Register(k *Kind) {
	r.kinds = append(r.kinds, k)
}

// Build computes the name table from every registered kind's variants,
// replacing any previous table.
func (r *Registry) Build() {
	entries := make(map[string]Entry)
	for _, k := range r.kinds {
		if k.Variants == nil {
			continue
		}
		for _, v := range k.Variants() {
			for _, name := range v.Names {
				entries[name] = Entry{Kind: k, Options: v.Options}
			}
		}
	}
	r.entries = entries
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Resolve is Lookup returning ErrUnknownName for unregistered names.
func (r *Registry) Resolve(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w %q", ErrUnknownName, name)
	}
	return e, nil
}

// Names lists every registered name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []*Kind {
	return append([]*Kind(nil), r.kinds...)
}
