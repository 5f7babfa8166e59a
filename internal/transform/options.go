package transform

import (
	"fmt"
	"maps"
)

// Well known option names.
const (
	OptVariant = "variant"
	OptString  = "string"
	OptFile    = "file"
	OptIV      = "iv"
)

// Options is an immutable set of kind specific settings. The zero value is
// an empty set.
type Options struct {
	m map[string]string
}

// NewOptions copies m into a new Options.
func NewOptions(m map[string]string) Options {
	if len(m) == 0 {
		return Options{}
	}
	return Options{m: maps.Clone(m)}
}

// Get returns the value of key, or "" when unset.
func (o Options) Get(key string) string { return o.m[key] }

// Lookup returns the value of key and whether it was set.
func (o Options) Lookup(key string) (string, bool) {
	v, ok := o.m[key]
	return v, ok
}

// Require returns the value of key or ErrMissingOption.
func (o Options) Require(key string) (string, error) {
	v, ok := o.m[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrMissingOption, key)
	}
	return v, nil
}

// Merge returns a copy of o overridden by every key set in other.
func (o Options) Merge(other Options) Options {
	if len(other.m) == 0 {
		return o
	}
	m := make(map[string]string, len(o.m)+len(other.m))
	maps.Copy(m, o.m)
	maps.Copy(m, other.m)
	return Options{m: m}
}

// Len returns the number of options set.
func (o Options) Len() int { return len(o.m) }

// Map returns a copy of the underlying settings.
func (o Options) Map() map[string]string { return maps.Clone(o.m) }
