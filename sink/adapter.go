// Package sink receives the bytes a pipeline produces.
package sink

import (
	"fmt"
	"sort"
)

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error      // driver-specific config struct
	Write(chunk []byte) error // consume one chunk, in order
	Close() error             // flush and release; idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}

// Names lists the registered drivers.
func Names() []string {
	names := make([]string, 0, len(reg))
	for n := range reg {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
