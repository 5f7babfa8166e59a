package transform

import (
	"fmt"
	"io"
	"strings"

	"ciphr/internal/stream"
)

// Direction selects which of an invertible kind's two algorithms runs.
type Direction int

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}
	return "forward"
}

// Param names the semantic role of one positional argument.
type Param string

const (
	ParamInput Param = "input"
	ParamKey   Param = "key"
)

// Transform turns its configuration and upstream arguments into a pull
// function. Apply is called at most once per instance; any iteration state
// lives in the returned closure.
type Transform interface {
	Apply() (stream.PullFunc, error)
}

// Config is everything a kind needs to build a Transform. It is fixed at
// construction.
type Config struct {
	Options   Options
	Direction Direction
	Args      []stream.Readable
}

// Arg returns the i-th argument.
func (c Config) Arg(i int) (stream.Readable, error) {
	if i < 0 || i >= len(c.Args) || c.Args[i] == nil {
		return nil, fmt.Errorf("%w: argument %d not bound", ErrArity, i)
	}
	return c.Args[i], nil
}

// Variant is one named configuration of a kind. Every name is an alias of
// the same option fragment.
type Variant struct {
	Names   []string
	Options Options
}

// V builds a Variant from an option fragment and its aliases.
func V(opts map[string]string, names ...string) Variant {
	return Variant{Names: names, Options: NewOptions(opts)}
}

// Kind describes one family of transforms.
type Kind struct {
	Name string
	// Params lists the ordered roles of the args the kind expects.
	Params     []Param
	Invertible bool
	// Variants enumerates the names the kind contributes to a registry.
	// It is evaluated each time the registry is built.
	Variants func() []Variant
	New      func(Config) (Transform, error)
}

// Construct checks cfg against the kind's declared shape and builds a
// Transform.
func (k *Kind) Construct(cfg Config) (Transform, error) {
	if cfg.Direction == Inverse && !k.Invertible {
		return nil, fmt.Errorf("%s: %w", k.Name, ErrNotInvertible)
	}
	if len(cfg.Args) != len(k.Params) {
		return nil, fmt.Errorf("%s: %w: want %d %s, got %d",
			k.Name, ErrArity, len(k.Params), k.paramList(), len(cfg.Args))
	}
	t, err := k.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.Name, err)
	}
	return t, nil
}

func (k *Kind) paramList() string {
	ps := make([]string, len(k.Params))
	for i, p := range k.Params {
		ps[i] = string(p)
	}
	return "[" + strings.Join(ps, ", ") + "]"
}

// Open applies t and wraps its pull function in a PullStream. Transforms
// that implement io.Closer get their Close wired to the stream's cleanup.
func Open(t Transform) (*stream.PullStream, error) {
	pull, err := t.Apply()
	if err != nil {
		return nil, err
	}
	var opts []stream.Option
	if c, ok := t.(io.Closer); ok {
		opts = append(opts, stream.WithCleanup(c.Close))
	}
	return stream.New(pull, opts...), nil
}
