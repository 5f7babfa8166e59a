package transform

import "ciphr/internal/stream"

// Cat passes its input through untouched.
var Cat = &Kind{
	Name:   "cat",
	Params: []Param{ParamInput},
	Variants: func() []Variant {
		return []Variant{V(nil, "cat", "noop")}
	},
	New: func(cfg Config) (Transform, error) {
		in, err := cfg.Arg(0)
		if err != nil {
			return nil, err
		}
		return catTransform{in: in}, nil
	},
}

type catTransform struct {
	in stream.Readable
}

func (c catTransform) Apply() (stream.PullFunc, error) {
	in := c.in
	return func() ([]byte, error) {
		return in.Read(stream.DefaultChunkSize)
	}, nil
}
