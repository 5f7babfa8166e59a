package pipeline

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"ciphr/internal/config"
	"ciphr/internal/logging"
	"ciphr/internal/spec"
	"ciphr/internal/stream"
	"ciphr/internal/telemetry"
	"ciphr/internal/transform"
)

// Chain is a compiled pipeline. Reading it pulls the last stage; closing
// it closes every stream opened while compiling.
type Chain struct {
	out     stream.Readable
	streams []*stream.PullStream
}

func (c *Chain) Read(n int) ([]byte, error) { return c.out.Read(n) }

// Close closes every stream, last opened first, and reports all failures.
func (c *Chain) Close() error {
	var merr *multierror.Error
	for i := len(c.streams) - 1; i >= 0; i-- {
		if err := c.streams[i].Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

// Streams reports how many streams the chain opened.
func (c *Chain) Streams() int { return len(c.streams) }

type Option func(*compiler)

// WithDir resolves relative file paths against dir.
func WithDir(dir string) Option { return func(c *compiler) { c.dir = dir } }

// WithMetrics counts every stage's output.
func WithMetrics(m *telemetry.Metrics) Option { return func(c *compiler) { c.metrics = m } }

type compiler struct {
	reg     *transform.Registry
	dir     string
	metrics *telemetry.Metrics
	chain   *Chain
}

// Compile opens every stage of stages against reg. On failure every stream
// opened so far is closed before returning.
func Compile(reg *transform.Registry, stages []spec.Stage, opts ...Option) (*Chain, error) {
	c := &compiler{reg: reg, chain: &Chain{}}
	for _, o := range opts {
		o(c)
	}
	out, err := c.compile(stages, "", true)
	if err != nil {
		if cerr := c.chain.Close(); cerr != nil {
			logging.L().Warn("close after failed compile", "err", cerr)
		}
		return nil, err
	}
	c.chain.out = out
	return c.chain, nil
}

// CompileExpr parses and compiles a chain expression.
func CompileExpr(reg *transform.Registry, expr string, opts ...Option) (*Chain, error) {
	stages, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return Compile(reg, stages, opts...)
}

// CompileFile compiles a loaded pipeline file, whichever form it uses.
func CompileFile(reg *transform.Registry, f spec.File, opts ...Option) (*Chain, error) {
	opts = append([]Option{WithDir(f.Dir)}, opts...)
	if f.Chain != "" {
		return CompileExpr(reg, f.Chain, opts...)
	}
	return Compile(reg, f.Stages, opts...)
}

func (c *compiler) compile(stages []spec.Stage, path string, top bool) (stream.Readable, error) {
	if len(stages) == 0 {
		return nil, &StageError{Stage: label(path, 0), Err: errors.New("empty chain")}
	}
	var prev stream.Readable
	for i, st := range stages {
		id := label(path, i)
		entry, err := c.reg.Resolve(st.Fn)
		if err != nil {
			return nil, &StageError{Stage: id, Fn: st.Fn, Err: err}
		}

		var args []stream.Readable
		switch {
		case i > 0:
			args = append(args, prev)
		case len(entry.Kind.Params) > 0 && top:
			stdin := spec.Stage{Fn: "stdin"}
			src, err := c.reg.Resolve(stdin.Fn)
			if err != nil {
				return nil, &StageError{Stage: id + ".in", Fn: stdin.Fn, Err: err}
			}
			in, err := c.stage(id+".in", stdin, src, nil)
			if err != nil {
				return nil, err
			}
			args = append(args, in)
		case len(entry.Kind.Params) > 0:
			return nil, &StageError{Stage: id, Fn: st.Fn,
				Err: fmt.Errorf("%w: argument chain must start with a source", transform.ErrArity)}
		}
		for j, arg := range st.Args {
			r, err := c.compile(arg, id+"."+strconv.Itoa(j+1), false)
			if err != nil {
				return nil, err
			}
			args = append(args, r)
		}

		if prev, err = c.stage(id, st, entry, args); err != nil {
			return nil, err
		}
	}
	return prev, nil
}

// stage builds and opens one resolved stage.
func (c *compiler) stage(id string, st spec.Stage, entry transform.Entry, args []stream.Readable) (stream.Readable, error) {
	opts := maps.Clone(st.Options)
	if p, ok := opts[transform.OptFile]; ok {
		opts[transform.OptFile] = config.Resolve(c.dir, p)
	}
	dir := transform.Forward
	if st.Invert {
		dir = transform.Inverse
	}

	t, err := entry.New(dir, transform.NewOptions(opts), args...)
	if err != nil {
		return nil, &StageError{Stage: id, Fn: st.Fn, Err: err}
	}
	ps, err := transform.Open(t)
	if err != nil {
		return nil, &StageError{Stage: id, Fn: st.Fn, Err: err}
	}
	c.chain.streams = append(c.chain.streams, ps)
	logging.L().Debug("stage opened", "stage", id, "fn", st.Fn, "direction", dir)
	return &tap{r: ps, stage: id, fn: st.Fn, metrics: c.metrics}, nil
}

func label(path string, i int) string {
	if path == "" {
		return strconv.Itoa(i)
	}
	return path + "." + strconv.Itoa(i)
}

// tap sits on a stage's output: it counts what passes and attributes
// failures to the stage.
type tap struct {
	r       stream.Readable
	stage   string
	fn      string
	metrics *telemetry.Metrics
	done    bool
}

func (t *tap) Read(n int) ([]byte, error) {
	chunk, err := t.r.Read(n)
	switch {
	case err == nil:
		t.metrics.ObserveStage(t.stage, t.fn, len(chunk), false)
		return chunk, nil
	case errors.Is(err, io.EOF):
		if !t.done {
			t.done = true
			logging.L().Debug("stage exhausted", "stage", t.stage, "fn", t.fn)
		}
		return nil, err
	}
	t.metrics.ObserveStage(t.stage, t.fn, 0, true)
	var se *StageError
	if errors.As(err, &se) {
		return nil, err
	}
	logging.L().Debug("stage failed", "stage", t.stage, "fn", t.fn, "err", err)
	return nil, &StageError{Stage: t.stage, Fn: t.fn, Err: err}
}
