package pipeline

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"ciphr/internal/spec"
	"ciphr/internal/transform"
)

// Parse turns a chain expression into pipeline stages.
//
//	chain  := stage ('|' stage)*
//	stage  := ['~'] name ['(' chain (',' chain)* ')'] | source
//	source := "quoted" | @path | @"quoted path" | - | 0xHEX | 0bBITS | =BASE64
//
// The output of each stage feeds the next; parenthesised chains supply the
// remaining arguments. '~' runs a stage in reverse.
func Parse(expr string) ([]spec.Stage, error) {
	p := &parser{src: expr}
	stages, err := p.chain()
	if err != nil {
		return nil, err
	}
	p.space()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return stages, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) chain() ([]spec.Stage, error) {
	var stages []spec.Stage
	for {
		st, err := p.stage()
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
		p.space()
		if p.eof() || p.peek() != '|' {
			return stages, nil
		}
		p.pos++
	}
}

func (p *parser) stage() (spec.Stage, error) {
	p.space()
	if p.eof() {
		return spec.Stage{}, p.errorf("expected a stage")
	}
	switch c := p.peek(); {
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return spec.Stage{}, err
		}
		return literal(s), nil
	case c == '@':
		p.pos++
		path, err := p.path()
		if err != nil {
			return spec.Stage{}, err
		}
		return spec.Stage{Fn: "file", Options: map[string]string{transform.OptFile: path}}, nil
	case c == '=':
		p.pos++
		return p.encoded("base64", func(s string) ([]byte, error) {
			return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		})
	case strings.HasPrefix(p.src[p.pos:], "0x"):
		p.pos += 2
		return p.encoded("hex", func(s string) ([]byte, error) {
			if len(s)%2 == 1 {
				s = "0" + s
			}
			return hex.DecodeString(s)
		})
	case strings.HasPrefix(p.src[p.pos:], "0b"):
		p.pos += 2
		return p.encoded("binary", bits)
	case c == '-' && p.boundary(p.pos+1):
		p.pos++
		return spec.Stage{Fn: "stdin"}, nil
	}

	st := spec.Stage{}
	if p.peek() == '~' {
		st.Invert = true
		p.pos++
		p.space()
	}
	name := p.name()
	if name == "" {
		if p.eof() {
			return st, p.errorf("expected a name")
		}
		return st, p.errorf("unexpected %q", p.peek())
	}
	st.Fn = name

	p.space()
	if p.eof() || p.peek() != '(' {
		return st, nil
	}
	p.pos++
	for {
		arg, err := p.chain()
		if err != nil {
			return st, err
		}
		st.Args = append(st.Args, arg)
		p.space()
		if p.eof() {
			return st, p.errorf("unclosed '('")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return st, nil
		default:
			return st, p.errorf("unexpected %q in argument list", p.peek())
		}
	}
}

func literal(s string) spec.Stage {
	return spec.Stage{Fn: "string", Options: map[string]string{transform.OptString: s}}
}

func (p *parser) encoded(what string, decode func(string) ([]byte, error)) (spec.Stage, error) {
	start := p.pos
	for !p.boundary(p.pos) {
		p.pos++
	}
	b, err := decode(p.src[start:p.pos])
	if err != nil || p.pos == start {
		p.pos = start
		return spec.Stage{}, p.errorf("invalid %s literal", what)
	}
	return literal(string(b)), nil
}

func bits(s string) ([]byte, error) {
	if pad := len(s) % 8; pad != 0 {
		s = strings.Repeat("0", 8-pad) + s
	}
	out := make([]byte, len(s)/8)
	for i := range out {
		v, err := strconv.ParseUint(s[i*8:i*8+8], 2, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	for !p.eof() {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				p.pos = start
				return "", p.errorf("bad string literal: %v", err)
			}
			return s, nil
		}
		p.pos++
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

func (p *parser) path() (string, error) {
	if !p.eof() && p.peek() == '"' {
		return p.quoted()
	}
	start := p.pos
	for !p.boundary(p.pos) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected a path after '@'")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		isAlpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		isTail := c >= '0' && c <= '9' || c == '-' || c == '_'
		if !isAlpha && (p.pos == start || !isTail) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// boundary reports whether a token ends at i.
func (p *parser) boundary(i int) bool {
	if i >= len(p.src) {
		return true
	}
	return strings.IndexByte(" \t\r\n|,()", p.src[i]) >= 0
}

func (p *parser) space() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.peek()) >= 0 {
		p.pos++
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}
