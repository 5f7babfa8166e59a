package stream

import "io"

// OnceState is the lifecycle of a value that is handed out exactly once.
type OnceState int

const (
	// Pending means the value has not been produced yet.
	Pending OnceState = iota
	// Ready means the value is held and waiting to be delivered.
	Ready
	// Consumed means the value was delivered (or production failed);
	// every later pull returns io.EOF.
	Consumed
)

func (s OnceState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "consumed"
	}
}

// Once yields a single value and then behaves as exhausted forever.
// It is not safe for concurrent use.
type Once struct {
	state   OnceState
	value   []byte
	produce func() ([]byte, error)
}

// NewOnce returns a Once that computes its value lazily on the first pull.
func NewOnce(produce func() ([]byte, error)) *Once {
	return &Once{state: Pending, produce: produce}
}

// ReadyOnce returns a Once already holding value.
func ReadyOnce(value []byte) *Once {
	return &Once{state: Ready, value: value}
}

// State reports where the Once is in its lifecycle.
func (o *Once) State() OnceState { return o.state }

// Pull implements PullFunc.
func (o *Once) Pull() ([]byte, error) {
	if o.state == Pending {
		v, err := o.produce()
		o.produce = nil
		if err != nil {
			o.state = Consumed
			return nil, err
		}
		o.value, o.state = v, Ready
	}
	if o.state == Ready {
		v := o.value
		o.value, o.state = nil, Consumed
		return v, nil
	}
	return nil, io.EOF
}
