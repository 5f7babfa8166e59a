package pipeline

import (
	"fmt"
)

// StageError ties a failure to the stage that produced it. Stage is the
// stage's position: "2" for the third top-level stage, "1.1.0" for the
// first stage of the first argument chain of stage 1.
type StageError struct {
	Stage string
	Fn    string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, e.Fn, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a malformed chain expression.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Expr, e.Msg)
}
