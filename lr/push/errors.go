package push

import (
	"errors"
	"fmt"

	"github.com/npillmayer/parlr"
)

// ErrDone marks a spent parser instance: Push and Finish return an error
// wrapping ErrDone once the instance has accepted, failed, or seen any
// other error. Spent instances must be discarded; create a fresh one from
// the engine to restart a parse.
var ErrDone = errors.New("parser instance is spent")

// UnexpectedTokenError is returned by Push when the action table holds no
// entry for the current state and the pushed token. The instance is spent
// afterwards.
type UnexpectedTokenError struct {
	State int         // state the parser was in
	Token parlr.Token // the offending token
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %s in state %d", e.Token, e.State)
}

// PrematureEndError is returned by Finish when the input stopped although
// the grammar requires more tokens. Unlike UnexpectedTokenError it carries
// no offending token; the input was simply incomplete.
type PrematureEndError struct {
	State int // state the parser was in
}

func (e *PrematureEndError) Error() string {
	return fmt.Sprintf("premature end of input in state %d", e.State)
}
