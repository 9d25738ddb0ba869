package mslc

import (
	"log/slog"

	"github.com/gogpu/mslc/ir"
)

// State is the position of one compilation in the pipeline.
type State uint8

const (
	StateIdle State = iota
	StateLexing
	StateParsing
	StateEmitting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLexing:
		return "lexing"
	case StateParsing:
		return "parsing"
	case StateEmitting:
		return "emitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// invocation tracks the state of a single compilation.
type invocation struct {
	log   *slog.Logger
	state State
}

func (c *Compiler) begin(kind ir.ShaderKind, size int) *invocation {
	inv := &invocation{
		log:   c.log.With("kind", kind.String()),
		state: StateIdle,
	}
	inv.log.Debug("compile", "state", inv.state.String(), "source", size)
	return inv
}

// enter moves to the next state. Done and Failed are terminal.
func (inv *invocation) enter(s State, attrs ...any) {
	if inv.state == StateDone || inv.state == StateFailed {
		return
	}
	inv.state = s
	inv.log.Debug("compile", append([]any{"state", s.String()}, attrs...)...)
}

// fail records the failure and returns err unchanged.
func (inv *invocation) fail(err error) error {
	from := inv.state
	inv.enter(StateFailed, "from", from.String(), "error", ir.KindOf(err).String())
	return err
}
