package workflow

import (
	"errors"
	"sync"
)

// ErrInFlight is returned when an operation is invoked while the same operation is still running.
var ErrInFlight = errors.New("operation already in progress")

type Op string

const (
	OpSave           Op = "save"
	OpSubmit         Op = "submit"
	OpDelete         Op = "delete"
	OpApprove        Op = "approve"
	OpReject         Op = "reject"
	OpDeprecate      Op = "deprecate"
	OpTest           Op = "test"
	OpDuplicateCheck Op = "duplicate-check"
	OpGenerate       Op = "generate"
)

type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// RequestState is the last known state of one operation. Reason is set only when Failed.
type RequestState struct {
	Phase  Phase
	Reason string
}

type tracker struct {
	mu     sync.Mutex
	states map[Op]RequestState
	notify func(Op, RequestState)
}

func (t *tracker) get(op Op) RequestState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[op]
}

func (t *tracker) begin(op Op) error {
	t.mu.Lock()
	if t.states[op].Phase == InFlight {
		t.mu.Unlock()
		return ErrInFlight
	}
	t.states[op] = RequestState{Phase: InFlight}
	t.mu.Unlock()
	t.emit(op, RequestState{Phase: InFlight})
	return nil
}

func (t *tracker) finish(op Op, err error) {
	st := RequestState{Phase: Succeeded}
	if err != nil {
		st = RequestState{Phase: Failed, Reason: err.Error()}
	}
	t.mu.Lock()
	t.states[op] = st
	t.mu.Unlock()
	t.emit(op, st)
}

func (t *tracker) emit(op Op, st RequestState) {
	if t.notify != nil {
		t.notify(op, st)
	}
}
