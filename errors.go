package semago

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyActionSelection is returned when an action selection is
	// closed without any registered rules.
	ErrEmptyActionSelection = errors.New("action selection closed with zero rules")

	// ErrSelectionClosed is returned when rules are added to, or
	// Close is called again on, a closed action selection.
	ErrSelectionClosed = errors.New("action selection already closed")

	// ErrSelectionOpen is returned when a second action selection
	// scope is opened before the current one is closed.
	ErrSelectionOpen = errors.New("an action selection scope is already open")

	// ErrCompilerClosed is returned for statements issued after the
	// compiler was closed.
	ErrCompilerClosed = errors.New("compiler is closed")
)

// ErrDuplicateName indicates two rules sharing an explicit name
// within one action selection.
type ErrDuplicateName struct {
	Name string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("duplicate action name %q", e.Name)
}

// ErrDuplicateSinkInRule indicates one rule routing two effects to
// the same sink. The same sink may still recur across different
// rules.
type ErrDuplicateSinkInRule struct {
	Sink   string
	Action string
}

func (e *ErrDuplicateSinkInRule) Error() string {
	return fmt.Sprintf("duplicate sink %q in action %q", e.Sink, e.Action)
}

// ErrSinkExists indicates a sink declared under a name that is
// already taken.
type ErrSinkExists struct {
	Name string
}

func (e *ErrSinkExists) Error() string {
	return fmt.Sprintf("sink %q already declared", e.Name)
}

// ErrVocabExists indicates a vocabulary registered under a label
// that is already taken.
type ErrVocabExists struct {
	Label string
}

func (e *ErrVocabExists) Error() string {
	return fmt.Sprintf("vocabulary %q already registered", e.Label)
}
