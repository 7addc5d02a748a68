package dirs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec indicates an Update spec of an unsupported shape.
	ErrInvalidSpec = errors.New("dirs: invalid directory spec")
	// ErrPathFormat indicates a segment that cannot be turned into a path.
	ErrPathFormat = errors.New("dirs: path format error")
	// ErrRebase indicates an invalid root replacement.
	ErrRebase = errors.New("dirs: rebase error")
)

// PathFormatError reports a malformed placeholder, a placeholder that did not
// resolve to a string, or a segment that is not a single path element.
type PathFormatError struct {
	Segment string
	Token   string
	Reason  string
	Err     error
}

func (e *PathFormatError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("dirs: segment %q", e.Segment)
	if e.Token != "" {
		msg += fmt.Sprintf(" token %q", e.Token)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PathFormatError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrPathFormat}
	}
	return []error{ErrPathFormat, e.Err}
}

// RebaseError reports a rebase whose old root is not a prefix of the current
// root, or whose new root is empty.
type RebaseError struct {
	Root    string
	OldRoot string
	NewRoot string
}

func (e *RebaseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.NewRoot == "" {
		return fmt.Sprintf("dirs: cannot rebase %q onto an empty root", e.Root)
	}
	return fmt.Sprintf("dirs: cannot rebase %q: %q is not a prefix", e.Root, e.OldRoot)
}

func (e *RebaseError) Unwrap() error {
	return ErrRebase
}
