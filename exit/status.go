package exit

import "fmt"

type statusKind int

const (
	statusUnset statusKind = iota
	statusCode
	statusException
)

// Status records how the process terminated.
type Status struct {
	kind statusKind
	code int
}

var (
	// Unset is the status before anything was recorded.
	Unset = Status{}
	// Exception marks termination through an unhandled error or panic.
	Exception = Status{kind: statusException}
)

// Code builds the status of a controlled exit with code.
func Code(code int) Status {
	return Status{kind: statusCode, code: code}
}

// IsSet reports whether the status was recorded.
func (s Status) IsSet() bool {
	return s.kind != statusUnset
}

// IsException reports whether the process terminated through an error.
func (s Status) IsException() bool {
	return s.kind == statusException
}

// ExitCode returns the code of a controlled exit and 1 otherwise.
func (s Status) ExitCode() int {
	if s.kind == statusCode {
		return s.code
	}
	return 1
}

// Clean reports whether the process finished with code 0.
func (s Status) Clean() bool {
	return s.kind == statusCode && s.code == 0
}

func (s Status) String() string {
	switch s.kind {
	case statusCode:
		return fmt.Sprintf("code(%d)", s.code)
	case statusException:
		return "exception"
	default:
		return "unset"
	}
}
