package aa

import "fmt"

// An IOError reports a failure reading the underlying input source.
type IOError struct {
	File string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: I/O error: %v", fileLabel(e.File), e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// An InvalidBoolError reports a value that could not be parsed as a
// boolean. Pos is where the value began.
type InvalidBoolError struct {
	Text string
	Pos  Position
	Err  error
}

func (e *InvalidBoolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *InvalidBoolError) Unwrap() error { return e.Err }

// An InvalidIntError reports a value that could not be parsed as an
// integer. Pos is where the value began.
type InvalidIntError struct {
	Text string
	Pos  Position
	Err  error
}

func (e *InvalidIntError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *InvalidIntError) Unwrap() error { return e.Err }

// An InvalidFloatError reports a value that could not be parsed as a
// floating-point number. Pos is where the value began.
type InvalidFloatError struct {
	Text string
	Pos  Position
	Err  error
}

func (e *InvalidFloatError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *InvalidFloatError) Unwrap() error { return e.Err }

// A TrailingTextError reports input remaining after a target that requires
// the whole document to match. The decoder itself never returns it; it is
// defined for consumers of [Entries] that require exhaustive input.
type TrailingTextError struct {
	Pos Position
}

func (e *TrailingTextError) Error() string {
	return fmt.Sprintf("%s: unexpected text before end of file", e.Pos)
}

// A CustomError carries a failure raised while constructing the target
// value, such as an unrecognized enum discriminant or an unsupported
// target type.
type CustomError struct {
	Message string
}

func (e *CustomError) Error() string { return e.Message }

func errCustomf(format string, args ...any) error {
	return &CustomError{Message: fmt.Sprintf(format, args...)}
}
