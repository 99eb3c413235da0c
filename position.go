package aa

import "fmt"

// A Position identifies a location in a .aa document. Line and Column are
// 1-based. File is the name given when the decoder was created, and may be
// empty if the input did not come from a named file.
//
// Columns approximate visual width rather than byte offsets: a tab is 8
// columns wide, control characters are zero width, and a CR+LF pair is a
// single line break.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", fileLabel(p.File), p.Line, p.Column)
}

func fileLabel(file string) string {
	if file == "" {
		return "<unknown>"
	}
	return file
}
