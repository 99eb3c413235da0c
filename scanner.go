package aa

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// fillResult is the outcome of scanner.fillBuf, aside from I/O errors.
type fillResult int8

const (
	// foundDelim means one of the requested delimiter bytes was found.
	foundDelim = fillResult(iota)
	// foundEOL means the line ended before any delimiter.
	foundEOL
	// foundEOF means the input ended before any delimiter.
	foundEOF
)

var (
	keyDelims = []byte{':'}
	seqDelims = []byte{'|'}
)

// scanner owns exclusive access to the input source for the lifetime of one
// decode, along with the scratch buffers shared by every token.
//
// Scanning happens at the byte level: .aa files are always Windows-1252,
// and byte-by-byte scanning is simpler than dealing with UTF-8's
// variable-width runes.
type scanner struct {
	r *bufio.Reader

	// buf holds the raw bytes of the current token. It is cleared and
	// refilled by each call to fillBuf, and never contains the delimiter
	// or line ending that terminated the token.
	buf []byte

	// text is scratch space for decoded text, cleared per decode.
	text []byte

	// pos is where in the input the scanner is currently looking.
	pos Position

	// lastByte is the last byte consumed, for CR+LF pair detection.
	lastByte byte

	// At most one byte of look-ahead, valid only while peeked is set. Once
	// a byte has been peeked, the next readByte consumes it before any new
	// byte is fetched from the source.
	peekedByte byte
	peeked     bool

	// eof is set upon reaching the end of the input. Once set, no further
	// reads are attempted.
	eof bool
}

func newScanner(r io.Reader, file string) *scanner {
	return &scanner{
		r:    bufio.NewReader(r),
		buf:  make([]byte, 0, 4096),
		text: make([]byte, 0, 4096),
		pos:  Position{File: file, Line: 1, Column: 1},
	}
}

// readByte returns the next input byte, keeping track of line and column
// numbers. ok is false at the end of the input.
func (sc *scanner) readByte() (b byte, ok bool, err error) {
	if sc.eof {
		return 0, false, nil
	}

	if sc.peeked {
		b = sc.peekedByte
		sc.peeked = false
	} else {
		b, ok, err = sc.readByteRaw()
		if err != nil {
			return 0, false, err
		}
		if !ok {
			sc.eof = true
			sc.lastByte = 0
			return 0, false, nil
		}
	}

	// Column accounting approximates visual width, not byte count. The LF
	// of a CR+LF pair is one line break, not two; tabs are 8 columns wide;
	// control codes and DEL are zero width.
	switch {
	case sc.lastByte == '\r' && b == '\n':
	case b == '\r' || b == '\n':
		sc.pos.Line++
		sc.pos.Column = 1
	case b == '\t':
		sc.pos.Column += 8
	case b <= 31 || b == 127:
	default:
		sc.pos.Column++
	}
	sc.lastByte = b

	return b, true, nil
}

// peekByte returns what the next readByte will yield, without advancing the
// position. Peeking is repeatable; at most one byte is buffered ahead.
func (sc *scanner) peekByte() (byte, bool, error) {
	if sc.eof {
		return 0, false, nil
	}
	if sc.peeked {
		return sc.peekedByte, true, nil
	}
	b, ok, err := sc.readByteRaw()
	if err != nil || !ok {
		return 0, false, err
	}
	sc.peekedByte = b
	sc.peeked = true
	return b, true, nil
}

// readByteRaw reads one byte from the source, ignoring the look-ahead byte
// and position tracking. Interrupted reads are retried inside the os
// package, so any error other than io.EOF is terminal.
func (sc *scanner) readByteRaw() (byte, bool, error) {
	b, err := sc.r.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &IOError{File: sc.pos.File, Err: err}
	}
	return b, true, nil
}

// isSpace reports whether b is an ASCII whitespace byte.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

// fillBuf clears the token buffer, then accumulates input until one of the
// given delimiter bytes, the end of the line, or the end of the input.
// delims may be empty, meaning read to the end of the line or file with no
// delimiter recognized.
//
// When fillBuf starts at the beginning of a line, it skips comment lines,
// blank lines, and whitespace-only lines. Mid-line, comments are not
// recognized and whitespace is significant.
func (sc *scanner) fillBuf(delims []byte) (fillResult, byte, error) {
	sc.buf = sc.buf[:0]

	inComment := false
	seenNonSpace := false

	// Column is 1 at the start of the input and right after a line ending,
	// so this detects whether the call began at the start of a line.
	startedAtBOL := sc.pos.Column == 1

	for {
		prevColumn := sc.pos.Column

		b, ok, err := sc.readByte()
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			// A trailing remainder that never contained non-whitespace is
			// a blank line, not a token.
			if !seenNonSpace {
				sc.buf = sc.buf[:0]
			}
			return foundEOF, 0, nil
		}

		switch {
		case b == '#' && (prevColumn == 1 || (startedAtBOL && !seenNonSpace)):
			// Comments start with '#' at the start of a line, possibly
			// after whitespace. A '#' after non-whitespace content is
			// ordinary data: in "bgcolor: #FFFFD6" the value is "#FFFFD6".
			inComment = true
			sc.buf = sc.buf[:0]

		case inComment && b != '\r' && b != '\n':
			// Still inside the comment.

		case b == '\r' || b == '\n':
			switch {
			case inComment:
				inComment = false
			case prevColumn == 1:
				// An empty line, or the LF half of a CR+LF pair.
			case startedAtBOL && !seenNonSpace:
				// A line containing only whitespace. This branch is only
				// reachable when the call began at column 1; a mid-line
				// all-whitespace remainder is a significant value, not a
				// blank line.
				sc.buf = sc.buf[:0]
			default:
				return foundEOL, 0, nil
			}

		case bytes.IndexByte(delims, b) >= 0:
			return foundDelim, b, nil

		default:
			sc.buf = append(sc.buf, b)
			if !isSpace(b) {
				seenNonSpace = true
			}
		}
	}
}

// decodeAll decodes the whole token buffer from Windows-1252.
//
// Windows-1252 decoding is total: every byte value decodes to some
// character, with the replacement character substituted for the few code
// points the code page leaves unmapped. TestWindows1252DecodingIsTotal
// verifies this for all 256 byte values, so there is no error to return.
func (sc *scanner) decodeAll() string {
	sc.text = sc.text[:0]
	for _, b := range sc.buf {
		sc.text = utf8.AppendRune(sc.text, decodeWindows1252Byte(b))
	}
	return string(sc.text)
}

func decodeWindows1252Byte(b byte) rune {
	r := charmap.Windows1252.DecodeByte(b)
	if r < 0 {
		return utf8.RuneError
	}
	return r
}
