package aa

import (
	"slices"
	"strconv"
	"unicode/utf8"
)

// valueDecoder reads one value from the rest of the current logical token:
// up to the end of the line at the top level, or up to the next '|' inside
// a sequence.
type valueDecoder struct {
	sc *scanner

	// insideSeq limits reading to the next '|' delimiter rather than the
	// end of the line.
	insideSeq bool
}

func (vd valueDecoder) fill() error {
	var delims []byte
	if vd.insideSeq {
		delims = seqDelims
	}
	_, _, err := vd.sc.fillBuf(delims)
	return err
}

// str decodes the rest of the token as text. This is also the untyped
// interpretation: the format has no type tagging of its own, so decoding
// without a hint always means decoding as text.
func (vd valueDecoder) str() (string, error) {
	if err := vd.fill(); err != nil {
		return "", err
	}
	return vd.sc.decodeAll(), nil
}

// raw returns the undecoded bytes of the rest of the token. The scanner's
// buffer is reused across tokens, so the result is a copy.
func (vd valueDecoder) raw() ([]byte, error) {
	if err := vd.fill(); err != nil {
		return nil, err
	}
	return slices.Clone(vd.sc.buf), nil
}

func (vd valueDecoder) boolVal() (bool, error) {
	start := vd.sc.pos
	s, err := vd.str()
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, &InvalidBoolError{Text: s, Pos: start, Err: err}
	}
	return b, nil
}

func (vd valueDecoder) intVal(bits int) (int64, error) {
	start := vd.sc.pos
	s, err := vd.str()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, &InvalidIntError{Text: s, Pos: start, Err: err}
	}
	return n, nil
}

func (vd valueDecoder) uintVal(bits int) (uint64, error) {
	start := vd.sc.pos
	s, err := vd.str()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, &InvalidIntError{Text: s, Pos: start, Err: err}
	}
	return n, nil
}

func (vd valueDecoder) floatVal(bits int) (float64, error) {
	start := vd.sc.pos
	s, err := vd.str()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, &InvalidFloatError{Text: s, Pos: start, Err: err}
	}
	return f, nil
}

// charVal decodes a value expected to be exactly one character. The format
// has no character type of its own, so when the value is empty or longer
// than one character, ok is false and text carries the string
// interpretation instead.
func (vd valueDecoder) charVal() (r rune, text string, ok bool, err error) {
	s, err := vd.str()
	if err != nil {
		return 0, "", false, err
	}
	r, size := utf8.DecodeRuneInString(s)
	if size > 0 && size == len(s) {
		return r, "", true, nil
	}
	return 0, s, false, nil
}

// unitVal decodes a value expected to be empty, which is as close to a
// concept of "no value" as this format has. For a non-empty value, ok is
// false and text carries the string interpretation instead.
func (vd valueDecoder) unitVal() (text string, ok bool, err error) {
	if err := vd.fill(); err != nil {
		return "", false, err
	}
	if len(vd.sc.buf) == 0 {
		return "", true, nil
	}
	return vd.sc.decodeAll(), false, nil
}

// optionVal reports whether a value is present, without consuming it. End
// of input or a line ending means absent; any other next byte means
// present, and the value is then decoded with the same cursor.
func (vd valueDecoder) optionVal() (bool, error) {
	b, ok, err := vd.sc.peekByte()
	if err != nil {
		return false, err
	}
	return ok && b != '\r' && b != '\n', nil
}

func (vd valueDecoder) seq() *seqAccess {
	return &seqAccess{sc: vd.sc, first: true, nested: vd.insideSeq}
}

// seqAccess iterates over the '|'-separated elements of a sequence value.
// A sequence nested inside another sequence has exactly one element, since
// a '|' cannot be disambiguated between nesting levels.
type seqAccess struct {
	sc     *scanner
	first  bool
	nested bool
}

// next reports whether another element is available.
func (sa *seqAccess) next() (bool, error) {
	if sa.nested && !sa.first {
		return false, nil
	}
	// Column 1 means the previous element consumed a line ending.
	if sa.sc.pos.Column == 1 || sa.sc.eof {
		return false, nil
	}
	if sa.first {
		// An empty sequence: the first element is requested and the next
		// byte is a line ending or end of input.
		b, ok, err := sa.sc.peekByte()
		if err != nil {
			return false, err
		}
		if !ok || b == '\r' || b == '\n' {
			return false, nil
		}
	}
	return true, nil
}

// elem returns the decoder for the next element. Two adjacent '|'
// delimiters, or a '|' at the start or end of the sequence, make the
// element an empty string.
func (sa *seqAccess) elem() valueDecoder {
	sa.first = false
	return valueDecoder{sc: sa.sc, insideSeq: true}
}
