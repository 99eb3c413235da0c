package aa_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	aa "github.com/argv-minus-one/shopsite-aa-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnum string

func (e *testEnum) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "First", "Second", "Third":
		*e = testEnum(s)
		return nil
	default:
		return fmt.Errorf("unknown variant %q", s)
	}
}

type tupleParts struct {
	S   string
	N   uint8
	OK  bool
	Raw []byte
	C   aa.Char
}

func TestDecode(t *testing.T) {
	// The smart quotes are Windows-1252 bytes 0x93 and 0x94.
	doc := "# A test document.\n" +
		"string: string_value\n" +
		"\x93quoted\x94: \x93value\x94\n" +
		"value_without_space:Look ma, no space!\n" +
		"seq_empty1:\n" +
		"seq_empty2: \n" +
		"seq_one: Hello\n" +
		"seq_multi: Hello,|world!\n" +
		"seq_with_empty: |Hello,||world!|\n" +
		"tuple: Hello|42|true|world|!\n" +
		"enum: Third|First|Second\n" +
		"some: Hello\n" +
		"none:\n"

	var ts struct {
		String            string     `aa:"string"`
		Quoted            string     `aa:"“quoted”"`
		ValueWithoutSpace string     `aa:"value_without_space"`
		SeqEmpty1         []string   `aa:"seq_empty1"`
		SeqEmpty2         []string   `aa:"seq_empty2"`
		SeqOne            []string   `aa:"seq_one"`
		SeqMulti          []string   `aa:"seq_multi"`
		SeqWithEmpty      []string   `aa:"seq_with_empty"`
		Tuple             tupleParts `aa:"tuple"`
		Enum              []testEnum `aa:"enum"`
		Some              *string    `aa:"some"`
		None              *string    `aa:"none"`
	}
	require.NoError(t, aa.Unmarshal([]byte(doc), &ts))

	assert.Equal(t, "string_value", ts.String)
	assert.Equal(t, "“value”", ts.Quoted)
	assert.Equal(t, "Look ma, no space!", ts.ValueWithoutSpace)
	assert.Empty(t, ts.SeqEmpty1)
	assert.Empty(t, ts.SeqEmpty2)
	assert.Equal(t, []string{"Hello"}, ts.SeqOne)
	assert.Equal(t, []string{"Hello,", "world!"}, ts.SeqMulti)
	assert.Equal(t, []string{"", "Hello,", "", "world!", ""}, ts.SeqWithEmpty)
	assert.Equal(t, tupleParts{S: "Hello", N: 42, OK: true, Raw: []byte("world"), C: '!'}, ts.Tuple)
	assert.Equal(t, []testEnum{"Third", "First", "Second"}, ts.Enum)
	require.NotNil(t, ts.Some)
	assert.Equal(t, "Hello", *ts.Some)
	assert.Nil(t, ts.None)
}

func TestDecodeNoFinalEOL(t *testing.T) {
	// The end of a value can also be the end of the file.
	var ts struct {
		Value1 string
		Value2 string
	}
	require.NoError(t, aa.Unmarshal([]byte("value1: Hello,\nvalue2: world!"), &ts))
	assert.Equal(t, "Hello,", ts.Value1)
	assert.Equal(t, "world!", ts.Value2)
}

func TestSeqVariations(t *testing.T) {
	// Every combination of leading comment, conventional space, empty
	// elements at the start, middle and end, trailing comment, and
	// trailing line ending, applied to "seq: Hello|world".
	for mask := range 128 {
		commentAtStart := mask&1 != 0
		spaceAtStart := mask&2 != 0
		emptyElemAtStart := mask&4 != 0
		emptyElemInMiddle := mask&8 != 0
		emptyElemAtEnd := mask&16 != 0
		commentAtEnd := mask&32 != 0
		eolAtEnd := mask&64 != 0

		var input strings.Builder
		if commentAtStart {
			input.WriteString("#comment\n")
		}
		input.WriteString("seq:")
		if spaceAtStart {
			input.WriteByte(' ')
		}
		if emptyElemAtStart {
			input.WriteByte('|')
		}
		input.WriteString("Hello|")
		if emptyElemInMiddle {
			input.WriteByte('|')
		}
		input.WriteString("world")
		if emptyElemAtEnd {
			input.WriteByte('|')
		}
		if commentAtEnd {
			input.WriteString("\n#comment")
		}
		if eolAtEnd {
			input.WriteByte('\n')
		}

		expected := make([]string, 0, 5)
		if emptyElemAtStart {
			expected = append(expected, "")
		}
		expected = append(expected, "Hello")
		if emptyElemInMiddle {
			expected = append(expected, "")
		}
		expected = append(expected, "world")
		if emptyElemAtEnd {
			expected = append(expected, "")
		}

		var ts struct {
			Seq []string
		}
		require.NoErrorf(t, aa.Unmarshal([]byte(input.String()), &ts), "input %q", input.String())
		assert.Equalf(t, expected, ts.Seq, "input %q", input.String())
	}
}

func TestNestedSeqHasOneElement(t *testing.T) {
	// A '|' cannot be disambiguated between nesting levels, so a sequence
	// nested inside another sequence yields exactly one element.
	var ts struct {
		Nested [][]string
	}
	require.NoError(t, aa.Unmarshal([]byte("nested: a|b|c\n"), &ts))
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, ts.Nested)
}

func TestWhitespaceLinesAreIgnored(t *testing.T) {
	m := map[string]any{}
	require.NoError(t, aa.Unmarshal([]byte(" \n"), &m))
	assert.Empty(t, m)
}

func TestBlankLineInvariance(t *testing.T) {
	plain := "a: 1\nb: 2\nc: x|y\n"
	padded := "# leading comment\n\na: 1\n   \n\t\nb: 2\n# mid comment\n\nc: x|y\n\n# trailing comment\n"

	var want, got map[string]any
	require.NoError(t, aa.Unmarshal([]byte(plain), &want))
	require.NoError(t, aa.Unmarshal([]byte(padded), &got))
	assert.Equal(t, want, got)
}

func TestKeyWithNoValue(t *testing.T) {
	m := map[string]any{}
	require.NoError(t, aa.Unmarshal([]byte("foo\nbar: baz\n"), &m))
	assert.Equal(t, map[string]any{"foo": nil, "bar": "baz"}, m)
}

func TestMidValueHashIsNotComment(t *testing.T) {
	m := map[string]string{}
	require.NoError(t, aa.Unmarshal([]byte("bgcolor: #FFFFD6\n"), &m))
	assert.Equal(t, map[string]string{"bgcolor": "#FFFFD6"}, m)
}

func TestCRLFLineEndings(t *testing.T) {
	var ts struct {
		A string
		B string
	}
	require.NoError(t, aa.Unmarshal([]byte("a: one\r\nb: two\r\n"), &ts))
	assert.Equal(t, "one", ts.A)
	assert.Equal(t, "two", ts.B)
}

func TestOptionSemantics(t *testing.T) {
	var ts struct {
		Empty   *string `aa:"empty"`
		Missing *string `aa:"missing"`
		Present *string `aa:"present"`
		Number  *int    `aa:"number"`
	}
	require.NoError(t, aa.Unmarshal([]byte("empty:\nmissing\npresent: hi\nnumber: 7\n"), &ts))
	assert.Nil(t, ts.Empty)
	assert.Nil(t, ts.Missing)
	require.NotNil(t, ts.Present)
	assert.Equal(t, "hi", *ts.Present)
	require.NotNil(t, ts.Number)
	assert.Equal(t, 7, *ts.Number)
}

func TestDecodeIsIdempotent(t *testing.T) {
	doc := []byte("a: 1\nb\nc: x|y|\nd: #AABBCC\n")
	var first, second map[string]any
	require.NoError(t, aa.Unmarshal(doc, &first))
	require.NoError(t, aa.Unmarshal(doc, &second))
	assert.Equal(t, first, second)
}

func TestUnknownKeysAreSkipped(t *testing.T) {
	var ts struct {
		B string
	}
	require.NoError(t, aa.Unmarshal([]byte("a: x|y|z\nb: kept\nzzz\n"), &ts))
	assert.Equal(t, "kept", ts.B)
}

func TestUnitValue(t *testing.T) {
	var ts struct {
		U     struct{} `aa:"u"`
		After string   `aa:"after"`
	}
	require.NoError(t, aa.Unmarshal([]byte("u:\nafter: x\n"), &ts))
	assert.Equal(t, "x", ts.After)

	var bad struct {
		U struct{} `aa:"u"`
	}
	err := aa.Unmarshal([]byte("u: stuff\n"), &bad)
	var custom *aa.CustomError
	require.ErrorAs(t, err, &custom)
}

func TestDecodeChar(t *testing.T) {
	var ts struct {
		C aa.Char `aa:"c"`
	}
	// 0x80 is the euro sign in Windows-1252: multiple UTF-8 bytes, but
	// still exactly one character.
	require.NoError(t, aa.Unmarshal([]byte("c: \x80\n"), &ts))
	assert.Equal(t, aa.Char('€'), ts.C)

	err := aa.Unmarshal([]byte("c: ab\n"), &ts)
	var custom *aa.CustomError
	require.ErrorAs(t, err, &custom)
}

func TestDecodeIntoMapWithIntKeys(t *testing.T) {
	m := map[int]string{}
	require.NoError(t, aa.Unmarshal([]byte("1: a\n2: b\n"), &m))
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, m)
}

func TestDecodeIntoInterface(t *testing.T) {
	var v any
	require.NoError(t, aa.Unmarshal([]byte("a: 1\nb\n"), &v))
	assert.Equal(t, map[string]any{"a": "1", "b": nil}, v)
}

func TestDecodeIntoPointerTarget(t *testing.T) {
	var ts *struct {
		A string
	}
	require.NoError(t, aa.Unmarshal([]byte("a: hi\n"), &ts))
	require.NotNil(t, ts)
	assert.Equal(t, "hi", ts.A)
}

func TestDecodeScalars(t *testing.T) {
	var ts struct {
		I  int     `aa:"i"`
		I8 int8    `aa:"i8"`
		U  uint    `aa:"u"`
		F  float64 `aa:"f"`
		B  bool    `aa:"b"`
		N  int     `aa:"n"`
	}
	doc := "i: -12\ni8: 127\nu: 42\nf: 2.5\nb: true\nn: -1\n"
	require.NoError(t, aa.Unmarshal([]byte(doc), &ts))
	assert.Equal(t, -12, ts.I)
	assert.Equal(t, int8(127), ts.I8)
	assert.Equal(t, uint(42), ts.U)
	assert.Equal(t, 2.5, ts.F)
	assert.True(t, ts.B)
	assert.Equal(t, -1, ts.N)
}

func TestInvalidScalarErrors(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		var ts struct {
			Num int
		}
		err := aa.Unmarshal([]byte("num: abc\n"), &ts)
		var invalid *aa.InvalidIntError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "abc", invalid.Text)
		assert.Equal(t, aa.Position{Line: 1, Column: 6}, invalid.Pos)
		assert.True(t, strings.HasPrefix(err.Error(), "<unknown>:1:6: "), err.Error())
	})

	t.Run("bool", func(t *testing.T) {
		var ts struct {
			Flag bool
		}
		err := aa.Unmarshal([]byte("flag: nope\n"), &ts)
		var invalid *aa.InvalidBoolError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "nope", invalid.Text)
		assert.Equal(t, aa.Position{Line: 1, Column: 7}, invalid.Pos)
	})

	t.Run("float", func(t *testing.T) {
		var ts struct {
			F float32
		}
		err := aa.Unmarshal([]byte("f: x\n"), &ts)
		var invalid *aa.InvalidFloatError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, aa.Position{Line: 1, Column: 4}, invalid.Pos)
	})

	t.Run("position after CRLF lines", func(t *testing.T) {
		var ts struct {
			A   int `aa:"a"`
			Num int `aa:"num"`
		}
		err := aa.Unmarshal([]byte("a: 1\r\nnum: abc\r\n"), &ts)
		var invalid *aa.InvalidIntError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, aa.Position{Line: 2, Column: 6}, invalid.Pos)
	})

	t.Run("file name in message", func(t *testing.T) {
		var ts struct {
			Num int
		}
		err := aa.NewDecoder(strings.NewReader("num: abc\n"), "store.aa").Decode(&ts)
		var invalid *aa.InvalidIntError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "store.aa", invalid.Pos.File)
		assert.True(t, strings.HasPrefix(err.Error(), "store.aa:1:6: "), err.Error())
	})
}

func TestEnumValidationError(t *testing.T) {
	var ts struct {
		Enum testEnum
	}
	err := aa.Unmarshal([]byte("enum: Bogus\n"), &ts)
	var custom *aa.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, `unknown variant "Bogus"`, custom.Message)
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestIOError(t *testing.T) {
	m := map[string]any{}
	err := aa.NewDecoder(failReader{}, "x.aa").Decode(&m)
	var ioErr *aa.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "x.aa: I/O error: boom", err.Error())

	err = aa.NewDecoder(failReader{}, "").Decode(&m)
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "<unknown>: I/O error: boom", err.Error())
}

func TestInvalidTarget(t *testing.T) {
	var s string
	require.Error(t, aa.Unmarshal([]byte("a: 1\n"), s))
	require.Error(t, aa.Unmarshal([]byte("a: 1\n"), nil))
	require.Error(t, aa.Unmarshal([]byte("a: 1\n"), &s))
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.aa")
	require.NoError(t, os.WriteFile(path, []byte("store_name: Example\n"), 0o644))

	var ts struct {
		StoreName string
	}
	require.NoError(t, aa.DecodeFile(path, &ts))
	assert.Equal(t, "Example", ts.StoreName)

	err := aa.DecodeFile(filepath.Join(t.TempDir(), "missing.aa"), &ts)
	var ioErr *aa.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Contains(t, err.Error(), "I/O error")
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "f.aa:3:9", aa.Position{File: "f.aa", Line: 3, Column: 9}.String())
	assert.Equal(t, "<unknown>:1:1", aa.Position{Line: 1, Column: 1}.String())

	trailing := &aa.TrailingTextError{Pos: aa.Position{File: "f.aa", Line: 3, Column: 9}}
	assert.Equal(t, "f.aa:3:9: unexpected text before end of file", trailing.Error())
}
