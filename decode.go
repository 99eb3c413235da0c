package aa

import (
	"bytes"
	"encoding"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// Char decodes a value that is expected to be exactly one character.
//
// The .aa format has no character type of its own, so most values decode
// naturally as strings. A Char target asks for the single-character
// interpretation instead; a value that is empty or longer than one
// character fails with a [CustomError].
type Char rune

// A Decoder reads a .aa document from an input stream.
//
// A Decoder is a single-use cursor: it owns its input exclusively and holds
// no state between documents. Create a new Decoder for each document.
type Decoder struct {
	sc *scanner
}

// NewDecoder returns a Decoder reading from r. file is used only in error
// messages and may be empty, in which case errors report "<unknown>".
func NewDecoder(r io.Reader, file string) *Decoder {
	return &Decoder{sc: newScanner(r, file)}
}

// Decode reads the whole document into v, which must be a non-nil pointer
// to a struct, map, or interface value.
//
// For struct fields, Decode first looks for the name in an `aa:"name"` tag,
// then in a `json:"name"` tag, and finally uses the snake_case version of
// the field name or the field name itself. Fields the document does not
// mention keep their existing values; keys the struct does not mention are
// skipped without being read.
//
// Scalar values are parsed with the [strconv] package, or with the target's
// [encoding.TextUnmarshaler] if it has one. A pointer field decodes as
// absent (left nil) when its value is empty or missing. A slice field
// decodes the '|'-separated elements of its value; a []byte field receives
// the raw, undecoded bytes. An array or struct in value position is filled
// field-by-field from the '|'-separated elements, in order.
//
// When decoding into an interface, the document becomes a map[string]any
// with string values, and nil for keys that have no value.
func (d *Decoder) Decode(v any) error {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return errCustomf("invalid target, must be a non-nil pointer")
	}
	return decodeRecord(d.sc, value.Elem())
}

// Unmarshal decodes the .aa document in data into v. It is shorthand for
// decoding from a bytes reader with no file name. See [Decoder.Decode] for
// the mapping between .aa documents and Go values.
func Unmarshal(data []byte, v any) error {
	return NewDecoder(bytes.NewReader(data), "").Decode(v)
}

// DecodeFile opens the named file and decodes it into v. The file name
// appears in any error returned.
func DecodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{File: path, Err: err}
	}
	defer f.Close()
	return NewDecoder(f, path).Decode(v)
}

// recordReader reads the document as an ordered collection of key/value
// (or key-only) entries.
type recordReader struct {
	sc *scanner

	// noValue is set when the most recently read key had no ':' delimiter,
	// so the entry has no associated value.
	noValue bool
}

// nextKey returns the next entry's key. ok is false at the end of the
// document.
func (rr *recordReader) nextKey() (key string, ok bool, err error) {
	// Keys always begin at the start of a line. If the previous value
	// decode left the cursor mid-line (for example a key whose value was
	// skipped), move ahead to the next line first.
	if rr.sc.pos.Column != 1 {
		for {
			b, ok, err := rr.sc.readByte()
			if err != nil {
				return "", false, err
			}
			if !ok {
				return "", false, nil
			}
			if b == '\r' || b == '\n' {
				break
			}
		}
	}

	res, _, err := rr.sc.fillBuf(keyDelims)
	if err != nil {
		return "", false, err
	}
	switch {
	case res == foundDelim:
		rr.noValue = false
		// The conventional separator is exactly one space after the ':'.
		// Consume it if present; any other byte, including a second space,
		// is part of the value.
		b, ok, err := rr.sc.peekByte()
		if err != nil {
			return "", false, err
		}
		if ok && b == ' ' {
			if _, _, err := rr.sc.readByte(); err != nil {
				return "", false, err
			}
		}
	case res == foundEOF && len(rr.sc.buf) == 0:
		return "", false, nil
	default:
		rr.noValue = true
	}

	return rr.sc.decodeAll(), true, nil
}

func decodeRecord(sc *scanner, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeRecord(sc, v.Elem())
	case reflect.Struct:
		return decodeRecordStruct(sc, v)
	case reflect.Map:
		return decodeRecordMap(sc, v)
	case reflect.Interface:
		if v.NumMethod() == 0 {
			m := reflect.ValueOf(map[string]any{})
			if err := decodeRecordMap(sc, m); err != nil {
				return err
			}
			v.Set(m)
			return nil
		}
	}
	return errCustomf("cannot decode a document into %v", v.Type())
}

func decodeRecordStruct(sc *scanner, v reflect.Value) error {
	fields := fieldsByKey(v)
	rr := &recordReader{sc: sc}

	for {
		key, ok, err := rr.nextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		field, known := fields[key]
		if !known {
			// The value is never read. nextKey notices the mid-line cursor
			// and skips the rest of the line.
			continue
		}
		if rr.noValue {
			if err := decodeNoValue(key, field); err != nil {
				return err
			}
			continue
		}
		if err := decodeValue(valueDecoder{sc: sc}, field); err != nil {
			return err
		}
	}
}

func decodeRecordMap(sc *scanner, v reflect.Value) error {
	if v.IsNil() {
		v.Set(reflect.MakeMap(v.Type()))
	}
	keyType := v.Type().Key()
	valueType := v.Type().Elem()
	rr := &recordReader{sc: sc}

	for {
		key, ok, err := rr.nextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		k := reflect.New(keyType).Elem()
		if err := setKeyFromText(key, k); err != nil {
			return err
		}
		value := reflect.New(valueType).Elem()
		if rr.noValue {
			if err := decodeNoValue(key, value); err != nil {
				return err
			}
		} else if err := decodeValue(valueDecoder{sc: sc}, value); err != nil {
			return err
		}
		v.SetMapIndex(k, value)
	}
}

// fieldsByKey maps the document keys a struct accepts to its fields,
// looking at the `aa` tag, then the `json` tag, then the field name and its
// snake_case form.
func fieldsByKey(v reflect.Value) map[string]reflect.Value {
	t := v.Type()
	fields := make(map[string]reflect.Value)

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if fieldType.PkgPath != "" {
			continue
		}

		if tag, ok := fieldType.Tag.Lookup("aa"); ok {
			if tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			fields[name] = field
			continue
		}

		if tag, ok := fieldType.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			fields[name] = field
			continue
		}

		fields[fieldType.Name] = field
		fields[toSnakeCase(fieldType.Name)] = field
	}

	return fields
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			result.WriteRune('_')
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// decodeNoValue handles an entry whose key had no value. Only targets with
// some notion of emptiness accept it.
func decodeNoValue(key string, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer:
		return nil
	case reflect.Interface:
		if v.NumMethod() == 0 {
			return nil
		}
	case reflect.Struct:
		if v.NumField() == 0 {
			return nil
		}
	}
	return errCustomf("key %q has no value, cannot decode into %v", key, v.Type())
}

// decodeValue reads one value into v, dispatching on v's type. The target
// type decides which decoding operation runs; the scanner never inspects
// the target.
func decodeValue(vd valueDecoder, v reflect.Value) error {
	if v.Kind() != reflect.Pointer && v.CanAddr() {
		if tu, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			// Enum-style targets receive the decoded text as their
			// discriminant and apply their own validation.
			s, err := vd.str()
			if err != nil {
				return err
			}
			if err := tu.UnmarshalText([]byte(s)); err != nil {
				return &CustomError{Message: err.Error()}
			}
			return nil
		}
	}

	if v.Type() == reflect.TypeFor[Char]() {
		r, text, ok, err := vd.charVal()
		if err != nil {
			return err
		}
		if !ok {
			return errCustomf("value %q is not exactly one character", text)
		}
		v.SetInt(int64(r))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := vd.boolVal()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := vd.intVal(v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := vd.uintVal(v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := vd.floatVal(v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil

	case reflect.String:
		s, err := vd.str()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := vd.raw()
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		return decodeSeq(vd, v)

	case reflect.Array:
		return decodeTupleArray(vd, v)

	case reflect.Struct:
		if v.NumField() == 0 {
			// A unit-shaped target. An empty value is the format's notion
			// of "no value"; anything else doesn't fit.
			text, ok, err := vd.unitVal()
			if err != nil {
				return err
			}
			if !ok {
				return errCustomf("unexpected value %q for %v", text, v.Type())
			}
			return nil
		}
		// In value position a struct is a tuple: its fields are filled in
		// declaration order from the '|'-separated elements.
		return decodeTupleStruct(vd, v)

	case reflect.Pointer:
		present, err := vd.optionVal()
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeValue(vd, v.Elem())

	case reflect.Interface:
		if v.NumMethod() == 0 {
			s, err := vd.str()
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(s))
			return nil
		}
	}

	return errCustomf("cannot decode a value into %v", v.Type())
}

func decodeSeq(vd valueDecoder, v reflect.Value) error {
	sa := vd.seq()
	for {
		more, err := sa.next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := decodeValue(sa.elem(), elem); err != nil {
			return err
		}
		v.Set(reflect.Append(v, elem))
	}
}

func decodeTupleArray(vd valueDecoder, v reflect.Value) error {
	sa := vd.seq()
	for i := 0; i < v.Len(); i++ {
		more, err := sa.next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := decodeValue(sa.elem(), v.Index(i)); err != nil {
			return err
		}
	}
	// Any elements beyond the array's length are left unread; the record
	// reader skips the rest of the line before the next key.
	return nil
}

func decodeTupleStruct(vd valueDecoder, v reflect.Value) error {
	sa := vd.seq()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}
		more, err := sa.next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := decodeValue(sa.elem(), v.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

// setKeyFromText sets a map key from decoded key text, parsing it with
// strconv for non-string key types.
func setKeyFromText(s string, v reflect.Value) error {
	if v.CanAddr() {
		if tu, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := tu.UnmarshalText([]byte(s)); err != nil {
				return &CustomError{Message: err.Error()}
			}
			return nil
		}
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return errCustomf("invalid key %q: %v", s, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return errCustomf("invalid key %q: %v", s, err)
		}
		v.SetUint(n)
	default:
		return errCustomf("unsupported map key type: %v", v.Type())
	}
	return nil
}
