package aa

import (
	"io"
	"iter"
)

// An Entry is one key, optionally paired with one value, as found on a
// non-blank, non-comment line of a .aa document.
type Entry struct {
	// Key is the decoded key text.
	Key string

	// Value is the decoded value text with no further interpretation:
	// sequence delimiters are left intact. It is empty when HasValue is
	// false.
	Value string

	// HasValue is false when the line had no ':' delimiter after the key.
	HasValue bool
}

// Entries iterates over the entries of the .aa document read from r, in
// document order. file is used only in error messages and may be empty.
//
// Entries is the untyped view of a document: every value is delivered as a
// string. Use a [Decoder] to pull values out as other shapes. Iteration
// stops at the first error, which is yielded alongside a zero Entry.
func Entries(r io.Reader, file string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rr := &recordReader{sc: newScanner(r, file)}
		for {
			key, ok, err := rr.nextKey()
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !ok {
				return
			}

			entry := Entry{Key: key}
			if !rr.noValue {
				entry.HasValue = true
				entry.Value, err = (valueDecoder{sc: rr.sc}).str()
				if err != nil {
					yield(Entry{}, err)
					return
				}
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}
