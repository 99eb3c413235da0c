// Package aa decodes ShopSite .aa files into Go values.
//
// The .aa format is the line-oriented key/value dialect that ShopSite's
// publishing tools produce. There is no public specification for it; the
// details implemented here are inferred from the files ShopSite itself
// generates. A document is a sequence of lines:
//
//	# a comment
//	store_name: Example Store
//	bgcolor: #FFFFD6
//	pages: index.html|about.html|contact.html
//	flag
//
// A line starting with '#', possibly after whitespace, is a comment. Blank
// and whitespace-only lines are ignored. Every other line is a key,
// optionally followed by ':' and a value; a single space after the ':' is
// the conventional separator and is stripped. A value containing '|'
// characters can be read as a sequence. A key with no ':' is a key with no
// value. Files are encoded in Windows-1252, and lines may end in LF or
// CR+LF, with the final line ending optional.
//
// Like the builtin json package, this package converts documents into Go
// values using reflection:
//
//	type Store struct {
//		Name    string   `aa:"store_name"`
//		BgColor string   `aa:"bgcolor"`
//		Pages   []string `aa:"pages"`
//	}
//
//	store := Store{}
//	err := aa.Unmarshal(data, &store)
//
// If a type implements [encoding.TextUnmarshaler], its scalar text is
// handed to that; otherwise scalars are parsed with the [strconv] package.
// The untyped view of a document is available through [Entries].
//
// # Parsing is not strict
//
// Because the format is reverse engineered, this package is deliberately
// lenient: it recovers a reasonable interpretation of unusual input rather
// than rejecting it, and it is not usable as a validator. A file this
// package accepts may still be one ShopSite itself would reject.
package aa
