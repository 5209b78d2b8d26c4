package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// titleNumberPattern matches the token number embedded in a title, e.g. "Ninja #42".
var titleNumberPattern = regexp.MustCompile(`#(\d+)`)

// TokenKey identifies a token in the metadata store and the rarity table.
// It is either the number parsed out of the token title or, when the title
// carries no "#<digits>" part, the literal title itself. The two forms are
// kept apart explicitly instead of overloading a single string.
type TokenKey struct {
	// Number is the parsed token number. Only meaningful when Numeric is true.
	Number int64 `json:"number,omitempty"`
	// Title is the literal title fallback. Only meaningful when Numeric is false.
	Title string `json:"title,omitempty"`
	// Numeric reports which form of the key is in use.
	Numeric bool `json:"numeric"`
}

// KeyFromTitle derives the token key from a metadata title.
func KeyFromTitle(title string) TokenKey {
	if m := titleNumberPattern.FindStringSubmatch(title); m != nil {
		number, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			return TokenKey{Number: number, Numeric: true}
		}
	}
	return TokenKey{Title: title}
}

// KeyFromString reconstructs a key from its persisted string form.
func KeyFromString(s string) TokenKey {
	if number, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TokenKey{Number: number, Numeric: true}
	}
	return TokenKey{Title: s}
}

// String returns the persisted form of the key: the bare number for numeric
// keys, the verbatim title otherwise.
func (k TokenKey) String() string {
	if k.Numeric {
		return strconv.FormatInt(k.Number, 10)
	}
	return k.Title
}

// Less orders keys deterministically: numeric keys ascending first, then
// literal keys lexicographically.
func (k TokenKey) Less(other TokenKey) bool {
	if k.Numeric != other.Numeric {
		return k.Numeric
	}
	if k.Numeric {
		return k.Number < other.Number
	}
	return k.Title < other.Title
}

func (k TokenKey) GoString() string {
	if k.Numeric {
		return fmt.Sprintf("TokenKey(#%d)", k.Number)
	}
	return fmt.Sprintf("TokenKey(%q)", k.Title)
}
