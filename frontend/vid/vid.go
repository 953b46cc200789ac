// Package vid implements virtual identifiers: canonical, path-based names for
// every definition, independent of how they were written at a use site.
package vid

import (
	"slices"
	"strings"
)

// Separator is placed between segments when a Vid is rendered
const Separator = "::"

// Vid is an ordered, non-empty sequence of name segments
type Vid struct {
	Names []string
}

// New panics if names is empty, as an empty Vid is never valid
func New(names ...string) Vid {
	if len(names) == 0 {
		panic("vid: empty identifier")
	}
	return Vid{Names: slices.Clone(names)}
}

// Parse splits s on Separator
func Parse(s string) Vid {
	return New(strings.Split(s, Separator)...)
}

func (v Vid) String() string {
	return strings.Join(v.Names, Separator)
}

// Key is the canonical map key for v
func (v Vid) Key() string {
	return v.String()
}

func (v Vid) Len() int { return len(v.Names) }

func (v Vid) First() string { return v.Names[0] }

func (v Vid) Last() string { return v.Names[len(v.Names)-1] }

func (v Vid) IsZero() bool { return len(v.Names) == 0 }

func (v Vid) Equal(other Vid) bool {
	return slices.Equal(v.Names, other.Names)
}

// HasPrefix reports whether prefix is a (non-strict) prefix of v
func (v Vid) HasPrefix(prefix Vid) bool {
	if len(prefix.Names) > len(v.Names) {
		return false
	}
	return slices.Equal(v.Names[:len(prefix.Names)], prefix.Names)
}

// Concat is concatVid: the segments of a followed by the segments of b
func Concat(a, b Vid) Vid {
	names := make([]string, 0, len(a.Names)+len(b.Names))
	names = append(names, a.Names...)
	names = append(names, b.Names...)
	return Vid{Names: names}
}

// Scope is vidFromScope: v without its last segment.
// The second return value is false when v has a single segment.
func Scope(v Vid) (Vid, bool) {
	if len(v.Names) < 2 {
		return Vid{}, false
	}
	return Vid{Names: slices.Clone(v.Names[:len(v.Names)-1])}, true
}

// Append returns v extended with names
func (v Vid) Append(names ...string) Vid {
	return Concat(v, Vid{Names: names})
}

// Tail returns v without its first segment, or false if v has a single segment
func (v Vid) Tail() (Vid, bool) {
	if len(v.Names) < 2 {
		return Vid{}, false
	}
	return Vid{Names: slices.Clone(v.Names[1:])}, true
}
