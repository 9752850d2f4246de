// Localized name ordering for donor and group lists. The original data
// is Hebrew, so plain byte comparison orders names wrong; a collator for
// the configured locale gives the ordering people expect on screen.
package pledge

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameCollator compares display names under one locale. It is not safe
// for concurrent use; callers serialize access.
type NameCollator struct {
	c *collate.Collator
}

// NewNameCollator builds a collator for the given locale tag.
func NewNameCollator(tag language.Tag) *NameCollator {
	return &NameCollator{c: collate.New(tag)}
}

// Less reports whether a sorts before b.
func (nc *NameCollator) Less(a, b string) bool {
	return nc.c.CompareString(a, b) < 0
}
