package pledge_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/pledgewall/pledge-engine/pledge"
)

func TestNameCollator_HebrewOrdering(t *testing.T) {
	// GIVEN: Hebrew names out of order
	// WHEN: Sorting with the Hebrew collator
	// THEN: Alphabet order holds (א before ב before ג)

	nc := pledge.NewNameCollator(language.Hebrew)
	names := []string{"גדי", "אבי", "בני"}

	sort.SliceStable(names, func(i, j int) bool { return nc.Less(names[i], names[j]) })

	assert.Equal(t, []string{"אבי", "בני", "גדי"}, names)
}

func TestNameCollator_CaseInsensitiveLatin(t *testing.T) {
	nc := pledge.NewNameCollator(language.English)

	assert.True(t, nc.Less("alpha", "Beta"), "collation ignores case where byte order would not")
	assert.False(t, nc.Less("Beta", "alpha"))
}
