package stringtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffReportsOnlyChangedCommonKeys(t *testing.T) {
	enhanced := &Table{Namespace: "Battle", Entries: map[string]string{
		"atk_desc":  "new desc",
		"def_desc":  "Defend",
		"only_enh":  "added",
		"heal_desc": "Heals 10",
	}}
	original := &Table{Namespace: "Battle", Entries: map[string]string{
		"atk_desc":  "old desc",
		"def_desc":  "Defend",
		"only_ori":  "removed",
		"heal_desc": "Heals 10 ",
	}}

	got := Diff(enhanced, original)

	assert.Equal(t, map[string]Change{
		"Battle.atk_desc":  {Enhanced: "new desc", Original: "old desc"},
		"Battle.heal_desc": {Enhanced: "Heals 10", Original: "Heals 10 "},
	}, got)
}

func TestDiffNamespaceFallback(t *testing.T) {
	enhanced := &Table{Entries: map[string]string{"k": "a"}}
	original := &Table{Namespace: "Menu", Entries: map[string]string{"k": "b"}}

	assert.Contains(t, Diff(enhanced, original), "Menu.k")

	original.Namespace = ""
	got := Diff(enhanced, original)
	assert.Equal(t, map[string]Change{"k": {Enhanced: "a", Original: "b"}}, got)
}

func TestDiffIsOrderIndependent(t *testing.T) {
	enhanced := &Table{Namespace: "N", Entries: map[string]string{}}
	original := &Table{Namespace: "N", Entries: map[string]string{}}
	for i := 0; i < 200; i++ {
		key := string(rune('a'+i%26)) + string(rune('0'+i/26))
		enhanced.Entries[key] = key
		if i%3 == 0 {
			original.Entries[key] = key + "!"
		} else {
			original.Entries[key] = key
		}
	}

	first := Diff(enhanced, original)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diff(enhanced, original))
	}
	assert.Len(t, first, 67)
}

func TestDiffNilTables(t *testing.T) {
	assert.Empty(t, Diff(nil, &Table{}))
	assert.Empty(t, Diff(&Table{}, nil))
}
