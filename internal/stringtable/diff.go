package stringtable

// Change is one modified entry: the same key holds different text in the
// enhanced and the original table.
type Change struct {
	Enhanced string
	Original string
}

// Diff compares two versions of a string table and returns the entries whose
// text differs, keyed by composite identifier. Only keys present in both tables
// are considered; insertions and deletions are not reported.
//
// The enhanced table's namespace wins; the original's is used when it is empty.
func Diff(enhanced, original *Table) map[string]Change {
	changes := make(map[string]Change)
	if enhanced == nil || original == nil {
		return changes
	}

	namespace := enhanced.Namespace
	if namespace == "" {
		namespace = original.Namespace
	}

	for key, enhancedValue := range enhanced.Entries {
		originalValue, ok := original.Entries[key]
		if !ok || originalValue == enhancedValue {
			continue
		}
		changes[ComposeID(namespace, key)] = Change{
			Enhanced: enhancedValue,
			Original: originalValue,
		}
	}

	return changes
}
