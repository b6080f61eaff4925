package workfile

import (
	"sort"

	"locmerge/internal/stringtable"
)

// StalenessReport compares an existing work file with a fresh diff of the
// content trees. It only reports; nothing is merged.
type StalenessReport struct {
	// Added are identifiers in the fresh diff but not in the work file.
	Added []string
	// Removed are identifiers in the work file that no longer differ.
	Removed []string
	// Changed are identifiers whose enhanced or original text moved since
	// the work file was generated.
	Changed []string
	// Edited are identifiers with a reviewed translation; regenerating the
	// work file would discard them.
	Edited []string
}

// Stale reports whether the work file no longer matches the content trees.
func (r StalenessReport) Stale() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || len(r.Changed) > 0
}

// Compare builds a staleness report for wf against fresh changes.
func Compare(wf WorkFile, fresh map[string]stringtable.Change) StalenessReport {
	var r StalenessReport

	for id, e := range wf {
		if e != nil && e.Edited() {
			r.Edited = append(r.Edited, id)
		}

		c, ok := fresh[id]
		switch {
		case !ok:
			r.Removed = append(r.Removed, id)
		case e == nil || c.Enhanced != e.Enhanced || c.Original != e.Ori:
			r.Changed = append(r.Changed, id)
		}
	}
	for id := range fresh {
		if _, ok := wf[id]; !ok {
			r.Added = append(r.Added, id)
		}
	}

	sort.Strings(r.Added)
	sort.Strings(r.Removed)
	sort.Strings(r.Changed)
	sort.Strings(r.Edited)
	return r
}
