package patch

import (
	"locmerge/internal/interpolation"
	"locmerge/internal/locres"
	"locmerge/internal/workfile"

	"github.com/rs/zerolog/log"
)

// Skip reasons recorded in Result.SkippedIDs.
const (
	SkipNoNamespace   = "no-namespace"
	SkipNotFound      = "not-found"
	SkipNoTranslation = "no-translation"
)

// Result counts what a patch pass did.
type Result struct {
	Replaced int
	Skipped  int
	// SkippedIDs maps each skipped identifier to its reason.
	SkippedIDs map[string]string
	// PlaceholderDrift lists patched identifiers whose translation carries
	// different format arguments than the enhanced source.
	PlaceholderDrift []string
}

// Apply writes every entry's proposed translation into the matching slot of
// res. Only dotted identifiers are patched, and only when both the namespace
// and the key already exist in res; everything else is counted as skipped.
// Applying the same work file twice gives the same resource and counts.
func Apply(wf workfile.WorkFile, res *locres.Resource) Result {
	result := Result{SkippedIDs: make(map[string]string)}

	skip := func(id, reason string) {
		result.Skipped++
		result.SkippedIDs[id] = reason
		log.Debug().Str("id", id).Str("reason", reason).Msg("Entry not patched")
	}

	for _, id := range wf.IDs() {
		e := wf[id]

		namespace, key, ok := locres.SplitID(id)
		if !ok {
			skip(id, SkipNoNamespace)
			continue
		}
		slot, ok := res.Get(namespace, key)
		if !ok {
			skip(id, SkipNotFound)
			continue
		}
		if e == nil || e.LocNew == nil {
			skip(id, SkipNoTranslation)
			continue
		}

		slot.Translation = *e.LocNew
		result.Replaced++

		if interpolation.Drifted(e.Enhanced, *e.LocNew) {
			result.PlaceholderDrift = append(result.PlaceholderDrift, id)
			log.Warn().
				Str("id", id).
				Strs("source", interpolation.Extract(e.Enhanced)).
				Strs("translation", interpolation.Extract(*e.LocNew)).
				Msg("Format arguments differ from source")
		}
	}

	log.Info().
		Int("replaced", result.Replaced).
		Int("skipped", result.Skipped).
		Msg("Patch applied")

	return result
}
