// Package locres models localization resources: the read-only JSON snapshots
// used as lookup sources and the mutable resource handle that gets patched
// and written back through a Codec.
package locres

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"locmerge/internal/stringtable"

	"github.com/rs/zerolog/log"
)

// Snapshot is a namespace → key → text mapping for one language.
type Snapshot map[string]map[string]string

// LoadSnapshot reads a localization snapshot document. The root must be an
// object; namespace values that are not objects and texts that are not
// strings are skipped, and a null text counts as absent.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read localization snapshot: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	s := make(Snapshot, len(root))
	for namespace, raw := range root {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
			log.Debug().Str("path", path).Str("namespace", namespace).Msg("Namespace is not an object, skipping")
			continue
		}

		texts := make(map[string]string, len(entries))
		for key, rawText := range entries {
			var text *string
			if err := json.Unmarshal(rawText, &text); err != nil || text == nil {
				log.Debug().Str("path", path).Str("namespace", namespace).Str("key", key).Msg("Text is not a string, skipping")
				continue
			}
			texts[key] = *text
		}
		s[namespace] = texts
	}
	return s, nil
}

// SplitID splits a composite identifier at its first separator.
func SplitID(id string) (namespace, key string, ok bool) {
	return strings.Cut(id, stringtable.Separator)
}

// Lookup resolves a composite identifier against a snapshot.
//
// A dotted identifier must match both the namespace and the key. A bare key is
// searched for in every namespace, in lexical namespace order, and the first
// hit wins. Lookup never fails; a miss reports ok=false.
func Lookup(s Snapshot, id string) (string, bool) {
	if len(s) == 0 {
		return "", false
	}

	if namespace, key, ok := SplitID(id); ok {
		text, found := s[namespace][key]
		return text, found
	}

	for _, namespace := range s.Namespaces() {
		if text, ok := s[namespace][id]; ok {
			return text, true
		}
	}
	return "", false
}

// Namespaces returns the snapshot's namespaces in lexical order.
func (s Snapshot) Namespaces() []string {
	names := make([]string, 0, len(s))
	for ns := range s {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}
