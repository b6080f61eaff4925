package stringtable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Separator joins a table namespace and an entry key into a composite identifier.
const Separator = "."

// ErrNotStringTable is returned when a document does not have the string-table shape.
var ErrNotStringTable = errors.New("not a string table document")

// Table is one string-table document: a namespace plus its key→text entries.
type Table struct {
	// Namespace is the TableNamespace field; it may be empty.
	Namespace string
	// Entries maps entry keys to source text.
	Entries map[string]string
	// Path is the file the table was loaded from, if any.
	Path string
}

// document mirrors the exported asset layout:
//
//	[ { "StringTable": { "TableNamespace": "...", "KeysToEntries": { "key": "text" } } } ]
type document struct {
	StringTable *json.RawMessage `json:"StringTable"`
}

type tableBody struct {
	TableNamespace string                     `json:"TableNamespace"`
	KeysToEntries  map[string]json.RawMessage `json:"KeysToEntries"`
}

// Load reads and parses a string-table file. Read and JSON syntax errors are
// returned as-is (wrapped); a well-formed document of the wrong shape yields
// ErrNotStringTable.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read string table: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Parse decodes a string-table document.
func Parse(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotStringTable
		}
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotStringTable
	}

	// Only the first element is a string table; anything after it is ignored.
	var doc document
	if err := json.Unmarshal(docs[0], &doc); err != nil {
		return nil, ErrNotStringTable
	}
	if doc.StringTable == nil {
		return nil, ErrNotStringTable
	}

	var body tableBody
	if err := json.Unmarshal(*doc.StringTable, &body); err != nil {
		return nil, ErrNotStringTable
	}

	t := &Table{
		Namespace: body.TableNamespace,
		Entries:   make(map[string]string, len(body.KeysToEntries)),
	}
	for key, raw := range body.KeysToEntries {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("%w: entry %q is not a string", ErrNotStringTable, key)
		}
		t.Entries[key] = value
	}

	return t, nil
}

// ComposeID builds the composite identifier for a key: "namespace.key", or
// the bare key when the namespace is empty.
func ComposeID(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + Separator + key
}
