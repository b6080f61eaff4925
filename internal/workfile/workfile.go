// Package workfile holds the reviewable work file: every changed source
// string with its original-language and translated-language text, plus the
// translation proposed for the patched resource.
package workfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"locmerge/internal/locres"
	"locmerge/internal/stringtable"
)

// Entry is one pending translation update. The JSON field names are the
// on-disk format and must not change.
type Entry struct {
	Enhanced string `json:"enhanced"`
	Ori      string `json:"ori"`
	// LocOri is the original-language text; nil when the lookup missed.
	LocOri *string `json:"loc_ori"`
	// LocMod is the translated-language text as currently shipped.
	LocMod *string `json:"loc_mod"`
	// LocNew is the translation to patch in. It starts out equal to LocMod.
	LocNew *string `json:"loc_new"`

	// Extra holds members added to the file by hand. They are written back
	// after the known fields, in key order.
	Extra map[string]json.RawMessage `json:"-"`

	// nulls marks source texts that were null on disk.
	nulls uint8
}

const (
	nullEnhanced uint8 = 1 << iota
	nullOri
)

// UnmarshalJSON decodes an entry, keeping unknown members in Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	*e = Entry{}
	for name, raw := range members {
		var err error
		switch name {
		case "enhanced":
			err = e.decodeText(raw, &e.Enhanced, nullEnhanced)
		case "ori":
			err = e.decodeText(raw, &e.Ori, nullOri)
		case "loc_ori":
			err = json.Unmarshal(raw, &e.LocOri)
		case "loc_mod":
			err = json.Unmarshal(raw, &e.LocMod)
		case "loc_new":
			err = json.Unmarshal(raw, &e.LocNew)
		default:
			if e.Extra == nil {
				e.Extra = make(map[string]json.RawMessage)
			}
			e.Extra[name] = append(json.RawMessage(nil), raw...)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

func (e *Entry) decodeText(raw json.RawMessage, dst *string, flag uint8) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		e.nulls |= flag
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// MarshalJSON writes the known fields in their fixed order followed by Extra.
// A source text that was null on disk stays null while it is empty.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	text := func(v string, flag uint8) any {
		if v == "" && e.nulls&flag != 0 {
			return nil
		}
		return v
	}
	fields := []struct {
		name  string
		value any
	}{
		{"enhanced", text(e.Enhanced, nullEnhanced)},
		{"ori", text(e.Ori, nullOri)},
		{"loc_ori", e.LocOri},
		{"loc_mod", e.LocMod},
		{"loc_new", e.LocNew},
	}

	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encoder.Encode(f.name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encoder.Encode(f.value); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(e.Extra))
	for name := range e.Extra {
		if !knownField(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		buf.WriteByte(',')
		if err := encoder.Encode(name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if raw := e.Extra[name]; len(raw) > 0 {
			buf.Write(raw)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func knownField(name string) bool {
	switch name {
	case "enhanced", "ori", "loc_ori", "loc_mod", "loc_new":
		return true
	}
	return false
}

// WorkFile maps composite identifiers to entries.
type WorkFile map[string]*Entry

// IDs returns the identifiers in sorted order.
func (wf WorkFile) IDs() []string {
	ids := make([]string, 0, len(wf))
	for id := range wf {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edited reports whether the proposed translation differs from the shipped one.
func (e *Entry) Edited() bool {
	return !equalPtr(e.LocNew, e.LocMod)
}

// Enrich builds a work file from diff changes, resolving each identifier in
// the original-language and translated-language snapshots. Misses are
// recorded as nil.
func Enrich(changes map[string]stringtable.Change, original, translated locres.Snapshot) WorkFile {
	wf := make(WorkFile, len(changes))
	for id, c := range changes {
		e := &Entry{
			Enhanced: c.Enhanced,
			Ori:      c.Original,
			LocOri:   lookup(original, id),
			LocMod:   lookup(translated, id),
		}
		e.LocNew = clonePtr(e.LocMod)
		wf[id] = e
	}
	return wf
}

func lookup(s locres.Snapshot, id string) *string {
	text, ok := locres.Lookup(s, id)
	if !ok {
		return nil
	}
	return &text
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Str returns a pointer to s, for building entries by hand.
func Str(s string) *string { return &s }
