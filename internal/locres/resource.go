package locres

import "sort"

// Entry is one translatable slot of a resource.
type Entry struct {
	Source      string
	Translation string
}

// Resource is a mutable, two-level localization resource. It is owned by a
// single run: loaded, patched, and written back.
type Resource struct {
	// Origin is the path the resource was read from. Codecs that rebuild a
	// container from its original use it on write.
	Origin     string
	Namespaces map[string]map[string]*Entry
}

// NewResource returns an empty resource.
func NewResource() *Resource {
	return &Resource{Namespaces: make(map[string]map[string]*Entry)}
}

// Get returns the slot for namespace and key.
func (r *Resource) Get(namespace, key string) (*Entry, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.Namespaces[namespace][key]
	return e, ok
}

// Set creates or replaces a slot.
func (r *Resource) Set(namespace, key, source, translation string) {
	if r.Namespaces == nil {
		r.Namespaces = make(map[string]map[string]*Entry)
	}
	ns, ok := r.Namespaces[namespace]
	if !ok {
		ns = make(map[string]*Entry)
		r.Namespaces[namespace] = ns
	}
	ns[key] = &Entry{Source: source, Translation: translation}
}

// Len returns the number of slots.
func (r *Resource) Len() int {
	n := 0
	for _, ns := range r.Namespaces {
		n += len(ns)
	}
	return n
}

// Snapshot copies the current translations into a Snapshot.
func (r *Resource) Snapshot() Snapshot {
	s := make(Snapshot, len(r.Namespaces))
	for namespace, entries := range r.Namespaces {
		m := make(map[string]string, len(entries))
		for key, e := range entries {
			m[key] = e.Translation
		}
		s[namespace] = m
	}
	return s
}

// slot is a flattened resource entry.
type slot struct {
	Namespace string
	Key       string
	*Entry
}

// sortedSlots lists every slot ordered by namespace, then key.
func (r *Resource) sortedSlots() []slot {
	slots := make([]slot, 0, r.Len())
	for namespace, entries := range r.Namespaces {
		for key, e := range entries {
			slots = append(slots, slot{Namespace: namespace, Key: key, Entry: e})
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Namespace != slots[j].Namespace {
			return slots[i].Namespace < slots[j].Namespace
		}
		return slots[i].Key < slots[j].Key
	})
	return slots
}
