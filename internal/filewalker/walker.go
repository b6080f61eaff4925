package filewalker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultExtension is the file type holding exported string tables.
const DefaultExtension = ".json"

// Walker traverses a content tree and collects candidate table files.
type Walker struct {
	ext string
}

// NewWalker creates a Walker for exported JSON assets.
func NewWalker() *Walker {
	return &Walker{ext: DefaultExtension}
}

// FileEntry represents a discovered file.
type FileEntry struct {
	Path string
	// Name is the base filename, the key used to match files across trees.
	Name string
}

// Pair is an enhanced/original file couple that share a filename.
type Pair struct {
	Enhanced FileEntry
	Original FileEntry
}

// Walk discovers all candidate files under the given root directory, in
// lexical order.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != w.ext {
			return nil
		}

		entries = append(entries, FileEntry{
			Path: path,
			Name: d.Name(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Debug().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

// MatchByName pairs enhanced files with original files of the same base name.
// Files named reserved are left out on both sides. Subdirectories are not
// compared: when the original tree holds the same name twice, the file walked
// last is used. Pairs follow the enhanced walk order.
func MatchByName(enhanced, original []FileEntry, reserved string) []Pair {
	byName := make(map[string]FileEntry, len(original))
	for _, e := range original {
		if e.Name == reserved {
			continue
		}
		byName[e.Name] = e
	}

	var pairs []Pair
	for _, e := range enhanced {
		if e.Name == reserved {
			continue
		}
		if o, ok := byName[e.Name]; ok {
			pairs = append(pairs, Pair{Enhanced: e, Original: o})
		}
	}

	return pairs
}
