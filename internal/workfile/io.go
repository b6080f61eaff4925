package workfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"locmerge/internal/fsutil"

	"github.com/rs/zerolog/log"
)

// Encode writes the work file as indented JSON. Keys come out sorted and
// non-ASCII text is written verbatim, so the file diffs cleanly by hand.
func Encode(w io.Writer, wf WorkFile) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(wf); err != nil {
		return fmt.Errorf("encode work file: %w", err)
	}
	return nil
}

// Decode parses a work file. The document is not validated beyond what the
// JSON decoder enforces.
func Decode(data []byte) (WorkFile, error) {
	var wf WorkFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Save writes the work file to path atomically.
func Save(path string, wf WorkFile) error {
	var buf bytes.Buffer
	if err := Encode(&buf, wf); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save work file: %w", err)
	}

	log.Info().Str("path", path).Int("entries", len(wf)).Msg("Work file saved")
	return nil
}

// Load reads the work file at path.
func Load(path string) (WorkFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read work file: %w", err)
	}

	wf, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wf, nil
}
