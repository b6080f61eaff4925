package locres

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// csvKeySeparator joins namespace and key in the converter's CSV key column.
const csvKeySeparator = "/"

// ConverterCodec drives an UnrealLocres-compatible command line converter:
//
//	<exe> export <in.locres> -f csv -o <out.csv>
//	<exe> import <in.locres> <translations.csv> -f csv -o <out.locres>
//
// The CSV has a key,source,target header; the key column is "Namespace/Key",
// or just "Key" for the empty namespace. Writing rebuilds the container from
// the resource's Origin.
type ConverterCodec struct {
	exe string
}

// NewConverterCodec creates a codec backed by the converter executable exe.
func NewConverterCodec(exe string) *ConverterCodec {
	return &ConverterCodec{exe: exe}
}

func (c *ConverterCodec) Read(ctx context.Context, path string) (*Resource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat resource: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "locmerge-export-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "export.csv")
	if err := c.run(ctx, "export", path, "-f", "csv", "-o", csvPath); err != nil {
		return nil, err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open exported CSV: %w", err)
	}
	defer f.Close()

	res, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("decode exported CSV: %w", err)
	}
	res.Origin = path

	log.Debug().Str("path", path).Int("entries", res.Len()).Msg("Read resource through converter")
	return res, nil
}

func (c *ConverterCodec) Write(ctx context.Context, res *Resource, path string) error {
	if res.Origin == "" {
		return errors.New("write resource: converter needs the original container path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "locmerge-import-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "import.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create import CSV: %w", err)
	}
	if err := EncodeCSV(f, res); err != nil {
		f.Close()
		return fmt.Errorf("encode import CSV: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close import CSV: %w", err)
	}

	// Build next to the target and rename, so a failed import leaves no
	// half-written container behind.
	staged := path + ".tmp"
	defer os.Remove(staged)

	if err := c.run(ctx, "import", res.Origin, csvPath, "-f", "csv", "-o", staged); err != nil {
		return err
	}
	if err := os.Rename(staged, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func (c *ConverterCodec) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.exe, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", filepath.Base(c.exe), args[0], err, msg)
		}
		return fmt.Errorf("%s %s: %w", filepath.Base(c.exe), args[0], err)
	}
	return nil
}

// DecodeCSV reads a converter CSV export into a resource. A leading
// key,source,target header row is skipped.
func DecodeCSV(r io.Reader) (*Resource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	res := NewResource()
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if first {
			first = false
			if len(record) > 0 && strings.EqualFold(strings.TrimPrefix(record[0], "\ufeff"), "key") {
				continue
			}
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least 2 columns, got %d", lineOf(reader), len(record))
		}

		namespace, key := splitCSVKey(record[0])
		source := record[1]
		translation := ""
		if len(record) > 2 {
			translation = record[2]
		}
		res.Set(namespace, key, source, translation)
	}

	return res, nil
}

// EncodeCSV writes a resource in the converter's CSV layout, ordered by
// namespace and key.
func EncodeCSV(w io.Writer, res *Resource) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"key", "source", "target"}); err != nil {
		return err
	}

	for _, s := range res.sortedSlots() {
		key := s.Key
		if s.Namespace != "" {
			key = s.Namespace + csvKeySeparator + s.Key
		}
		if err := writer.Write([]string{key, s.Source, s.Translation}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func splitCSVKey(field string) (namespace, key string) {
	namespace, key, ok := strings.Cut(field, csvKeySeparator)
	if !ok {
		return "", field
	}
	return namespace, key
}

func lineOf(r *csv.Reader) int {
	line, _ := r.FieldPos(0)
	return line
}
