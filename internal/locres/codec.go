package locres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"locmerge/internal/fsutil"
)

// Codec reads and writes a localization resource container. The container
// format itself is owned by the implementation or the tool behind it.
type Codec interface {
	Read(ctx context.Context, path string) (*Resource, error)
	Write(ctx context.Context, res *Resource, path string) error
}

// Codec names accepted by NewCodec.
const (
	CodecConverter = "converter"
	CodecJSON      = "json"
)

// NewCodec returns the codec registered under name.
func NewCodec(name, converterExe string) (Codec, error) {
	switch name {
	case CodecConverter:
		return NewConverterCodec(converterExe), nil
	case CodecJSON:
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unknown resource codec %q", name)
	}
}

// JSONCodec stores a resource in the snapshot layout: namespace → key → text.
// Source text is not part of that layout, so it is left empty on read and
// dropped on write.
type JSONCodec struct{}

// NewJSONCodec creates a JSON snapshot codec.
func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (c *JSONCodec) Read(_ context.Context, path string) (*Resource, error) {
	s, err := LoadSnapshot(path)
	if err != nil {
		return nil, err
	}

	res := NewResource()
	res.Origin = path
	for namespace, entries := range s {
		for key, text := range entries {
			res.Set(namespace, key, "", text)
		}
	}
	return res, nil
}

func (c *JSONCodec) Write(_ context.Context, res *Resource, path string) error {
	data, err := EncodeSnapshot(res.Snapshot())
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write resource: %w", err)
	}
	return nil
}

// EncodeSnapshot renders a snapshot as indented JSON with non-ASCII text
// kept verbatim.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}
