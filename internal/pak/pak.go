// Package pak builds the mod archive by handing the patched tree to an
// external packer (UnrealPak).
package pak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ManifestName is the file list handed to the packer, written in its directory.
const ManifestName = "filelist.txt"

var (
	ErrMissingModBase = errors.New("mod base directory does not exist")
	ErrMissingPacker  = errors.New("packer executable not found")
)

// Packager runs the packer over a mod tree.
type Packager struct {
	// Dir is the packer's directory; the manifest is written there and the
	// packer runs with it as working directory.
	Dir string
	// Exe is the packer executable, relative to Dir unless absolute.
	Exe string
	// Launcher, if set, is run with the executable as its first argument
	// (e.g. "wine").
	Launcher string
	// MountDepth is how many "..\" segments the mount point climbs.
	MountDepth int
}

// Manifest renders the file list mapping every file under modBase to the
// mount point.
func (p *Packager) Manifest(modBase string) string {
	mount := strings.Repeat(`..\`, p.MountDepth) + `*.*`
	return `"` + modBase + `\*.*" "` + mount + `"` + "\n"
}

// Build packs modBase into output. Both paths are made absolute because the
// packer runs from Dir.
func (p *Packager) Build(ctx context.Context, modBase, output string) error {
	info, err := os.Stat(modBase)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrMissingModBase, modBase)
	}

	exe := p.Exe
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(p.Dir, exe)
	}
	if _, err := os.Stat(exe); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingPacker, exe)
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return fmt.Errorf("resolve packer path: %w", err)
	}

	modBase, err = filepath.Abs(modBase)
	if err != nil {
		return fmt.Errorf("resolve mod base: %w", err)
	}
	output, err = filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	manifest := filepath.Join(p.Dir, ManifestName)
	if err := os.WriteFile(manifest, []byte(p.Manifest(modBase)), 0644); err != nil {
		return fmt.Errorf("write file list: %w", err)
	}

	args := []string{output, "-create=" + ManifestName, "-compress"}
	name := exe
	if p.Launcher != "" {
		name = p.Launcher
		args = append([]string{exe}, args...)
	}

	log.Info().Str("packer", exe).Str("output", output).Msg("Packing mod")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = p.Dir
	var stderr strings.Builder
	cmd.Stdout = os.Stderr
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run packer: %w: %s", err, msg)
		}
		return fmt.Errorf("run packer: %w", err)
	}

	log.Info().Str("path", output).Msg("Created archive")
	return nil
}
