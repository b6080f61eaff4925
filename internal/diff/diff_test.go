package diff

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"locmerge/internal/stringtable"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableDoc(namespace string, entries map[string]string) string {
	body := ""
	for k, v := range entries {
		if body != "" {
			body += ","
		}
		body += fmt.Sprintf("%q: %q", k, v)
	}
	return fmt.Sprintf(`[{"StringTable": {"TableNamespace": %q, "KeysToEntries": {%s}}}]`, namespace, body)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCollectAcrossTrees(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")

	write(t, filepath.Join(ori, "Content", "ST_Battle.json"), tableDoc("Battle", map[string]string{"atk_desc": "old desc", "same": "x"}))
	write(t, filepath.Join(enh, "Other", "ST_Battle.json"), tableDoc("Battle", map[string]string{"atk_desc": "new desc", "same": "x"}))

	write(t, filepath.Join(ori, "ST_Menu.json"), tableDoc("Menu", map[string]string{"title": "Old"}))
	write(t, filepath.Join(enh, "ST_Menu.json"), tableDoc("Menu", map[string]string{"title": "New"}))

	// Not a string table: contributes nothing.
	write(t, filepath.Join(ori, "DT_Items.json"), `[{"Rows": {}}]`)
	write(t, filepath.Join(enh, "DT_Items.json"), `[{"Rows": {}}]`)

	// Reserved snapshot name is never compared.
	write(t, filepath.Join(ori, "Game.json"), tableDoc("Battle", map[string]string{"atk_desc": "a"}))
	write(t, filepath.Join(enh, "Game.json"), tableDoc("Battle", map[string]string{"atk_desc": "b"}))

	changes, stats, err := NewScanner(ori, enh, "Game.json").Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]stringtable.Change{
		"Battle.atk_desc": {Enhanced: "new desc", Original: "old desc"},
		"Menu.title":      {Enhanced: "New", Original: "Old"},
	}, changes)
	assert.Equal(t, Stats{Pairs: 3, Skipped: 1, Changes: 2}, stats)
}

func TestCollectLastWriterWins(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")

	write(t, filepath.Join(ori, "A.json"), tableDoc("Shared", map[string]string{"k": "a-old"}))
	write(t, filepath.Join(enh, "A.json"), tableDoc("Shared", map[string]string{"k": "a-new"}))
	write(t, filepath.Join(ori, "B.json"), tableDoc("Shared", map[string]string{"k": "b-old"}))
	write(t, filepath.Join(enh, "B.json"), tableDoc("Shared", map[string]string{"k": "b-new"}))

	changes, stats, err := NewScanner(ori, enh, "Game.json").Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, stringtable.Change{Enhanced: "b-new", Original: "b-old"}, changes["Shared.k"])
	assert.Equal(t, 1, stats.Collisions)
}

func TestCollectNoMatchingFiles(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")
	write(t, filepath.Join(ori, "A.json"), tableDoc("N", nil))
	write(t, filepath.Join(enh, "B.json"), tableDoc("N", nil))
	write(t, filepath.Join(ori, "Game.json"), "{}")
	write(t, filepath.Join(enh, "Game.json"), "{}")

	_, _, err := NewScanner(ori, enh, "Game.json").Collect(context.Background())
	require.ErrorIs(t, err, ErrNoMatchingFiles)
}

func TestCollectMissingRoot(t *testing.T) {
	root := t.TempDir()
	_, _, err := NewScanner(filepath.Join(root, "ori"), filepath.Join(root, "enh"), "Game.json").Collect(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatchingFiles)
}

func TestCollectMalformedJSONIsFatal(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")
	write(t, filepath.Join(ori, "A.json"), `[{"StringTable": `)
	write(t, filepath.Join(enh, "A.json"), `[{"Rows": {}}]`)

	_, _, err := NewScanner(ori, enh, "Game.json").Collect(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, stringtable.ErrNotStringTable)
}

func TestCollectOrderIndependentOfWorkers(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")

	for i := range 20 {
		name := fmt.Sprintf("ST_%02d.json", i)
		write(t, filepath.Join(ori, name), tableDoc("Shared", map[string]string{"k": fmt.Sprintf("old-%02d", i)}))
		write(t, filepath.Join(enh, name), tableDoc("Shared", map[string]string{"k": fmt.Sprintf("new-%02d", i)}))
	}

	for _, workers := range []int{1, 4, 16} {
		scanner := NewScanner(ori, enh, "Game.json")
		scanner.Workers = workers

		changes, stats, err := scanner.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stringtable.Change{Enhanced: "new-19", Original: "old-19"}, changes["Shared.k"], "workers=%d", workers)
		assert.Equal(t, 19, stats.Collisions)
	}
}

func TestCollectCancelled(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")
	write(t, filepath.Join(ori, "A.json"), tableDoc("N", map[string]string{"k": "a"}))
	write(t, filepath.Join(enh, "A.json"), tableDoc("N", map[string]string{"k": "b"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	changes, _, err := NewScanner(ori, enh, "Game.json").Collect(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		return
	}
	assert.Len(t, changes, 1)
}

func TestCollectLogsSkipsAndCollisions(t *testing.T) {
	root := t.TempDir()
	ori := filepath.Join(root, "ori")
	enh := filepath.Join(root, "enh")

	write(t, filepath.Join(ori, "A.json"), tableDoc("Shared", map[string]string{"k": "a-old"}))
	write(t, filepath.Join(enh, "A.json"), tableDoc("Shared", map[string]string{"k": "a-new"}))
	write(t, filepath.Join(ori, "B.json"), tableDoc("Shared", map[string]string{"k": "b-old"}))
	write(t, filepath.Join(enh, "B.json"), tableDoc("Shared", map[string]string{"k": "b-new"}))
	write(t, filepath.Join(ori, "DT_Items.json"), `[{"Rows": {}}]`)
	write(t, filepath.Join(enh, "DT_Items.json"), `[{"Rows": {}}]`)

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	_, _, err := NewScanner(ori, enh, "Game.json").Collect(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "Not a string table, skipping")
	assert.Contains(t, out, `"skipped":1`)
	assert.Contains(t, out, `"collisions":1`)
}
