package stringtable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const battleTable = `[
  {
    "Type": "StringTable",
    "Name": "ST_Battle",
    "StringTable": {
      "TableNamespace": "Battle",
      "KeysToEntries": {
        "atk_desc": "new desc",
        "def_desc": "Defend"
      }
    }
  }
]`

func TestParseStringTable(t *testing.T) {
	table, err := Parse([]byte(battleTable))
	require.NoError(t, err)

	assert.Equal(t, "Battle", table.Namespace)
	assert.Equal(t, map[string]string{"atk_desc": "new desc", "def_desc": "Defend"}, table.Entries)
}

func TestParseDefaultsMissingFields(t *testing.T) {
	table, err := Parse([]byte(`[{"StringTable": {}}]`))
	require.NoError(t, err)

	assert.Empty(t, table.Namespace)
	assert.Empty(t, table.Entries)
	assert.NotNil(t, table.Entries)
}

func TestParseStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, battleTable...)
	table, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Battle", table.Namespace)
}

func TestParseRejectsOtherShapes(t *testing.T) {
	cases := map[string]string{
		"object root":          `{"StringTable": {"TableNamespace": "X"}}`,
		"empty array":          `[]`,
		"scalar element":       `["StringTable"]`,
		"null element":         `[null]`,
		"missing StringTable":  `[{"Type": "DataTable", "Rows": {}}]`,
		"null StringTable":     `[{"StringTable": null}]`,
		"StringTable array":    `[{"StringTable": []}]`,
		"non-string entry":     `[{"StringTable": {"KeysToEntries": {"a": 1}}}]`,
		"non-string namespace": `[{"StringTable": {"TableNamespace": 3}}]`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrNotStringTable)
		})
	}
}

func TestParseSyntaxErrorIsNotShapeError(t *testing.T) {
	_, err := Parse([]byte(`[{"StringTable": `))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotStringTable)
}

func TestLoadRecordsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ST_Battle.json")
	require.NoError(t, os.WriteFile(path, []byte(battleTable), 0644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, table.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestComposeID(t *testing.T) {
	assert.Equal(t, "Battle.atk_desc", ComposeID("Battle", "atk_desc"))
	assert.Equal(t, "atk_desc", ComposeID("", "atk_desc"))
	assert.Equal(t, "Battle.", ComposeID("Battle", ""))
}
