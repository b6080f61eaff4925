package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"Deals {0} damage to {Target}", []string{"{0}", "{Target}"}},
		{"造成{0}点伤害", []string{"{0}"}},
		{"%d hits, %s", []string{"%d", "%s"}},
		{"Score: ${value}", []string{"${value}"}},
		{"100%% sure", nil},
		{"{0} then {0}", []string{"{0}", "{0}"}},
		{"plain text", nil},
		{"", nil},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Extract(tc.text), tc.text)
	}
}

func TestDrifted(t *testing.T) {
	assert.False(t, Drifted("Deals {0} damage", "造成{0}点伤害"))
	assert.False(t, Drifted("{A} and {B}", "{B}和{A}"))
	assert.True(t, Drifted("Deals {0} damage", "造成伤害"))
	assert.True(t, Drifted("Deals {0} damage", "造成{1}点伤害"))
	assert.False(t, Drifted("no args", "没有参数"))
}
