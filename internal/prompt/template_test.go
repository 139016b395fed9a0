package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single line", "hello", "> hello"},
		{"multi line", "a\nb", "> a\n> b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quote(tt.in))
		})
	}
}

func TestListHelpers(t *testing.T) {
	assert.Equal(t, "", bullet(nil))
	assert.Equal(t, "- a\n- b\n", bullet([]string{"a", "b"}))
	assert.Equal(t, "", numbered(nil))
	assert.Equal(t, "1. a\n2. b\n", numbered([]string{"a", "b"}))
	assert.Equal(t, "  a\n  b", indent(2, "a\nb"))
}

func TestParseAndExecute(t *testing.T) {
	tmpl, err := parse("greeting", "Hello {{.ToolName}}, {{add 1 2}} sections.{{bullet .Avoid}}")
	require.NoError(t, err)

	out, err := execute(tmpl, Data{ToolName: "Ledgerly", Avoid: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ledgerly, 3 sections.- x\n", out)

	t.Run("unknown field", func(t *testing.T) {
		tmpl, err := parse("bad", "{{.NoSuchField}}")
		require.NoError(t, err)
		_, err = execute(tmpl, Data{})
		assert.Error(t, err)
	})

	t.Run("missing map key", func(t *testing.T) {
		tmpl, err := parse("map", "{{.tool_name}}")
		require.NoError(t, err)
		_, err = execute(tmpl, map[string]string{})
		assert.Error(t, err)
	})
}
