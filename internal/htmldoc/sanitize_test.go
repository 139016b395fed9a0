package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"well formed", "<h2>Scope</h2><p>Text</p>", "<h2>Scope</h2><p>Text</p>"},
		{"auto closes", "<h2>Scope</h2><p>Unclosed <b>bold", "<h2>Scope</h2><p>Unclosed <b>bold</b></p>"},
		{"stray close dropped", "<p>Text</p></div>", "<p>Text</p>"},
		{"script removed", "<p>a</p><script>alert(1)</script>", "<p>a</p>"},
		{"style removed", "<style>p{}</style><p>a</p>", "<p>a</p>"},
		{"iframe removed", "<p>a<iframe src=\"x\"></iframe></p>", "<p>a</p>"},
		{"event handler removed", "<p onclick=\"x()\" class=\"n\">a</p>", "<p class=\"n\">a</p>"},
		{"javascript url removed", "<a href=\" JavaScript:alert(1)\">x</a>", "<a>x</a>"},
		{"http url kept", "<a href=\"https://example.com\">x</a>", "<a href=\"https://example.com\">x</a>"},
		{"code fences", "```html\n<p>a</p>\n```", "<p>a</p>"},
		{"comment removed", "<!-- note --><p>a</p>", "<p>a</p>"},
		{"plain text escaped", "a < b & c", "a &lt; b &amp; c"},
		{"plaintext becomes pre", "<h2>A</h2><plaintext>raw", "<h2>A</h2><pre>raw</pre>"},
		{"empty", "  \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	in := "<h3>Data</h3><ul><li>one<li>two</ul><p>end"
	once := Sanitize(in)
	assert.Equal(t, once, Sanitize(once))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "plain", StripCodeFences("plain"))
	assert.Equal(t, "<p>x</p>", StripCodeFences("```\n<p>x</p>\n```"))
}
