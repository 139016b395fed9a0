package htmldoc

import (
	"bytes"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements are removed with their whole subtree
var droppedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Iframe: true,
	atom.Object: true,
	atom.Embed:  true,
}

// urlAttributes may carry a javascript: URL
var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"xlink:href": true,
}

// Sanitize repairs a generated fragment into well-formed HTML.
// Unclosed tags are closed, stray closing tags dropped, markdown code fences
// removed and active content (scripts, event handlers, javascript: URLs) stripped.
// It never fails: unparseable input comes back as an escaped paragraph.
func Sanitize(fragment string) string {
	fragment = StripCodeFences(fragment)
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	context := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "<p>" + html.EscapeString(fragment) + "</p>"
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if !clean(n) {
			continue
		}
		if err := xhtml.Render(&buf, n); err != nil {
			return "<p>" + html.EscapeString(fragment) + "</p>"
		}
	}
	return strings.TrimSpace(buf.String())
}

// clean strips n's subtree in place and reports whether n itself survives
func clean(n *xhtml.Node) bool {
	switch n.Type {
	case xhtml.CommentNode, xhtml.DoctypeNode:
		return false
	case xhtml.ElementNode:
		if droppedElements[n.DataAtom] {
			return false
		}
		// <plaintext> has no end tag and would swallow the rest of the page
		if n.DataAtom == atom.Plaintext {
			n.Data, n.DataAtom = "pre", atom.Pre
		}
		n.Attr = cleanAttributes(n.Attr)
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !clean(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return true
}

func cleanAttributes(attrs []xhtml.Attribute) []xhtml.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if urlAttributes[key] && isJavaScriptURL(a.Val) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func isJavaScriptURL(v string) bool {
	v = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, v)
	return strings.HasPrefix(strings.ToLower(v), "javascript:")
}

// StripCodeFences removes markdown fence lines (```, ```html) that generators
// sometimes wrap around HTML output.
func StripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
