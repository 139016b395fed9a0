package validate

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/verustcode/docsynth/pkg/errors"
)

// voidElements never take a closing tag
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// HTML scans start and end tags with a stack. Every closing tag must match the
// innermost open one, nothing may stay open, and the document needs a <body>
// and at least one h1-h3 heading.
func HTML(doc string) error {
	if strings.TrimSpace(doc) == "" {
		return errors.ErrHTMLValidation("HTML document is empty")
	}

	var (
		stack      []string
		hasBody    bool
		hasHeading bool
	)

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return errors.Wrap(errors.ErrCodeHTMLValidation, "malformed HTML", err)
			}
			if len(stack) > 0 {
				return errors.ErrHTMLValidation("unclosed tags remain: %s", strings.Join(stack, ", ")).
					WithDetails(stack)
			}
			if !hasBody {
				return errors.ErrHTMLValidation("missing <body> tag")
			}
			if !hasHeading {
				return errors.ErrHTMLValidation("HTML contains no headings")
			}
			return nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch a {
			case atom.Body:
				hasBody = true
			case atom.H1, atom.H2, atom.H3:
				hasHeading = true
			}
			if tt == html.SelfClosingTagToken || voidElements[a] {
				continue
			}
			stack = append(stack, string(name))

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[atom.Lookup(name)] {
				continue
			}
			if len(stack) == 0 {
				return errors.ErrHTMLValidation("unexpected closing tag </%s>", tag)
			}
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if last != tag {
				return errors.ErrHTMLValidation("mismatched tag: expected </%s>, got </%s>", last, tag)
			}
		}
	}
}
