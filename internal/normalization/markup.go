package normalization

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// MarkupToText flattens editor markup into plain text: <br> and closing
// </div> become newlines, every other tag is dropped, entities are decoded.
func MarkupToText(input string) string {
	z := xhtml.NewTokenizer(strings.NewReader(input))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			// io.EOF or malformed input: keep whatever was read.
			return finish(b.String())
		case xhtml.TextToken:
			b.Write(z.Text())
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "div" {
				b.WriteByte('\n')
			}
		}
	}
}

// Double-escaped entities survive the tokenizer once.
func finish(s string) string {
	return html.UnescapeString(strings.TrimSpace(s))
}
