// Package markup converts HTML fragments from the events feed to plain text.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

const nbsp = "\u00a0"

// Text returns the text content of an HTML fragment. Entities are decoded,
// non-breaking spaces become regular spaces, block-level tags become line
// breaks and the result is trimmed. Script and style contents are dropped.
func Text(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
	}

	var sb strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// The tokenizer stops at io.EOF; anything read so far is kept.
			return finish(sb.String())
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "br", "p", "div", "li", "tr":
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "tr":
				sb.WriteByte('\n')
			}
		}
	}
}

func finish(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
