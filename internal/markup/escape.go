package markup

import (
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

// HTMLEscape neutralises &, <, > and " so rule output is the only markup in
// the converted text.
func HTMLEscape(text string) string {
	if text == "" {
		return text
	}
	return string(util.EscapeHTML([]byte(text)))
}

// HTMLUnescape decodes named and numeric character references.
func HTMLUnescape(text string) string {
	return html.UnescapeString(text)
}
