package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// containsNonPairTag reports whether some non-void element in text is opened
// without being closed, or closed without being opened, or closed out of order.
func containsNonPairTag(text string) bool {
	if !strings.ContainsRune(text, '<') {
		return false
	}
	var stack []string
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return len(stack) > 0
		case html.StartTagToken:
			name, _ := z.TagName()
			if _, void := voidElements[string(name)]; void {
				continue
			}
			stack = append(stack, string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			if _, void := voidElements[string(name)]; void {
				continue
			}
			if len(stack) == 0 || stack[len(stack)-1] != string(name) {
				return true
			}
			stack = stack[:len(stack)-1]
		}
	}
}
