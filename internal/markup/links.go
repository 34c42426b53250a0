package markup

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// Links yields the target of every link in a markup comment, in order of
// appearance. Code spans and blocks are skipped and e-mail addresses are not
// links. The sequence is lazy and may be iterated more than once.
func (c *Converter) Links(comment string) iter.Seq[string] {
	c.mustBeReady("Links")
	return func(yield func(string) bool) {
		rendered := run(HTMLEscape(comment), c.linkRules, c.logger, "links")
		if !strings.Contains(rendered, "<a ") {
			return
		}
		z := html.NewTokenizer(strings.NewReader(rendered))
		for {
			switch z.Next() {
			case html.ErrorToken:
				return
			case html.StartTagToken:
				name, hasAttr := z.TagName()
				if string(name) != "a" || !hasAttr {
					continue
				}
				for {
					key, val, more := z.TagAttr()
					if string(key) == "href" {
						if !yield(string(val)) {
							return
						}
						break
					}
					if !more {
						break
					}
				}
			}
		}
	}
}

// ExtractLinksInMarkdownComment returns every link target of comment.
func (c *Converter) ExtractLinksInMarkdownComment(comment string) []string {
	links := []string{}
	for link := range c.Links(comment) {
		links = append(links, link)
	}
	return links
}

// GetRemovedMarkdownLinks returns the links of oldComment that newComment no
// longer contains, keeping the order and repetitions of oldComment.
func (c *Converter) GetRemovedMarkdownLinks(oldComment, newComment string) []string {
	current := map[string]struct{}{}
	for link := range c.Links(newComment) {
		current[link] = struct{}{}
	}
	removed := []string{}
	for link := range c.Links(oldComment) {
		if _, ok := current[link]; !ok {
			removed = append(removed, link)
		}
	}
	return removed
}
