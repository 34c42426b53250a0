package interfaces

import "iter"

// MarkupConverter converts the restricted comment markup into HTML and back.
// Implementations are pure: every method depends only on its arguments and
// the rule table fixed at construction time.
type MarkupConverter interface {
	// Replace converts markup into HTML.
	Replace(text string, opts ReplaceOptions) string
	// HTMLToMarkdown converts HTML produced by Replace (or pasted by users)
	// back into markup.
	HTMLToMarkdown(html string) string
	// HTMLToText strips markup from HTML keeping block boundaries as newlines.
	HTMLToText(html string) string
	// ContainsNonPairTag reports whether text holds an opening tag without its
	// closing counterpart or vice versa.
	ContainsNonPairTag(text string) bool
	// Links lazily yields every link target found in a markup comment.
	Links(comment string) iter.Seq[string]
	// ExtractLinksInMarkdownComment collects Links into a slice.
	ExtractLinksInMarkdownComment(comment string) []string
	// GetRemovedMarkdownLinks lists links present in oldComment but missing
	// from newComment.
	GetRemovedMarkdownLinks(oldComment, newComment string) []string
}

// ReplaceOptions tunes a single Replace call.
type ReplaceOptions struct {
	// FilterRules restricts the pipeline to the named rules. Empty runs all.
	FilterRules []string
	// ShouldEscapeText disables the initial HTML escaping when set to false.
	// Nil keeps the converter default.
	ShouldEscapeText *bool
}

// Merger merges JSON-like value trees.
type Merger interface {
	Merge(target, source any) any
}
