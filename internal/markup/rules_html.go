package markup

import (
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	htmlOptions = regexp2.IgnoreCase

	quoteElementPattern = `<blockquote\b[^>]*>((?:(?!<blockquote\b)[\s\S])*?)</blockquote>`
	blockElementPattern = `<(div|p)\b[^>]*>((?:(?!<(?:div|p)\b)[\s\S])*?)</\1>`
)

var (
	bodyRule = Rule{
		Name:        "body",
		Pattern:     `^[\s\S]*?<body\b[^>]*>\n?([\s\S]*?)\n?</body>[\s\S]*$`,
		Options:     htmlOptions,
		Replacement: Literal("$1"),
	}
	interTagWhitespaceRule = Rule{
		Name:        "interTagWhitespace",
		Pattern:     `(?<=>)[ \t]*\r?\n\s*(?=<)`,
		Replacement: Literal(""),
		Exclude:     ZonePre,
	}
	softNewlineRule = Rule{
		Name:        "softNewline",
		Pattern:     `[ \t]*\r?\n[ \t]*`,
		Replacement: Literal(" "),
		Exclude:     ZonePre,
	}
	breaklineRule = Rule{
		Name:        "breakline",
		Pattern:     `<br\b[^>]*>`,
		Options:     htmlOptions,
		Replacement: Literal("\n"),
	}
	stripTagRule = Rule{
		Name:        "stripTag",
		Pattern:     `<[^>]*>`,
		Replacement: Literal(""),
		Post:        HTMLUnescape,
	}
)

// htmlToMarkdownRules returns the HTML to markdown pipeline.
func htmlToMarkdownRules() []Rule {
	return []Rule{
		bodyRule,
		interTagWhitespaceRule,
		softNewlineRule,
		breaklineRule,
		{
			Name:        "codeFence",
			Pattern:     `<pre\b[^>]*>\n?([\s\S]*?)\n?</pre>`,
			Options:     htmlOptions,
			Replacement: Func(fenceCode),
		},
		{
			Name:        "inlineCodeBlock",
			Pattern:     `<code\b[^>]*>([\s\S]*?)</code>`,
			Options:     htmlOptions,
			Replacement: Literal("`$1`"),
		},
		{
			Name:        "newline",
			Pattern:     blockElementPattern,
			Options:     htmlOptions,
			Replacement: Func(blockNewline),
			Repeat:      true,
		},
		{
			Name:        "quote",
			Pattern:     quoteElementPattern,
			Options:     htmlOptions,
			Replacement: Func(func(m Match) string { return quoteBlock(m, "> ") }),
			Repeat:      true,
		},
		{
			Name:        "bold",
			Pattern:     `<(b|strong)\b[^>]*>([\s\S]*?)</\1>`,
			Options:     htmlOptions,
			Replacement: Func(wrapContent("*")),
			Repeat:      true,
		},
		{
			Name:        "italic",
			Pattern:     `<(em|i)\b[^>]*>([\s\S]*?)</\1>`,
			Options:     htmlOptions,
			Replacement: Func(wrapContent("_")),
			Repeat:      true,
		},
		{
			Name:        "strikethrough",
			Pattern:     `<(del|s|strike)\b[^>]*>([\s\S]*?)</\1>`,
			Options:     htmlOptions,
			Replacement: Func(wrapContent("~")),
			Repeat:      true,
		},
		{
			Name:        "anchor",
			Pattern:     `<a\b[^>]*?\bhref\s*=\s*(["'])([\s\S]*?)\1[^>]*>([\s\S]*?)</a>`,
			Options:     htmlOptions,
			Replacement: Func(anchorToMarkdown),
		},
		stripTagRule,
	}
}

// htmlToTextRules returns the HTML to plain text pipeline.
func htmlToTextRules() []Rule {
	return []Rule{
		bodyRule,
		interTagWhitespaceRule,
		softNewlineRule,
		breaklineRule,
		{
			Name:        "newline",
			Pattern:     blockElementPattern,
			Options:     htmlOptions,
			Replacement: Func(blockNewline),
			Repeat:      true,
		},
		{
			Name:        "quote",
			Pattern:     quoteElementPattern,
			Options:     htmlOptions,
			Replacement: Func(func(m Match) string { return quoteBlock(m, "") }),
			Repeat:      true,
		},
		stripTagRule,
	}
}

var (
	codeTagRule = regexp2.MustCompile(`</?code\b[^>]*>`, htmlOptions)
	anyTagRule  = regexp2.MustCompile(`<[^>]*>`, regexp2.None)
)

func fenceCode(m Match) string {
	content := m.Group(1)
	if stripped, err := codeTagRule.Replace(content, "", -1, -1); err == nil {
		content = stripped
	}
	return "```\n" + content + "\n```"
}

// quoteBlock prefixes every line of the quote content and keeps the block on
// its own lines unless it starts or ends the document. The markdown quote
// consumes its closing line break, so any text after the block gets one
// restored.
func quoteBlock(m Match, prefix string) string {
	content := strings.Trim(m.Group(1), "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	out := strings.Join(lines, "\n")
	if before := m.Before(); before != "" && !strings.HasSuffix(before, "\n") {
		out = "\n" + out
	}
	if m.After() != "" {
		out += "\n"
	}
	return out
}

// blockNewline ends a div or p with a newline when it has content, does not
// end with one already, holds no quote, and is not the last element.
func blockNewline(m Match) string {
	content := m.Group(2)
	switch {
	case strings.TrimSpace(content) == "",
		strings.HasSuffix(content, "\n"),
		hasQuoteMarker(content),
		isTrailing(m.After()):
		return content
	}
	return strings.TrimRight(content, " \t") + "\n"
}

func hasQuoteMarker(content string) bool {
	if strings.Contains(strings.ToLower(content), "<blockquote") {
		return true
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "> ") {
			return true
		}
	}
	return false
}

// isTrailing reports whether rest holds nothing but tags and whitespace.
func isTrailing(rest string) bool {
	if strings.TrimSpace(rest) == "" {
		return true
	}
	stripped, err := anyTagRule.Replace(rest, "", -1, -1)
	if err != nil {
		return false
	}
	return strings.TrimSpace(stripped) == ""
}

func wrapContent(marker string) func(Match) string {
	return func(m Match) string {
		content := m.Group(2)
		if strings.TrimSpace(content) == "" {
			return content
		}
		return marker + content + marker
	}
}

// anchorToMarkdown collapses a link to its text when text and target agree,
// ignoring a mailto: scheme.
func anchorToMarkdown(m Match) string {
	href := strings.TrimSpace(m.Group(2))
	text := m.Group(3)
	if stripped, err := anyTagRule.Replace(text, "", -1, -1); err == nil {
		text = stripped
	}
	target := href
	if len(target) >= len("mailto:") && strings.EqualFold(target[:len("mailto:")], "mailto:") {
		target = target[len("mailto:"):]
	}
	switch {
	case strings.TrimSpace(text) == "":
		return target
	case text == target, HTMLUnescape(text) == HTMLUnescape(target):
		return text
	}
	return "[" + text + "](" + href + ")"
}
