package markup

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Rule names of the markdown to HTML pipeline, in execution order.
const (
	RuleCodeFence       = "codeFence"
	RuleInlineCodeBlock = "inlineCodeBlock"
	RuleQuote           = "quote"
	RuleEmail           = "email"
	RuleLink            = "link"
	RuleBold            = "bold"
	RuleItalic          = "italic"
	RuleStrikethrough   = "strikethrough"
	RuleNewline         = "newline"
)

const (
	emailPattern = `[\w+-][\w.+-]*@(?:[a-z0-9](?:[-a-z0-9]*[a-z0-9])?\.)+[a-z]{2,}(?![-a-z0-9])`

	// urlPattern has no capture groups so it can be embedded anywhere.
	// Characters escaped by the converter (&quot; &lt; &gt;) end a URL, &amp;
	// is kept as a query separator.
	urlPattern = `(?:https?://)?` +
		`(?:[a-z0-9](?:[-a-z0-9]*[a-z0-9])?\.)+[a-z]{2,}(?![-a-z0-9])` +
		`(?::\d{1,5})?` +
		`(?:/(?:(?:&amp;|[-\w$@.+!*:(),=%~])*[-\w~@:%)])?)*` +
		`(?:\?(?:(?:&amp;|[-\w$@.+!*()/,=%{}:;\[\]|])*(?:&amp;|[-\w$@+()/=%{}:;\]|]))?)?` +
		`(?:#(?:(?:&amp;|[-\w$@.+!*()\[\],=%;/:~])*[-\w$@+()\],=%;/:~])?)?`
)

// quoteRules are re-applied to the content of a block quote.
var quoteRules = []string{RuleQuote, RuleEmail, RuleLink, RuleBold, RuleItalic, RuleStrikethrough}

// markdownRules returns the markdown to HTML pipeline. The quote rule
// recurses through c, so the table is built per converter.
func markdownRules(c *Converter) []Rule {
	return []Rule{
		{
			Name:        RuleCodeFence,
			Pattern:     "```\\n?((?:(?!```)[\\s\\S])+?)\\n?```",
			Replacement: Literal("<pre>$1</pre>"),
			Exclude:     ZoneTag | ZonePre | ZoneCode,
		},
		{
			Name:        RuleInlineCodeBlock,
			Pattern:     "`(?=[^`\\n]*\\S)([^`\\n]+)`",
			Replacement: Literal("<code>$1</code>"),
			Exclude:     ZoneProtected,
		},
		{
			Name:        RuleQuote,
			Pattern:     `^&gt;[^\n]*(?:\n&gt;[^\n]*)*\n?`,
			Options:     regexp2.Multiline,
			Replacement: Func(c.quote),
			Accept:      acceptQuote,
			Exclude:     ZoneProtected,
		},
		{
			Name: RuleEmail,
			Pattern: `\[([^\[\]\n]+)\]\((?:mailto:)?(` + emailPattern + `)\)` +
				`|(?<![\w.+@/-])(` + emailPattern + `)`,
			Options:     regexp2.IgnoreCase,
			Replacement: Func(replaceEmail),
			Exclude:     ZoneProtected,
		},
		{
			Name: RuleLink,
			Pattern: `\[([^\[\]\n]+)\]\((` + urlPattern + `)\)` +
				`|(?<![\w@.:/~-])([_*~]*?)(` + urlPattern + `)\3(?![\w@/])`,
			Options:     regexp2.IgnoreCase,
			Replacement: Func(replaceLink),
			Accept:      acceptLink,
			Exclude:     ZoneProtected,
		},
		{
			Name:        RuleBold,
			Pattern:     `\B\*(?=[^\s*])(.+?)(?<=[^\s*])\*\B`,
			Replacement: Literal("<strong>$1</strong>"),
			Exclude:     ZoneProtected,
		},
		{
			Name:        RuleItalic,
			Pattern:     `\b_(?=\S)(.+?)(?<=\S)_\b`,
			Replacement: Literal("<em>$1</em>"),
			Exclude:     ZoneProtected,
		},
		{
			Name:        RuleStrikethrough,
			Pattern:     `\B~(?=\S)(.+?)(?<=\S)~\B`,
			Replacement: Literal("<del>$1</del>"),
			Exclude:     ZoneProtected,
		},
		{
			Name:        RuleNewline,
			Pattern:     `\n`,
			Replacement: Literal("<br>"),
			Exclude:     ZoneTag | ZonePre,
		},
	}
}

func acceptQuote(m Match) (Match, bool) {
	for _, line := range quoteLines(m.Text()) {
		if strings.TrimSpace(line) != "" {
			return m, true
		}
	}
	return m, false
}

// quoteLines strips the quote marker and one following space from each line.
func quoteLines(block string) []string {
	lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimPrefix(line, "&gt;")
		lines[i] = strings.TrimPrefix(line, " ")
	}
	return lines
}

// quote wraps consecutive quoted lines in one blockquote. The newline that
// ends the block is consumed because the element already breaks the line.
func (c *Converter) quote(m Match) string {
	inner := strings.Join(quoteLines(m.Text()), "\n")
	inner = run(inner, selectRules(c.markdown, quoteRules), c.logger, "replace.quote")
	return "<blockquote>" + inner + "</blockquote>"
}

func replaceEmail(m Match) string {
	if address := m.Group(2); address != "" {
		return `<a href="mailto:` + address + `">` + m.Group(1) + `</a>`
	}
	address := m.Group(3)
	return `<a href="mailto:` + address + `">` + address + `</a>`
}

// acceptLink drops closing parentheses a bare URL swallowed from the
// surrounding prose, e.g. "(see example.com/a)".
func acceptLink(m Match) (Match, bool) {
	if m.Group(2) != "" {
		return m, true
	}
	url := m.Group(4)
	trim := 0
	for strings.HasSuffix(url, ")") && strings.Count(url, "(") < strings.Count(url, ")") {
		url = strings.TrimSuffix(url, ")")
		trim++
	}
	if trim == 0 {
		return m, true
	}
	if m.Group(3) != "" {
		return m, false
	}
	m = m.Trim(trim)
	m.Groups[4] = url
	return m, url != ""
}

func replaceLink(m Match) string {
	if href := m.Group(2); href != "" {
		return `<a href="` + href + `" target="_blank">` + m.Group(1) + `</a>`
	}
	markers, url := m.Group(3), m.Group(4)
	return markers + `<a href="` + url + `" target="_blank">` + url + `</a>` + markers
}
