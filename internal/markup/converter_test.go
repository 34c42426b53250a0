package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-richtext/pkg/interfaces"
)

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("new converter: %v", err)
	}
	return c
}

func noEscape() interfaces.ReplaceOptions {
	escape := false
	return interfaces.ReplaceOptions{ShouldEscapeText: &escape}
}

func TestReplaceConvertsBoldAndBareLink(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("Hello *world*, visit www.example.com!", interfaces.ReplaceOptions{})
	want := `Hello <strong>world</strong>, visit <a href="www.example.com" target="_blank">www.example.com</a>!`
	if got != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, got)
	}
}

func TestReplaceKeepsUnderscoresInsideBoldLink(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("*http://example.com/path_with_underscore*", interfaces.ReplaceOptions{})
	want := `<strong><a href="http://example.com/path_with_underscore" target="_blank">http://example.com/path_with_underscore</a></strong>`
	if got != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, got)
	}
	if strings.Contains(got, "<em>") {
		t.Fatalf("underscores must not turn into italics: %s", got)
	}
}

func TestReplaceIsIdempotentOnConvertedHTML(t *testing.T) {
	c := newTestConverter(t)
	inputs := []string{
		"Hello *world*, visit www.example.com!",
		"*http://example.com/path_with_underscore*",
		"> *quoted* text\n> second\nafter",
		"_em_ and ~gone~ and `code *x*`",
		"mail a@b.co or [docs](https://example.com/docs?a=1&b=2)",
		"```\nfenced\n*block*\n```",
	}
	for _, input := range inputs {
		first := c.Replace(input, interfaces.ReplaceOptions{})
		second := c.Replace(first, noEscape())
		if first != second {
			t.Fatalf("second pass changed %q\nfirst:  %s\nsecond: %s", input, first, second)
		}
	}
}

func TestReplaceLeavesCodeUntouched(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("`*not bold*` and *bold* `www.example.com`", interfaces.ReplaceOptions{})
	want := "<code>*not bold*</code> and <strong>bold</strong> <code>www.example.com</code>"
	if got != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, got)
	}
}

func TestReplaceCodeFenceKeepsNewlines(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("```\n*x*\nline2\n```\nafter", interfaces.ReplaceOptions{})
	want := "<pre>*x*\nline2</pre><br>after"
	if got != want {
		t.Fatalf("unexpected html\nwant: %q\n got: %q", want, got)
	}
}

func TestReplaceQuoteBlock(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("> *quoted* text\n> second\nafter", interfaces.ReplaceOptions{})
	want := "<blockquote><strong>quoted</strong> text<br>second</blockquote>after"
	if got != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, got)
	}
}

func TestReplaceNestedQuote(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace(">> inner", interfaces.ReplaceOptions{})
	want := "<blockquote><blockquote>inner</blockquote></blockquote>"
	if got != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, got)
	}
}

func TestReplaceEmails(t *testing.T) {
	c := newTestConverter(t)
	cases := map[string]string{
		"mail a@b.co now":       `mail <a href="mailto:a@b.co">a@b.co</a> now`,
		"[me](mailto:a@b.co)":   `<a href="mailto:a@b.co">me</a>`,
		"[team](ops@corp.io)":   `<a href="mailto:ops@corp.io">team</a>`,
		"ends a@b.com.":         `ends <a href="mailto:a@b.com">a@b.com</a>.`,
		"no@tld is not an email": "no@tld is not an email",
	}
	for input, want := range cases {
		if got := c.Replace(input, interfaces.ReplaceOptions{}); got != want {
			t.Fatalf("replace %q\nwant: %s\n got: %s", input, want, got)
		}
	}
}

func TestReplaceLinks(t *testing.T) {
	c := newTestConverter(t)
	cases := map[string]string{
		"[docs](https://example.com/docs?a=1&b=2)": `<a href="https://example.com/docs?a=1&amp;b=2" target="_blank">docs</a>`,
		"(see www.example.com/a)":                  `(see <a href="www.example.com/a" target="_blank">www.example.com/a</a>)`,
		"go to https://example.com/wiki/Go_(lang) now": `go to <a href="https://example.com/wiki/Go_(lang)" target="_blank">https://example.com/wiki/Go_(lang)</a> now`,
		"~www.example.com~":                        `<del><a href="www.example.com" target="_blank">www.example.com</a></del>`,
		`say "www.example.com"`:                    `say &quot;<a href="www.example.com" target="_blank">www.example.com</a>&quot;`,
	}
	for input, want := range cases {
		if got := c.Replace(input, interfaces.ReplaceOptions{}); got != want {
			t.Fatalf("replace %q\nwant: %s\n got: %s", input, want, got)
		}
	}
}

func TestReplaceInlineStyles(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("_em_ and ~gone~\nsnake_case_name stays", interfaces.ReplaceOptions{})
	want := "<em>em</em> and <del>gone</del><br>snake_case_name stays"
	if got != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, got)
	}
}

func TestReplaceBoldKeepsDoubledMarkersBalanced(t *testing.T) {
	c := newTestConverter(t)

	if got := c.Replace("**double**", interfaces.ReplaceOptions{}); got != "*<strong>double</strong>*" {
		t.Fatalf("unexpected html %q", got)
	}
	if c.ContainsNonPairTag(c.Replace("a **b** c", interfaces.ReplaceOptions{})) {
		t.Fatal("expected balanced tags for doubled markers")
	}
}

func TestReplaceEscapesText(t *testing.T) {
	c := newTestConverter(t)

	if got := c.Replace("<script>&", interfaces.ReplaceOptions{}); got != "&lt;script&gt;&amp;" {
		t.Fatalf("expected escaped text, got %q", got)
	}
	if got := c.Replace("<b>x</b> *y*", noEscape()); got != "<b>x</b> <strong>y</strong>" {
		t.Fatalf("expected raw html kept, got %q", got)
	}
	raw := newTestConverter(t, WithTextEscaping(false))
	if got := raw.Replace("<i>x</i>", interfaces.ReplaceOptions{}); got != "<i>x</i>" {
		t.Fatalf("expected converter default to skip escaping, got %q", got)
	}
}

func TestReplaceFilterRules(t *testing.T) {
	c := newTestConverter(t)

	got := c.Replace("*a* _b_", interfaces.ReplaceOptions{FilterRules: []string{RuleBold, "unknown"}})
	if got != "<strong>a</strong> _b_" {
		t.Fatalf("expected only bold to run, got %q", got)
	}
}

func TestHTMLToMarkdownRoundTripsInlineMarkers(t *testing.T) {
	c := newTestConverter(t)
	bodies := []string{"hello", "two words", "x_y", "snake_case", "www.example.com", "a@b.co"}
	for _, marker := range []string{"*", "_", "~"} {
		for _, body := range bodies {
			if marker == "_" && body == "a@b.co" {
				continue
			}
			input := marker + body + marker
			html := c.Replace(input, interfaces.ReplaceOptions{})
			if got := c.HTMLToMarkdown(html); got != input {
				t.Fatalf("round trip %q via %s produced %q", input, html, got)
			}
		}
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	c := newTestConverter(t)
	cases := []struct {
		name string
		html string
		want string
	}{
		{"blocks", "<div>a</div><div>b</div>", "a\nb"},
		{"paragraph", "<p>x</p>", "x"},
		{"empty block", "<div></div><div>b</div>", "b"},
		{"nested blocks", "<div><div>a</div></div><div>b</div>", "a\nb"},
		{"link", `<a href="https://x.io">site</a>`, "[site](https://x.io)"},
		{"bare link", `<a href="https://x.io" target="_blank">https://x.io</a>`, "https://x.io"},
		{"mailto", `<a href="mailto:a@b.co">a@b.co</a>`, "a@b.co"},
		{"pre", "<pre>line1\nline2</pre>", "```\nline1\nline2\n```"},
		{"pre with code", "<pre><code>x := 1</code></pre>", "```\nx := 1\n```"},
		{"code", "<code>x</code>", "`x`"},
		{"entities", "&lt;b&gt; &amp; <b>bold</b>", "<b> & *bold*"},
		{"body", "<html><body><em>hi</em></body></html>", "_hi_"},
		{"breaks", "line<br>next<br/>end", "line\nnext\nend"},
		{"strike", "<del>x</del> <s>y</s>", "~x~ ~y~"},
		{"quote", "a<br><blockquote>q1<br>q2</blockquote>b", "a\n> q1\n> q2\nb"},
		{"nested quote", "<blockquote>outer<blockquote>inner</blockquote></blockquote>", "> outer\n> > inner"},
		{"quote in blocks", "<blockquote><div>a</div><div>b</div></blockquote>", "> a\n> b"},
		{"inter tag whitespace", "<div>a</div>\n  <div>b</div>", "a\nb"},
		{"soft newline before block end", "<div>a\n</div><div>b</div>", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.HTMLToMarkdown(tc.html); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestHTMLToMarkdownInvertsQuoteConversion(t *testing.T) {
	c := newTestConverter(t)
	inputs := []string{
		"> *quoted* text\n> second\nafter",
		"> a\n\nb",
		"> x\n\n> y",
		"before\n> q\n\n\nafter",
	}
	for _, input := range inputs {
		html := c.Replace(input, interfaces.ReplaceOptions{})
		if got := c.HTMLToMarkdown(html); got != input {
			t.Fatalf("round trip of %q through %q: got %q", input, html, got)
		}
	}
}

func TestSeparateQuotesStaySeparate(t *testing.T) {
	c := newTestConverter(t)
	html := c.Replace("> quoted\n\n> other", interfaces.ReplaceOptions{})
	want := "<blockquote>quoted</blockquote><br><blockquote>other</blockquote>"
	if html != want {
		t.Fatalf("unexpected html\nwant: %s\n got: %s", want, html)
	}
	if again := c.Replace(c.HTMLToMarkdown(html), interfaces.ReplaceOptions{}); again != want {
		t.Fatalf("quotes merged after round trip: %s", again)
	}
}

func TestHTMLToText(t *testing.T) {
	c := newTestConverter(t)
	cases := map[string]string{
		"<div><strong>Hi</strong> there</div><div>a &amp; b</div>": "Hi there\na & b",
		"<blockquote>q</blockquote>after":                          "q\nafter",
		"one<br>two":                                               "one\ntwo",
		"<p>a  \n</p><p>b</p>":                                     "a\nb",
		`<a href="https://x.io">site</a>`:                          "site",
	}
	for input, want := range cases {
		if got := c.HTMLToText(input); got != want {
			t.Fatalf("html to text %q: want %q, got %q", input, want, got)
		}
	}
}

func TestContainsNonPairTag(t *testing.T) {
	c := newTestConverter(t)
	cases := map[string]bool{
		"plain":                false,
		"<b>x</b>":             false,
		"<br><img src=x><hr/>": false,
		"<b>x":                 true,
		"x</b>":                true,
		"<b><i>x</b></i>":      true,
		`<a href="y">z</a>`:    false,
	}
	for input, want := range cases {
		if got := c.ContainsNonPairTag(input); got != want {
			t.Fatalf("ContainsNonPairTag(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownDisabledRule(t *testing.T) {
	if _, err := New(WithDisabledRules("nope")); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}
	if _, err := New(WithMatchTimeout(-1)); !errors.Is(err, ErrInvalidTimeout) {
		t.Fatalf("expected ErrInvalidTimeout, got %v", err)
	}
}

func TestDisabledRulesAreSkipped(t *testing.T) {
	c := newTestConverter(t, WithDisabledRules(RuleBold, RuleNewline))

	if got := c.Replace("*a*\n_b_", interfaces.ReplaceOptions{}); got != "*a*\n<em>b</em>" {
		t.Fatalf("unexpected html %q", got)
	}
	for _, name := range c.RuleNames() {
		if name == RuleBold || name == RuleNewline {
			t.Fatalf("rule %s should be disabled", name)
		}
	}
}

func TestNilConverterPanicsWithOperation(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "HTMLToText") {
			t.Fatalf("panic should name the operation, got %v", r)
		}
	}()
	var c *Converter
	c.HTMLToText("<b>x</b>")
}
