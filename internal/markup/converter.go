package markup

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Option configures a Converter.
type Option func(*settings)

type settings struct {
	logger   interfaces.Logger
	timeout  time.Duration
	disabled []string
	escape   bool
}

// WithLogger sets the logger used to report skipped rules.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *settings) {
		s.logger = logging.Ensure(logger)
	}
}

// WithMatchTimeout bounds the time a single rule may spend matching. Zero
// disables the bound.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithDisabledRules removes rules from the markdown to HTML pipeline.
func WithDisabledRules(names ...string) Option {
	return func(s *settings) {
		s.disabled = append(s.disabled, names...)
	}
}

// WithTextEscaping sets whether Replace escapes its input when the call does
// not say otherwise.
func WithTextEscaping(enabled bool) Option {
	return func(s *settings) {
		s.escape = enabled
	}
}

// Converter runs the conversion pipelines. It is immutable after New and safe
// for concurrent use.
type Converter struct {
	logger         interfaces.Logger
	escape         bool
	markdown       []*compiledRule
	linkRules      []*compiledRule
	htmlToMarkdown []*compiledRule
	htmlToText     []*compiledRule
}

// New compiles the rule tables.
func New(opts ...Option) (*Converter, error) {
	cfg := settings{
		logger: logging.NoOp(),
		escape: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.timeout < 0 {
		return nil, ErrInvalidTimeout
	}

	c := &Converter{logger: cfg.logger, escape: cfg.escape}
	markdown, err := compileRules(markdownRules(c), cfg.timeout)
	if err != nil {
		return nil, err
	}
	if markdown, err = withoutRules(markdown, cfg.disabled); err != nil {
		return nil, err
	}
	c.markdown = markdown
	c.linkRules = selectRules(markdown, []string{RuleCodeFence, RuleInlineCodeBlock, RuleLink})

	if c.htmlToMarkdown, err = compileRules(htmlToMarkdownRules(), cfg.timeout); err != nil {
		return nil, err
	}
	if c.htmlToText, err = compileRules(htmlToTextRules(), cfg.timeout); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is New for package level defaults and tests.
func MustNew(opts ...Option) *Converter {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func withoutRules(rules []*compiledRule, disabled []string) ([]*compiledRule, error) {
	if len(disabled) == 0 {
		return rules, nil
	}
	known := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		known[rule.Name] = struct{}{}
	}
	drop := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		name = strings.TrimSpace(name)
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		drop[name] = struct{}{}
	}
	kept := make([]*compiledRule, 0, len(rules))
	for _, rule := range rules {
		if _, ok := drop[rule.Name]; !ok {
			kept = append(kept, rule)
		}
	}
	return kept, nil
}

// RuleNames lists the enabled markdown rules in execution order.
func (c *Converter) RuleNames() []string {
	c.mustBeReady("RuleNames")
	names := make([]string, len(c.markdown))
	for i, rule := range c.markdown {
		names[i] = rule.Name
	}
	return names
}

// Replace converts markup to HTML.
func (c *Converter) Replace(text string, opts interfaces.ReplaceOptions) string {
	c.mustBeReady("Replace")
	escape := c.escape
	if opts.ShouldEscapeText != nil {
		escape = *opts.ShouldEscapeText
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if escape {
		text = HTMLEscape(text)
	}
	return run(text, selectRules(c.markdown, opts.FilterRules), c.logger, "replace")
}

// HTMLToMarkdown converts HTML back into markup.
func (c *Converter) HTMLToMarkdown(html string) string {
	c.mustBeReady("HTMLToMarkdown")
	return run(html, c.htmlToMarkdown, c.logger, "html_to_markdown")
}

// HTMLToText converts HTML into plain text.
func (c *Converter) HTMLToText(html string) string {
	c.mustBeReady("HTMLToText")
	return run(html, c.htmlToText, c.logger, "html_to_text")
}

// ContainsNonPairTag reports whether text has an unmatched element tag.
func (c *Converter) ContainsNonPairTag(text string) bool {
	c.mustBeReady("ContainsNonPairTag")
	return containsNonPairTag(text)
}

func (c *Converter) mustBeReady(operation string) {
	if c == nil || c.markdown == nil {
		panic(fmt.Sprintf("markup: %s called on an uninitialised Converter; use New", operation))
	}
}

var _ interfaces.MarkupConverter = (*Converter)(nil)
