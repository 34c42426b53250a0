package markup

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-richtext/pkg/interfaces"
)

type capturedEntry struct {
	level   string
	message string
	fields  map[string]any
}

type captureLogger struct {
	mu      *sync.Mutex
	entries *[]capturedEntry
	fields  map[string]any
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{mu: &sync.Mutex{}, entries: &[]capturedEntry{}}
}

func (l *captureLogger) record(level, msg string, args []any) {
	fields := make(map[string]any, len(l.fields)+len(args)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, capturedEntry{level: level, message: msg, fields: fields})
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *captureLogger) byLevel(level string) []capturedEntry {
	var out []capturedEntry
	for _, entry := range l.snapshot() {
		if entry.level == level {
			out = append(out, entry)
		}
	}
	return out
}

func (l *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &captureLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *captureLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *captureLogger) snapshot() []capturedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]capturedEntry(nil), *l.entries...)
}

func mustCompile(t *testing.T, timeout time.Duration, rules ...Rule) []*compiledRule {
	t.Helper()
	compiled, err := compileRules(rules, timeout)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	return compiled
}

func TestLiteralExpandsGroupReferences(t *testing.T) {
	m := Match{
		Groups: []string{"full", "one", "two"},
		names:  map[string]int{"second": 2},
	}
	got := Literal("[$1|${2}|${second}|$$|$9|$x]").expand(m)
	if got != "[one|two|two|$||$x]" {
		t.Fatalf("unexpected expansion %q", got)
	}
}

func TestRuleTimeoutSkipsRuleAndLogs(t *testing.T) {
	logger := newCaptureLogger()
	rules := mustCompile(t, 20*time.Millisecond,
		Rule{Name: "catastrophic", Pattern: `^(a+)+$`, Replacement: Literal("matched")},
		Rule{Name: "after", Pattern: `!`, Replacement: Literal("?")},
	)
	input := strings.Repeat("a", 40) + "!"

	got := run(input, rules, logger, "test")
	if want := strings.Repeat("a", 40) + "?"; got != want {
		t.Fatalf("expected pipeline to continue past timed out rule, got %q", got)
	}

	entries := logger.byLevel("warn")
	if len(entries) != 1 {
		t.Fatalf("expected one warn entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.message != "markup.rule.timeout" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.fields["rule"] != "catastrophic" || entry.fields["operation"] != "test" {
		t.Fatalf("expected rule context fields, got %+v", entry.fields)
	}
}

func TestRuleApplicationCountsAreTraced(t *testing.T) {
	logger := newCaptureLogger()
	rules := mustCompile(t, 0,
		Rule{Name: "shout", Pattern: `!`, Replacement: Literal("?")},
		Rule{Name: "absent", Pattern: `#`, Replacement: Literal("")},
		Rule{Name: "unwrap", Pattern: `\(([^()]*)\)`, Replacement: Literal("$1"), Repeat: true},
	)

	if got := run("a! b! ((c))", rules, logger, "test"); got != "a? b? c" {
		t.Fatalf("unexpected output %q", got)
	}

	entries := logger.byLevel("trace")
	if len(entries) != 3 {
		t.Fatalf("expected three trace entries, got %+v", entries)
	}
	for _, entry := range entries {
		if entry.message != "markup.rule.applied" || entry.fields["operation"] != "test" {
			t.Fatalf("unexpected trace entry %+v", entry)
		}
	}
	if entries[0].fields["rule"] != "shout" || entries[0].fields["matches"] != 2 {
		t.Fatalf("expected shout to report two matches, got %+v", entries[0].fields)
	}
	for i, entry := range entries[1:] {
		if entry.fields["rule"] != "unwrap" || entry.fields["matches"] != 1 || entry.fields["pass"] != i {
			t.Fatalf("expected unwrap pass %d with one match, got %+v", i, entry.fields)
		}
	}
}

func TestRepeatRuleRunsUntilStable(t *testing.T) {
	rules := mustCompile(t, 0, Rule{
		Name:        "unwrap",
		Pattern:     `\(([^()]*)\)`,
		Replacement: Literal("$1"),
		Repeat:      true,
	})
	if got := run("(((x)))", rules, nil, "test"); got != "x" {
		t.Fatalf("expected all layers removed, got %q", got)
	}

	once := mustCompile(t, 0, Rule{Name: "unwrap", Pattern: `\(([^()]*)\)`, Replacement: Literal("$1")})
	if got := run("(((x)))", once, nil, "test"); got != "((x))" {
		t.Fatalf("expected a single layer removed, got %q", got)
	}
}

func TestAcceptCanRejectAndNarrow(t *testing.T) {
	rules := mustCompile(t, 0, Rule{
		Name:    "word",
		Pattern: `\b\w+!*`,
		Accept: func(m Match) (Match, bool) {
			if m.Text() == "skip" {
				return Match{}, false
			}
			if strings.HasSuffix(m.Text(), "!") {
				return m.Trim(1), true
			}
			return m, true
		},
		Replacement: Func(func(m Match) string { return "[" + m.Text() + "]" }),
	})
	if got := run("skip keep yes!", rules, nil, "test"); got != "skip [keep] [yes]!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExclusionZonesRejectMatches(t *testing.T) {
	rules := mustCompile(t, 0, Rule{
		Name:        "star",
		Pattern:     `\*(\w+)\*`,
		Replacement: Literal("<b>$1</b>"),
		Exclude:     ZoneProtected,
	})
	input := `<code>*a*</code> <a href="*b*">*c*</a> <pre>*d*</pre> *e*`
	want := `<code>*a*</code> <a href="*b*">*c*</a> <pre>*d*</pre> <b>e</b>`
	if got := run(input, rules, nil, "test"); got != want {
		t.Fatalf("unexpected output\nwant: %s\n got: %s", want, got)
	}
}

func TestExclusionRejectsUnbalancedSpans(t *testing.T) {
	rules := mustCompile(t, 0, Rule{
		Name:        "star",
		Pattern:     `\*([^*]+)\*`,
		Replacement: Literal("<b>$1</b>"),
		Exclude:     ZoneTag,
	})
	if got := run("*x <i>y* z</i>", rules, nil, "test"); got != "*x <i>y* z</i>" {
		t.Fatalf("expected unbalanced span to be rejected, got %q", got)
	}
	if got := run("*x <i>y</i>*", rules, nil, "test"); got != "<b>x <i>y</i></b>" {
		t.Fatalf("expected balanced span to be accepted, got %q", got)
	}
}

func TestScanZonesFlagsProtectedContent(t *testing.T) {
	text := "x<a href=\"u\">é</a><code>c</code>"
	zones := scanZones(text, len([]rune(text)))
	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case 'x':
			if zones[i] != zoneNone {
				t.Fatalf("plain text flagged: %v", zones[i])
			}
		case 'é':
			if zones[i] != ZoneAnchor {
				t.Fatalf("anchor content: expected ZoneAnchor, got %v", zones[i])
			}
		case 'c':
			if zones[i]&ZoneCode == 0 && zones[i]&ZoneTag == 0 {
				t.Fatalf("code content not flagged at %d", i)
			}
		case '<', '>':
			if zones[i]&ZoneTag == 0 {
				t.Fatalf("tag delimiter not flagged at %d", i)
			}
		}
	}
	if scanZones("no tags", 7) != nil {
		t.Fatalf("expected nil zones for text without tags")
	}
}

func TestLinksAreLazyAndRestartable(t *testing.T) {
	c := newTestConverter(t)
	comment := "see www.a.com and [x](https://b.io/?q=1&r=2) `www.c.com`\n```\nhttps://d.io\n```\nmail e@f.co"

	want := []string{"www.a.com", "https://b.io/?q=1&r=2"}
	for range 2 {
		var got []string
		for link := range c.Links(comment) {
			got = append(got, link)
		}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("unexpected links %v", got)
		}
	}

	var first []string
	for link := range c.Links(comment) {
		first = append(first, link)
		break
	}
	if len(first) != 1 || first[0] != "www.a.com" {
		t.Fatalf("expected early stop after first link, got %v", first)
	}

	if got := c.ExtractLinksInMarkdownComment(comment); len(got) != 2 {
		t.Fatalf("expected two extracted links, got %v", got)
	}
	if got := c.ExtractLinksInMarkdownComment("nothing here"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGetRemovedMarkdownLinks(t *testing.T) {
	c := newTestConverter(t)

	got := c.GetRemovedMarkdownLinks("a www.x.com b www.y.com www.x.com [z](https://z.io)", "www.y.com [zed](https://z.io)")
	if strings.Join(got, ",") != "www.x.com,www.x.com" {
		t.Fatalf("unexpected removed links %v", got)
	}
	if got := c.GetRemovedMarkdownLinks("www.y.com", "www.y.com"); len(got) != 0 {
		t.Fatalf("expected no removed links, got %v", got)
	}
}
