package markup

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Zone marks regions of converted text a rule must not match inside.
type Zone uint8

const (
	// ZoneTag covers everything between < and > of a tag or comment.
	ZoneTag Zone = 1 << iota
	// ZoneAnchor covers the content of <a> elements.
	ZoneAnchor
	// ZoneCode covers the content of <code> elements.
	ZoneCode
	// ZonePre covers the content of <pre> elements.
	ZonePre

	zoneNone Zone = 0
	// ZoneProtected is the usual mask for inline markdown rules.
	ZoneProtected = ZoneTag | ZoneAnchor | ZoneCode | ZonePre
)

// Match is a single accepted pattern match. Offsets are in runes.
type Match struct {
	Index  int
	Length int
	// Groups holds the text of every capture group, Groups[0] being the full
	// match. Groups that did not participate are empty.
	Groups []string
	names  map[string]int
	source []rune
}

// Text returns the full matched text.
func (m Match) Text() string {
	if len(m.Groups) == 0 {
		return ""
	}
	return m.Groups[0]
}

// Group returns the text of capture group i, or "" when absent.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Named returns the text of a named capture group.
func (m Match) Named(name string) string {
	idx, ok := m.names[name]
	if !ok {
		return ""
	}
	return m.Group(idx)
}

// End is the rune offset just past the match.
func (m Match) End() int {
	return m.Index + m.Length
}

// Before returns the text preceding the match.
func (m Match) Before() string {
	if m.Index <= 0 || m.Index > len(m.source) {
		return ""
	}
	return string(m.source[:m.Index])
}

// After returns the text following the match.
func (m Match) After() string {
	end := m.End()
	if end >= len(m.source) {
		return ""
	}
	return string(m.source[end:])
}

// Trim shortens the match by n runes at its end. Only the full match text
// is updated; callers adjust the groups they rely on.
func (m Match) Trim(n int) Match {
	if n <= 0 || n > m.Length {
		return m
	}
	end := m.End() - n
	groups := make([]string, len(m.Groups))
	copy(groups, m.Groups)
	groups[0] = string(m.source[m.Index:end])
	m.Groups = groups
	m.Length -= n
	return m
}

// Replacement produces the substitution for an accepted match. It is either
// a Literal template or a Func.
type Replacement interface {
	expand(m Match) string
}

// Literal is a template where $1, ${1} and ${name} refer to capture groups
// and $$ is a literal dollar sign.
type Literal string

// Func computes the substitution from the match.
type Func func(m Match) string

func (f Func) expand(m Match) string {
	return f(m)
}

func (l Literal) expand(m Match) string {
	tpl := string(l)
	if !strings.Contains(tpl, "$") {
		return tpl
	}
	var b strings.Builder
	b.Grow(len(tpl))
	for i := 0; i < len(tpl); i++ {
		ch := tpl[i]
		if ch != '$' || i+1 >= len(tpl) {
			b.WriteByte(ch)
			continue
		}
		next := tpl[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(tpl[i+2:], '}')
			if end < 0 {
				b.WriteByte(ch)
				continue
			}
			ref := tpl[i+2 : i+2+end]
			if n, err := strconv.Atoi(ref); err == nil {
				b.WriteString(m.Group(n))
			} else {
				b.WriteString(m.Named(ref))
			}
			i += end + 2
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(tpl) && tpl[j] >= '0' && tpl[j] <= '9' {
				j++
			}
			n, _ := strconv.Atoi(tpl[i+1 : j])
			b.WriteString(m.Group(n))
			i = j - 1
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Rule describes one step of a conversion pipeline.
type Rule struct {
	Name        string
	Pattern     string
	Options     regexp2.RegexOptions
	Replacement Replacement
	// Pre and Post transform the whole text around the pattern pass.
	Pre  func(text string) string
	Post func(text string) string
	// Accept may narrow a match or reject it by returning false.
	Accept func(m Match) (Match, bool)
	// Exclude lists the zones where a match may neither start nor end.
	Exclude Zone
	// Repeat re-applies the rule until the text stops changing.
	Repeat bool
}

type compiledRule struct {
	Rule
	re    *regexp2.Regexp
	names map[string]int
}
