package markup

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// maxRepeatPasses bounds Repeat rules on pathological input.
const maxRepeatPasses = 64

func compileRules(rules []Rule, timeout time.Duration) ([]*compiledRule, error) {
	compiled := make([]*compiledRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp2.Compile(rule.Pattern, rule.Options)
		if err != nil {
			return nil, fmt.Errorf("markup: compile rule %q: %w", rule.Name, err)
		}
		if timeout > 0 {
			re.MatchTimeout = timeout
		}
		names := map[string]int{}
		for _, name := range re.GetGroupNames() {
			names[name] = re.GroupNumberFromName(name)
		}
		compiled = append(compiled, &compiledRule{Rule: rule, re: re, names: names})
	}
	return compiled, nil
}

// run applies rules in order. A rule that times out leaves the text as it
// was before that rule and the pipeline moves on.
func run(text string, rules []*compiledRule, logger interfaces.Logger, operation string) string {
	for _, rule := range rules {
		text = rule.apply(text, logger, operation)
	}
	return text
}

func (r *compiledRule) apply(text string, logger interfaces.Logger, operation string) string {
	if r.Pre != nil {
		text = r.Pre(text)
	}
	for pass := 0; pass < maxRepeatPasses; pass++ {
		out, count, err := r.replaceAll(text)
		if err != nil {
			logging.WithRuleContext(logging.Ensure(logger), operation, r.Name).Warn("markup.rule.timeout", "error", err)
			break
		}
		if count > 0 {
			logging.WithRuleContext(logging.Ensure(logger), operation, r.Name).Trace("markup.rule.applied", "matches", count, "pass", pass)
		}
		text = out
		if !r.Repeat || count == 0 {
			break
		}
	}
	if r.Post != nil {
		text = r.Post(text)
	}
	return text
}

// replaceAll substitutes every accepted, non-overlapping match scanning left
// to right. Rejected matches resume the scan one rune after their start.
func (r *compiledRule) replaceAll(text string) (string, int, error) {
	if text == "" {
		return text, 0, nil
	}
	runes := []rune(text)
	var zones zoneMap
	if r.Exclude != zoneNone {
		zones = scanZones(text, len(runes))
	}

	var b strings.Builder
	last, pos, count := 0, 0, 0
	for pos <= len(runes) {
		found, err := r.re.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return text, 0, err
		}
		if found == nil {
			break
		}
		m := r.newMatch(found, runes)
		if !r.admissible(m, zones) {
			pos = m.Index + 1
			continue
		}
		if r.Accept != nil {
			accepted, ok := r.Accept(m)
			if !ok {
				pos = m.Index + 1
				continue
			}
			m = accepted
		}
		b.WriteString(string(runes[last:m.Index]))
		b.WriteString(r.Replacement.expand(m))
		last = m.End()
		count++
		pos = last
		if m.Length == 0 {
			pos++
		}
	}
	if count == 0 {
		return text, 0, nil
	}
	if last < len(runes) {
		b.WriteString(string(runes[last:]))
	}
	return b.String(), count, nil
}

func (r *compiledRule) admissible(m Match, zones zoneMap) bool {
	if r.Exclude == zoneNone {
		return true
	}
	if zones.rejects(m.source, m.Index, m.End(), r.Exclude) {
		return false
	}
	if r.Exclude&ZoneTag != 0 && containsNonPairTag(m.Text()) {
		return false
	}
	return true
}

func (r *compiledRule) newMatch(found *regexp2.Match, runes []rune) Match {
	texts := make([]string, found.GroupCount())
	for i := range texts {
		g := found.GroupByNumber(i)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		texts[i] = g.String()
	}
	return Match{
		Index:  found.Index,
		Length: found.Length,
		Groups: texts,
		names:  r.names,
		source: runes,
	}
}

func selectRules(rules []*compiledRule, names []string) []*compiledRule {
	if len(names) == 0 {
		return rules
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	selected := make([]*compiledRule, 0, len(names))
	for _, rule := range rules {
		if _, ok := wanted[rule.Name]; ok {
			selected = append(selected, rule)
		}
	}
	return selected
}
