package markup

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var protectedElements = map[string]Zone{
	"a":    ZoneAnchor,
	"code": ZoneCode,
	"pre":  ZonePre,
}

// zoneMap records, per rune of a text, which zones the rune belongs to.
type zoneMap []Zone

// scanZones tokenizes text and flags tag interiors and the content of
// protected elements. A text without '<' has no zones.
func scanZones(text string, runeCount int) zoneMap {
	if !strings.ContainsRune(text, '<') {
		return nil
	}
	zones := make(zoneMap, runeCount)
	depth := map[string]int{}
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0 // byte offset
	pos := 0    // rune offset
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return zones
		}
		raw := z.Raw()
		width := utf8.RuneCount(raw)
		offset += len(raw)

		switch tt {
		case html.TextToken:
			zones.mark(pos, pos+width, activeZones(depth))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			name, _ := z.TagName()
			_, protected := protectedElements[string(name)]
			if protected && tt == html.EndTagToken && depth[string(name)] > 0 {
				depth[string(name)]--
			}
			// tags carry only the zones surrounding the element
			zones.mark(pos, pos+width, activeZones(depth)|ZoneTag)
			if protected && tt == html.StartTagToken {
				depth[string(name)]++
			}
		}
		pos += width
		if offset >= len(text) {
			return zones
		}
	}
}

func activeZones(depth map[string]int) Zone {
	var active Zone
	for name, zone := range protectedElements {
		if depth[name] > 0 {
			active |= zone
		}
	}
	return active
}

func (zm zoneMap) mark(from, to int, zone Zone) {
	if zone == zoneNone {
		return
	}
	if to > len(zm) {
		to = len(zm)
	}
	for i := from; i < to; i++ {
		zm[i] |= zone
	}
}

func (zm zoneMap) at(i int) Zone {
	if i < 0 || i >= len(zm) {
		return zoneNone
	}
	return zm[i]
}

// rejects reports whether a match spanning [start, end) begins or ends
// inside an excluded zone. A match may begin at the '<' or end at the '>'
// of a tag since it then contains the whole tag.
func (zm zoneMap) rejects(runes []rune, start, end int, exclude Zone) bool {
	if zm == nil || exclude == zoneNone {
		return false
	}
	last := end - 1
	if last < start {
		last = start
	}
	content := exclude &^ ZoneTag
	if zm.at(start)&content != 0 || zm.at(last)&content != 0 {
		return true
	}
	if exclude&ZoneTag == 0 {
		return false
	}
	if zm.at(start)&ZoneTag != 0 && runes[start] != '<' {
		return true
	}
	return zm.at(last)&ZoneTag != 0 && runes[last] != '>'
}
