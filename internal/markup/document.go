package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Document is a comment read from a file. An optional YAML header selects
// how the body is converted:
//
//	---
//	mode: markdown-to-html
//	rules: [bold, link]
//	escape: false
//	expected: "<strong>hi</strong>"
//	---
//	*hi*
type Document struct {
	Mode     string
	Options  interfaces.ReplaceOptions
	Expected string
	Meta     map[string]any
	// Body excludes the header and the final line break of the file.
	Body string
}

type documentHeader struct {
	Mode     string         `yaml:"mode"`
	Rules    []string       `yaml:"rules"`
	Escape   *bool          `yaml:"escape"`
	Expected string         `yaml:"expected"`
	Custom   map[string]any `yaml:",inline"`
}

// ParseDocument splits source into its header and body. Sources without a
// header are returned whole as the body.
func ParseDocument(source []byte) (Document, error) {
	var header documentHeader
	body, err := frontmatter.Parse(bytes.NewReader(source), &header)
	if err != nil {
		return Document{}, fmt.Errorf("markup: parse document header: %w", err)
	}
	text := strings.TrimSuffix(string(body), "\n")
	text = strings.TrimSuffix(text, "\r")

	meta := header.Custom
	if meta == nil {
		meta = map[string]any{}
	}
	return Document{
		Mode: strings.TrimSpace(header.Mode),
		Options: interfaces.ReplaceOptions{
			FilterRules:      header.Rules,
			ShouldEscapeText: header.Escape,
		},
		Expected: header.Expected,
		Meta:     meta,
		Body:     text,
	}, nil
}
