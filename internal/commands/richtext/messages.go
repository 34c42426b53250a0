package richtextcmd

import (
	"io"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	convertTextMessageType    = "richtext.markup.convert_text"
	mergeDocumentsMessageType = "richtext.merge.merge_documents"
)

// Conversion modes accepted by ConvertTextCommand.
const (
	ModeMarkdownToHTML = "markdown-to-html"
	ModeHTMLToMarkdown = "html-to-markdown"
	ModeHTMLToText     = "html-to-text"
	ModeLinks          = "links"
	ModeRemovedLinks   = "removed-links"
	ModeNonPairTag     = "non-pair-tag"
)

// Output formats accepted by MergeDocumentsCommand.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Modes lists every conversion mode.
var Modes = []string{
	ModeMarkdownToHTML,
	ModeHTMLToMarkdown,
	ModeHTMLToText,
	ModeLinks,
	ModeRemovedLinks,
	ModeNonPairTag,
}

// ConvertTextCommand runs one converter operation over Text and writes the
// result to Output. OldText is the previous revision compared against Text
// in removed-links mode.
type ConvertTextCommand struct {
	Mode             string    `json:"mode"`
	Text             string    `json:"text"`
	OldText          string    `json:"old_text,omitempty"`
	FilterRules      []string  `json:"filter_rules,omitempty"`
	ShouldEscapeText *bool     `json:"should_escape_text,omitempty"`
	Output           io.Writer `json:"-"`
}

// Type implements command.Message.
func (ConvertTextCommand) Type() string { return convertTextMessageType }

// Validate checks the mode and output before handlers execute.
func (cmd ConvertTextCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Mode, validation.Required, validation.By(func(value any) error {
			mode, _ := value.(string)
			if !slices.Contains(Modes, strings.TrimSpace(mode)) {
				return validation.NewError("richtext.markup.convert_text.mode_unknown", "mode must be one of "+strings.Join(Modes, ", "))
			}
			return nil
		})),
		validation.Field(&cmd.Output, validation.By(requireWriter("richtext.markup.convert_text.output_required"))),
	)
}

// MergeDocumentsCommand merges the YAML or JSON tree in Source into the tree
// in Target and writes the result to Output.
type MergeDocumentsCommand struct {
	Target    []byte    `json:"target"`
	Source    []byte    `json:"source"`
	KeepNulls bool      `json:"keep_nulls,omitempty"`
	Format    string    `json:"format,omitempty"`
	Output    io.Writer `json:"-"`
}

// Type implements command.Message.
func (MergeDocumentsCommand) Type() string { return mergeDocumentsMessageType }

// Validate requires a source document and a known output format.
func (cmd MergeDocumentsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.By(func(value any) error {
			source, _ := value.([]byte)
			if strings.TrimSpace(string(source)) == "" {
				return validation.NewError("richtext.merge.merge_documents.source_required", "source document is required")
			}
			return nil
		})),
		validation.Field(&cmd.Format, validation.In(FormatJSON, FormatYAML).
			ErrorObject(validation.NewError("richtext.merge.merge_documents.format_unknown", "format must be json or yaml"))),
		validation.Field(&cmd.Output, validation.By(requireWriter("richtext.merge.merge_documents.output_required"))),
	)
}

func requireWriter(code string) validation.RuleFunc {
	return func(value any) error {
		if w, _ := value.(io.Writer); w == nil {
			return validation.NewError(code, "output writer is required")
		}
		return nil
	}
}
