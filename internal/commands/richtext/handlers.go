package richtextcmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-richtext/internal/commands"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/merge"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

const (
	convertOperation = "markup.convert_text"
	mergeOperation   = "merge.merge_documents"

	mergeTargetInvalidCode = "MERGE_TARGET_INVALID"
	mergeSourceInvalidCode = "MERGE_SOURCE_INVALID"
)

// ErrConverterRequired is returned when a convert handler has no converter.
var ErrConverterRequired = errors.New("richtext command: converter is required")

var (
	_ command.Commander[ConvertTextCommand]    = (*ConvertTextHandler)(nil)
	_ command.Commander[MergeDocumentsCommand] = (*MergeDocumentsHandler)(nil)
)

// ConvertTextHandler executes ConvertTextCommand against a MarkupConverter.
type ConvertTextHandler struct {
	inner *commands.Handler[ConvertTextCommand]
}

// NewConvertTextHandler binds a handler to converter.
func NewConvertTextHandler(converter interfaces.MarkupConverter, logger interfaces.Logger, opts ...commands.HandlerOption[ConvertTextCommand]) *ConvertTextHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg ConvertTextCommand) error {
		if converter == nil {
			return ErrConverterRequired
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := convert(converter, msg)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(msg.Output, out); err != nil {
			return fmt.Errorf("write %s output: %w", msg.Mode, err)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ConvertTextCommand]{
		commands.WithLogger[ConvertTextCommand](baseLogger),
		commands.WithOperation[ConvertTextCommand](convertOperation),
		commands.WithMessageFields(func(msg ConvertTextCommand) map[string]any {
			fields := map[string]any{
				"mode":        msg.Mode,
				"text_length": len(msg.Text),
			}
			if len(msg.FilterRules) > 0 {
				fields["filter_rules"] = strings.Join(msg.FilterRules, ",")
			}
			if msg.ShouldEscapeText != nil {
				fields["escape"] = *msg.ShouldEscapeText
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ConvertTextCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ConvertTextHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ConvertTextCommand].
func (h *ConvertTextHandler) Execute(ctx context.Context, msg ConvertTextCommand) error {
	return h.inner.Execute(ctx, msg)
}

func convert(converter interfaces.MarkupConverter, msg ConvertTextCommand) (string, error) {
	switch strings.TrimSpace(msg.Mode) {
	case ModeMarkdownToHTML:
		return converter.Replace(msg.Text, interfaces.ReplaceOptions{
			FilterRules:      msg.FilterRules,
			ShouldEscapeText: msg.ShouldEscapeText,
		}), nil
	case ModeHTMLToMarkdown:
		return converter.HTMLToMarkdown(msg.Text), nil
	case ModeHTMLToText:
		return converter.HTMLToText(msg.Text), nil
	case ModeLinks:
		return joinLines(converter.ExtractLinksInMarkdownComment(msg.Text)), nil
	case ModeRemovedLinks:
		return joinLines(converter.GetRemovedMarkdownLinks(msg.OldText, msg.Text)), nil
	case ModeNonPairTag:
		return fmt.Sprintf("%t", converter.ContainsNonPairTag(msg.Text)), nil
	}
	return "", fmt.Errorf("richtext command: unsupported mode %q", msg.Mode)
}

func joinLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}

// MergeDocumentsHandler executes MergeDocumentsCommand.
type MergeDocumentsHandler struct {
	inner *commands.Handler[MergeDocumentsCommand]
}

// NewMergeDocumentsHandler builds a handler merging with the null pruning
// default of merger unless a message asks to keep nulls.
func NewMergeDocumentsHandler(merger merge.Merger, logger interfaces.Logger, opts ...commands.HandlerOption[MergeDocumentsCommand]) *MergeDocumentsHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg MergeDocumentsCommand) error {
		target, err := decodeTree(msg.Target)
		if err != nil {
			return commands.InvalidInput(fmt.Errorf("decode target: %w", err), mergeTargetInvalidCode)
		}
		source, err := decodeTree(msg.Source)
		if err != nil {
			return commands.InvalidInput(fmt.Errorf("decode source: %w", err), mergeSourceInvalidCode)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		m := merger
		if msg.KeepNulls {
			m.RemoveNullObjectValues = false
		}
		merged := m.Merge(target, source)

		payload, err := encodeTree(merged, msg.Format)
		if err != nil {
			return err
		}
		if _, err := msg.Output.Write(payload); err != nil {
			return fmt.Errorf("write merged document: %w", err)
		}
		logging.WithFields(baseLogger, map[string]any{
			"result_keys": topLevelKeys(merged),
		}).Debug("merge.command.merge_documents.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[MergeDocumentsCommand]{
		commands.WithLogger[MergeDocumentsCommand](baseLogger),
		commands.WithOperation[MergeDocumentsCommand](mergeOperation),
		commands.WithMessageFields(func(msg MergeDocumentsCommand) map[string]any {
			return map[string]any{
				"target_bytes": len(msg.Target),
				"source_bytes": len(msg.Source),
				"keep_nulls":   msg.KeepNulls,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MergeDocumentsCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MergeDocumentsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[MergeDocumentsCommand].
func (h *MergeDocumentsHandler) Execute(ctx context.Context, msg MergeDocumentsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// decodeTree reads a YAML or JSON document into map[string]any, []any and
// scalar values. An empty document decodes to nil.
func decodeTree(data []byte) (any, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return normalizeTree(tree), nil
}

// normalizeTree converts mappings with non-string keys so every mapping is a
// map[string]any the merge recognises.
func normalizeTree(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = normalizeTree(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeTree(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalizeTree(item)
		}
		return v
	}
	return value
}

func encodeTree(tree any, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(tree)
	case FormatJSON, "":
		payload, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(payload, '\n'), nil
	}
	return nil, fmt.Errorf("richtext command: unsupported format %q", format)
}

func topLevelKeys(tree any) int {
	if m, ok := tree.(map[string]any); ok {
		return len(m)
	}
	return 0
}
