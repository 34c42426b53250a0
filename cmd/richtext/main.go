package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"

	"github.com/goliatone/go-richtext"
	richtextcmd "github.com/goliatone/go-richtext/internal/commands/richtext"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/markup"
)

const modeMerge = "merge"

var moduleBuilder = richtext.New

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("richtext: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("richtext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", richtextcmd.ModeMarkdownToHTML, "Operation: "+strings.Join(richtextcmd.Modes, ", ")+" or "+modeMerge)
	input := fs.String("in", "-", "Input document, - for stdin; may start with a YAML header (mode, rules, escape)")
	oldInput := fs.String("old", "", "Previous revision of the comment for removed-links")
	rules := fs.String("rules", "", "Comma separated rules to run for markdown-to-html")
	noEscape := fs.Bool("no-escape", false, "Do not escape HTML in the input before converting")
	disabled := fs.String("disable-rules", "", "Comma separated rules removed from the pipeline")
	timeout := fs.Duration("match-timeout", richtext.DefaultConfig().Converter.MatchTimeout, "Upper bound for a single rule match")
	target := fs.String("target", "", "Merge target document (YAML or JSON)")
	source := fs.String("source", "", "Merge source document (YAML or JSON)")
	keepNulls := fs.Bool("keep-nulls", false, "Keep null values in the merged document")
	format := fs.String("format", richtextcmd.FormatJSON, "Merged document format: json or yaml")
	verbose := fs.Bool("verbose", false, "Enable logging")
	logProvider := fs.String("log-provider", "console", "Logging provider: console or gologger")
	logLevel := fs.String("log-level", "info", "Logging level")
	logFormat := fs.String("log-format", "", "go-logger format: json, console or pretty")

	if err := fs.Parse(args); err != nil {
		return err
	}
	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg := richtext.DefaultConfig()
	cfg.Converter.MatchTimeout = *timeout
	cfg.Converter.DisabledRules = splitList(*disabled)
	cfg.Features.Logger = *verbose
	cfg.Logging.Provider = *logProvider
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = *logFormat

	var opts []richtext.Option
	if *verbose {
		provider, err := richtext.NewLoggerProvider(cfg.Logging, stderr)
		if err != nil {
			return err
		}
		opts = append(opts, richtext.WithLoggerProvider(provider))
	}
	module, err := moduleBuilder(cfg, opts...)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": uuid.NewString()})
	logger := module.Logger("richtext.cli").WithContext(ctx)
	started := time.Now()
	defer func() {
		logger.Debug("cli.run.finished", "duration_ms", time.Since(started).Milliseconds())
	}()

	if *mode == modeMerge {
		return runMerge(ctx, module, *target, *source, *keepNulls, *format, stdout)
	}

	raw, err := readInput(*input, stdin)
	if err != nil {
		return err
	}
	doc, err := markup.ParseDocument(raw)
	if err != nil {
		return err
	}

	msg := richtextcmd.ConvertTextCommand{
		Mode:        *mode,
		Text:        doc.Body,
		FilterRules: splitList(*rules),
		Output:      stdout,
	}
	if doc.Mode != "" && !explicit["mode"] {
		msg.Mode = doc.Mode
	}
	if len(doc.Options.FilterRules) > 0 && !explicit["rules"] {
		msg.FilterRules = doc.Options.FilterRules
	}
	switch {
	case explicit["no-escape"]:
		escape := !*noEscape
		msg.ShouldEscapeText = &escape
	case doc.Options.ShouldEscapeText != nil:
		msg.ShouldEscapeText = doc.Options.ShouldEscapeText
	}
	if msg.Mode == richtextcmd.ModeRemovedLinks {
		if *oldInput == "" {
			return errors.New("removed-links requires -old")
		}
		if isStdin(*oldInput) && isStdin(*input) {
			return errors.New("removed-links cannot read both -old and -in from stdin")
		}
		old, err := readInput(*oldInput, stdin)
		if err != nil {
			return err
		}
		oldDoc, err := markup.ParseDocument(old)
		if err != nil {
			return err
		}
		msg.OldText = oldDoc.Body
	}

	logger.Debug("cli.convert.dispatch", "mode", msg.Mode)
	sub := dispatcher.SubscribeCommand(module.Commands().Convert)
	defer sub.Unsubscribe()
	if err := dispatcher.Dispatch(ctx, msg); err != nil {
		return err
	}
	if msg.Mode == richtextcmd.ModeMarkdownToHTML || msg.Mode == richtextcmd.ModeHTMLToMarkdown ||
		msg.Mode == richtextcmd.ModeHTMLToText || msg.Mode == richtextcmd.ModeNonPairTag {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

func runMerge(ctx context.Context, module *richtext.Module, targetPath, sourcePath string, keepNulls bool, format string, stdout io.Writer) error {
	if sourcePath == "" {
		return errors.New("merge requires -source")
	}
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	var target []byte
	if targetPath != "" {
		if target, err = os.ReadFile(targetPath); err != nil {
			return fmt.Errorf("read target: %w", err)
		}
	}

	sub := dispatcher.SubscribeCommand(module.Commands().Merge)
	defer sub.Unsubscribe()
	return dispatcher.Dispatch(ctx, richtextcmd.MergeDocumentsCommand{
		Target:    target,
		Source:    source,
		KeepNulls: keepNulls,
		Format:    format,
		Output:    stdout,
	})
}

func isStdin(path string) bool {
	return path == "" || path == "-"
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if isStdin(path) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
