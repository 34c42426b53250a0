package richtext

import (
	richtextcmd "github.com/goliatone/go-richtext/internal/commands/richtext"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/markup"
	"github.com/goliatone/go-richtext/internal/merge"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Converter exports the markup converter contract.
type Converter = interfaces.MarkupConverter

// ReplaceOptions exports the per call Replace options.
type ReplaceOptions = interfaces.ReplaceOptions

// Merger exports the configuration driven merge value.
type Merger = merge.Merger

// MergeOption tunes a single FastMerge call.
type MergeOption = merge.Option

// CommandHandlers exports the command handler set.
type CommandHandlers = richtextcmd.HandlerSet

// Undefined marks a value as absent inside merge sources; such keys leave the
// target untouched.
var Undefined = merge.Undefined

// FastMerge merges source into target without mutating either. Nulls in the
// result are pruned unless KeepNullValues is passed.
func FastMerge(target, source any, opts ...MergeOption) any {
	return merge.FastMerge(target, source, opts...)
}

// KeepNullValues disables null pruning for a FastMerge call.
func KeepNullValues() MergeOption {
	return merge.KeepNullValues()
}

// HTMLEscape escapes text the way Replace does before applying rules.
func HTMLEscape(text string) string {
	return markup.HTMLEscape(text)
}

// HTMLUnescape decodes HTML character references.
func HTMLUnescape(text string) string {
	return markup.HTMLUnescape(text)
}

// Option customises New.
type Option func(*moduleOptions)

type moduleOptions struct {
	provider interfaces.LoggerProvider
	registry richtextcmd.CommandRegistry
}

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg richtextcmd.CommandRegistry) Option {
	return func(o *moduleOptions) {
		o.registry = reg
	}
}

// Module bundles a converter, a merger and their command handlers built from
// one Config.
type Module struct {
	config    Config
	provider  interfaces.LoggerProvider
	converter *markup.Converter
	merger    merge.Merger
	commands  *richtextcmd.HandlerSet
}

// New validates cfg and wires the module.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	provider := options.provider
	if provider == nil && cfg.Features.Logger {
		built, err := NewLoggerProvider(cfg.Logging, nil)
		if err != nil {
			return nil, err
		}
		provider = built
	}

	converter, err := markup.New(
		markup.WithLogger(logging.ConverterLogger(provider)),
		markup.WithMatchTimeout(cfg.Converter.MatchTimeout),
		markup.WithDisabledRules(cfg.Converter.DisabledRules...),
		markup.WithTextEscaping(cfg.Converter.EscapeText),
	)
	if err != nil {
		return nil, err
	}

	merger := merge.Merger{RemoveNullObjectValues: cfg.Merge.RemoveNullObjectValues}
	handlers, err := richtextcmd.RegisterCommands(options.registry, converter, merger, provider)
	if err != nil {
		return nil, err
	}

	return &Module{
		config:    cfg,
		provider:  provider,
		converter: converter,
		merger:    merger,
		commands:  handlers,
	}, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.config
}

// Converter returns the markup converter.
func (m *Module) Converter() Converter {
	return m.converter
}

// Merger returns the merger configured by Config.Merge.
func (m *Module) Merger() Merger {
	return m.merger
}

// Commands returns the command handlers.
func (m *Module) Commands() *CommandHandlers {
	return m.commands
}

// Logger returns a module scoped logger from the configured provider.
func (m *Module) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(m.provider, module)
}
