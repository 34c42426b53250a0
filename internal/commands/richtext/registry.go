package richtextcmd

import (
	"errors"

	"github.com/goliatone/go-richtext/internal/commands"
	"github.com/goliatone/go-richtext/internal/merge"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// CommandRegistry is the registration contract used when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers built by RegisterCommands.
type HandlerSet struct {
	Convert *ConvertTextHandler
	Merge   *MergeDocumentsHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	convertOpts []commands.HandlerOption[ConvertTextCommand]
	mergeOpts   []commands.HandlerOption[MergeDocumentsCommand]
}

// WithConvertHandlerOptions forwards options to NewConvertTextHandler.
func WithConvertHandlerOptions(opts ...commands.HandlerOption[ConvertTextCommand]) Option {
	return func(cfg *options) {
		cfg.convertOpts = append(cfg.convertOpts, opts...)
	}
}

// WithMergeHandlerOptions forwards options to NewMergeDocumentsHandler.
func WithMergeHandlerOptions(opts ...commands.HandlerOption[MergeDocumentsCommand]) Option {
	return func(cfg *options) {
		cfg.mergeOpts = append(cfg.mergeOpts, opts...)
	}
}

// RegisterCommands builds the conversion and merge handlers and registers
// them with reg when it is not nil.
func RegisterCommands(reg CommandRegistry, converter interfaces.MarkupConverter, merger merge.Merger, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if converter == nil {
		return nil, errors.New("richtext command registration: converter is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Convert: NewConvertTextHandler(converter, commands.CommandLogger(provider, "markup"), cfg.convertOpts...),
		Merge:   NewMergeDocumentsHandler(merger, commands.CommandLogger(provider, "merge"), cfg.mergeOpts...),
	}
	if reg != nil {
		if err := reg.RegisterCommand(set.Convert); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Merge); err != nil {
			return nil, err
		}
	}
	return set, nil
}
