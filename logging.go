package richtext

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-richtext/internal/logging/console"
	"github.com/goliatone/go-richtext/internal/logging/gologger"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// NewLoggerProvider builds the provider named by cfg.Provider. The console
// provider writes to w, or stderr when w is nil.
func NewLoggerProvider(cfg LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{Writer: w}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
}
