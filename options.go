package strata

import "log/slog"

// Options holds configuration settings for a Config.
type Options struct {
	Logger *slog.Logger
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithLogger sets the logger used for watch-loop and loader diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}
