package strata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/0xalexb/strata/source"
)

// ErrEmptyModuleName is returned when the module name is empty.
var ErrEmptyModuleName = errors.New("module name must not be empty")

// ModuleOption appends one loading step to an fx config module. Steps apply
// in the order given, so later options layer on top of earlier ones.
type ModuleOption func(*moduleConfig)

type moduleStep func(ctx context.Context, cfg *Config) (*Config, *Watcher, error)

type moduleConfig struct {
	steps []moduleStep
}

// WithFile layers the given file onto the module's config.
func WithFile(path string) ModuleOption {
	return func(mc *moduleConfig) {
		mc.steps = append(mc.steps, func(_ context.Context, cfg *Config) (*Config, *Watcher, error) {
			next, err := cfg.FromFile(path)

			return next, nil, err
		})
	}
}

// WithWatchedFile layers the given file and keeps it in sync with the
// filesystem on the given poll period for the lifetime of the fx app.
func WithWatchedFile(path string, period time.Duration) ModuleOption {
	return func(mc *moduleConfig) {
		mc.steps = append(mc.steps, func(ctx context.Context, cfg *Config) (*Config, *Watcher, error) {
			return cfg.FromWatchedFile(ctx, path, WithPeriod(period))
		})
	}
}

// WithSource layers an already built source tree onto the module's config.
func WithSource(src *source.Source) ModuleOption {
	return func(mc *moduleConfig) {
		mc.steps = append(mc.steps, func(_ context.Context, cfg *Config) (*Config, *Watcher, error) {
			return cfg.WithSource(src), nil, nil
		})
	}
}

// WithEnv layers environment variables carrying the given prefix.
func WithEnv(prefix string) ModuleOption {
	return func(mc *moduleConfig) {
		mc.steps = append(mc.steps, func(_ context.Context, cfg *Config) (*Config, *Watcher, error) {
			return cfg.FromEnv(prefix), nil, nil
		})
	}
}

// NewModule creates an Fx module providing a named *Config assembled from
// the given loading steps. Watched steps are stopped through the fx
// lifecycle when the app shuts down.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(name string, opts ...ModuleOption) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyModuleName)
	}

	var mc moduleConfig

	for _, apply := range opts {
		apply(&mc)
	}

	return fx.Module(name, fx.Provide(
		fx.Annotate(
			func(lifecycle fx.Lifecycle) (*Config, error) {
				cfg := New()

				var watchers []*Watcher

				for _, step := range mc.steps {
					next, watcher, err := step(context.Background(), cfg)
					if err != nil {
						for _, w := range watchers {
							w.Stop()
						}

						return nil, fmt.Errorf("loading config %q: %w", name, err)
					}

					cfg = next

					if watcher != nil {
						watchers = append(watchers, watcher)
					}
				}

				if len(watchers) > 0 {
					lifecycle.Append(fx.Hook{
						OnStart: nil,
						OnStop: func(context.Context) error {
							for _, w := range watchers {
								w.Stop()
							}

							return nil
						},
					})
				}

				return cfg, nil
			},
			fx.ResultTags(fmt.Sprintf(`name:"%s"`, name)),
		),
	))
}
