package strata

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

// DefaultPeriod is the poll period used when none is configured.
const DefaultPeriod = 5 * time.Second

// WatchOptions holds settings for a watched layer.
type WatchOptions struct {
	Period     time.Duration
	FileEvents bool
}

// WatchOption defines a function type for configuring a watched layer.
type WatchOption func(*WatchOptions)

// WithPeriod sets the poll period. Non-positive values fall back to
// DefaultPeriod.
func WithPeriod(period time.Duration) WatchOption {
	return func(opts *WatchOptions) {
		opts.Period = period
	}
}

// WithFileEvents additionally triggers reloads from filesystem write
// events, so changes apply without waiting out the poll period. Only
// meaningful for FromWatchedFile.
func WithFileEvents() WatchOption {
	return func(opts *WatchOptions) {
		opts.FileEvents = true
	}
}

// Loader re-fetches a watched layer's content.
type Loader func(ctx context.Context) (*source.Source, error)

// Watcher binds one config layer to a background reload loop. On every
// trigger it re-invokes the loader; on success it atomically replaces the
// layer's content in every config sharing the layer, on failure it logs
// and keeps the previous content. Readers never block.
type Watcher struct {
	reload Loader
	facet  *facet
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	stop   sync.Once

	mu      sync.Mutex
	subs    map[int]func(*source.Source)
	nextSub int
}

// FromWatchedSource loads an initial tree via load (a failed initial load
// fails the call) and returns the child Config bound to it together with
// the Watcher driving reloads. The poll loop runs until ctx is cancelled
// or Stop is called.
func (c *Config) FromWatchedSource(ctx context.Context, load Loader, opts ...WatchOption) (*Config, *Watcher, error) {
	options := watchOptions(opts)

	initial, err := load(ctx)
	if err != nil {
		return nil, nil, err
	}

	f := newFacet(initial)
	child := c.withFacet(f)
	watcher := c.startWatcher(ctx, f, load, options, nil)

	return child, watcher, nil
}

// FromWatchedFile loads path with the provider registered for its
// extension and keeps the resulting layer in sync with the file.
func (c *Config) FromWatchedFile(ctx context.Context, path string, opts ...WatchOption) (*Config, *Watcher, error) {
	options := watchOptions(opts)

	p, err := provider.ByExtension(fileExt(path))
	if err != nil {
		return nil, nil, err
	}

	load := func(context.Context) (*source.Source, error) {
		return p.FromFile(path)
	}

	initial, err := load(ctx)
	if err != nil {
		return nil, nil, err
	}

	f := newFacet(initial)
	child := c.withFacet(f)

	var events <-chan struct{}

	if options.FileEvents {
		events, err = fileEvents(ctx, path, c.logger)
		if err != nil {
			return nil, nil, err
		}
	}

	watcher := c.startWatcher(ctx, f, load, options, events)

	return child, watcher, nil
}

// FromWatchedURL fetches rawURL like FromURL and re-fetches it on every
// poll period.
func (c *Config) FromWatchedURL(ctx context.Context, rawURL string, opts ...WatchOption) (*Config, *Watcher, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	p, err := provider.ByExtension(fileExt(parsed.Path))
	if err != nil {
		return nil, nil, err
	}

	load := func(loadCtx context.Context) (*source.Source, error) {
		return p.FromURL(loadCtx, rawURL)
	}

	return c.FromWatchedSource(ctx, load, opts...)
}

func watchOptions(opts []WatchOption) WatchOptions {
	options := WatchOptions{Period: DefaultPeriod, FileEvents: false}

	for _, apply := range opts {
		apply(&options)
	}

	if options.Period <= 0 {
		options.Period = DefaultPeriod
	}

	return options
}

func (c *Config) startWatcher(ctx context.Context, f *facet, load Loader, options WatchOptions, events <-chan struct{}) *Watcher {
	runCtx, cancel := context.WithCancel(ctx)

	watcher := &Watcher{
		reload:  load,
		facet:   f,
		logger:  c.logger,
		cancel:  cancel,
		done:    make(chan struct{}),
		stop:    sync.Once{},
		mu:      sync.Mutex{},
		subs:    make(map[int]func(*source.Source)),
		nextSub: 0,
	}

	go watcher.run(runCtx, options.Period, events)

	return watcher
}

func (w *Watcher) run(ctx context.Context, period time.Duration, events <-chan struct{}) {
	defer close(w.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.refresh(ctx)
		case <-events:
			_ = w.refresh(ctx)
		}
	}
}

// Reload forces a synchronous refresh outside the poll schedule. Unlike
// the background loop it returns the refetch error to the caller; the
// layer still keeps its previous content on failure.
func (w *Watcher) Reload() error {
	return w.refresh(context.Background())
}

func (w *Watcher) refresh(ctx context.Context) error {
	next, err := w.reload(ctx)
	if err != nil {
		// Fail-safe degrade: keep the previous content in place.
		w.logger.Warn("config refetch failed, keeping previous content", "error", err)

		return err
	}

	previous := w.facet.load()
	if source.Equal(previous, next) {
		return nil
	}

	w.facet.swap(next)
	w.logger.Info("config layer reloaded", "source", next.Info().Description())

	w.mu.Lock()
	subs := make([]func(*source.Source), 0, len(w.subs))

	for _, sub := range w.subs {
		subs = append(subs, sub)
	}
	w.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}

	return nil
}

// OnChange registers fn to run after every successful content replacement,
// receiving the new tree. It returns an unsubscribe function.
func (w *Watcher) OnChange(fn func(*source.Source)) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		delete(w.subs, id)
	}
}

// Stop cancels future polls and waits for the loop to exit. Reads against
// configs holding the watched layer are unaffected and keep seeing the
// last loaded content.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		w.cancel()
		<-w.done
	})
}

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// fileEvents bridges fsnotify into a reload trigger channel. Editors often
// replace files via rename on save, so create events count too and the
// path is re-added after every event in case the inode changed.
func fileEvents(ctx context.Context, path string, logger *slog.Logger) (<-chan struct{}, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(path); err != nil {
		_ = fsWatcher.Close()

		return nil, err
	}

	events := make(chan struct{}, 1)

	go func() {
		defer func() {
			_ = fsWatcher.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}

				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				select {
				case events <- struct{}{}:
				default:
				}

				_ = fsWatcher.Add(path)
			case watchErr, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}

				logger.Warn("file watcher error", "path", path, "error", watchErr)
			}
		}
	}()

	return events, nil
}
