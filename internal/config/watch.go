package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/vango-dev/mutate/internal/errors"
)

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

type watchOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report dropped reloads.
func WithLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) {
		o.logger = l
	}
}

// Watch reloads the configuration file at path whenever it changes and
// passes every valid result to fn. Invalid files are logged, with values
// from the file redacted, and skipped.
// Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors that
// save by renaming are followed.
func Watch(ctx context.Context, path string, fn func(*Config), opts ...WatchOption) error {
	o := watchOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	file, err := filepath.Abs(path)
	if err != nil {
		return errors.New(errors.CodeConfigWatch).Wrap(err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New(errors.CodeConfigWatch).Wrap(err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(file)); err != nil {
		return errors.New(errors.CodeConfigWatch).Wrap(err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := Load(file)
			if err != nil {
				o.logger.Warn("config reload dropped",
					"path", file,
					"code", errors.CodeOf(err),
					"error", errors.FromError(err, errors.CodeConfigInvalid).Redacted())
				continue
			}
			o.logger.Debug("config reloaded", "path", file)
			fn(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return errors.New(errors.CodeConfigWatch).Wrap(err)
		}
	}
}
