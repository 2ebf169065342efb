package store

import "log/slog"

type options struct {
	log *slog.Logger
}

// Option configures encoding and decoding.
type Option func(*options)

// Logger sets the logger receiving warnings about dropped references. If
// nil, slog.Default() will be used.
func Logger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func makeOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}
