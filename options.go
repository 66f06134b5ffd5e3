package vorbisogg

import "log"

// Options configures a Decoder. Use the With* functions to build one via
// New, following the functional-options idiom the teacher uses for its own
// collaborator configs (icecast.Config, webrtc.Config) rather than the
// teacher's env-var (godotenv) process-level configuration, which has no
// home in a library (see DESIGN.md).
type Options struct {
	pool         BufferPool
	logger       *log.Logger
	clipSamples  bool
}

// Option mutates an Options value during construction.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		clipSamples: true,
	}
}

// WithBufferPool supplies the pool page payloads are rented from. If
// unset, payloads are plain heap allocations.
func WithBufferPool(pool BufferPool) Option {
	return func(o *Options) { o.pool = pool }
}

// WithLogger supplies a logger for non-fatal diagnostics (non-contiguity
// events, audio-packet decode errors that do not abort the stream). If
// unset, logging is a no-op.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithClipSamples controls whether decoded samples are clamped to
// ±0.99999994 (spec.md §4.10). Enabled by default, matching libvorbis's
// default output behavior.
func WithClipSamples(clip bool) Option {
	return func(o *Options) { o.clipSamples = clip }
}

func (o *Options) logf(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
