// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Configuration is applied at logger creation time using functional
// options. A configured [Logger] is immutable; [Logger.Wrap] and
// [Logger.With] derive new loggers.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("variables loaded", slog.Int("count", n))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-lookup detail,
// such as each variable resolved while replacing a string. [ParseLevel]
// accepts the lowercase level names with optional offsets ("info+2").
//
// # Output
//
// [FormatText] and [FormatJSON] are rendered by the [log/slog] handlers of
// the same kind unless pretty printing is enabled with [WithPretty], which
// colorizes values and flattens groups into dotted keys.
//
// The zero value [Logger] discards everything, so packages can hold one
// without checking whether a logger was configured.
package log
