// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt], and
// [FormatText]) and severity levels ([LevelError], [LevelWarn], [LevelInfo],
// and [LevelDebug]). Use [NewHandler] to create a handler directly, or use
// [Config] with CLI flag integration via [github.com/spf13/pflag] and shell
// completion support via [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	w, closeTee, err := cfg.NewWriter(os.Stderr)
//	defer closeTee()
//
//	handler, err := cfg.NewHandler(w)
//	slog.SetDefault(slog.New(handler))
//
// [Config.NewWriter] wires the --log-tee flag, fanning output out to both
// the primary writer and a file via a [Publisher] running its file writes on
// a background goroutine. A [Publisher] can also be used directly to fan log
// output out to an arbitrary number of subscribers:
//
//	pub := log.NewPublisher()
//	handler := log.NewHandler(pub, log.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // Deliver entry somewhere else, e.g. a second transport.
//	    }
//	}()
package log
