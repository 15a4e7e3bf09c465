package log

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level  string
	Format string
	Tee    string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for log configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewHandler] to create a [Handler]
// for logging, or [Config.NewWriter] to additionally tee output to a file.
type Config struct {
	Level  string
	Format string
	Tee    string
	Flags  Flags
}

// NewConfig returns a new [Config] with zero-value fields.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Level:  "log-level",
		Format: "log-format",
		Tee:    "log-tee",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, "info",
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, "text",
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
	flags.StringVar(&c.Tee, c.Flags.Tee, "",
		"also write logs to this file, in addition to the primary writer")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-format completion: %w", err)
	}

	return nil
}

// NewHandler creates a new [Handler] that writes to w, using the level and
// format strings stored in c. It delegates to [NewHandlerFromStrings].
func (c *Config) NewHandler(w io.Writer) (Handler, error) {
	return NewHandlerFromStrings(w, c.Level, c.Format)
}

// NewWriter builds the destination logs should be written to, combining w
// with the file named by the --log-tee flag (if set). The returned close
// func flushes and closes the tee file and must be called during shutdown;
// it is a no-op if teeing was not configured. When teeing is active, writes
// to the tee file happen on a background goroutine via a [Publisher] so a
// slow or blocked file write never stalls the primary writer.
func (c *Config) NewWriter(w io.Writer) (io.Writer, func() error, error) {
	if c.Tee == "" {
		return w, func() error { return nil }, nil
	}

	f, err := os.OpenFile(c.Tee, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec,mnd // standard log-file permissions.
	if err != nil {
		return nil, nil, fmt.Errorf("opening log tee file %q: %w", c.Tee, err)
	}

	pub := NewPublisher()
	sub := pub.Subscribe()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range sub.C() {
			_, _ = f.Write(entry)
		}
	}()

	closeFn := func() error {
		err := pub.Close()
		<-done

		if cerr := f.Close(); err == nil {
			err = cerr
		}

		return err
	}

	return io.MultiWriter(w, pub), closeFn, nil
}
