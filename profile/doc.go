// Package profile adds runtime profiling capabilities to the recs-collate
// CLI, so a large batch collation run can be profiled directly rather than
// wrapped externally with go tool pprof plumbing.
//
// It supports CPU, heap, allocs, goroutine, threadcreate, block, and mutex
// profiles through command-line flags. Use [Config.RegisterFlags] to add CLI
// flags and [Config.RegisterCompletions] to wire up shell completions.
//
// Typical usage creates a [Config], registers flags, then creates a [Profiler]
// to wrap command execution:
//
//	cfg := profile.NewConfig()
//	p := cfg.NewProfiler()
//
//	rootCmd := &cobra.Command{
//	    PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
//	        return p.Start()
//	    },
//	    PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
//	        return p.Stop()
//	    },
//	}
//
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
// Users can then enable profiling via flags like --cpu-profile=cpu.prof.
package profile
