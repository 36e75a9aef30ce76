package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tinythreads/internal/apps"
	"tinythreads/internal/board"
	"tinythreads/internal/config"
	"tinythreads/internal/sched"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// run flags
	layoutName string
	duration   time.Duration
	headless   bool
	traceCSV   string
	stackSize  bytesize.ByteSize

	// primes flags
	primeCount int

	logger   *zap.Logger
	logLevel = zap.NewAtomicLevel()
)

var rootCmd = &cobra.Command{
	Use:   "tinythreads",
	Short: "Cooperative round-robin threads driving a segment display",
	Long: `tinythreads spawns a fixed set of demo tasks (square numbers, primes,
exponential approximation, LED blinker) on a cooperative scheduler. Every task
prints a value, busy-waits and yields; the caller's own flow becomes the last task.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg = zap.NewDevelopmentConfig()
			logLevel.SetLevel(zapcore.DebugLevel)
		}
		zcfg.Level = logLevel
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a task layout until interrupted",
	Long: `Runs the configured layout forever, or for --duration.

Layouts:
  part1: power@0 primes@1 exponential@2 exponential@3, LED as the last task
  part2: power@0,1 primes@2,3 exponential@4,5, LED as the last task`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

var primesCmd = &cobra.Command{
	Use:   "primes",
	Short: "Print the first primes the primes task would display",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for n, found := 0, 0; found < primeCount; n++ {
			if apps.IsPrime(n) {
				fmt.Fprintln(out, n)
				found++
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tinythreads.yml", "path to the YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd.Flags().StringVarP(&layoutName, "layout", "l", "", "task layout (overrides config)")
	runCmd.Flags().DurationVarP(&duration, "duration", "d", 0, "halt after this long (0 = run forever)")
	runCmd.Flags().BoolVar(&headless, "headless", false, "keep display output in memory")
	runCmd.Flags().StringVar(&traceCSV, "trace-csv", "", "write scheduler events to this CSV file (overrides config)")
	runCmd.Flags().Var(&stackSize, "stack-size", "per-task stack size (overrides config)")

	primesCmd.Flags().IntVarP(&primeCount, "count", "n", 10, "number of primes")

	rootCmd.AddCommand(runCmd, primesCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if layoutName != "" {
		cfg.Layout = layoutName
	}
	if traceCSV != "" {
		cfg.TraceCSV = traceCSV
	}
	if stackSize != 0 {
		cfg.StackSize = stackSize.String()
	}
	if err := applyLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	layout, err := apps.LookupLayout(cfg.Layout)
	if err != nil {
		return err
	}
	schedCfg, err := cfg.Sched()
	if err != nil {
		return err
	}
	s, err := sched.New(schedCfg, sched.WithLogger(logger.Named("sched")))
	if err != nil {
		return err
	}
	if cfg.TraceCSV != "" {
		if err := s.EnableCSVLogging(cfg.TraceCSV); err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer s.Close()
	}

	var display board.Display = board.NewConsole(cfg.Segments)
	if headless {
		display = board.NewMemory(cfg.Segments)
	}
	env := &apps.Env{
		Sched:   s,
		Display: display,
		Timer:   board.NewTimer(),
		LED:     board.NewGPIO(0, nil),
		DelayUS: cfg.DelayUS,
		Logger:  logger.Named("apps"),
	}

	if err := env.Boot(cfg.Banner, cfg.SplashUS); err != nil {
		return err
	}
	last, arg, err := layout.Spawn(s, env)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	logger.Info("running layout", zap.String("layout", layout.Name), zap.Int("tasks", s.Len()+1))
	err = s.Run(ctx, last, arg)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil && ctx.Err() != nil {
		logger.Info("halted", zap.Error(err), zap.Uint64("switches", s.Switches()))
		return nil
	}
	return err
}

// applyLogLevel sets the configured level unless --verbose already asked for
// debug output.
func applyLogLevel(level string) error {
	if verbose {
		return nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	logLevel.SetLevel(lvl)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
