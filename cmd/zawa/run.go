package zawa

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/goforj/godump"
	"github.com/spf13/cobra"

	"zawa/pkg/config"
	"zawa/pkg/tape"
	"zawa/pkg/vm"
)

var runCmd = &cobra.Command{
	Use:   "run tape",
	Short: "Run a compiled tape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("trace") {
			cfg.Trace, _ = flags.GetBool("trace")
		}
		if flags.Changed("max-steps") {
			cfg.MaxSteps, _ = flags.GetInt("max-steps")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runFile(ctx, cfg, args[0], os.Stdin, os.Stdout, cmd.ErrOrStderr())
	},
}

func init() {
	runCmd.Flags().Bool("trace", false, "dump the decoded program and final variables")
	runCmd.Flags().Int("max-steps", 0, "abort after this many instructions (0 = no limit)")
	rootCmd.AddCommand(runCmd)
}

func readTape(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tape file %q: %w", path, err)
	}
	defer f.Close()
	return tape.Read(f)
}

// runFile loads and runs one tape file. Output already produced stays
// written when the run fails.
func runFile(ctx context.Context, c config.Config, path string, in io.Reader, out, diag io.Writer) error {
	records, err := readTape(path)
	if err != nil {
		return err
	}
	prog, err := vm.Load(records)
	if err != nil {
		return fmt.Errorf("load %q: %w", path, err)
	}
	if c.Trace {
		godump.Dump(prog.Instructions)
	}

	m := vm.NewMachine(prog,
		vm.WithInput(in),
		vm.WithOutput(out),
		vm.WithStepLimit(c.MaxSteps),
	)
	start := time.Now()
	err = m.Run(ctx)
	if c.Timing {
		fmt.Fprintf(diag, "\n[%s: %d steps in %s]\n", path, m.Steps, time.Since(start))
	}
	if c.Trace {
		godump.Dump(m.Vars.Snapshot())
	}
	if err != nil {
		return fmt.Errorf("run %q: %w", path, err)
	}
	return nil
}
