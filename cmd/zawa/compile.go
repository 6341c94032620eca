package zawa

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"zawa/pkg/compiler"
	"zawa/pkg/tape"
	"zawa/pkg/utils"
)

var compileCmd = &cobra.Command{
	Use:   "compile source [tape]",
	Short: "Compile a source file into a tape",
	Long: `Compile assembles a source file and writes the patched tape. Without
an explicit tape path the source extension is replaced by the configured
tape extension. Nothing is written when compilation fails.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cfg.TapePath(args[0])
		if len(args) == 2 {
			out = args[1]
		}
		n, err := compileFile(args[0], out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "compiled %d records -> %s\n", n, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

// compileFile assembles src into the tape file out and returns the number of
// records written.
func compileFile(src, out string) (int, error) {
	fullPath, _, err := utils.GetPathInfo(src)
	if err != nil {
		return 0, err
	}
	lines, err := utils.ReadLines(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read source file %q: %w", src, err)
	}
	records, err := compiler.Assemble(lines)
	if err != nil {
		return 0, fmt.Errorf("compilation of %q failed: %w", src, err)
	}
	var buf bytes.Buffer
	if err := tape.Write(&buf, records); err != nil {
		return 0, err
	}
	if err := utils.WriteFileAtomic(out, buf.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to write tape file %q: %w", out, err)
	}
	return len(records), nil
}
