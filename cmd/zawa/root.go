// Package zawa implements the zawa command line: compile source files to
// tapes, run tapes, and an interactive shell wrapping both.
package zawa

import (
	"github.com/spf13/cobra"

	"zawa/pkg/config"
)

var (
	configPath string
	timing     bool
	cfg        = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "zawa",
	Short: "Compile and run zawa scripts",
	Long: `Zawa compiles semicolon-delimited scripts into a flat text tape of
instructions and runs those tapes on a small interpreter.

Typical use is "zawa compile prog.zw" followed by "zawa run prog.zt", or
"zawa shell" for the interactive run/compile/exit prompt.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if f := cmd.Flags().Lookup("time"); f != nil && f.Changed {
			cfg.Timing = timing
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&timing, "time", false, "report elapsed time per run")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
