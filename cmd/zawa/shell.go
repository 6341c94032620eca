package zawa

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"zawa/pkg/config"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive run/compile/exit prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sh := &Shell{
			Config: cfg,
			In:     bufio.NewReader(os.Stdin),
			Out:    os.Stdout,
			Err:    cmd.ErrOrStderr(),
			Prompt: term.IsTerminal(int(os.Stdin.Fd())),
		}
		return sh.Loop(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// Shell reads one command per line. Programs run from the shell read their
// input from the same stream.
type Shell struct {
	Config config.Config
	In     *bufio.Reader
	Out    io.Writer
	Err    io.Writer
	// Prompt enables the prompt string; off when input is not a terminal.
	Prompt bool
}

var errExit = errors.New("exit")

// Loop processes commands until exit or end of input. Command failures are
// reported and the loop continues.
func (s *Shell) Loop(ctx context.Context) error {
	for {
		if s.Prompt {
			fmt.Fprint(s.Err, s.Config.Prompt)
		}
		line, err := s.In.ReadString('\n')
		if len(strings.TrimSpace(line)) > 0 {
			switch cmdErr := s.Exec(ctx, line); {
			case errors.Is(cmdErr, errExit):
				return nil
			case cmdErr != nil:
				fmt.Fprintf(s.Err, "zawa: %v\n", cmdErr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Exec runs a single shell command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	start := time.Now()
	var err error

	switch fields[0] {
	case "exit":
		return errExit
	case "run":
		if len(fields) != 2 {
			return fmt.Errorf("usage: run <tape>")
		}
		c := s.Config
		c.Timing = false
		err = runFile(ctx, c, fields[1], s.In, s.Out, s.Err)
	case "compile":
		if len(fields) != 3 {
			return fmt.Errorf("usage: compile <source> <tape>")
		}
		_, err = compileFile(fields[1], fields[2])
	default:
		return fmt.Errorf("unknown command %q (want run, compile or exit)", fields[0])
	}

	if s.Config.Timing {
		fmt.Fprintf(s.Err, "\n[%s took %s]\n", fields[0], time.Since(start))
	}
	return err
}
