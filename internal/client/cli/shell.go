package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
)

func (a *App) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt over the same commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Welcome to babylog (type 'help' for commands, 'exit' to leave)")
			runREPL(cmd.Context(), a.execLine(out, cmd.ErrOrStderr()), func() string { return a.status(cmd.Context()) }, a.reader, out)
			return nil
		},
	}
}

// execLine returns the REPL dispatcher: every line runs through a fresh
// command tree sharing a.
func (a *App) execLine(out, errOut io.Writer) func(ctx context.Context, args []string) error {
	return func(ctx context.Context, args []string) error {
		if args[0] == "shell" {
			return errors.New("already in the shell")
		}
		root := a.rootCommand()
		root.SetArgs(args)
		root.SetIn(a.reader)
		root.SetOut(out)
		root.SetErr(errOut)
		return root.ExecuteContext(ctx)
	}
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is cancelled. Errors are printed and the loop goes on.
func runREPL(ctx context.Context, exec func(ctx context.Context, args []string) error, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for ctx.Err() == nil {
		prompt := "babylog"
		if s := statusFn(); s != "" {
			prompt += " " + s
		}
		fmt.Fprint(w, prompt+"> ")

		line, err := reader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && (line == "" || !eof) {
			fmt.Fprintln(w)
			return
		}

		args, perr := splitArgs(line)
		if perr != nil {
			fmt.Fprintln(w, "error:", perr)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		case "help":
			if len(args) == 1 {
				fmt.Fprintln(w, "Commands: profile, feed, diaper, sleep, log, edit, delete, summary, weight, prefs, export, backup, sync, serve, version, exit")
				fmt.Fprintln(w, "Use 'help COMMAND' or 'COMMAND --help' for details.")
				continue
			}
		}

		if err := exec(ctx, args); err != nil {
			fmt.Fprintln(w, "error:", err)
		}
		if eof {
			return
		}
	}
}

// splitArgs splits a line on whitespace, honouring single and double
// quotes so notes can contain spaces.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}
