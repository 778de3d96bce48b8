package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/weberc2/afs/pkg/filesystem"
	. "github.com/weberc2/afs/pkg/types"
)

const UnterminatedQuoteErr ConstError = "unterminated quote"

// parseCommand splits `line` on whitespace. Single or double quotes group
// characters (whitespace included) into one argument.
func parseCommand(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("parsing `%s`: %w", line, UnterminatedQuoteErr)
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}

type command struct {
	usage   string
	minArgs int
	maxArgs int
	run     func(sh *Shell, args []string) error
}

var commands = map[string]command{
	"touch": {
		usage:   "touch <path>",
		minArgs: 1,
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			return sh.FileSystem.CreateFile(args[0], false)
		},
	},
	"mkdir": {
		usage:   "mkdir <path>",
		minArgs: 1,
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			return sh.FileSystem.CreateFile(args[0], true)
		},
	},
	"rm": {
		usage:   "rm <path>",
		minArgs: 1,
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			return sh.FileSystem.DeleteFile(args[0])
		},
	},
	"ls": {
		usage:   "ls [<path>]",
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			path := "/"
			if len(args) > 0 {
				path = args[0]
			}
			entries, err := sh.FileSystem.ListDir(path)
			if err != nil {
				return err
			}
			return writeEntries(sh.Out, entries)
		},
	},
	"cat": {
		usage:   "cat <path>",
		minArgs: 1,
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			data, err := sh.FileSystem.GetContent(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(sh.Out, "%s\n", data)
			return err
		},
	},
	"append": {
		usage:   "append <path> <text>...",
		minArgs: 2,
		maxArgs: -1,
		run: func(sh *Shell, args []string) error {
			return sh.FileSystem.AppendContent(
				args[0],
				[]byte(strings.Join(args[1:], " ")),
			)
		},
	},
	"edit": {
		usage:   "edit <path>",
		minArgs: 1,
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			data, err := sh.FileSystem.GetContent(args[0])
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(
				sh.Out,
				"%s\n(appending; finish with an empty line)\n",
				data,
			); err != nil {
				return err
			}
			text, err := readParagraph(sh.In)
			if err != nil {
				return err
			}
			return sh.FileSystem.AppendContent(args[0], []byte(text))
		},
	},
	"stat": {
		usage:   "stat <path>",
		minArgs: 1,
		maxArgs: 1,
		run: func(sh *Shell, args []string) error {
			stat, err := sh.FileSystem.Stat(args[0])
			if err != nil {
				return err
			}
			return writeStat(sh.Out, &stat)
		},
	},
	"usage": {
		usage: "usage",
		run: func(sh *Shell, args []string) error {
			usage, err := sh.FileSystem.Usage()
			if err != nil {
				return err
			}
			return writeUsage(sh.Out, &usage)
		},
	},
}

// readParagraph reads lines until an empty line or EOF and joins them
// with newlines.
func readParagraph(scanner *bufio.Scanner) (string, error) {
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

func writeEntries(w io.Writer, entries []Entry) error {
	for i := range entries {
		kind := "-"
		if entries[i].IsDirectory {
			kind = "d"
		}
		if _, err := fmt.Fprintf(
			w,
			"%s %10d %s\n",
			kind,
			entries[i].Size,
			entries[i].Name,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeStat(w io.Writer, stat *Stat) error {
	kind := "file"
	if stat.Flags.IsDirectory() {
		kind = "directory"
	}
	_, err := fmt.Fprintf(
		w,
		"name: %s\nino: %d\ntype: %s\nsize: %d\nfirst: %#x\nblocks: %d\n",
		stat.Name,
		stat.Ino,
		kind,
		stat.Size,
		stat.FirstAddr,
		stat.Blocks,
	)
	return err
}

func writeUsage(w io.Writer, usage *Usage) error {
	_, err := fmt.Fprintf(
		w,
		"block size: %d\nblocks: %d used (%d system), %d free, %d total\n"+
			"inodes: %d live, %d allocated, %d capacity\n",
		usage.BlockSize,
		usage.UsedBlocks,
		usage.SystemBlocks,
		usage.FreeBlocks,
		usage.BlockCount,
		usage.LiveInodes,
		usage.InodeCount,
		usage.InodeCapacity,
	)
	return err
}

// Shell reads commands from `In` and runs them against `FileSystem` until
// `exit` or EOF. Command errors are reported and do not end the session.
type Shell struct {
	FileSystem *filesystem.FileSystem
	In         *bufio.Scanner
	Out        io.Writer
	Prompt     string
}

const exitErr ConstError = "exit"

// Exec runs a single command line.
func (sh *Shell) Exec(line string) error {
	args, err := parseCommand(line)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return nil
	}

	name, args := args[0], args[1:]
	switch name {
	case "exit", "EXIT":
		return exitErr
	case "help":
		return sh.help()
	}

	cmd, found := commands[name]
	if !found {
		return fmt.Errorf(
			"unknown command `%s` (try `help`): %w",
			name,
			InvalidOperationErr,
		)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return fmt.Errorf("usage: %s: %w", cmd.usage, InvalidOperationErr)
	}
	return cmd.run(sh, args)
}

func (sh *Shell) help() error {
	usages := make([]string, 0, len(commands)+2)
	for _, cmd := range commands {
		usages = append(usages, cmd.usage)
	}
	usages = append(usages, "help", "exit")
	sort.Strings(usages)
	for _, usage := range usages {
		if _, err := fmt.Fprintln(sh.Out, usage); err != nil {
			return err
		}
	}
	return nil
}

func (sh *Shell) Run() error {
	for {
		if _, err := fmt.Fprint(sh.Out, sh.Prompt); err != nil {
			return err
		}
		if !sh.In.Scan() {
			if err := sh.In.Err(); err != nil {
				return fmt.Errorf("reading command: %w", err)
			}
			return nil
		}
		if err := sh.Exec(sh.In.Text()); err != nil {
			if errors.Is(err, exitErr) {
				return nil
			}
			if _, err := fmt.Fprintf(sh.Out, "error: %v\n", err); err != nil {
				return err
			}
		}
	}
}
