package main

import (
	"bufio"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/weberc2/afs/pkg/filesystem"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

func TestParseCommand(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		line   string
		wanted []string
		err    error
	}{
		{name: "empty", line: "   ", wanted: nil},
		{name: "words", line: "touch  /a.txt", wanted: []string{"touch", "/a.txt"}},
		{
			name:   "double-quotes",
			line:   `append /a.txt "hello  world"`,
			wanted: []string{"append", "/a.txt", "hello  world"},
		},
		{
			name:   "single-quotes",
			line:   `append /a.txt 'say "hi"'`,
			wanted: []string{"append", "/a.txt", `say "hi"`},
		},
		{
			name:   "adjacent",
			line:   `mkdir /"my dir"`,
			wanted: []string{"mkdir", "/my dir"},
		},
		{name: "empty-quotes", line: `touch ""`, wanted: []string{"touch", ""}},
		{name: "unterminated", line: `touch "a`, err: UnterminatedQuoteErr},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			found, err := parseCommand(testCase.line)
			if !errors.Is(err, testCase.err) {
				t.Fatalf(
					"parseCommand(): wanted err `%v`; found `%v`",
					testCase.err,
					err,
				)
			}
			if !reflect.DeepEqual(testCase.wanted, found) {
				t.Fatalf(
					"parseCommand(): wanted `%q`; found `%q`",
					testCase.wanted,
					found,
				)
			}
		})
	}
}

func TestShell(t *testing.T) {
	fs, err := filesystem.Format(io.NewBuffer(make([]byte, 256*64)), 256, 64)
	if err != nil {
		t.Fatalf("filesystem.Format(): unexpected err: %v", err)
	}

	input := strings.Join([]string{
		"mkdir /docs",
		"touch /docs/a.txt",
		`append /docs/a.txt "hello world"`,
		"edit /docs/a.txt",
		"more",
		"lines",
		"",
		"cat /docs/a.txt",
		"touch /docs/a.txt",
		"frobnicate",
		"ls /docs",
		"exit",
		"touch /never",
	}, "\n")

	var out bytes.Buffer
	sh := Shell{
		FileSystem: fs,
		In:         bufio.NewScanner(strings.NewReader(input)),
		Out:        &out,
	}
	if err := sh.Run(); err != nil {
		t.Fatalf("Shell.Run(): unexpected err: %v", err)
	}

	data, err := fs.GetContent("/docs/a.txt")
	if err != nil {
		t.Fatalf("GetContent(): unexpected err: %v", err)
	}
	if wanted := "hello worldmore\nlines"; string(data) != wanted {
		t.Fatalf("GetContent(): wanted `%q`; found `%q`", wanted, data)
	}

	output := out.String()
	for _, wanted := range []string{
		"hello worldmore\nlines\n",
		"error: creating `/docs/a.txt`",
		"error: unknown command `frobnicate`",
		"- " + strings.Repeat(" ", 8) + "21 a.txt\n",
	} {
		if !strings.Contains(output, wanted) {
			t.Fatalf("Shell.Run(): output missing `%q`:\n%s", wanted, output)
		}
	}

	var inode Inode
	if err := fs.ResolveInode("/never", &inode); !errors.Is(err, NotFoundErr) {
		t.Fatalf("ResolveInode(): wanted `%v`; found `%v`", NotFoundErr, err)
	}
}

func TestShell_Usage(t *testing.T) {
	sh := Shell{}
	if err := sh.Exec("touch"); !errors.Is(err, InvalidOperationErr) {
		t.Fatalf("Exec(): wanted `%v`; found `%v`", InvalidOperationErr, err)
	}
	if err := sh.Exec("EXIT"); !errors.Is(err, exitErr) {
		t.Fatalf("Exec(): wanted `%v`; found `%v`", exitErr, err)
	}
	if err := sh.Exec(""); err != nil {
		t.Fatalf("Exec(): unexpected err: %v", err)
	}
}

func TestAppendedSuffix(t *testing.T) {
	for _, testCase := range []struct {
		original string
		edited   string
		wanted   string
		err      error
	}{
		{original: "abc", edited: "abcdef", wanted: "def"},
		{original: "abc", edited: "abc\n", wanted: ""},
		{original: "abc", edited: "abc", wanted: ""},
		{original: "abc", edited: "xbcdef", err: InvalidOperationErr},
	} {
		found, err := appendedSuffix(
			[]byte(testCase.original),
			[]byte(testCase.edited),
		)
		if !errors.Is(err, testCase.err) {
			t.Fatalf(
				"appendedSuffix(%q, %q): wanted err `%v`; found `%v`",
				testCase.original,
				testCase.edited,
				testCase.err,
				err,
			)
		}
		if string(found) != testCase.wanted {
			t.Fatalf(
				"appendedSuffix(%q, %q): wanted `%q`; found `%q`",
				testCase.original,
				testCase.edited,
				testCase.wanted,
				found,
			)
		}
	}
}
