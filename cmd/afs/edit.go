package main

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"

	"github.com/weberc2/afs/pkg/filesystem"
	. "github.com/weberc2/afs/pkg/types"
)

// editFile opens the content of `path` in `$EDITOR`. Files only grow, so the
// edited text must keep the current content as its prefix; the remainder is
// appended.
func editFile(ctx context.Context, fs *filesystem.FileSystem, path string) error {
	original, err := fs.GetContent(path)
	if err != nil {
		return fmt.Errorf("editing `%s`: %w", path, err)
	}

	tmpFile, err := ioutil.TempFile("", "afs-edit-*")
	if err != nil {
		return fmt.Errorf("editing `%s`: creating tmp file: %w", path, err)
	}
	tmpFilePath := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpFilePath); err != nil {
			log.Printf("editing `%s`: removing tmp file: %v", path, err)
		}
	}()

	if _, err := tmpFile.Write(original); err != nil {
		tmpFile.Close()
		return fmt.Errorf("editing `%s`: writing tmp file: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("editing `%s`: closing tmp file: %w", path, err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	if err := runTextEditor(ctx, editor, tmpFilePath); err != nil {
		return fmt.Errorf("editing `%s`: %w", path, err)
	}

	edited, err := ioutil.ReadFile(tmpFilePath)
	if err != nil {
		return fmt.Errorf("editing `%s`: reading tmp file: %w", path, err)
	}
	suffix, err := appendedSuffix(original, edited)
	if err != nil {
		return fmt.Errorf("editing `%s`: %w", path, err)
	}
	return fs.AppendContent(path, suffix)
}

// appendedSuffix returns what `edited` adds to `original`. Editors commonly
// add a trailing newline, which is dropped when nothing else was added.
func appendedSuffix(original, edited []byte) ([]byte, error) {
	if !bytes.HasPrefix(edited, original) {
		return nil, fmt.Errorf(
			"existing content was modified; files can only be appended to: %w",
			InvalidOperationErr,
		)
	}
	suffix := edited[len(original):]
	if bytes.Equal(suffix, []byte("\n")) {
		return nil, nil
	}
	return suffix, nil
}

func runTextEditor(ctx context.Context, editor, filePath string) error {
	cmd := exec.CommandContext(ctx, editor, filePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: editing file `%s`: %w", editor, filePath, err)
	}
	return nil
}
