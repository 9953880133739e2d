package filespec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioSpec(t *testing.T) {
	assert.True(t, Stdio.IsStdio())
	assert.False(t, FileSpec("journal.ledger").IsStdio())
	assert.Equal(t, "<stdio>", Stdio.String())
	assert.Equal(t, "journal.ledger", FileSpec("journal.ledger").String())
}

func TestWriteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ledger")
	spec := FileSpec(path)

	err := spec.Write(func(w io.Writer) error {
		_, err := io.WriteString(w, "content\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(data))
}

func TestWriteFailureLeavesPriorFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ledger")
	require.NoError(t, os.WriteFile(path, []byte("prior\n"), 0o644))

	err := FileSpec(path).Write(func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "prior\n", string(data), "failed write must not clobber the prior file")

	// No temporary files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestReadWriteJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.ledger")
	text := "2024-01-15 Coffee\n    expenses:dining  GBP 3.5\n    assets:checking  GBP -3.5\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	journal, err := ReadJournal(FileSpec(path))
	require.NoError(t, err)
	require.Len(t, journal.Transactions, 1)

	out := filepath.Join(dir, "out.ledger")
	require.NoError(t, WriteJournal(FileSpec(out), journal))

	again, err := ReadJournal(FileSpec(out))
	require.NoError(t, err)
	require.Len(t, again.Transactions, 1)
	assert.Equal(t, "Coffee", again.Transactions[0].Description)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := FileSpec(filepath.Join(t.TempDir(), "nope")).Open()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "opening"))
}
