package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/ragbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile_Text(t *testing.T) {
	path := writeFile(t, "notes.txt", "line one\nline two\n")

	text, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func TestReadFile_MarkdownKeptAsIs(t *testing.T) {
	content := "# Title\n\n* item\n"
	path := writeFile(t, "README.md", content)

	text, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestReadFile_Empty(t *testing.T) {
	path := writeFile(t, "empty.txt", "  \n\t")

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, core.ErrContentUnavailable)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_InvalidPDF(t *testing.T) {
	path := writeFile(t, "broken.PDF", "this is plainly not a pdf document")

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pdf")
}
