package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huurrag/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWalksSupportedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "faq/huurverhoging.md", "# Huurverhoging\n\nTekst.")
	writeFile(t, root, "laws/bw7.txt", "Artikel 7:201 Huur is de overeenkomst...")
	writeFile(t, root, "notes.txt", "los document")
	writeFile(t, root, "ignore.pdf", "binary")
	writeFile(t, root, ".hidden/skip.txt", "hidden")

	docs, err := Load(root)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Sorted by ID.
	assert.Equal(t, "faq/huurverhoging.md", docs[0].ID)
	assert.Equal(t, "laws/bw7.txt", docs[1].ID)
	assert.Equal(t, "notes.txt", docs[2].ID)
}

func TestLoadStatuteDetection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "laws/bw7.txt", "Artikel 7:201 tekst")
	writeFile(t, root, "faq/vraag.md", "# Vraag")

	docs, err := Load(root)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := map[string]types.Document{}
	for _, d := range docs {
		byID[d.ID] = d
	}

	assert.Equal(t, types.DocStatute, byID["laws/bw7.txt"].DocType)
	assert.Equal(t, "laws", byID["laws/bw7.txt"].Metadata["category"])
	assert.Equal(t, types.DocMarkdown, byID["faq/vraag.md"].DocType)
	assert.Equal(t, "faq", byID["faq/vraag.md"].Metadata["category"])
}

func TestLoadTopLevelFileHasNoCategory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "readme.txt", "inhoud")

	docs, err := Load(root)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, hasCategory := docs[0].Metadata["category"]
	assert.False(t, hasCategory)
	assert.Equal(t, "readme.txt", docs[0].Metadata["source_rel"])
	assert.Equal(t, types.DocText, docs[0].DocType)
}

func TestLoadEmptyDir(t *testing.T) {
	docs, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
