// Package loader reads the document corpus from disk.
//
// Plain text and markdown files are picked up recursively. Files under a
// laws/ directory are treated as statutory text, which makes the statute
// chunking strategy attach article metadata to their chunks.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"huurrag/pkg/types"
)

// Supported file extensions.
var extensions = map[string]types.DocType{
	".txt":      types.DocText,
	".md":       types.DocMarkdown,
	".markdown": types.DocMarkdown,
}

// statuteDir marks the subtree whose files are statutory text.
const statuteDir = "laws"

// Load walks root and returns all supported documents, sorted by ID.
// Document IDs are slash-separated paths relative to root, so a corpus
// produces the same IDs on every platform.
func Load(root string) ([]types.Document, error) {
	var docs []types.Document

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		docType, ok := extensions[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		docs = append(docs, buildDocument(rel, path, string(raw), docType))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// buildDocument derives type and metadata from the relative path.
func buildDocument(rel, abs, raw string, docType types.DocType) types.Document {
	metadata := map[string]string{
		"source_rel": rel,
	}

	parts := strings.Split(rel, "/")
	if len(parts) > 1 {
		metadata["category"] = parts[0]
	}
	if parts[0] == statuteDir {
		docType = types.DocStatute
	}

	return types.Document{
		ID:         rel,
		SourcePath: abs,
		RawText:    raw,
		DocType:    docType,
		Metadata:   metadata,
	}
}
