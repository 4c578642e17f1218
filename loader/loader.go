// Package loader implements the Document Loader: a batch entry point that
// walks a directory of source files and turns them into knowledge.Document
// values ready for a single Knowledge DAO Upsert call (SPEC_FULL.md §4.8).
// It is grounded on the teacher's ingestion/service.go IngestDirectory walk
// and hashing, and ingestion/parsers.go's per-format parsing, adapted from
// a Postgres+Neo4j persistence path to a pure in-memory Document producer.
package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	stdpath "path"
	"path/filepath"
	"strings"

	"github.com/frontdesk/rag-orchestrator/knowledge"
)

// format is a document format, inferred by detectFormat from a path's
// extension with the same switch the teacher's ingestion/formats.go uses.
type format string

const (
	formatMarkdown format = "markdown"
	formatPDF      format = "pdf"
	formatCSV      format = "csv"
	formatUnknown  format = ""
)

func detectFormat(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return formatMarkdown
	case ".pdf":
		return formatPDF
	case ".csv":
		return formatCSV
	default:
		return formatUnknown
	}
}

// LoadDirectory walks dir and parses every .md, .pdf, and .csv file into a
// knowledge.Document. Each document's id is the sha256 of its path
// relative to dir; its tags are the containing folder name plus, for CSV
// files, the column headers. Files of an unrecognized format are skipped.
func LoadDirectory(dir string) ([]knowledge.Document, error) {
	var paths []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if detectFormat(path) == formatUnknown {
			return nil
		}
		paths = append(paths, path)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", dir, err)
	}

	docs := make([]knowledge.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := loadFile(dir, path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if doc == nil {
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func loadFile(root, path string) (*knowledge.Document, error) {
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = path
	}
	relPath = filepath.ToSlash(relPath)

	folder := stdpath.Dir(relPath)
	if folder == "." || folder == "/" {
		folder = ""
	}

	var text string
	var extraTags []string

	switch detectFormat(path) {
	case formatMarkdown:
		text, err = parseMarkdown(path)
	case formatPDF:
		text, err = parsePDF(path)
	case formatCSV:
		text, extraTags, err = parseCSV(path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tags := extraTags
	if folder != "" {
		tags = append(tags, folder)
	}

	return &knowledge.Document{
		ID:   hashPath(relPath),
		Text: text,
		Tags: tags,
	}, nil
}

func hashPath(relPath string) string {
	sum := sha256.Sum256([]byte(relPath))
	return hex.EncodeToString(sum[:])
}
