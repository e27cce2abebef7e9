package elections

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// WriteDocument writes `doc` to `dir` under the metadata's filename. Documents
// are written once, if the file already exists it is left alone and `written`
// is false.
func WriteDocument(dir string, meta Metadata, doc Document) (path string, written bool, err error) {
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return "", false, err
	}
	path = filepath.Join(dir, meta.DocumentFilename())

	serialized, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return path, false, fmt.Errorf("serialize %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if errors.Is(err, os.ErrExist) {
		return path, false, nil
	}
	if err != nil {
		return path, false, err
	}

	_, err = f.Write(serialized)
	if err != nil {
		// a truncated document would be skipped by every later run.
		f.Close()
		os.Remove(path)
		return path, false, err
	}
	return path, true, f.Close()
}

// DocumentExists reports whether the document for `meta` has already been written.
func DocumentExists(dir string, meta Metadata) bool {
	_, err := os.Stat(filepath.Join(dir, meta.DocumentFilename()))
	return err == nil
}

func ReadDocument(path string) (Document, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	err = json.Unmarshal(contents, &doc)
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// ListDocuments returns the paths of every json document in `dir`, sorted by name.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}
