package sqlite

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// manifestFile names the JSONL file that currently holds each table.
// Replacing it with a single rename is the commit point of every write;
// JSONL files it does not name are uncommitted and ignored.
const manifestFile = "manifest.json"

// renameFile is swapped by tests to fail a rename.
var renameFile = os.Rename

type manifest struct {
	Generation uint64            `json:"generation"`
	Files      map[string]string `json:"files"`
}

// baseManifest points every table at its plain JSONL file.
func baseManifest() manifest {
	m := manifest{Files: make(map[string]string, len(jsonlTableMapping))}
	for _, mapping := range jsonlTableMapping {
		m.Files[mapping.table] = mapping.file
	}
	return m
}

func (m manifest) file(table string) string {
	if f, ok := m.Files[table]; ok {
		return f
	}
	return mappingFor(table).file
}

// next returns the manifest of the following generation with fresh file
// names for tables. Other tables keep their current file.
func (m manifest) next(tables ...string) manifest {
	n := manifest{Generation: m.Generation + 1, Files: make(map[string]string, len(m.Files))}
	for table, f := range m.Files {
		n.Files[table] = f
	}
	for _, table := range tables {
		n.Files[table] = generationFile(mappingFor(table).file, n.Generation)
	}
	return n
}

// superseded lists the files of m that n no longer names.
func (m manifest) superseded(n manifest) []string {
	keep := make(map[string]bool, len(n.Files))
	for _, f := range n.Files {
		keep[f] = true
	}
	var old []string
	for _, f := range m.Files {
		if !keep[f] {
			old = append(old, f)
		}
	}
	return old
}

func generationFile(file string, gen uint64) string {
	return fmt.Sprintf("%s.%06d.jsonl", strings.TrimSuffix(file, ".jsonl"), gen)
}

// openManifest reads the manifest of dataDir. A directory without one is
// given a manifest naming the plain JSONL files, which are created empty
// when missing.
func openManifest(dataDir string) (manifest, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, manifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		if err := initJSONLFiles(dataDir); err != nil {
			return manifest{}, err
		}
		m := baseManifest()
		if err := writeManifest(dataDir, m); err != nil {
			return manifest{}, err
		}
		return m, nil
	}
	if err != nil {
		return manifest{}, fmt.Errorf("reading %s: %w", manifestFile, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("parsing %s: %w", manifestFile, err)
	}
	for _, mapping := range jsonlTableMapping {
		f, ok := m.Files[mapping.table]
		if !ok || f == "" || filepath.Base(f) != f {
			return manifest{}, fmt.Errorf("%s: bad file for table %s: %q", manifestFile, mapping.table, f)
		}
	}
	return m, nil
}

// writeManifest replaces the manifest of dataDir with m in one rename.
func writeManifest(dataDir string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", manifestFile, err)
	}
	tmp, err := os.CreateTemp(dataDir, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := renameFile(tmpName, filepath.Join(dataDir, manifestFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", manifestFile, err)
	}
	return nil
}

// removeOrphans deletes temp files and table files that m does not name.
// They are left behind by writes that never reached the manifest swap.
func removeOrphans(dataDir string, m manifest) error {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dataDir, err)
	}
	named := make(map[string]bool, len(m.Files))
	for _, f := range m.Files {
		named[f] = true
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || named[name] || !isLedgerFile(name) {
			continue
		}
		if err := os.Remove(filepath.Join(dataDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

// isLedgerFile reports whether name is a temp file or a table file written
// by this package.
func isLedgerFile(name string) bool {
	if strings.HasSuffix(name, ".tmp") &&
		(strings.HasPrefix(name, ".jsonl-") || strings.HasPrefix(name, ".manifest-")) {
		return true
	}
	if !strings.HasSuffix(name, ".jsonl") {
		return false
	}
	for _, mapping := range jsonlTableMapping {
		if name == mapping.file || strings.HasPrefix(name, strings.TrimSuffix(mapping.file, ".jsonl")+".") {
			return true
		}
	}
	return false
}

func removeFiles(dataDir string, names []string) {
	for _, name := range names {
		os.Remove(filepath.Join(dataDir, name))
	}
}
