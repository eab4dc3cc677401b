// Package cachestore implements the Persistent Cache Store: the on-disk
// maek-cache.json mapping each target to its last-known-good signature.
package cachestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"maek/internal/buildlog"
	"maek/internal/task"
)

// Store reads and writes the cache file at Path.
type Store struct {
	Path string
}

// New builds a Store for the cache file at path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Load reads the cache file and assigns each known target's signature onto
// its owning declaration's run-state. Entries naming an unknown target are
// counted as removed. A missing file is a benign fresh start; any other
// read or parse error is logged but never fails the run.
func (s *Store) Load(reg *task.Registry, log *buildlog.Logger) (hits, removed int, err error) {
	data, readErr := os.ReadFile(s.Path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return 0, 0, nil
		}
		if log != nil {
			log.Warnf("reading cache file %s: %v", s.Path, readErr)
		}
		return 0, 0, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if log != nil {
			log.Warnf("parsing cache file %s: %v", s.Path, err)
		}
		return 0, 0, nil
	}

	for t, sig := range raw {
		decl, ok := reg.Lookup(t)
		if !ok {
			removed++
			continue
		}
		// Save writes the file indented; compact each entry back to the
		// canonical bytes NewSignature produces so Signature.Equal can match.
		var canon bytes.Buffer
		if err := json.Compact(&canon, sig); err != nil {
			removed++
			continue
		}
		reg.RunState(decl.ID).LoadCachedKey(task.Signature(canon.Bytes()))
		hits++
	}
	return hits, removed, nil
}

// Save serializes { target: signature } for every target owned by a
// declaration that both has a Key function and has a recorded cached key
// (a task skipped entirely this run keeps whatever it loaded; a task that
// ran and failed has none, because runTask never reaches the post-run Key
// call on failure). The write is atomic: a failure here is fatal.
func (s *Store) Save(reg *task.Registry) error {
	out := make(map[string]json.RawMessage)
	for _, decl := range reg.All() {
		if decl.Key == nil {
			continue
		}
		rs := reg.RunState(decl.ID)
		sig, ok := rs.CachedKey()
		if !ok {
			continue
		}
		for _, t := range decl.Targets {
			out[t] = sig.Raw()
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache file: %w", err)
	}
	return writeFileAtomic(s.Path, data, 0644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp cache file: %w", err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing cache file: %w", err)
	}
	return nil
}
