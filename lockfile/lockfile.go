// Package lockfile implements proptrans.lock. For every translated output
// it remembers which source file produced it and an MD5 checksum of each
// source entry at that time, so a language whose source did not change can
// be skipped.
//
// The lock file lives in the project root next to .proptrans.yaml.
package lockfile

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFileName is the file name inside the project root.
const LockFileName = "proptrans.lock"

// Version is the current format version. Newer files are refused.
const Version = 2

// Output is what the lock knows about one translated file.
type Output struct {
	// Source is the lock key of the file it was translated from.
	Source string `yaml:"source"`
	// Updated is when the translation was recorded.
	Updated time.Time `yaml:"updated"`
	// Checksums maps entry key to Hash(EntryContent(key, value)).
	Checksums map[string]string `yaml:"checksums"`
}

// LockFile is the decoded proptrans.lock. It is safe for concurrent use.
type LockFile struct {
	Version int                `yaml:"version"`
	Outputs map[string]*Output `yaml:"outputs"`

	mu   sync.Mutex
	path string
}

// now is replaced in tests.
var now = time.Now

// Load reads the lock file in dir. A missing file yields an empty lock
// that Save will create.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{Version: Version, path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, lf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if lf.Version > Version {
			return nil, fmt.Errorf("%s: unsupported lock file version %d", path, lf.Version)
		}
		lf.Version = Version
	}

	if lf.Outputs == nil {
		lf.Outputs = make(map[string]*Output)
	}
	return lf, nil
}

// Save writes the lock file back to where it was loaded from.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Path returns the file the lock is saved to.
func (lf *LockFile) Path() string {
	return lf.path
}

// Hash returns the hex MD5 digest of s.
func Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// TargetKey turns a project-relative path into a lock key
// ("src/main/resources/messages_fr.properties" on every OS).
func TargetKey(path string) string {
	return filepath.ToSlash(path)
}

// EntryContent is the hashed form of one entry. Including the key makes a
// rename count as a change.
func EntryContent(key, value string) string {
	return key + "\x00" + value
}

// Record stores target as translated from source with exactly these
// entries (key -> EntryContent). Anything previously stored is replaced.
func (lf *LockFile) Record(target, source string, entries map[string]string) {
	sums := make(map[string]string, len(entries))
	for key, content := range entries {
		sums[key] = Hash(content)
	}

	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.Outputs[target] = &Output{Source: source, Updated: now().UTC(), Checksums: sums}
}

// Changed returns the sorted keys that were added, modified or removed
// since target was recorded. An unknown target reports every key.
func (lf *LockFile) Changed(target string, entries map[string]string) []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	var sums map[string]string
	if out := lf.Outputs[target]; out != nil {
		sums = out.Checksums
	}

	var keys []string
	for key, content := range entries {
		if sums[key] != Hash(content) {
			keys = append(keys, key)
		}
	}
	for key := range sums {
		if _, ok := entries[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// UpToDate reports whether target was recorded from source with the same
// entries.
func (lf *LockFile) UpToDate(target, source string, entries map[string]string) bool {
	lf.mu.Lock()
	out := lf.Outputs[target]
	lf.mu.Unlock()

	if out == nil || out.Source != source {
		return false
	}
	return len(lf.Changed(target, entries)) == 0
}

// RemoveTarget forgets target, so the next run translates it again.
func (lf *LockFile) RemoveTarget(target string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Outputs, target)
}

// Stats returns the number of recorded outputs and checksums.
func (lf *LockFile) Stats() (targets, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	for _, out := range lf.Outputs {
		targets++
		keys += len(out.Checksums)
	}
	return targets, keys
}

// Targets returns the recorded output keys in sorted order.
func (lf *LockFile) Targets() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	targets := make([]string, 0, len(lf.Outputs))
	for t := range lf.Outputs {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Summary describes the lock in one line for "proptrans inspect".
func (lf *LockFile) Summary() string {
	targets, keys := lf.Stats()
	if targets == 0 {
		return "empty"
	}

	lf.mu.Lock()
	defer lf.mu.Unlock()

	names := make([]string, 0, len(lf.Outputs))
	for t := range lf.Outputs {
		names = append(names, t)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, t := range names {
		parts[i] = fmt.Sprintf("%s: %d keys", t, len(lf.Outputs[t].Checksums))
	}
	return fmt.Sprintf("%d targets, %d keys (%s)", targets, keys, strings.Join(parts, ", "))
}
