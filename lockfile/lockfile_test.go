package lockfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func newLock() *LockFile {
	return &LockFile{Version: Version, Outputs: make(map[string]*Output)}
}

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	old := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = old })
}

func TestHash(t *testing.T) {
	if got := Hash("hello"); got != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("Hash(hello) = %s", got)
	}
	if Hash("a") == Hash("b") {
		t.Error("different inputs hash equal")
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lf.Version != Version || len(lf.Outputs) != 0 {
		t.Errorf("lock = %+v, want empty v%d", lf, Version)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte("version: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "version 99") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte("outputs: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(t, at)
	dir := t.TempDir()

	lf, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := map[string]string{
		"greeting": EntryContent("greeting", "Hello"),
		"farewell": EntryContent("farewell", "Goodbye"),
	}
	lf.Record("messages_fr.properties", "messages.properties", entries)
	lf.Record("messages_de.properties", "messages.properties", map[string]string{
		"greeting": EntryContent("greeting", "Hello"),
	})

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, LockFileName); lf.Path() != want {
		t.Errorf("Path = %q, want %q", lf.Path(), want)
	}

	lf2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if targets, keys := lf2.Stats(); targets != 2 || keys != 3 {
		t.Errorf("Stats = %d targets, %d keys, want 2, 3", targets, keys)
	}
	out := lf2.Outputs["messages_fr.properties"]
	if out == nil || out.Source != "messages.properties" || !out.Updated.Equal(at) {
		t.Fatalf("output = %+v", out)
	}
	if !lf2.UpToDate("messages_fr.properties", "messages.properties", entries) {
		t.Error("fr should be up to date after reload")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := newLock().Save(); err == nil {
		t.Fatal("expected error when path is not set")
	}
}

func TestChanged(t *testing.T) {
	lf := newLock()
	lf.Record("t", "src", map[string]string{"same": "1", "edited": "2", "removed": "3"})

	got := lf.Changed("t", map[string]string{"same": "1", "edited": "two", "added": "4"})
	want := []string{"added", "edited", "removed"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Changed = %v, want %v", got, want)
	}

	if got := lf.Changed("unknown", map[string]string{"b": "1", "a": "1"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Changed(unknown) = %v", got)
	}
}

func TestRecordReplaces(t *testing.T) {
	lf := newLock()
	lf.Record("t", "old.properties", map[string]string{"gone": "x"})
	lf.Record("t", "new.properties", map[string]string{"kept": "y"})

	out := lf.Outputs["t"]
	if out.Source != "new.properties" {
		t.Errorf("Source = %q", out.Source)
	}
	if _, ok := out.Checksums["gone"]; ok {
		t.Error("stale key survived Record")
	}
}

func TestUpToDate(t *testing.T) {
	recorded := map[string]string{"a": "1", "b": "2"}

	tests := []struct {
		name    string
		target  string
		source  string
		entries map[string]string
		want    bool
	}{
		{"same entries", "t", "src", map[string]string{"a": "1", "b": "2"}, true},
		{"changed value", "t", "src", map[string]string{"a": "1", "b": "3"}, false},
		{"added key", "t", "src", map[string]string{"a": "1", "b": "2", "c": "3"}, false},
		{"removed key", "t", "src", map[string]string{"a": "1"}, false},
		{"other source", "t", "other", map[string]string{"a": "1", "b": "2"}, false},
		{"unknown target", "x", "src", map[string]string{"a": "1", "b": "2"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lf := newLock()
			lf.Record("t", "src", recorded)
			if got := lf.UpToDate(tc.target, tc.source, tc.entries); got != tc.want {
				t.Errorf("UpToDate = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("empty source recorded", func(t *testing.T) {
		lf := newLock()
		lf.Record("t", "src", map[string]string{})
		if !lf.UpToDate("t", "src", map[string]string{}) {
			t.Error("empty recording should match an empty source")
		}
	})
}

func TestRemoveTarget(t *testing.T) {
	lf := newLock()
	lf.Record("t", "src", map[string]string{"k": "v"})
	lf.RemoveTarget("t")
	lf.RemoveTarget("never-recorded")

	if targets, _ := lf.Stats(); targets != 0 {
		t.Errorf("targets after RemoveTarget = %d, want 0", targets)
	}
}

func TestTargetsAndSummary(t *testing.T) {
	lf := newLock()
	if lf.Summary() != "empty" {
		t.Errorf("empty summary = %q", lf.Summary())
	}

	for _, target := range []string{"messages_fr.properties", "messages_de.properties", "messages_ar.properties"} {
		lf.Record(target, "messages.properties", map[string]string{"k": "v"})
	}

	want := []string{"messages_ar.properties", "messages_de.properties", "messages_fr.properties"}
	if got := lf.Targets(); !reflect.DeepEqual(got, want) {
		t.Errorf("Targets = %v, want %v", got, want)
	}

	summary := "3 targets, 3 keys (messages_ar.properties: 1 keys, messages_de.properties: 1 keys, messages_fr.properties: 1 keys)"
	if got := lf.Summary(); got != summary {
		t.Errorf("Summary = %q, want %q", got, summary)
	}
}

func TestEntryContent(t *testing.T) {
	c := EntryContent("key1", "value1")
	if c == EntryContent("key1", "value2") {
		t.Error("different values produce the same content")
	}
	if c == EntryContent("key2", "value1") {
		t.Error("different keys produce the same content")
	}
	if EntryContent("ab", "c") == EntryContent("a", "bc") {
		t.Error("key/value boundary is ambiguous")
	}
}

func TestTargetKey(t *testing.T) {
	if got := TargetKey(filepath.Join("src", "messages_fr.properties")); got != "src/messages_fr.properties" {
		t.Errorf("TargetKey = %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	lf := newLock()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			target := "messages_" + string(rune('a'+n)) + ".properties"
			entries := map[string]string{"k": "v"}
			lf.Record(target, "src", entries)
			lf.UpToDate(target, "src", entries)
			lf.Summary()
		}(i)
	}
	wg.Wait()

	if targets, keys := lf.Stats(); targets != 10 || keys != 10 {
		t.Errorf("Stats = %d, %d, want 10, 10", targets, keys)
	}
}
