package propfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	f := Parse([]byte("greeting=Hello\nfarewell=Goodbye\n"))

	want := []string{"greeting", "farewell"}
	if got := f.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, ok := f.Value(f.Entries[0]); !ok || v != "Hello" {
		t.Errorf("Value(greeting) = %q, %v, want %q", v, ok, "Hello")
	}
}

func TestParse_DetectsNewline(t *testing.T) {
	lf := Parse([]byte("a=1\nb=2\n"))
	if lf.Newline != "\n" {
		t.Errorf("Newline = %q, want LF", lf.Newline)
	}

	crlf := Parse([]byte("a=1\r\nb=2\r\n"))
	if crlf.Newline != "\r\n" {
		t.Errorf("Newline = %q, want CRLF", crlf.Newline)
	}
	if crlf.Lines[0] != "a=1" {
		t.Errorf("Lines[0] = %q, want %q", crlf.Lines[0], "a=1")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	inputs := []string{
		"# header\n\nkey=value\n",
		"# Heading\r\n\r\n greeting=Hello\r\nfarewell = Goodbye\r\n",
		"multi=Hello \\\n  World\n",
		"no trailing newline",
		"",
		"key=value # inline\n! bang\n",
	}
	for _, in := range inputs {
		if got := string(Parse([]byte(in)).Marshal()); got != in {
			t.Errorf("round-trip failed:\ngot:  %q\nwant: %q", got, in)
		}
	}
}

func TestValue_JoinsContinuations(t *testing.T) {
	f := Parse([]byte("multi=Hello \\\n  World\n"))
	v, ok := f.Value(f.Entries[0])
	if !ok {
		t.Fatal("Value() not ok")
	}
	if v != "Hello World" {
		t.Errorf("Value() = %q, want %q", v, "Hello World")
	}
}

func TestSegments(t *testing.T) {
	f := Parse([]byte("# c\nnoseparator\nk=v \\\n  w\n"))

	if _, ok := f.Segments(f.Entries[0]); ok {
		t.Error("comment entry should have no segments")
	}
	if _, ok := f.Segments(f.Entries[1]); ok {
		t.Error("line without separator should have no segments")
	}
	segs, ok := f.Segments(f.Entries[2])
	if !ok || len(segs) != 2 {
		t.Fatalf("Segments() = %v, %v, want 2 segments", segs, ok)
	}
	if segs[0].Value != "v " || segs[1].Value != "w" {
		t.Errorf("segment values = %q, %q", segs[0].Value, segs[1].Value)
	}
}

func TestStats(t *testing.T) {
	f := Parse([]byte("# c\n\na=1\nb=2 \\\n  3\nbroken\n"))
	st := f.Stats()

	want := Stats{Lines: 7, Entries: 6, KeyValues: 2, Multiline: 1, Comments: 1, Blank: 2}
	if st != want {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "messages_fr.properties")

	f := Parse([]byte("key=value\n"))
	f.Lines[0] = "key=valeur"
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "key=valeur\n" {
		t.Errorf("written = %q", data)
	}

	back, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if back.Keys()[0] != "key" {
		t.Errorf("Keys() = %v", back.Keys())
	}
}
