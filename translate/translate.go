// Package translate drives translation of .properties documents.
//
// Each logical entry of a parsed file becomes one translation unit: its
// segment values are unescaped, their placeholders masked, and the segments
// joined with Delimiter. Units are sent to a Translator in concurrent
// batches; results are split back into segments, restored, re-escaped and
// written over the entry's original lines. An entry whose translation fails
// keeps its original lines and is counted in Result.Failed.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/proptrans/placeholder"
	"github.com/minios-linux/proptrans/propfile"
)

// Delimiter joins the segments of a multi-line entry into a single
// translation unit. Values that already contain it are never translated.
const Delimiter = "\u241e"

// DefaultBatchSize is the number of entries translated concurrently.
const DefaultBatchSize = 100

// ProbeText is sent once before bulk work to check the backend is reachable.
const ProbeText = "Hello"

// ErrSegmentMismatch is reported when a translated unit does not split back
// into the number of segments it was built from.
var ErrSegmentMismatch = errors.New("segment count mismatch")

// ---------------------------------------------------------------------------
// Translator
// ---------------------------------------------------------------------------

// Translator maps text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text, targetLang string) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return f(ctx, text, targetLang)
}

// Probe sends ProbeText to tr once. A failure means the backend is not
// usable and no bulk work should start.
func Probe(ctx context.Context, tr Translator, targetLang string) error {
	if _, err := tr.Translate(ctx, ProbeText, targetLang); err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Options and result
// ---------------------------------------------------------------------------

// Options controls a document translation.
type Options struct {
	// Language is the target language code passed to the Translator.
	Language string
	// BatchSize is the number of entries in flight at once (default 100).
	BatchSize int
	// OnProgress is called after each batch completes.
	OnProgress func(done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits per-entry failures.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// Result summarises a document translation.
type Result struct {
	// Text is the reassembled document.
	Text string
	// Entries is the total number of logical entries.
	Entries int
	// Translated counts entries whose lines were replaced.
	Translated int
	// Skipped counts entries copied through without a translation call.
	Skipped int
	// Failed counts entries that kept their original lines after an error.
	Failed int
}

// ---------------------------------------------------------------------------
// Translation units
// ---------------------------------------------------------------------------

// unit is one entry prepared for translation.
type unit struct {
	entry  propfile.Entry
	key    string
	segs   []propfile.Segment
	tokens []placeholder.Token
	text   string

	lines []string
	err   error
}

// prepareUnit builds the translation unit for entry e. ok is false when the
// entry is skipped: comments, blanks, lines without key/value structure,
// entries whose values are all empty, and entries containing Delimiter.
func prepareUnit(f *propfile.File, e propfile.Entry) (*unit, bool) {
	segs, ok := f.Segments(e)
	if !ok {
		return nil, false
	}

	values := make([]string, len(segs))
	empty := true
	for i, s := range segs {
		v := propfile.Unescape(s.Value)
		if strings.Contains(v, Delimiter) || placeholder.HasMarker(v) {
			return nil, false
		}
		if v != "" {
			empty = false
		}
		values[i] = v
	}
	if empty {
		return nil, false
	}

	u := &unit{entry: e, key: f.Key(e), segs: segs}
	counter := 0
	for i, v := range values {
		masked, tokens, next := placeholder.Mask(v, counter)
		counter = next
		u.tokens = append(u.tokens, tokens...)
		values[i] = masked
	}
	u.text = strings.Join(values, Delimiter)
	return u, true
}

// assemble maps a translated unit back onto the entry's physical lines.
func (u *unit) assemble(translated string) ([]string, error) {
	pieces := strings.Split(translated, Delimiter)
	if len(pieces) != len(u.segs) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSegmentMismatch, len(pieces), len(u.segs))
	}
	lines := make([]string, len(pieces))
	for i, piece := range pieces {
		restored := placeholder.Restore(piece, u.tokens)
		s := u.segs[i]
		lines[i] = s.Prefix + propfile.Escape(restored) + s.Suffix
	}
	return lines, nil
}

func (u *unit) run(ctx context.Context, tr Translator, lang string) {
	translated, err := tr.Translate(ctx, u.text, lang)
	if err != nil {
		u.err = err
		return
	}
	u.lines, u.err = u.assemble(translated)
}

// ---------------------------------------------------------------------------
// Document translation
// ---------------------------------------------------------------------------

// TranslateFile translates every eligible entry of f in place and returns
// the reassembled document. Per-entry failures never abort the run; they
// are reported through opts.OnError and counted in Result.Failed.
func TranslateFile(ctx context.Context, tr Translator, f *propfile.File, opts Options) Result {
	res := Result{Entries: len(f.Entries)}

	var units []*unit
	for _, e := range f.Entries {
		if u, ok := prepareUnit(f, e); ok {
			units = append(units, u)
		}
	}
	res.Skipped = res.Entries - len(units)

	batchSize := opts.effectiveBatchSize()
	batches := (len(units) + batchSize - 1) / batchSize
	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := min(start+batchSize, len(units))
		opts.log("Batch %d/%d: %d entries", b+1, batches, end-start)

		var g errgroup.Group
		for _, u := range units[start:end] {
			g.Go(func() error {
				u.run(ctx, tr, opts.Language)
				return nil
			})
		}
		_ = g.Wait()

		if opts.OnProgress != nil {
			opts.OnProgress(end, len(units))
		}
	}

	for _, u := range units {
		if u.err != nil {
			res.Failed++
			opts.logError("Translation failed for key %q: %v", u.key, u.err)
			continue
		}
		for i, idx := range u.entry.Indexes {
			f.Lines[idx] = u.lines[i]
		}
		res.Translated++
	}

	res.Text = string(f.Marshal())
	return res
}

// TranslateText parses text as a .properties document and translates it.
func TranslateText(ctx context.Context, tr Translator, text string, opts Options) Result {
	return TranslateFile(ctx, tr, propfile.Parse([]byte(text)), opts)
}

// Unit is a translation unit as it is sent to a Translator.
type Unit struct {
	Key  string
	Text string
}

// Units returns the translation units of f in document order. Skipped
// entries are omitted.
func Units(f *propfile.File) []Unit {
	var out []Unit
	for _, e := range f.Entries {
		if u, ok := prepareUnit(f, e); ok {
			out = append(out, Unit{Key: u.key, Text: u.text})
		}
	}
	return out
}
