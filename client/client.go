// Package client uploads .properties files to a proptrans server and saves
// the translated documents it returns.
package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/proptrans/lockfile"
	"github.com/minios-linux/proptrans/propfile"
)

// FailuresHeader is the response header counting untranslated entries.
const FailuresHeader = "X-Translation-Failures"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Language string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("Failed to translate to %s. HTTP Status: %d", e.Language, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += " (" + truncate(body, 200) + ")"
	}
	return msg
}

// Uploader posts files to the translation endpoint. It never retries.
type Uploader struct {
	url  string
	http *resty.Client
}

// New creates an Uploader for serverURL. A zero timeout means no limit.
func New(serverURL string, timeout time.Duration) *Uploader {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "proptrans")
	return &Uploader{url: serverURL, http: c}
}

// Response is a successful translation for one language.
type Response struct {
	Language string
	Body     []byte
	// Failures is the number of entries the server left untranslated.
	Failures int
}

// Upload sends data as the "file" part with the given language and returns
// the translated document.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte, lang string) (*Response, error) {
	resp, err := u.http.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(filename), strings.NewReader(string(data))).
		SetFormData(map[string]string{"language": lang}).
		Post(u.url)
	if err != nil {
		return nil, fmt.Errorf("translate to %s: %w", lang, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Language: lang, Status: resp.StatusCode(), Body: resp.String()}
	}

	failures := 0
	if v := resp.Header().Get(FailuresHeader); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("translate to %s: bad %s header %q", lang, FailuresHeader, v)
		}
		failures = n
	}

	return &Response{Language: lang, Body: resp.Body(), Failures: failures}, nil
}

// ---------------------------------------------------------------------------
// Multi-language runs
// ---------------------------------------------------------------------------

// Job describes one upload run over several languages.
type Job struct {
	// Source is the path of the .properties file to upload.
	Source string
	// Languages are sent one request each, in order.
	Languages []string
	// OutputPath maps a language to the file its translation is saved to.
	OutputPath func(lang string) string
	// Lock, when set, lets unchanged languages be skipped. Targets in the
	// lock are named relative to LockRoot.
	Lock     *lockfile.LockFile
	LockRoot string
	// Force uploads every language regardless of Lock.
	Force bool

	OnStart func(lang string)
}

// Outcome reports what happened for one language.
type Outcome struct {
	Language string
	Path     string
	Failures int
	Skipped  bool
	Err      error
}

// Run uploads Source once per language. A failure for one language does not
// stop the others. The lock is updated in memory for every language that
// succeeded; saving it is left to the caller.
func (u *Uploader) Run(ctx context.Context, job Job) ([]Outcome, error) {
	data, err := os.ReadFile(job.Source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", job.Source, err)
	}
	entries := SourceEntries(propfile.Parse(data))
	source := job.lockTarget(job.Source)

	outcomes := make([]Outcome, 0, len(job.Languages))
	for _, lang := range job.Languages {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		out := Outcome{Language: lang, Path: job.OutputPath(lang)}
		target := job.lockTarget(out.Path)

		if !job.Force && job.Lock != nil && fileExists(out.Path) && job.Lock.UpToDate(target, source, entries) {
			out.Skipped = true
			outcomes = append(outcomes, out)
			continue
		}

		if job.OnStart != nil {
			job.OnStart(lang)
		}

		resp, err := u.Upload(ctx, job.Source, data, lang)
		if err != nil {
			out.Err = err
			outcomes = append(outcomes, out)
			continue
		}
		out.Failures = resp.Failures

		if err := writeOutput(out.Path, resp.Body); err != nil {
			out.Err = err
			outcomes = append(outcomes, out)
			continue
		}

		if job.Lock != nil {
			if resp.Failures == 0 {
				job.Lock.Record(target, source, entries)
			} else {
				job.Lock.RemoveTarget(target)
			}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (j Job) lockTarget(path string) string {
	if j.LockRoot != "" {
		if rel, err := filepath.Rel(j.LockRoot, path); err == nil {
			path = rel
		}
	}
	return lockfile.TargetKey(path)
}

// SourceEntries returns key -> lock content for every key/value entry.
func SourceEntries(f *propfile.File) map[string]string {
	entries := make(map[string]string)
	for _, e := range f.Entries {
		value, ok := f.Value(e)
		if !ok {
			continue
		}
		key := f.Key(e)
		entries[key] = lockfile.EntryContent(key, value)
	}
	return entries
}

// Failed reports whether any outcome carries an error.
func Failed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

func writeOutput(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
